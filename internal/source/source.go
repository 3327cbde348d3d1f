// Package source produces candidate items from independent content sources.
//
// Every adapter is isolated: a failing adapter is logged and contributes
// nothing, the rest of the run goes on.
package source

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"feedcaster/internal/item"
	logx "feedcaster/pkg/logx"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultPerFeedLimit = 6
	userAgent           = "feedcaster/1.0 (+https://github.com/feedcaster)"
)

// Adapter fetches candidate items from one source.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]item.Item, error)
}

// Result is the joined output of all adapters.
type Result struct {
	Items  []item.Item
	Failed map[string]error
}

// Gather runs all adapters concurrently and joins their output in adapter
// order. Each adapter gets its own deadline when timeout > 0.
func Gather(ctx context.Context, adapters []Adapter, timeout time.Duration, log logx.Logger) Result {
	outs := make([][]item.Item, len(adapters))
	errs := make([]error, len(adapters))

	var wg sync.WaitGroup
	for i, a := range adapters {
		wg.Add(1)
		go func(i int, a Adapter) {
			defer wg.Done()
			outs[i], errs[i] = fetchOne(ctx, a, timeout)
		}(i, a)
	}
	wg.Wait()

	res := Result{Failed: map[string]error{}}
	for i, a := range adapters {
		if errs[i] != nil {
			res.Failed[a.Name()] = errs[i]
			log.Warn("source fetch failed", logx.String("source", a.Name()), logx.Err(errs[i]))
			continue
		}
		kept := 0
		for _, it := range outs[i] {
			if !it.Valid() {
				continue
			}
			res.Items = append(res.Items, it)
			kept++
		}
		log.Debug("source fetched", logx.String("source", a.Name()), logx.Int("items", kept))
	}
	return res
}

func fetchOne(ctx context.Context, a Adapter, timeout time.Duration) (items []item.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return a.Fetch(ctx)
}

// NewHTTPClient returns the client shared by HTTP adapters.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
