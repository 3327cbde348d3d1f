package dedup

import (
	"context"
	"fmt"

	"feedcaster/internal/storage"
	logx "feedcaster/pkg/logx"
)

// Load reads the posted history. Any failure degrades to an empty set: the
// worst outcome is re-posting recent items once.
func Load(ctx context.Context, st storage.Store, log logx.Logger) *Set {
	if st == nil {
		log.Warn("no dedup store configured; starting empty")
		return NewSet()
	}
	ids, err := st.Load(ctx)
	if err != nil {
		log.Warn("dedup store unreadable; starting empty", logx.String("path", st.Path()), logx.Err(err))
		return NewSet()
	}
	s := NewSet(ids...)
	log.Debug("dedup store loaded", logx.String("path", st.Path()), logx.Int("ids", s.Len()))
	return s
}

// Save persists at most max of the most recently recorded ids.
func Save(ctx context.Context, st storage.Store, s *Set, max int) error {
	if st == nil {
		return nil
	}
	if max <= 0 {
		max = DefaultMaxIDs
	}
	if err := st.Save(ctx, s.Tail(max)); err != nil {
		return fmt.Errorf("save dedup store: %w", err)
	}
	return nil
}
