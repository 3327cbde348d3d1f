package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type SpecKind int

const (
	SpecCron SpecKind = iota
	SpecInterval
)

func (k SpecKind) String() string {
	if k == SpecInterval {
		return "interval"
	}
	return "cron"
}

// Spec is a parsed schedule string.
//
// Optional prefixes force a kind: "cron:" or "interval:"/"every:".
type Spec struct {
	Kind  SpecKind
	Cron  string
	Every time.Duration
	Raw   string
}

// CronSpec returns the expression to register with the cron runner.
func (s Spec) CronSpec() string {
	if s.Kind == SpecInterval {
		return "@every " + s.Every.String()
	}
	return s.Cron
}

var reHHMM = regexp.MustCompile(`^(\d{1,3}):(\d{2})$`)

func ParseSpec(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{}, fmt.Errorf("schedule required")
	}

	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "cron:"):
		expr := strings.TrimSpace(s[len("cron:"):])
		if expr == "" {
			return Spec{}, fmt.Errorf("cron expression required after 'cron:'")
		}
		return Spec{Kind: SpecCron, Cron: expr, Raw: raw}, nil
	case strings.HasPrefix(low, "interval:"):
		return intervalSpec(raw, s[len("interval:"):])
	case strings.HasPrefix(low, "every:"):
		return intervalSpec(raw, s[len("every:"):])
	}

	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return Spec{Kind: SpecCron, Cron: s, Raw: raw}, nil
	}
	if sp, err := intervalSpec(raw, s); err == nil {
		return sp, nil
	}
	return Spec{}, fmt.Errorf("invalid schedule %q (use cron like '0 * * * *', HH:MM like '01:30', or duration like '55m')", raw)
}

func intervalSpec(raw, v string) (Spec, error) {
	d, err := parseInterval(v)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Kind: SpecInterval, Every: d, Raw: raw}, nil
}

func parseInterval(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("interval required")
	}
	var d time.Duration
	if m := reHHMM.FindStringSubmatch(v); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 {
			return 0, fmt.Errorf("invalid minutes in %q", v)
		}
		d = time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
	} else {
		var err error
		if d, err = time.ParseDuration(v); err != nil {
			return 0, fmt.Errorf("invalid interval %q", v)
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be > 0")
	}
	return d, nil
}
