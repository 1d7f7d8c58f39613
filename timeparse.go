package ics

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const (
	icalTimestampFormatLocal = "20060102T150405"
	icalTimestampFormatUtc   = "20060102T150405Z"
)

// absoluteLayouts are tried in order before any relative parsing. Layouts
// without a zone are read in the resolver's location; the trailing Z of the
// iCalendar UTC form is a literal, so that layout is read as UTC.
var absoluteLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	icalTimestampFormatUtc,
	icalTimestampFormatLocal,
}

var relativeTerm = regexp.MustCompile(`^([+-])\s*(\d+)\s*(seconds?|secs?|minutes?|mins?|hours?|days?|weeks?|months?|years?)\b`)

var errNoMatch = errors.New("no recognised date or time")

// timeResolver turns dtstart/dtend values into absolute times. It is not safe
// for concurrent use; each Event owns its own.
type timeResolver struct {
	loc     *time.Location
	now     func() time.Time
	natural *when.Parser
}

func newTimeResolver(loc *time.Location, now func() time.Time) *timeResolver {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &timeResolver{
		loc:     loc,
		now:     now,
		natural: w,
	}
}

// Resolve returns the instant described by v, expressed in the resolver's
// location.
func (r *timeResolver) Resolve(key Key, v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v.In(r.loc), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, &InvalidTimeExpressionError{Key: key, Expr: "<nil>"}
		}
		return v.In(r.loc), nil
	case string:
		return r.resolveExpression(key, v)
	default:
		s, err := textValue(v)
		if err != nil {
			return time.Time{}, &InvalidTimeExpressionError{Key: key, Expr: "", Err: err}
		}
		return r.resolveExpression(key, s)
	}
}

func (r *timeResolver) resolveExpression(key Key, expr string) (time.Time, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return time.Time{}, &InvalidTimeExpressionError{Key: key, Expr: expr, Err: errors.New("empty expression")}
	}
	now := r.now().In(r.loc)
	if t, ok := r.absolute(s); ok {
		return t, nil
	}
	if t, ok := r.relative(s, now); ok {
		return t, nil
	}
	res, err := r.natural.Parse(s, now)
	if err != nil {
		return time.Time{}, &InvalidTimeExpressionError{Key: key, Expr: expr, Err: err}
	}
	if res == nil {
		return time.Time{}, &InvalidTimeExpressionError{Key: key, Expr: expr, Err: errNoMatch}
	}
	return res.Time.In(r.loc), nil
}

func (r *timeResolver) absolute(s string) (time.Time, bool) {
	for _, layout := range absoluteLayouts {
		loc := r.loc
		if layout == icalTimestampFormatUtc {
			loc = time.UTC
		}
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(r.loc), true
		}
	}
	return time.Time{}, false
}

// relative handles "now", "today", "tomorrow", "yesterday" and "midnight",
// each optionally followed by signed offsets such as "+ 1 hour - 15 minutes".
// An expression made only of offsets is relative to now.
func (r *timeResolver) relative(s string, now time.Time) (time.Time, bool) {
	s = strings.ToLower(s)
	t := now
	matched := false
	midnight := func(days int) time.Time {
		y, m, d := now.Date()
		return time.Date(y, m, d+days, 0, 0, 0, 0, r.loc)
	}
	for _, base := range []struct {
		word string
		at   func() time.Time
	}{
		{"now", func() time.Time { return now }},
		{"today", func() time.Time { return midnight(0) }},
		{"midnight", func() time.Time { return midnight(0) }},
		{"tomorrow", func() time.Time { return midnight(1) }},
		{"yesterday", func() time.Time { return midnight(-1) }},
	} {
		if strings.HasPrefix(s, base.word) {
			t = base.at()
			s = s[len(base.word):]
			matched = true
			break
		}
	}
	for {
		s = strings.TrimSpace(s)
		if s == "" {
			break
		}
		m := relativeTerm.FindStringSubmatch(s)
		if m == nil {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, false
		}
		if m[1] == "-" {
			n = -n
		}
		t = applyOffset(t, n, m[3])
		s = s[len(m[0]):]
		matched = true
	}
	return t, matched
}

func applyOffset(t time.Time, n int, unit string) time.Time {
	switch strings.TrimSuffix(unit, "s") {
	case "second", "sec":
		return t.Add(time.Duration(n) * time.Second)
	case "minute", "min":
		return t.Add(time.Duration(n) * time.Minute)
	case "hour":
		return t.Add(time.Duration(n) * time.Hour)
	case "day":
		return t.AddDate(0, 0, n)
	case "week":
		return t.AddDate(0, 0, 7*n)
	case "month":
		return t.AddDate(0, n, 0)
	case "year":
		return t.AddDate(n, 0, 0)
	}
	return t
}

// FormatTimestamp renders t in the canonical YYYYMMDDTHHMMSS form, with no
// zone designator, as wall clock time in t's location.
func FormatTimestamp(t time.Time) string {
	return t.Format(icalTimestampFormatLocal)
}
