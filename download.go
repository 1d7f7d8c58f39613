package ics

import (
	"fmt"
	"io"
	"net/http"
	"reflect"
)

// The download defaults match what calendar clients expect from a single
// event attachment.
const (
	DefaultFilename = "ical.ics"
	DefaultCharset  = "utf-8"
)

type (
	// WithFilename sets the attachment filename in Content-Disposition.
	WithFilename string
	// WithCharset sets the charset parameter of Content-Type.
	WithCharset string
)

type downloadConfig struct {
	filename string
	charset  string
}

func parseDownloadOps(ops []any) (*downloadConfig, error) {
	c := &downloadConfig{
		filename: DefaultFilename,
		charset:  DefaultCharset,
	}
	for opi, op := range ops {
		switch op := op.(type) {
		case WithFilename:
			if op != "" {
				c.filename = string(op)
			}
		case WithCharset:
			if op != "" {
				c.charset = string(op)
			}
		case error:
			return nil, op
		default:
			return nil, fmt.Errorf("unknown op %d of type %s", opi, reflect.TypeOf(op))
		}
	}
	return c, nil
}

// Download writes the event as a calendar file attachment: it sets
// Content-type and Content-Disposition and writes the rendered document as
// the body. If DTSTART was never set it returns ErrMissingStartTime before
// any header is touched.
func (e *Event) Download(w http.ResponseWriter, ops ...any) error {
	if !e.Has(KeyDtStart) {
		return ErrMissingStartTime
	}
	c, err := parseDownloadOps(ops)
	if err != nil {
		return err
	}
	w.Header().Set("Content-type", "text/calendar; charset="+c.charset)
	w.Header().Set("Content-Disposition", "attachment; filename="+c.filename)
	if _, err := io.WriteString(w, e.Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}
