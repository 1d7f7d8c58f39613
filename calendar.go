package ics

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTZID is the TZID parameter written on DTSTART and DTEND lines.
const DefaultTZID = "America/Mexico_City"

// ProductId is the PRODID written in every calendar header.
const ProductId = "-//hacksw/handcal//NONSGML v1.0//EN"

// Event is a single VEVENT wrapped in its own VCALENDAR. Values are sanitized
// when they are set, so rendering never fails. An Event is not safe for
// concurrent use.
//
// Example:
//
//	e, err := NewEvent(Properties{
//		P(KeySummary, "Launch"),
//		P(KeyDtStart, "now + 1 hour"),
//		P(KeyDtEnd, "now + 2 hours"),
//	})
//	if err != nil {
//		return err
//	}
//	fmt.Print(e.Serialize())
type Event struct {
	properties []storedProperty

	tzid     string
	loc      *time.Location
	now      func() time.Time
	uid      func() string
	resolver *timeResolver
}

// The With* types configure NewEvent. They are passed as trailing arguments.
type (
	// WithLocation sets the zone that expressions are resolved in and that
	// timestamps are written in. Defaults to time.Local.
	WithLocation *time.Location
	// WithTZID sets the TZID parameter on DTSTART and DTEND. Defaults to
	// DefaultTZID.
	WithTZID string
	// WithClock replaces time.Now for "now" and DTSTAMP.
	WithClock func() time.Time
	// WithUIDGenerator replaces the UID source.
	WithUIDGenerator func() string
)

// NewEvent builds an Event and sets each of props in order. Unknown keys are
// dropped. The first property that fails to sanitize aborts construction.
func NewEvent(props Properties, ops ...any) (*Event, error) {
	e := &Event{
		tzid: DefaultTZID,
		loc:  time.Local,
		now:  time.Now,
		uid:  newUID,
	}
	for opi, op := range ops {
		switch op := op.(type) {
		case WithLocation:
			if op != nil {
				e.loc = op
			}
		case *time.Location:
			if op != nil {
				e.loc = op
			}
		case WithTZID:
			e.tzid = string(op)
		case WithClock:
			e.now = op
		case WithUIDGenerator:
			e.uid = op
		case error:
			return nil, op
		default:
			return nil, fmt.Errorf("unknown op %d of type %s", opi, reflect.TypeOf(op))
		}
	}
	e.resolver = newTimeResolver(e.loc, e.now)
	if err := e.SetMany(props); err != nil {
		return nil, err
	}
	return e, nil
}

// Set sanitizes value and stores it under key. A key that was already set
// keeps its position and takes the new value. Keys outside AllowedKeys are
// ignored without error.
func (e *Event) Set(key Key, value any) error {
	if !key.Allowed() {
		return nil
	}
	v, err := e.Sanitize(key, value)
	if err != nil {
		return err
	}
	for i := range e.properties {
		if e.properties[i].key == key {
			e.properties[i].value = v
			return nil
		}
	}
	e.properties = append(e.properties, storedProperty{key: key, value: v})
	return nil
}

// SetMany calls Set for each property in order and stops at the first error.
// Properties before the failing one remain set.
func (e *Event) SetMany(props Properties) error {
	for _, p := range props {
		if err := e.Set(p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// Sanitize returns the stored form of value for key. Date keys are resolved
// and formatted with FormatTimestamp at call time; every other key is escaped
// with ToText.
func (e *Event) Sanitize(key Key, value any) (string, error) {
	if key.IsDate() {
		t, err := e.resolver.Resolve(key, value)
		if err != nil {
			return "", err
		}
		return FormatTimestamp(t), nil
	}
	s, err := textValue(value)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return ToText(s), nil
}

// Get returns the sanitized value stored for key.
func (e *Event) Get(key Key) (string, bool) {
	for _, p := range e.properties {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

// Has reports whether key has been set.
func (e *Event) Has(key Key) bool {
	_, ok := e.Get(key)
	return ok
}

// Properties returns the stored properties, sanitized, in insertion order.
func (e *Event) Properties() Properties {
	r := make(Properties, 0, len(e.properties))
	for _, p := range e.properties {
		r = append(r, Property{Key: p.key, Value: p.value})
	}
	return r
}

// Serialize renders the calendar document. DTSTAMP and UID are generated on
// every call, so two calls differ in those two lines.
func (e *Event) Serialize() string {
	b := &strings.Builder{}
	// Writes to a strings.Builder cannot fail.
	_ = e.SerializeTo(b)
	return b.String()
}

// SerializeTo writes the same document as Serialize to w.
func (e *Event) SerializeTo(w io.Writer) error {
	_, err := io.WriteString(w, strings.Join(e.lines(), NewLine))
	return err
}

func newUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
