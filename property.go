package ics

import (
	"fmt"
	"strings"
)

// Key names one of the event properties a caller may set.
type Key string

const (
	KeyDescription Key = "description"
	KeyDtEnd       Key = "dtend"
	KeyDtStart     Key = "dtstart"
	KeyLocation    Key = "location"
	KeySummary     Key = "summary"
	// KeyUrl is emitted as URL;VALUE=URI. Include the scheme (http:// or
	// https://).
	KeyUrl Key = "url"
	// KeyAlarm holds a duration such as "15M" or "1H". It is never emitted as
	// a plain line; it becomes the TRIGGER of a VALARM block instead.
	KeyAlarm Key = "alarm"
	// KeyOrganizer holds a bare email address; the mailto scheme is added on
	// output.
	KeyOrganizer Key = "organizer"
	KeyAttendee  Key = "attendee"

	// keyDtStamp is computed at render time and can never be stored, but it
	// sanitizes like the other date keys.
	keyDtStamp Key = "dtstamp"
)

var allowedKeys = []Key{
	KeyDescription,
	KeyDtEnd,
	KeyDtStart,
	KeyLocation,
	KeySummary,
	KeyUrl,
	KeyAlarm,
	KeyOrganizer,
	KeyAttendee,
}

// AllowedKeys returns the keys Set accepts, in declaration order.
func AllowedKeys() []Key {
	r := make([]Key, len(allowedKeys))
	copy(r, allowedKeys)
	return r
}

// Allowed reports whether k is one of the recognised keys.
func (k Key) Allowed() bool {
	for _, a := range allowedKeys {
		if a == k {
			return true
		}
	}
	return false
}

// IsDate reports whether values for k are resolved to timestamps rather than
// escaped as text.
func (k Key) IsDate() bool {
	switch k {
	case KeyDtStart, KeyDtEnd, keyDtStamp:
		return true
	}
	return false
}

// lineKey maps k to the left hand side of its content line.
func (k Key) lineKey(tzid string) string {
	switch k {
	case KeyUrl:
		return "URL;VALUE=URI"
	case KeyDtStart, KeyDtEnd:
		return strings.ToUpper(string(k)) + ";TZID=" + tzid
	case KeyOrganizer:
		// Joined with ":" this yields ORGANIZER:mailto:<value>.
		return strings.ToUpper(string(k)) + ":mailto"
	default:
		return strings.ToUpper(string(k))
	}
}

// Property is a single key/value pair as supplied by a caller.
type Property struct {
	Key   Key
	Value any
}

// Properties is an ordered set of properties. The order is the order lines
// appear in the rendered event.
type Properties []Property

// P is shorthand for building a Property.
func P(key Key, value any) Property {
	return Property{Key: key, Value: value}
}

type storedProperty struct {
	key   Key
	value string
}

var textEscaper = strings.NewReplacer(
	`,`, `\,`,
	`;`, `\;`,
)

// ToText escapes s for a TEXT value. Only commas and semicolons are escaped;
// everything else passes through unchanged.
func ToText(s string) string {
	return textEscaper.Replace(s)
}

func textValue(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: got %T", ErrNonTextValue, v)
	}
}
