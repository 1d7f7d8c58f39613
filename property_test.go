package ics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToText(t *testing.T) {
	tests := []struct {
		Input    string
		Expected string
	}{
		{Input: "plain text", Expected: "plain text"},
		{Input: "a,b;c", Expected: `a\,b\;c`},
		{Input: ",,;;", Expected: `\,\,\;\;`},
		{Input: "keep: colons \\ and\nnewlines", Expected: "keep: colons \\ and\nnewlines"},
		{Input: "", Expected: ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.Expected, ToText(test.Input), "input %q", test.Input)
	}
}

func TestKeyAllowed(t *testing.T) {
	for _, k := range AllowedKeys() {
		assert.True(t, k.Allowed(), k)
	}
	for _, k := range []Key{"foo", "dtstamp", "uid", "SUMMARY", ""} {
		assert.False(t, k.Allowed(), k)
	}
}

func TestAllowedKeysIsACopy(t *testing.T) {
	keys := AllowedKeys()
	keys[0] = "foo"
	assert.Equal(t, KeyDescription, AllowedKeys()[0])
	assert.Len(t, AllowedKeys(), 9)
}

func TestKeyIsDate(t *testing.T) {
	assert.True(t, KeyDtStart.IsDate())
	assert.True(t, KeyDtEnd.IsDate())
	assert.True(t, keyDtStamp.IsDate())
	assert.False(t, KeySummary.IsDate())
	assert.False(t, KeyAlarm.IsDate())
}

func TestKeyLineKey(t *testing.T) {
	tests := map[Key]string{
		KeyUrl:         "URL;VALUE=URI",
		KeyDtStart:     "DTSTART;TZID=America/Mexico_City",
		KeyDtEnd:       "DTEND;TZID=America/Mexico_City",
		KeyOrganizer:   "ORGANIZER:mailto",
		KeySummary:     "SUMMARY",
		KeyDescription: "DESCRIPTION",
		KeyLocation:    "LOCATION",
		KeyAttendee:    "ATTENDEE",
		KeyAlarm:       "ALARM",
	}
	for k, want := range tests {
		assert.Equal(t, want, k.lineKey(DefaultTZID), k)
	}
}
