package ics

import "strings"

// ComponentType enumerates the component names written by Serialize
// (RFC 5545 section 3.6).
type ComponentType string

const (
	// ComponentVCalendar is the VCALENDAR container component.
	ComponentVCalendar ComponentType = "VCALENDAR"
	// ComponentVEvent represents a VEVENT component.
	ComponentVEvent ComponentType = "VEVENT"
	// ComponentVAlarm represents a VALARM subcomponent.
	ComponentVAlarm ComponentType = "VALARM"
)

// ActionDisplay is the only VALARM ACTION produced.
const ActionDisplay = "DISPLAY"

func begin(c ComponentType) string { return "BEGIN:" + string(c) }

func end(c ComponentType) string { return "END:" + string(c) }

type contentLine struct {
	key   string
	value string
}

func (l contentLine) String() string {
	return l.key + ":" + l.value
}

// lines assembles the document line by line: calendar header, the stored
// properties in insertion order, DTSTAMP and UID, the alarm block, footer.
func (e *Event) lines() []string {
	r := []string{
		begin(ComponentVCalendar),
		"VERSION:2.0",
		"PRODID:" + ProductId,
		"CALSCALE:GREGORIAN",
		begin(ComponentVEvent),
	}

	props := make([]contentLine, 0, len(e.properties)+2)
	for _, p := range e.properties {
		props = append(props, contentLine{key: p.key.lineKey(e.tzid), value: p.value})
	}
	props = append(props,
		contentLine{key: "DTSTAMP", value: FormatTimestamp(e.now().In(e.loc))},
		contentLine{key: "UID", value: e.uid()},
	)

	alarm, hasAlarm := "", false
	alarmKey := strings.ToUpper(string(KeyAlarm))
	for _, p := range props {
		if p.key == alarmKey {
			alarm, hasAlarm = p.value, true
			continue
		}
		r = append(r, p.String())
	}

	if hasAlarm {
		r = append(r, alarmBlock(alarm)...)
	}

	return append(r,
		end(ComponentVEvent),
		end(ComponentVCalendar),
	)
}

// alarmBlock is a display alarm that fires the given duration before the
// event starts. The duration is inserted verbatim after "-PT".
func alarmBlock(duration string) []string {
	return []string{
		begin(ComponentVAlarm),
		"TRIGGER:-PT" + duration,
		"ACTION:" + ActionDisplay,
		end(ComponentVAlarm),
	}
}
