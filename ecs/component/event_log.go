package component

import (
	"fmt"
	"strings"
)

const DefaultEventLogSize = 32

// EventLogEntry records one animation event or state change.
type EventLogEntry struct {
	Tick  uint64
	Key   string
	State string
}

func (e EventLogEntry) String() string {
	return fmt.Sprintf("%6d %-10s %s", e.Tick, e.State, e.Key)
}

// EventLog keeps the most recent entries, oldest first.
type EventLog struct {
	Max     int
	Entries []EventLogEntry
}

func (l *EventLog) Push(entry EventLogEntry) {
	limit := l.Max
	if limit <= 0 {
		limit = DefaultEventLogSize
	}
	l.Entries = append(l.Entries, entry)
	if over := len(l.Entries) - limit; over > 0 {
		l.Entries = append(l.Entries[:0], l.Entries[over:]...)
	}
}

// Text renders the log one entry per line.
func (l *EventLog) Text() string {
	var b strings.Builder
	for _, e := range l.Entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}

var EventLogComponent = NewComponent[EventLog]()
