// Package filter selects messages by class, date range and sender.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xowls0315/kakaotalk-excel/internal/chat"
)

// Criteria is a conjunction of three independent predicates. The zero value
// drops system messages and otherwise admits everything.
type Criteria struct {
	IncludeSystem bool
	DateFrom      *time.Time // inclusive, compared as a full timestamp
	DateTo        *time.Time // inclusive, no end-of-day adjustment
	Participants  []string   // empty = no restriction
}

// AllowsClass reports whether messages of class c pass the system predicate.
func (c Criteria) AllowsClass(class chat.Class) bool {
	return c.IncludeSystem || class != chat.ClassSystem
}

// InRange reports whether t lies within [DateFrom, DateTo]. An inverted range
// admits nothing.
func (c Criteria) InRange(t time.Time) bool {
	if c.DateFrom != nil && t.Before(*c.DateFrom) {
		return false
	}
	if c.DateTo != nil && t.After(*c.DateTo) {
		return false
	}
	return true
}

// AllowsSender reports whether sender passes the participant allow-list.
func (c Criteria) AllowsSender(sender string) bool {
	if len(c.Participants) == 0 {
		return true
	}
	for _, p := range c.Participants {
		if p == sender {
			return true
		}
	}
	return false
}

// Match applies all three predicates in the order class, range, sender.
func (c Criteria) Match(m chat.Message) bool {
	return c.AllowsClass(m.Class) && c.InRange(m.Timestamp) && c.AllowsSender(m.Sender)
}

func (c Criteria) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("system=%t", c.IncludeSystem))
	if c.DateFrom != nil {
		parts = append(parts, "from="+c.DateFrom.Format(time.RFC3339))
	}
	if c.DateTo != nil {
		parts = append(parts, "to="+c.DateTo.Format(time.RFC3339))
	}
	if len(c.Participants) > 0 {
		parts = append(parts, "participants="+strings.Join(c.Participants, ","))
	}
	return strings.Join(parts, " ")
}

// Apply returns the messages matching c in their original order. The input
// slice is not modified.
func Apply(msgs []chat.Message, c Criteria) []chat.Message {
	out := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		if c.Match(m) {
			out = append(out, m)
		}
	}
	return out
}
