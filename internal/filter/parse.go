package filter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xowls0315/kakaotalk-excel/internal/chat"
)

// bound layouts tried in order; the zone-less ones are read as civil time.
var civilLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseBound parses a date-range bound. An empty string means no bound.
// A bare date is midnight of that civil day; RFC 3339 values carrying an
// offset are moved onto the civil clock.
func ParseBound(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range civilLayouts {
		if t, err := time.ParseInLocation(layout, s, chat.Location); err == nil {
			return &t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.In(chat.Location)
		return &t, nil
	}
	return nil, fmt.Errorf("parse date bound %q: expected YYYY-MM-DD[THH:MM[:SS]] or RFC 3339", s)
}

// ParseParticipants accepts a JSON array, a comma separated list or a single
// name. Blank entries are dropped.
func ParseParticipants(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(s), &arr); err == nil {
		return compact(arr)
	}
	return compact(strings.Split(s, ","))
}

func compact(in []string) []string {
	var out []string
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
