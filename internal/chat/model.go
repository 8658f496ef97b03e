package chat

import (
	"encoding/json"
	"time"
)

// Location is the civil zone transcript wall-clock values are carried in.
// Times are constructed in it and never converted out of it.
var Location = time.FixedZone("KST", 9*60*60)

const (
	DefaultRoomName = "채팅방"
	SystemSender    = "시스템"
)

type Class string

const (
	ClassText   Class = "text"
	ClassSystem Class = "system"
)

type Message struct {
	Timestamp time.Time // wall clock in Location
	Sender    string
	Body      string // continuation lines joined by "\n"
	Class     Class
}

// TimestampLayout renders a civil timestamp with its fixed offset, e.g.
// 2024-01-01T10:00:00.000+09:00.
const TimestampLayout = "2006-01-02T15:04:05.000-07:00"

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		At      string `json:"at"`
		Sender  string `json:"sender"`
		Message string `json:"message"`
		Type    Class  `json:"type"`
	}{
		At:      m.Timestamp.Format(TimestampLayout),
		Sender:  m.Sender,
		Message: m.Body,
		Type:    m.Class,
	})
}

// Day returns the calendar date of the message as YYYY-MM-DD.
func (m Message) Day() string {
	return m.Timestamp.Format("2006-01-02")
}

type ParseResult struct {
	RoomName     string
	Messages     []Message
	Participants []string // sorted, text-class senders only
}

// Date builds a civil timestamp at the given wall-clock values.
func Date(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, Location)
}
