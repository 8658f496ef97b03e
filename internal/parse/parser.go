// Package parse turns a KakaoTalk plain-text export into messages.
//
// Parsing is best effort: lines that match no known shape are folded into
// the preceding message, promoted to a system message, or dropped. Parsing
// never fails on malformed input.
package parse

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xowls0315/kakaotalk-excel/internal/chat"
	"github.com/xowls0315/kakaotalk-excel/internal/filter"
)

// Parser is safe for concurrent use; each call keeps its own state.
type Parser struct {
	markers    Markers
	classifier *Classifier
}

func NewParser(m Markers) *Parser {
	m = m.Merge()
	return &Parser{markers: m, classifier: NewClassifier(m)}
}

var defaultParser = NewParser(DefaultMarkers())

// Parse parses text with the default Korean markers.
func Parse(text string, c filter.Criteria) *chat.ParseResult {
	return defaultParser.Parse(text, c)
}

// Parse folds the transcript line by line, applying c to each message as
// it is produced.
func (p *Parser) Parse(text string, c filter.Criteria) *chat.ParseResult {
	lines := strings.Split(text, "\n")

	f := &fold{
		markers: p.markers,
		crit:    c,
		open:    -1,
		msgs:    make([]chat.Message, 0),
		senders: make(map[string]struct{}),
	}
	for _, raw := range lines {
		f.step(p.classifier.Classify(raw))
	}

	participants := make([]string, 0, len(f.senders))
	for s := range f.senders {
		participants = append(participants, s)
	}
	sort.Strings(participants)

	return &chat.ParseResult{
		RoomName:     p.RoomName(lines[0]),
		Messages:     f.msgs,
		Participants: participants,
	}
}

// RoomName extracts the chat room name from the export title line, e.g.
// "⚪스터디 모임 님과 카카오톡 대화" yields "스터디 모임".
func (p *Parser) RoomName(first string) string {
	first = strings.TrimSpace(first)
	idx := strings.Index(first, p.markers.RoomTitle)
	if idx < 0 {
		return chat.DefaultRoomName
	}
	name := first[:idx]
	name = strings.TrimPrefix(name, "⚪")
	name = strings.TrimPrefix(name, "⚫")
	if name = strings.TrimSpace(name); name == "" {
		return chat.DefaultRoomName
	}
	return name
}

// fold is the per-call parser state: the date of the current section and
// the message, if any, that continuation lines attach to.
type fold struct {
	markers Markers
	crit    filter.Criteria

	date *time.Time
	open int

	msgs    []chat.Message
	senders map[string]struct{}
}

func (f *fold) step(l Line) {
	switch l := l.(type) {
	case Blank:
		f.open = -1
	case DateSeparator:
		d := time.Date(l.Year, l.Month, l.Day, 0, 0, 0, 0, chat.Location)
		f.date = &d
		f.open = -1
	case MessageHeader:
		if f.date == nil {
			f.unstructured(l.Raw)
			return
		}
		f.header(l)
	case Unstructured:
		f.unstructured(l.Text)
	}
}

func (f *fold) header(h MessageHeader) {
	f.open = -1

	d := *f.date
	msg := chat.Message{
		Timestamp: time.Date(d.Year(), d.Month(), d.Day(), h.Hour24(), h.Minute, 0, 0, chat.Location),
		Sender:    h.Sender,
		Body:      h.Rest,
		Class:     chat.ClassText,
	}
	if f.markers.IsSystem(h.Raw, h.Sender) {
		msg.Class = chat.ClassSystem
	}
	if !f.crit.Match(msg) {
		return
	}

	f.msgs = append(f.msgs, msg)
	f.open = len(f.msgs) - 1
	if msg.Class == chat.ClassText {
		f.senders[msg.Sender] = struct{}{}
	}
}

func (f *fold) unstructured(text string) {
	if f.open >= 0 {
		if !looksStructured(text) {
			f.continueBody(text)
			return
		}
		f.open = -1
		return
	}

	if f.date == nil || !f.markers.IsJoinLeave(text) {
		return
	}
	if !f.crit.AllowsClass(chat.ClassSystem) {
		return
	}
	f.msgs = append(f.msgs, chat.Message{
		Timestamp: *f.date,
		Sender:    chat.SystemSender,
		Body:      text,
		Class:     chat.ClassSystem,
	})
}

func (f *fold) continueBody(text string) {
	if f.open >= len(f.msgs) {
		panic(fmt.Sprintf("parse: continuation index %d out of range [0,%d)", f.open, len(f.msgs)))
	}
	f.msgs[f.open].Body += "\n" + text
}
