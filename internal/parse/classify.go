package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Line is the classification of one trimmed transcript line. It is one of
// Blank, DateSeparator, MessageHeader or Unstructured.
type Line interface {
	isLine()
}

// Blank is an empty or whitespace-only line. It closes any continuation.
type Blank struct{}

// DateSeparator is a banner such as
// "--------------- 2024년 1월 1일 월요일 ---------------".
type DateSeparator struct {
	Year  int
	Month time.Month
	Day   int
}

// Meridiem is the 오전/오후 token of a header clock, if any.
type Meridiem int

const (
	NoMeridiem Meridiem = iota // 24-hour notation
	AM
	PM
)

// MessageHeader is a line of the form "[sender] [오후 3:04] rest".
type MessageHeader struct {
	Sender   string
	Meridiem Meridiem
	Hour     int
	Minute   int
	Rest     string
	Raw      string // the whole trimmed line
}

// Unstructured is any other non-blank line: a continuation, a bare
// join/leave notice, or noise.
type Unstructured struct {
	Text string
}

func (Blank) isLine()         {}
func (DateSeparator) isLine() {}
func (MessageHeader) isLine() {}
func (Unstructured) isLine()  {}

// Hour24 converts the header's clock reading to 24-hour form.
func (h MessageHeader) Hour24() int {
	switch {
	case h.Meridiem == PM && h.Hour != 12:
		return h.Hour + 12
	case h.Meridiem == AM && h.Hour == 12:
		return 0
	default:
		return h.Hour
	}
}

var dateSeparatorRe = regexp.MustCompile(`^-+\s*(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)

// Classifier holds the compiled patterns for one marker set.
type Classifier struct {
	markers  Markers
	headerRe *regexp.Regexp
}

func NewClassifier(m Markers) *Classifier {
	m = m.Merge()
	meridiem := regexp.QuoteMeta(m.AM) + "|" + regexp.QuoteMeta(m.PM)
	return &Classifier{
		markers:  m,
		headerRe: regexp.MustCompile(`^\[([^\]]+)\]\s*\[(` + meridiem + `)?\s*(\d{1,2}):(\d{2})\]\s*(.*)$`),
	}
}

var defaultClassifier = NewClassifier(DefaultMarkers())

// Classify categorises line with the default Korean markers.
func Classify(line string) Line {
	return defaultClassifier.Classify(line)
}

// Classify categorises a single line. Surrounding whitespace is ignored.
func (c *Classifier) Classify(line string) Line {
	line = strings.TrimSpace(line)
	if line == "" {
		return Blank{}
	}

	if m := dateSeparatorRe.FindStringSubmatch(line); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return DateSeparator{Year: year, Month: time.Month(month), Day: day}
	}

	if m := c.headerRe.FindStringSubmatch(line); m != nil {
		hour, _ := strconv.Atoi(m[3])
		minute, _ := strconv.Atoi(m[4])
		h := MessageHeader{
			Sender: strings.TrimSpace(m[1]),
			Hour:   hour,
			Minute: minute,
			Rest:   strings.TrimSpace(m[5]),
			Raw:    line,
		}
		switch m[2] {
		case c.markers.AM:
			h.Meridiem = AM
		case c.markers.PM:
			h.Meridiem = PM
		}
		return h
	}

	return Unstructured{Text: line}
}

// looksStructured reports whether text starts like a separator or a header
// even though it did not classify as one.
func looksStructured(text string) bool {
	return strings.HasPrefix(text, "-") || strings.HasPrefix(text, "[")
}
