package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Line
	}{
		{"empty", "", Blank{}},
		{"whitespace only", " \t\r", Blank{}},
		{
			"date separator with weekday",
			"--------------- 2025년 12월 28일 일요일 ---------------",
			DateSeparator{Year: 2025, Month: time.December, Day: 28},
		},
		{
			"date separator single digit fields",
			"--- 2024년 1월 5일",
			DateSeparator{Year: 2024, Month: time.January, Day: 5},
		},
		{
			"header with pm",
			"[Bob] [오후 12:30] lunch",
			MessageHeader{Sender: "Bob", Meridiem: PM, Hour: 12, Minute: 30, Rest: "lunch", Raw: "[Bob] [오후 12:30] lunch"},
		},
		{
			"header without meridiem",
			"[앨리스] [13:05] 안녕",
			MessageHeader{Sender: "앨리스", Meridiem: NoMeridiem, Hour: 13, Minute: 5, Rest: "안녕", Raw: "[앨리스] [13:05] 안녕"},
		},
		{
			"header with empty rest",
			"[Alice] [오전 9:00]",
			MessageHeader{Sender: "Alice", Meridiem: AM, Hour: 9, Minute: 0, Rest: "", Raw: "[Alice] [오전 9:00]"},
		},
		{
			"sender is trimmed",
			"[ Alice ] [오전 9:00] hi",
			MessageHeader{Sender: "Alice", Meridiem: AM, Hour: 9, Minute: 0, Rest: "hi", Raw: "[ Alice ] [오전 9:00] hi"},
		},
		{"bare join sentence", "Alice님이 들어왔습니다.", Unstructured{Text: "Alice님이 들어왔습니다."}},
		{"bracket text without time", "[link] example", Unstructured{Text: "[link] example"}},
		{"dashes without date", "-----", Unstructured{Text: "-----"}},
		{"surrounding whitespace trimmed", "  world  ", Unstructured{Text: "world"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestMessageHeader_Hour24(t *testing.T) {
	tests := []struct {
		meridiem Meridiem
		hour     int
		want     int
	}{
		{PM, 12, 12},
		{PM, 7, 19},
		{AM, 12, 0},
		{AM, 7, 7},
		{NoMeridiem, 13, 13},
		{NoMeridiem, 0, 0},
	}

	for _, tt := range tests {
		h := MessageHeader{Meridiem: tt.meridiem, Hour: tt.hour}
		assert.Equal(t, tt.want, h.Hour24(), "meridiem=%d hour=%d", tt.meridiem, tt.hour)
	}
}

func TestClassifier_CustomMeridiemTokens(t *testing.T) {
	c := NewClassifier(Markers{AM: "AM", PM: "PM"})

	l := c.Classify("[Alice] [PM 7:15] dinner")
	h, ok := l.(MessageHeader)
	require.True(t, ok, "expected header, got %T", l)
	assert.Equal(t, PM, h.Meridiem)
	assert.Equal(t, 19, h.Hour24())

	// the Korean tokens are no longer recognised
	_, ok = c.Classify("[Alice] [오후 7:15] dinner").(Unstructured)
	assert.True(t, ok)
}
