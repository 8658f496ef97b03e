// Package export lays messages out as an xlsx workbook.
package export

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/xowls0315/kakaotalk-excel/internal/chat"
)

const (
	Creator          = "KakaoTalk Excel Converter"
	DefaultSheetName = "채팅내용"
	TimestampFormat  = "yyyy-mm-dd hh:mm:ss"

	maxSheetName = 31
)

// Layout controls how messages are spread across sheets.
type Layout struct {
	SplitByDay bool
}

type column struct {
	header string
	width  float64
}

var columns = []column{
	{"날짜/시간", 20},
	{"보낸사람", 15},
	{"메시지", 50},
	{"타입", 10},
}

// Sheet is one named page of messages.
type Sheet struct {
	Name     string
	Messages []chat.Message
}

// Plan assigns messages to sheets without touching any spreadsheet state.
// With SplitByDay each distinct calendar date gets a sheet, in order of first
// appearance. There is always at least one sheet.
func Plan(msgs []chat.Message, roomName string, l Layout) []Sheet {
	if !l.SplitByDay || len(msgs) == 0 {
		name := roomName
		if strings.TrimSpace(name) == "" {
			name = DefaultSheetName
		}
		return []Sheet{{Name: name, Messages: msgs}}
	}

	var sheets []Sheet
	index := make(map[string]int)
	for _, m := range msgs {
		day := m.Day()
		i, ok := index[day]
		if !ok {
			i = len(sheets)
			index[day] = i
			sheets = append(sheets, Sheet{Name: day})
		}
		sheets[i].Messages = append(sheets[i].Messages, m)
	}
	return sheets
}

// Workbook renders msgs and returns the xlsx bytes.
func Workbook(msgs []chat.Message, roomName string, l Layout) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator: Creator,
		Created: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("set doc props: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool)
	for i, sh := range Plan(msgs, roomName, l) {
		name := uniqueName(SheetName(sh.Name), used)
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, sh.Messages, st); err != nil {
			return nil, fmt.Errorf("write sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct {
	header    int
	timestamp int
	body      int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
	})
	if err != nil {
		return st, fmt.Errorf("header style: %w", err)
	}

	numFmt := TimestampFormat
	st.timestamp, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return st, fmt.Errorf("timestamp style: %w", err)
	}

	st.body, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return st, fmt.Errorf("body style: %w", err)
	}
	return st, nil
}

func writeSheet(f *excelize.File, sheet string, msgs []chat.Message, st styles) error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, c.width); err != nil {
			return err
		}
		header[i] = c.header
	}

	if err := f.SetColStyle(sheet, "A", st.timestamp); err != nil {
		return err
	}
	if err := f.SetColStyle(sheet, "C", st.body); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", st.header); err != nil {
		return err
	}

	for i, m := range msgs {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []interface{}{wallClock(m.Timestamp), m.Sender, m.Body, string(m.Class)}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.timestamp); err != nil {
			return err
		}
		body, _ := excelize.CoordinatesToCellName(3, row)
		if err := f.SetCellStyle(sheet, body, body, st.body); err != nil {
			return err
		}
	}
	return nil
}

// wallClock re-expresses t as a UTC instant carrying the same civil digits, so
// the serial date stored in the sheet reads back as the transcript's clock.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// SheetName makes name acceptable as an Excel sheet title.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if utf8.RuneCountInString(name) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	if strings.TrimSpace(name) == "" {
		return DefaultSheetName
	}
	// Excel reserves "History" for change tracking
	if strings.EqualFold(name, "history") {
		return name + "_"
	}
	return name
}

// uniqueName suffixes name until it is unused; Excel compares titles
// case-insensitively.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+utf8.RuneCountInString(suffix) > maxSheetName {
			base = base[:maxSheetName-utf8.RuneCountInString(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
