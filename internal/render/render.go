package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/xowls0315/kakaotalk-excel/internal/chat"
	"github.com/xowls0315/kakaotalk-excel/internal/jobs"
)

var (
	colorPrimary = lipgloss.Color("12")  // bright blue
	colorDim     = lipgloss.Color("240") // gray
	colorSystem  = lipgloss.Color("13")  // magenta

	styleTitle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleSender = lipgloss.NewStyle().Bold(true)
	styleSystem = lipgloss.NewStyle().Foreground(colorSystem).Italic(true)
)

type Options struct {
	Width int  // wrap width (0 = no wrap)
	Color bool // style with lipgloss
}

func (o Options) paint(s lipgloss.Style, text string) string {
	if !o.Color {
		return text
	}
	return s.Render(text)
}

// Preview renders a preview for the terminal.
func Preview(p chat.Preview, opts Options) string {
	var b strings.Builder
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
		}
	}

	writeLine(opts.paint(styleTitle, p.RoomName))
	if len(p.Participants) > 0 {
		writeLine(opts.paint(styleDim, "참여자: "+strings.Join(p.Participants, ", ")))
	}
	writeLine(opts.paint(styleDim, fmt.Sprintf("%d/%d messages", p.Stats.PreviewCount, p.Stats.TotalMessages)))

	if len(p.Messages) == 0 {
		writeLine("")
		writeLine(opts.paint(styleDim, "(no messages)"))
		return b.String()
	}

	for _, m := range p.Messages {
		writeLine("")
		ts := opts.paint(styleDim, m.Timestamp.Format("2006-01-02 15:04"))
		if m.Class == chat.ClassSystem {
			writeLine(ts + " " + opts.paint(styleSystem, m.Sender))
		} else {
			writeLine(ts + " " + opts.paint(styleSender, m.Sender))
		}
		for _, tl := range strings.Split(indentLines(m.Body, "  "), "\n") {
			writeLine(tl)
		}
	}

	if rest := p.Stats.TotalMessages - p.Stats.PreviewCount; rest > 0 {
		writeLine("")
		writeLine(opts.paint(styleDim, fmt.Sprintf("... (%d more messages) ...", rest)))
	}
	return b.String()
}

// TSV writes one message per line: timestamp, sender, type, body. Tabs and
// newlines inside fields are flattened.
func TSV(w io.Writer, msgs []chat.Message) error {
	for _, m := range msgs {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			m.Timestamp.Format(chat.TimestampLayout),
			flatten(m.Sender),
			m.Class,
			flatten(m.Body),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// JobTable writes jobs as aligned columns. Room names are measured in
// display cells so Hangul lines up.
func JobTable(w io.Writer, list []jobs.Job) error {
	const (
		roomWidth = 24
		fileWidth = 28
	)
	header := fmt.Sprintf("%-8s  %-10s  %-16s  %s  %s  %8s",
		"ID", "STATUS", "CREATED",
		runewidth.FillRight("ROOM", roomWidth),
		runewidth.FillRight("FILE", fileWidth),
		"MESSAGES")
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, j := range list {
		_, err := fmt.Fprintf(w, "%-8s  %-10s  %-16s  %s  %s  %8d\n",
			shortID(j.ID),
			j.Status,
			j.CreatedAt.Local().Format("2006-01-02 15:04"),
			cell(j.RoomName, roomWidth),
			cell(j.FileName, fileWidth),
			j.TotalMessages,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func cell(s string, width int) string {
	if s == "" {
		s = "-"
	}
	return runewidth.FillRight(runewidth.Truncate(flatten(s), width, "..."), width)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// indentLines shifts a multi-line message body right by prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine splits line into terminal rows of at most maxWidth cells. Hangul
// counts as two cells; lipgloss colour codes count as none.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// SGR sequence, zero width
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth && visW > 0 {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}
	if len(result) == 0 {
		return []string{""}
	}
	return result
}
