package parse

import "strings"

// Markers is the locale data the classifier and parser match against.
type Markers struct {
	// System lists substrings that mark a header line as a platform event:
	// join, leave, invite, kick and media placeholders.
	System []string `toml:"system"`
	// JoinLeave is the subset recognised on bare lines without a header.
	JoinLeave []string `toml:"join_leave"`
	// Bot marks senders that are bots.
	Bot string `toml:"bot"`
	AM  string `toml:"am"`
	PM  string `toml:"pm"`
	// RoomTitle is the phrase ending the export title on the first line.
	RoomTitle string `toml:"room_title"`
}

// DefaultMarkers returns the Korean KakaoTalk marker set.
func DefaultMarkers() Markers {
	return Markers{
		System: []string{
			"들어왔습니다", // joined
			"나갔습니다",  // left
			"초대했습니다", // invited
			"내보냈습니다", // kicked
			"사진",
			"이모티콘",
			"파일",
			"동영상",
			"음성",
			"지도",
			"연락처",
			"페이스톡",
		},
		JoinLeave: []string{"들어왔습니다", "나갔습니다"},
		Bot:       "봇",
		AM:        "오전",
		PM:        "오후",
		RoomTitle: "님과 카카오톡 대화",
	}
}

// Merge fills empty fields of m from DefaultMarkers.
func (m Markers) Merge() Markers {
	def := DefaultMarkers()
	if len(m.System) == 0 {
		m.System = def.System
	}
	if len(m.JoinLeave) == 0 {
		m.JoinLeave = def.JoinLeave
	}
	if m.Bot == "" {
		m.Bot = def.Bot
	}
	if m.AM == "" {
		m.AM = def.AM
	}
	if m.PM == "" {
		m.PM = def.PM
	}
	if m.RoomTitle == "" {
		m.RoomTitle = def.RoomTitle
	}
	return m
}

// IsSystem reports whether a header line or its sender marks a platform event.
func (m Markers) IsSystem(line, sender string) bool {
	if containsAny(line, m.System) {
		return true
	}
	return m.Bot != "" && strings.Contains(sender, m.Bot)
}

// IsJoinLeave reports whether a bare line announces a join or leave.
func (m Markers) IsJoinLeave(line string) bool {
	return containsAny(line, m.JoinLeave)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
