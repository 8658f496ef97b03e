package chat

const DefaultPreviewLimit = 200

type PreviewStats struct {
	TotalMessages int `json:"totalMessages"`
	PreviewCount  int `json:"previewCount"`
}

// Preview is the truncated view handed back before a full export.
type Preview struct {
	RoomName     string       `json:"roomName"`
	Participants []string     `json:"participants"`
	Messages     []Message    `json:"messages"`
	Stats        PreviewStats `json:"stats"`
}

// NewPreview keeps the first limit messages of res. A non-positive limit
// falls back to DefaultPreviewLimit.
func NewPreview(res *ParseResult, limit int) Preview {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	msgs := res.Messages
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return Preview{
		RoomName:     res.RoomName,
		Participants: res.Participants,
		Messages:     msgs,
		Stats: PreviewStats{
			TotalMessages: len(res.Messages),
			PreviewCount:  len(msgs),
		},
	}
}
