package transfer

type CaptionRequest struct {
	Topic     string   `json:"topic"`
	Tone      string   `json:"tone"`
	Purpose   string   `json:"purpose"`
	Platforms []string `json:"platforms"`
}

// GeneratedCaption is transient output; it is never persisted and is either
// discarded or copied into a post's platform captions on user action.
type GeneratedCaption struct {
	Platform        string   `json:"platform"`
	Caption         string   `json:"caption"`
	Hashtags        []string `json:"hashtags"`
	SuggestedEmojis []string `json:"suggestedEmojis,omitempty"`
}

type CaptionResponse struct {
	Captions []GeneratedCaption `json:"captions"`
}
