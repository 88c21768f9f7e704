package transfer

type BusinessContext struct {
	Company  string `json:"company,omitempty"`
	Industry string `json:"industry,omitempty"`
}

type AssistantRequest struct {
	Message        string           `json:"message"`
	ConversationID int64            `json:"conversationId"`
	Context        *BusinessContext `json:"context,omitempty"`
}

// AssistantResponse keeps the Response field populated even when Error is set,
// so a misconfigured backend still yields usable fallback text for the user.
type AssistantResponse struct {
	ConversationID int64  `json:"conversationId"`
	Response       string `json:"response"`
	Error          string `json:"error,omitempty"`
}
