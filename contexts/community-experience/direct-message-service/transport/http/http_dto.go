package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ResolveConversationRequest struct {
	ParticipantID string `json:"participant_id"`
}

type ConversationResponse struct {
	ConversationID string   `json:"conversation_id"`
	Participants   []string `json:"participants"`
	CreatedAt      string   `json:"created_at"`
}

type AppendMessageRequest struct {
	Content string `json:"content"`
}

type MessageResponse struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	ReceiverID     string `json:"receiver_id"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

type ConversationSummaryItem struct {
	ConversationID string   `json:"conversation_id"`
	Participants   []string `json:"participants"`
	LastMessageAt  string   `json:"last_message_at"`
	LastContent    string   `json:"last_content,omitempty"`
}

type ListConversationsResponse struct {
	Items []ConversationSummaryItem `json:"items"`
}

type ListMessagesResponse struct {
	ConversationID string            `json:"conversation_id"`
	Items          []MessageResponse `json:"items"`
}
