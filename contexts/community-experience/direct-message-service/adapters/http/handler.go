package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"agora/contexts/community-experience/direct-message-service/application"
	"agora/contexts/community-experience/direct-message-service/domain/entities"
	"agora/contexts/community-experience/direct-message-service/ports"
	httptransport "agora/contexts/community-experience/direct-message-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ResolveConversationHandler(
	ctx context.Context,
	userID string,
	req httptransport.ResolveConversationRequest,
) (httptransport.ConversationResponse, error) {
	conversation, err := h.Service.Resolve(ctx, ports.ResolveConversationInput{
		ParticipantA: userID,
		ParticipantB: req.ParticipantID,
	})
	if err != nil {
		return httptransport.ConversationResponse{}, err
	}
	return toConversationDTO(conversation), nil
}

func (h Handler) AppendMessageHandler(
	ctx context.Context,
	userID string,
	conversationID string,
	req httptransport.AppendMessageRequest,
) (httptransport.MessageResponse, error) {
	message, err := h.Service.Append(ctx, ports.AppendMessageInput{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        req.Content,
	})
	if err != nil {
		return httptransport.MessageResponse{}, err
	}
	return toMessageDTO(message), nil
}

func (h Handler) ListConversationsHandler(ctx context.Context, userID string) (httptransport.ListConversationsResponse, error) {
	summaries, err := h.Service.ListConversations(ctx, userID)
	if err != nil {
		return httptransport.ListConversationsResponse{}, err
	}
	items := make([]httptransport.ConversationSummaryItem, 0, len(summaries))
	for _, summary := range summaries {
		item := httptransport.ConversationSummaryItem{
			ConversationID: summary.Conversation.ConversationID,
			Participants: []string{
				summary.Conversation.ParticipantLowID,
				summary.Conversation.ParticipantHighID,
			},
			LastMessageAt: summary.LastMessageAt.UTC().Format(time.RFC3339),
			LastContent:   summary.LastContent,
		}
		items = append(items, item)
	}
	return httptransport.ListConversationsResponse{Items: items}, nil
}

func (h Handler) ListMessagesHandler(
	ctx context.Context,
	conversationID string,
	limit int,
) (httptransport.ListMessagesResponse, error) {
	messages, err := h.Service.ListMessages(ctx, ports.ListMessagesInput{
		ConversationID: conversationID,
		Limit:          limit,
	})
	if err != nil {
		return httptransport.ListMessagesResponse{}, err
	}
	items := make([]httptransport.MessageResponse, 0, len(messages))
	for _, message := range messages {
		items = append(items, toMessageDTO(message))
	}
	return httptransport.ListMessagesResponse{
		ConversationID: conversationID,
		Items:          items,
	}, nil
}

func toConversationDTO(conversation entities.Conversation) httptransport.ConversationResponse {
	return httptransport.ConversationResponse{
		ConversationID: conversation.ConversationID,
		Participants:   []string{conversation.ParticipantLowID, conversation.ParticipantHighID},
		CreatedAt:      conversation.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toMessageDTO(message entities.Message) httptransport.MessageResponse {
	return httptransport.MessageResponse{
		MessageID:      message.MessageID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		ReceiverID:     message.ReceiverID,
		Content:        message.Content,
		CreatedAt:      message.CreatedAt.UTC().Format(time.RFC3339),
	}
}
