package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	dmerrors "agora/contexts/community-experience/direct-message-service/domain/errors"
	dmhttp "agora/contexts/community-experience/direct-message-service/transport/http"
)

func (s *Server) handleResolveConversation(w http.ResponseWriter, r *http.Request) {
	userID := requireUserID(r)
	if userID == "" {
		writeDMError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req dmhttp.ResolveConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDMError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.dm.Handler.ResolveConversationHandler(r.Context(), userID, req)
	if err != nil {
		writeDMDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := requireUserID(r)
	if userID == "" {
		writeDMError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.dm.Handler.ListConversationsHandler(r.Context(), userID)
	if err != nil {
		writeDMDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	userID := requireUserID(r)
	if userID == "" {
		writeDMError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req dmhttp.AppendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDMError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	conversationID := r.PathValue("conversation_id")
	resp, err := s.dm.Handler.AppendMessageHandler(r.Context(), userID, conversationID, req)
	if err != nil {
		writeDMDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r)
	if !ok {
		writeDMError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return
	}

	conversationID := r.PathValue("conversation_id")
	resp, err := s.dm.Handler.ListMessagesHandler(r.Context(), conversationID, limit)
	if err != nil {
		writeDMDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDMDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dmerrors.ErrInvalidParticipants):
		writeDMError(w, http.StatusBadRequest, "invalid_participants", err.Error())
	case errors.Is(err, dmerrors.ErrInvalidRequest):
		writeDMError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, dmerrors.ErrEmptyContent):
		writeDMError(w, http.StatusBadRequest, "empty_content", err.Error())
	case errors.Is(err, dmerrors.ErrConversationNotFound):
		writeDMError(w, http.StatusNotFound, "conversation_not_found", err.Error())
	case errors.Is(err, dmerrors.ErrMessageNotFound):
		writeDMError(w, http.StatusNotFound, "message_not_found", err.Error())
	case errors.Is(err, dmerrors.ErrNotAParticipant):
		writeDMError(w, http.StatusForbidden, "not_a_participant", err.Error())
	default:
		writeDMError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeDMError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, dmhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
