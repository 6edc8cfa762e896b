package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	feederrors "agora/contexts/community-experience/feed-service/domain/errors"
	feedports "agora/contexts/community-experience/feed-service/ports"
	feedhttp "agora/contexts/community-experience/feed-service/transport/http"
)

func (s *Server) handlePostConfession(w http.ResponseWriter, r *http.Request) {
	userID := requireUserID(r)
	if userID == "" {
		writeFeedError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req feedhttp.PostConfessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFeedError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.feed.Handler.PostConfessionHandler(r.Context(), userID, req)
	if err != nil {
		writeFeedDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListConfessions(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r)
	if !ok {
		writeFeedError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return
	}

	resp, err := s.feed.Handler.ListConfessionsHandler(r.Context(), limit)
	if err != nil {
		writeFeedDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	userID := requireUserID(r)
	if userID == "" {
		writeFeedError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req feedhttp.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFeedError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.feed.Handler.CreateNoteHandler(r.Context(), userID, req)
	if err != nil {
		writeFeedDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r)
	if !ok {
		writeFeedError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return
	}

	query := r.URL.Query()
	resp, err := s.feed.Handler.ListNotesHandler(r.Context(), feedports.ListNotesInput{
		Branch:     query.Get("branch"),
		Year:       query.Get("year"),
		Subject:    query.Get("subject"),
		TitleQuery: query.Get("q"),
		Limit:      limit,
	})
	if err != nil {
		writeFeedDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRateNote(w http.ResponseWriter, r *http.Request) {
	userID := requireUserID(r)
	if userID == "" {
		writeFeedError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req feedhttp.RateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFeedError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.feed.Handler.RateNoteHandler(r.Context(), r.PathValue("note_id"), req)
	if err != nil {
		writeFeedDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeFeedDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feederrors.ErrInvalidRequest):
		writeFeedError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, feederrors.ErrEmptyContent):
		writeFeedError(w, http.StatusBadRequest, "empty_content", err.Error())
	case errors.Is(err, feederrors.ErrInvalidNoteInput):
		writeFeedError(w, http.StatusBadRequest, "invalid_note_input", err.Error())
	case errors.Is(err, feederrors.ErrNoteNotFound):
		writeFeedError(w, http.StatusNotFound, "note_not_found", err.Error())
	default:
		writeFeedError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeFeedError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, feedhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
