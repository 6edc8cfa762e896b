package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	pollerrors "agora/contexts/community-experience/poll-service/domain/errors"
	pollhttp "agora/contexts/community-experience/poll-service/transport/http"
)

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	userID := requireUserID(r)
	if userID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req pollhttp.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.polls.Handler.CreatePollHandler(r.Context(), req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r)
	if !ok {
		writePollError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return
	}

	query := r.URL.Query()
	resp, err := s.polls.Handler.ListPollsHandler(
		r.Context(),
		query.Get("branch"),
		query.Get("year"),
		limit,
	)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.GetPollHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePollState(w http.ResponseWriter, r *http.Request) {
	status, err := s.polls.Handler.Service.PollState(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"poll_id":   status.PollID,
		"open":      status.Open,
		"closes_at": status.ClosesAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePollResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.GetResultsHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRecordVote serves both the path-scoped route and the legacy body-only
// route; the path value wins when both are present.
func (s *Server) handleRecordVote(w http.ResponseWriter, r *http.Request) {
	userID := requireUserID(r)
	if userID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req pollhttp.RecordVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	pollID := strings.TrimSpace(r.PathValue("poll_id"))
	if pollID == "" {
		pollID = strings.TrimSpace(req.PollID)
	}

	resp, err := s.polls.Handler.RecordVoteHandler(r.Context(), userID, pollID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writePollDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pollerrors.ErrInvalidPollInput):
		writePollError(w, http.StatusBadRequest, "invalid_poll_input", err.Error())
	case errors.Is(err, pollerrors.ErrInvalidVoteInput):
		writePollError(w, http.StatusBadRequest, "invalid_vote_input", err.Error())
	case errors.Is(err, pollerrors.ErrInvalidOption):
		writePollError(w, http.StatusUnprocessableEntity, "invalid_option", err.Error())
	case errors.Is(err, pollerrors.ErrPollNotFound):
		writePollError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrPollClosed):
		writePollError(w, http.StatusConflict, "poll_closed", err.Error())
	case errors.Is(err, pollerrors.ErrAlreadyVoted):
		writePollError(w, http.StatusConflict, "already_voted", err.Error())
	default:
		writePollError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePollError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pollhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
