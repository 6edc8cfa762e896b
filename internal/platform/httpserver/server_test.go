package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	directmessage "agora/contexts/community-experience/direct-message-service"
	feedservice "agora/contexts/community-experience/feed-service"
	pollservice "agora/contexts/community-experience/poll-service"
	pollentities "agora/contexts/community-experience/poll-service/domain/entities"
)

func newTestServer(seedPolls []pollentities.Poll) *Server {
	return New(
		directmessage.NewInMemoryModule(nil, nil),
		pollservice.NewInMemoryModule(seedPolls, nil),
		feedservice.NewInMemoryModule(nil, nil),
		nil,
		":0",
	)
}

func doRequest(t *testing.T, server *Server, method string, path string, userID string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response failed: %v (%s)", err, rec.Body.String())
	}
	return payload
}

func TestResolveConversationRequiresUser(t *testing.T) {
	server := newTestServer(nil)
	rec := doRequest(t, server, http.MethodPost, "/api/v1/conversations", "", `{"participant_id":"user_b"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["code"] != "missing_user" {
		t.Fatalf("expected missing_user code, got %v", payload["code"])
	}
}

func TestResolveAndAppendOverHTTP(t *testing.T) {
	server := newTestServer(nil)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/conversations", "user_a", `{"participant_id":"user_b"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	conversationID, _ := decodeBody(t, rec)["conversation_id"].(string)
	if conversationID == "" {
		t.Fatal("expected conversation id in response")
	}

	// The reversed pair resolves to the same conversation.
	rec = doRequest(t, server, http.MethodPost, "/api/v1/conversations", "user_b", `{"participant_id":"user_a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got, _ := decodeBody(t, rec)["conversation_id"].(string); got != conversationID {
		t.Fatalf("expected same conversation id, got %s and %s", conversationID, got)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/v1/conversations/"+conversationID+"/messages", "user_a", `{"content":"hello"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got, _ := decodeBody(t, rec)["receiver_id"].(string); got != "user_b" {
		t.Fatalf("expected receiver user_b, got %s", got)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/v1/conversations/"+conversationID+"/messages", "user_c", `{"content":"hi"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-participant, got %d", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["code"] != "not_a_participant" {
		t.Fatalf("expected not_a_participant code, got %v", payload["code"])
	}
}

func TestVoteConflictCodesAreDistinguishable(t *testing.T) {
	now := time.Now().UTC()
	server := newTestServer([]pollentities.Poll{
		{
			PollID:    "poll_open",
			Title:     "Open poll",
			Options:   []string{"a", "b"},
			ClosesAt:  now.Add(time.Hour),
			CreatedAt: now,
		},
		{
			PollID:    "poll_closed",
			Title:     "Closed poll",
			Options:   []string{"a", "b"},
			ClosesAt:  now.Add(-time.Hour),
			CreatedAt: now.Add(-2 * time.Hour),
		},
	})

	rec := doRequest(t, server, http.MethodPost, "/api/v1/polls/poll_open/vote", "user_1", `{"option":"a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, server, http.MethodPost, "/api/v1/polls/poll_open/vote", "user_1", `{"option":"b"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["code"] != "already_voted" {
		t.Fatalf("expected already_voted code, got %v", payload["code"])
	}

	rec = doRequest(t, server, http.MethodPost, "/api/v1/polls/poll_closed/vote", "user_2", `{"option":"a"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["code"] != "poll_closed" {
		t.Fatalf("expected poll_closed code, got %v", payload["code"])
	}

	rec = doRequest(t, server, http.MethodPost, "/api/v1/polls/poll_open/vote", "user_2", `{"option":"zzz"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/v1/polls/poll_missing/vote", "user_2", `{"option":"a"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLegacyVoteRouteReadsPollIDFromBody(t *testing.T) {
	now := time.Now().UTC()
	server := newTestServer([]pollentities.Poll{{
		PollID:    "poll_open",
		Title:     "Open poll",
		Options:   []string{"a", "b"},
		ClosesAt:  now.Add(time.Hour),
		CreatedAt: now,
	}})

	rec := doRequest(t, server, http.MethodPost, "/api/v1/vote", "user_1", `{"poll_id":"poll_open","option":"a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	if accepted, _ := payload["accepted"].(bool); !accepted {
		t.Fatalf("expected accepted vote, got %v", payload)
	}
}

func TestConfessionRoutes(t *testing.T) {
	server := newTestServer(nil)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/confessions", "user_1", `{"content":"late night chai is underrated"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	if _, hasAuthor := payload["author_id"]; hasAuthor {
		t.Fatal("confession response must not expose the author")
	}

	rec = doRequest(t, server, http.MethodGet, "/api/v1/confessions?limit=4", "user_1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodGet, "/api/v1/confessions?limit=zzz", "user_1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}
