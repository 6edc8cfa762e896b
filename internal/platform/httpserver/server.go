package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	directmessage "agora/contexts/community-experience/direct-message-service"
	feedservice "agora/contexts/community-experience/feed-service"
	pollservice "agora/contexts/community-experience/poll-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "agora/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	dm     directmessage.Module
	polls  pollservice.Module
	feed   feedservice.Module
}

func New(
	dm directmessage.Module,
	polls pollservice.Module,
	feed feedservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		dm:     dm,
		polls:  polls,
		feed:   feed,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for httptest-based route tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/v1/conversations", s.handleResolveConversation)
	s.mux.HandleFunc("GET /api/v1/conversations", s.handleListConversations)
	s.mux.HandleFunc("POST /api/v1/conversations/{conversation_id}/messages", s.handleAppendMessage)
	s.mux.HandleFunc("GET /api/v1/conversations/{conversation_id}/messages", s.handleListMessages)

	s.mux.HandleFunc("POST /api/v1/polls", s.handleCreatePoll)
	s.mux.HandleFunc("GET /api/v1/polls", s.handleListPolls)
	s.mux.HandleFunc("GET /api/v1/polls/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("GET /api/v1/polls/{poll_id}/state", s.handlePollState)
	s.mux.HandleFunc("GET /api/v1/polls/{poll_id}/results", s.handlePollResults)
	s.mux.HandleFunc("POST /api/v1/polls/{poll_id}/vote", s.handleRecordVote)
	s.mux.HandleFunc("POST /api/v1/vote", s.handleRecordVote)

	s.mux.HandleFunc("POST /api/v1/confessions", s.handlePostConfession)
	s.mux.HandleFunc("GET /api/v1/confessions", s.handleListConfessions)
	s.mux.HandleFunc("POST /api/v1/notes", s.handleCreateNote)
	s.mux.HandleFunc("GET /api/v1/notes", s.handleListNotes)
	s.mux.HandleFunc("POST /api/v1/notes/{note_id}/rate", s.handleRateNote)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func requireUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

func queryLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return limit, true
}
