package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"agora/contexts/community-experience/feed-service/application"
	"agora/contexts/community-experience/feed-service/domain/entities"
	"agora/contexts/community-experience/feed-service/ports"
	httptransport "agora/contexts/community-experience/feed-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) PostConfessionHandler(
	ctx context.Context,
	userID string,
	req httptransport.PostConfessionRequest,
) (httptransport.ConfessionResponse, error) {
	confession, err := h.Service.PostConfession(ctx, ports.PostConfessionInput{
		AuthorID: userID,
		Content:  req.Content,
	})
	if err != nil {
		return httptransport.ConfessionResponse{}, err
	}
	return toConfessionDTO(confession), nil
}

func (h Handler) ListConfessionsHandler(ctx context.Context, limit int) (httptransport.ListConfessionsResponse, error) {
	confessions, err := h.Service.ListConfessions(ctx, ports.ListConfessionsInput{Limit: limit})
	if err != nil {
		return httptransport.ListConfessionsResponse{}, err
	}
	items := make([]httptransport.ConfessionResponse, 0, len(confessions))
	for _, confession := range confessions {
		items = append(items, toConfessionDTO(confession))
	}
	return httptransport.ListConfessionsResponse{Items: items}, nil
}

func (h Handler) CreateNoteHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateNoteRequest,
) (httptransport.NoteResponse, error) {
	note, err := h.Service.CreateNote(ctx, ports.CreateNoteInput{
		OwnerID: userID,
		Title:   req.Title,
		Subject: req.Subject,
		Branch:  req.Branch,
		Year:    req.Year,
		FileURL: req.FileURL,
	})
	if err != nil {
		return httptransport.NoteResponse{}, err
	}
	return toNoteDTO(note), nil
}

func (h Handler) ListNotesHandler(ctx context.Context, input ports.ListNotesInput) (httptransport.ListNotesResponse, error) {
	notes, err := h.Service.ListNotes(ctx, input)
	if err != nil {
		return httptransport.ListNotesResponse{}, err
	}
	items := make([]httptransport.NoteResponse, 0, len(notes))
	for _, note := range notes {
		items = append(items, toNoteDTO(note))
	}
	return httptransport.ListNotesResponse{Items: items}, nil
}

func (h Handler) RateNoteHandler(
	ctx context.Context,
	noteID string,
	req httptransport.RateNoteRequest,
) (httptransport.NoteResponse, error) {
	note, err := h.Service.RateNote(ctx, ports.RateNoteInput{
		NoteID: noteID,
		Upvote: req.Upvote,
	})
	if err != nil {
		return httptransport.NoteResponse{}, err
	}
	return toNoteDTO(note), nil
}

// Confession author is intentionally absent from the DTO; the feed is
// anonymous to readers.
func toConfessionDTO(confession entities.Confession) httptransport.ConfessionResponse {
	return httptransport.ConfessionResponse{
		ConfessionID: confession.ConfessionID,
		Content:      confession.Content,
		CreatedAt:    confession.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toNoteDTO(note entities.Note) httptransport.NoteResponse {
	return httptransport.NoteResponse{
		NoteID:    note.NoteID,
		Title:     note.Title,
		Subject:   note.Subject,
		Branch:    note.Branch,
		Year:      note.Year,
		FileURL:   note.FileURL,
		Upvotes:   note.Upvotes,
		Downvotes: note.Downvotes,
		CreatedAt: note.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: note.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
