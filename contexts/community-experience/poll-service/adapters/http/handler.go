package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"agora/contexts/community-experience/poll-service/application"
	"agora/contexts/community-experience/poll-service/domain/entities"
	domainerrors "agora/contexts/community-experience/poll-service/domain/errors"
	"agora/contexts/community-experience/poll-service/ports"
	httptransport "agora/contexts/community-experience/poll-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreatePollHandler(ctx context.Context, req httptransport.CreatePollRequest) (httptransport.PollResponse, error) {
	closesAt, err := time.Parse(time.RFC3339, req.ClosesAt)
	if err != nil {
		return httptransport.PollResponse{}, domainerrors.ErrInvalidPollInput
	}
	poll, err := h.Service.CreatePoll(ctx, ports.CreatePollInput{
		Title:    req.Title,
		Options:  req.Options,
		Branch:   req.Branch,
		Year:     req.Year,
		ClosesAt: closesAt,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return toPollDTO(poll, true), nil
}

func (h Handler) GetPollHandler(ctx context.Context, pollID string) (httptransport.PollWithTallyItem, error) {
	result, err := h.Service.Results(ctx, pollID)
	if err != nil {
		return httptransport.PollWithTallyItem{}, err
	}
	return toPollWithTallyDTO(result), nil
}

func (h Handler) RecordVoteHandler(
	ctx context.Context,
	userID string,
	pollID string,
	req httptransport.RecordVoteRequest,
) (httptransport.RecordVoteResponse, error) {
	result, err := h.Service.RecordVote(ctx, ports.RecordVoteInput{
		PollID: pollID,
		UserID: userID,
		Option: req.Option,
	})
	if err != nil {
		return httptransport.RecordVoteResponse{}, err
	}
	poll, err := h.Service.Results(ctx, pollID)
	if err != nil {
		return httptransport.RecordVoteResponse{}, err
	}
	return httptransport.RecordVoteResponse{
		Accepted: result.Accepted,
		VoteID:   result.Vote.VoteID,
		Option:   result.Vote.Option,
		Tally:    toTallyDTO(poll.Poll, result.Tally),
	}, nil
}

func (h Handler) GetResultsHandler(ctx context.Context, pollID string) (httptransport.TallyResponse, error) {
	result, err := h.Service.Results(ctx, pollID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return toTallyDTO(result.Poll, result.Tally), nil
}

func (h Handler) ListPollsHandler(
	ctx context.Context,
	branch string,
	year string,
	limit int,
) (httptransport.ListPollsResponse, error) {
	results, err := h.Service.ListPolls(ctx, ports.ListPollsInput{
		Branch: branch,
		Year:   year,
		Limit:  limit,
	})
	if err != nil {
		return httptransport.ListPollsResponse{}, err
	}
	items := make([]httptransport.PollWithTallyItem, 0, len(results))
	for _, result := range results {
		items = append(items, toPollWithTallyDTO(result))
	}
	return httptransport.ListPollsResponse{Items: items}, nil
}

func toPollWithTallyDTO(result application.PollWithTally) httptransport.PollWithTallyItem {
	return httptransport.PollWithTallyItem{
		Poll:  toPollDTO(result.Poll, result.Open),
		Tally: toTallyDTO(result.Poll, result.Tally),
	}
}

func toPollDTO(poll entities.Poll, open bool) httptransport.PollResponse {
	return httptransport.PollResponse{
		PollID:    poll.PollID,
		Title:     poll.Title,
		Options:   poll.Options,
		Branch:    poll.Branch,
		Year:      poll.Year,
		Open:      open,
		ClosesAt:  poll.ClosesAt.UTC().Format(time.RFC3339),
		CreatedAt: poll.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toTallyDTO reports results in the poll's declared option order so clients
// render a stable layout regardless of vote arrival order.
func toTallyDTO(poll entities.Poll, tally entities.Tally) httptransport.TallyResponse {
	results := make([]httptransport.OptionResult, 0, len(poll.Options))
	for _, option := range poll.Options {
		results = append(results, httptransport.OptionResult{
			Option:     option,
			Count:      tally[option],
			Percentage: tally.Percentage(option),
		})
	}
	return httptransport.TallyResponse{
		PollID:     poll.PollID,
		TotalVotes: tally.Total(),
		Results:    results,
	}
}
