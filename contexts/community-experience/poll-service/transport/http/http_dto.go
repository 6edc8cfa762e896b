package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePollRequest struct {
	Title    string   `json:"title"`
	Options  []string `json:"options"`
	Branch   string   `json:"branch,omitempty"`
	Year     string   `json:"year,omitempty"`
	ClosesAt string   `json:"closes_at"`
}

type PollResponse struct {
	PollID    string   `json:"poll_id"`
	Title     string   `json:"title"`
	Options   []string `json:"options"`
	Branch    string   `json:"branch,omitempty"`
	Year      string   `json:"year,omitempty"`
	Open      bool     `json:"open"`
	ClosesAt  string   `json:"closes_at"`
	CreatedAt string   `json:"created_at"`
}

// PollID is optional when the route already carries the poll id in its path.
type RecordVoteRequest struct {
	PollID string `json:"poll_id,omitempty"`
	Option string `json:"option"`
}

type OptionResult struct {
	Option     string `json:"option"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type TallyResponse struct {
	PollID     string         `json:"poll_id"`
	TotalVotes int            `json:"total_votes"`
	Results    []OptionResult `json:"results"`
}

type RecordVoteResponse struct {
	Accepted bool          `json:"accepted"`
	VoteID   string        `json:"vote_id"`
	Option   string        `json:"option"`
	Tally    TallyResponse `json:"tally"`
}

type PollWithTallyItem struct {
	Poll  PollResponse  `json:"poll"`
	Tally TallyResponse `json:"tally"`
}

type ListPollsResponse struct {
	Items []PollWithTallyItem `json:"items"`
}
