package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PostConfessionRequest struct {
	Content string `json:"content"`
}

type ConfessionResponse struct {
	ConfessionID string `json:"confession_id"`
	Content      string `json:"content"`
	CreatedAt    string `json:"created_at"`
}

type ListConfessionsResponse struct {
	Items []ConfessionResponse `json:"items"`
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Branch  string `json:"branch,omitempty"`
	Year    string `json:"year,omitempty"`
	FileURL string `json:"file_url,omitempty"`
}

type RateNoteRequest struct {
	Upvote bool `json:"upvote"`
}

type NoteResponse struct {
	NoteID    string `json:"note_id"`
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	Branch    string `json:"branch,omitempty"`
	Year      string `json:"year,omitempty"`
	FileURL   string `json:"file_url,omitempty"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ListNotesResponse struct {
	Items []NoteResponse `json:"items"`
}
