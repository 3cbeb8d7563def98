package api

import "github.com/starford/wunjo/internal/kanban"

// LoginRequest is the request body for auth login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the request body for auth registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// FileCreateRequest is the request body for creating or updating a file.
type FileCreateRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// PathRequest carries a single vault-relative path.
type PathRequest struct {
	Path string `json:"path"`
}

// MoveRequest is the request body for moving a file or directory.
type MoveRequest struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// MarkdownRequest is the request body for render and preview.
type MarkdownRequest struct {
	Content string `json:"content"`
}

// KanbanItemRequest is the request body for adding or deleting a card.
type KanbanItemRequest struct {
	Lane      string `json:"lane"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Index     *int   `json:"index"`
}

// KanbanUpdateRequest is the request body for updating a card in place.
type KanbanUpdateRequest struct {
	Lane      string  `json:"lane"`
	Index     int     `json:"index"`
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// KanbanMoveRequest is the request body for moving a card between lanes.
type KanbanMoveRequest struct {
	SourceLane  string `json:"sourceLane"`
	TargetLane  string `json:"targetLane"`
	SourceIndex int    `json:"sourceIndex"`
	TargetIndex int    `json:"targetIndex"`
}

// BoardResponse wraps a kanban board mutation result.
type BoardResponse struct {
	Message string        `json:"message,omitempty"`
	Board   *kanban.Board `json:"board"`
}

// DataviewRequest is the request body for dataview queries.
type DataviewRequest struct {
	Query  string `json:"query"`
	Folder string `json:"folder"`
}

// SearchRequest is the request body for the search endpoints.
type SearchRequest struct {
	Query         string   `json:"query"`
	Folder        string   `json:"folder"`
	Extensions    []string `json:"extensions"`
	CaseSensitive bool     `json:"caseSensitive"`
	Limit         int      `json:"limit"`
}
