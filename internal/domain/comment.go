package domain

import "time"

// Comment is an entry in a ticket's discussion feed. Internal comments
// are hidden from requesters.
type Comment struct {
	ID          string
	TicketID    string
	AuthorID    string
	Body        string
	IsInternal  bool
	Attachments []Attachment
	CreatedAt   time.Time
}

// Attachment stores metadata for an uploaded file on a comment.
type Attachment struct {
	ID         string
	CommentID  string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
