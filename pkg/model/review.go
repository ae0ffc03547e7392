package model

import "time"

// Mutation is one moderation change sent for a response
type Mutation struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	ResponseID int64     `json:"response_id"`
	Field      string    `json:"field"` // flag, gallery, tags, message
	Value      string    `json:"value"`
	Outcome    string    `json:"outcome"` // sent, failed
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ModerationSession groups the mutations made during one run of the client
type ModerationSession struct {
	ID           string     `json:"id"`
	Assignment   int64      `json:"assignment"`
	Moderator    string     `json:"moderator"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	FlagChanges  int        `json:"flag_changes"`
	GalleryMoves int        `json:"gallery_moves"`
	TagEdits     int        `json:"tag_edits"`
	Messages     int        `json:"messages"`
	Failures     int        `json:"failures"`
}

// Mutation field constants
const (
	MutationFieldFlag    = "flag"
	MutationFieldGallery = "gallery"
	MutationFieldTags    = "tags"
	MutationFieldMessage = "message"
)

// Mutation outcome constants
const (
	MutationOutcomeSent   = "sent"
	MutationOutcomeFailed = "failed"
)

// IsValidMutationField checks if a mutation field is valid
func IsValidMutationField(field string) bool {
	switch field {
	case MutationFieldFlag, MutationFieldGallery, MutationFieldTags, MutationFieldMessage:
		return true
	}
	return false
}

// IsValidMutationOutcome checks if a mutation outcome is valid
func IsValidMutationOutcome(outcome string) bool {
	switch outcome {
	case MutationOutcomeSent, MutationOutcomeFailed:
		return true
	}
	return false
}
