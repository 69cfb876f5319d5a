package domain

import "time"

// ReplyStatus records the outcome of a reply attempt.
type ReplyStatus string

const (
	ReplyStatusSent   ReplyStatus = "SENT"
	ReplyStatusFailed ReplyStatus = "FAILED"
)

// ReplyLog is an audit entry for one reply request.
type ReplyLog struct {
	ID           string
	ReplyToken   string
	MessageTypes []string
	MessageCount int
	Status       ReplyStatus
	Error        *string
	CreatedAt    time.Time
}
