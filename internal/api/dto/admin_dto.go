package dto

import "time"

// AdminLoginRequest payload.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse returns token data.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ReplyLogResponse is one reply audit entry.
type ReplyLogResponse struct {
	ID           string    `json:"id"`
	ReplyToken   string    `json:"reply_token"`
	MessageTypes []string  `json:"message_types"`
	MessageCount int       `json:"message_count"`
	Status       string    `json:"status"`
	Error        *string   `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
