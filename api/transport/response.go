package transport

import (
	"encoding/json"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// SessionView is the client-facing part of a session.
type SessionView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User    *domain.User `json:"user"`
	Session SessionView  `json:"session"`
}

func NewAuthResponse(user *domain.User, s *domain.Session) AuthResponse {
	return AuthResponse{
		User:    user,
		Session: SessionView{Token: s.Token, ExpiresAt: s.ExpiresAt},
	}
}

type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
}

type CategoryStatsResponse struct {
	UserID     string                `json:"user_id"`
	Status     string                `json:"status"`
	Window     domain.TimeWindow     `json:"window"`
	Categories domain.CategoryCounts `json:"categories"`
}
