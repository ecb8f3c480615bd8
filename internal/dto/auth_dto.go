package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LoginRequest is checked in the service so that a missing field produces the
// same message as a blank one.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

type LoginResponse struct {
	User      UsuarioResponse `json:"user"`
	CSRFToken string          `json:"csrf_token"`
	Message   string          `json:"message"`
}

// LoginResult is what the service hands to the handler: the public body plus
// the signed session token that goes into the cookie.
type LoginResult struct {
	Response     LoginResponse
	SessionToken string
	ExpiresIn    time.Duration
}

type MeResponse struct {
	User      UsuarioResponse `json:"user"`
	CSRFToken string          `json:"csrf_token"`
}

type CSRFResponse struct {
	CSRFToken string `json:"csrf_token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
