package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/fittrack/internal/services"
)

type AuthHandler struct {
	authService services.AuthServiceInterface
}

func NewAuthHandler(authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// maxPasswordBytes is bcrypt's input limit. The validator's max counts runes, so
// Register checks the byte length itself.
const maxPasswordBytes = 72

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Envelope
	Token  string    `json:"token,omitempty"`
	UserID uuid.UUID `json:"userId"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if len(req.Password) > maxPasswordBytes {
		writeError(w, http.StatusBadRequest, KindValidation, "password must be at most 72 bytes")
		return
	}

	result, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if errors.Is(err, services.ErrEmailAlreadyExists) {
		writeError(w, http.StatusBadRequest, KindDuplicateEmail, "Email already registered")
		return
	}
	if errors.Is(err, services.ErrPasswordTooLong) {
		writeError(w, http.StatusBadRequest, KindValidation, "password must be at most 72 bytes")
		return
	}
	if err != nil {
		writeServerError(w, r, "Registration error", err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Envelope: ok("User registered successfully"),
		Token:    result.Token,
		UserID:   result.UserID,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, KindInvalidCredentials, "Invalid credentials")
		return
	}
	if err != nil {
		writeServerError(w, r, "Login error", err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Envelope: ok("Login successful"),
		Token:    result.Token,
		UserID:   result.UserID,
	})
}
