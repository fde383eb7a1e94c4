package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/HammerMeetNail/fittrack/internal/logging"
)

// Error kinds carried in Envelope.Error on failed responses.
const (
	KindValidation         = "validation_error"
	KindUnauthorized       = "unauthorized"
	KindInvalidToken       = "invalid_token"
	KindDuplicateEmail     = "duplicate_email"
	KindInvalidCredentials = "invalid_credentials"
	KindNotFound           = "not_found"
	KindMethodNotAllowed   = "method_not_allowed"
	KindUserNotFound       = "user_not_found"
	KindSelfFriendship     = "self_friendship"
	KindAlreadyExists      = "already_exists"
	KindRateLimited        = "rate_limited"
	KindServerError        = "server_error"
)

const maxBodyBytes = 1 << 20

// Envelope is embedded in every response body. Clients branch on Success; Error
// names the failure kind when Success is false.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// absent describes an expected empty result, answered with 200 and success=false.
func absent(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error("Error encoding response", map[string]interface{}{"error": err.Error()})
	}
}

// WriteError writes a failure envelope. Middleware shares it so every error body
// has the same shape.
func WriteError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message, Error: kind})
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	WriteError(w, status, kind, message)
}

// writeServerError logs the cause and answers with a generic message; internal
// detail never reaches the client.
func writeServerError(w http.ResponseWriter, r *http.Request, what string, err error) {
	logging.Error(what, map[string]interface{}{
		"error":  err.Error(),
		"method": r.Method,
		"path":   r.URL.Path,
	})
	writeError(w, http.StatusInternalServerError, KindServerError, "Server error")
}

var validate = newValidator()

// newValidator reports fields by their JSON names so messages match the request body.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags. On
// failure it writes a validation_error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, KindValidation, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, describeFieldError(fe))
	}
	return strings.Join(parts, "; ")
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
