// Package models holds the request/response payloads, stored records and
// the error taxonomy shared by the user management and URL shortener services.
package models

import (
	"encoding/json"
	"errors"
	"time"
)

// User is a row of the users table.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch lists the columns a partial update touches. Nil fields are left unchanged.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether the patch would not change any column.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil
}

// MistypedFields names the request fields that carried a non-empty JSON value
// other than a string, such as {"name":123}. Empty values (null, false, 0,
// "", [] and {}) count as absent instead.
type MistypedFields map[string]bool

type CreateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`

	Mistyped MistypedFields `json:"-"`
}

func (r *CreateUserRequest) UnmarshalJSON(data []byte) (err error) {
	r.Mistyped, err = decodeTextFields(data, map[string]**string{
		"name":     &r.Name,
		"email":    &r.Email,
		"password": &r.Password,
	})
	return err
}

type CreateUserResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`

	Mistyped MistypedFields `json:"-"`
}

func (r *UpdateUserRequest) UnmarshalJSON(data []byte) (err error) {
	r.Mistyped, err = decodeTextFields(data, map[string]**string{
		"name":     &r.Name,
		"email":    &r.Email,
		"password": &r.Password,
	})
	return err
}

type UserResponse struct {
	User User `json:"user"`
}

type UsersResponse struct {
	Users []User `json:"users"`
	Count int    `json:"count"`
}

type SearchUsersResponse struct {
	Users      []User `json:"users"`
	Count      int    `json:"count"`
	SearchTerm string `json:"search_term"`
}

type LoginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`

	Mistyped MistypedFields `json:"-"`
}

func (r *LoginRequest) UnmarshalJSON(data []byte) (err error) {
	r.Mistyped, err = decodeTextFields(data, map[string]**string{
		"email":    &r.Email,
		"password": &r.Password,
	})
	return err
}

// decodeTextFields decodes the JSON object data into the string fields of
// targets, keyed by JSON name. A field holding a string is set, an empty
// value leaves it nil and any other value is reported as mistyped.
func decodeTextFields(data []byte, targets map[string]**string) (MistypedFields, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, err
	}

	var mistyped MistypedFields
	for name, target := range targets {
		raw, found := object[name]
		if !found || string(raw) == "null" {
			continue
		}

		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			*target = &text
			continue
		}

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, err
		}
		if isEmptyJSON(value) {
			continue
		}
		if mistyped == nil {
			mistyped = MistypedFields{}
		}
		mistyped[name] = true
	}

	return mistyped, nil
}

func isEmptyJSON(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

type LoginResponse struct {
	Status string `json:"status"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type LoginFailedResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ShortURL is one record of the in-memory URL store.
type ShortURL struct {
	Code      string    `json:"-"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	Clicks    int64     `json:"clicks"`
}

type ShortenRequest struct {
	URL *string `json:"url"`
}

type ShortenResponse struct {
	ShortCode string `json:"short_code"`
	ShortURL  string `json:"short_url"`
}

type StatsResponse struct {
	URL       string    `json:"url"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"created_at"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidationError carries the client-facing message of a malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a *ValidationError with the given message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

var (
	// ErrNotFound is returned when a user id or a short code has no record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidShortCode is returned when a code does not have the shape of an issued code.
	ErrInvalidShortCode = errors.New("invalid short code format")

	// ErrEmailTaken is returned when a write would violate the unique email constraint.
	ErrEmailTaken = errors.New("email already exists")

	// ErrConflict is returned for uniqueness violations other than the email one.
	ErrConflict = errors.New("uniqueness conflict")

	// ErrInvalidCredentials is returned by login for both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStorage marks failures that came out of the storage layer.
	ErrStorage = errors.New("storage failure")

	// ErrCodeSpaceExhausted is returned when no free short code was found within the attempts cap.
	ErrCodeSpaceExhausted = errors.New("the number of attempts to generate a unique short code has been exceeded")
)
