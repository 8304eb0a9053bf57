package storage

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// MaxKeyLength is the longest blob name Azure accepts.
const MaxKeyLength = 1024

var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key has a traversal segment, a
	// leading slash, or a backslash.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrKeyTooLong indicates the storage key exceeds MaxKeyLength characters.
	ErrKeyTooLong = errors.New("storage key too long")
)

// KeyError reports a rejected storage key.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string { return fmt.Sprintf("%s: %q", e.Err, e.Key) }

func (e *KeyError) Unwrap() error { return e.Err }

// ValidateKey checks key against the naming rules shared by every operation.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return ErrEmptyKey
	case utf8.RuneCountInString(key) > MaxKeyLength:
		return &KeyError{Key: key[:32] + "...", Err: ErrKeyTooLong}
	case strings.HasPrefix(key, "/"), strings.Contains(key, `\`):
		return &KeyError{Key: key, Err: ErrInvalidKey}
	}

	for seg := range strings.SplitSeq(key, "/") {
		if seg == ".." || seg == "." {
			return &KeyError{Key: key, Err: ErrInvalidKey}
		}
	}
	return nil
}

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey), errors.Is(err, ErrKeyTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
