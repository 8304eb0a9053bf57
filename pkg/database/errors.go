package database

import "errors"

var (
	// ErrNotReady indicates the last ping failed or none has run.
	ErrNotReady = errors.New("database not ready")
	// ErrInvalidConfig wraps connection settings that fail validation.
	ErrInvalidConfig = errors.New("invalid database config")
)
