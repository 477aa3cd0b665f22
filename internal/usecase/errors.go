package usecase

import "errors"

var (
	// ErrInvalidInput rejects a request before any mutation; safe to retry
	// after correcting the input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound covers unknown season, participant, team, fixture or match ids.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict covers double-booked fixtures, duplicate team creation races
	// and scoring changes after play started. Never retried by the engine;
	// callers may re-fetch and decide.
	ErrConflict = errors.New("conflicting state")
	// ErrSeasonClosed rejects match application against a closed season.
	ErrSeasonClosed = errors.New("season is closed")
)
