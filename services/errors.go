package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed          = errors.New("validation failed")
	ErrPasswordTooShort          = errors.New("password is too short")
	ErrInvalidCredentials        = errors.New("invalid email or password")
	ErrTournamentNameRequired    = errors.New("tournament name is required")
	ErrTournamentInvalidDeadline = errors.New("tournament registration deadline must be in the future")
	ErrTournamentInvalidCapacity = errors.New("tournament capacity must be a power of two of at least 2")
	ErrRegistrationNotOpen       = errors.New("tournament registration is not open")
	ErrTournamentFull            = errors.New("tournament registration is full")

	// Conflicts
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrRegistrationConflict   = errors.New("team is already registered for this tournament")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Entity-specific not-found errors
	ErrSeasonNotFound     = errors.New("season not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Engine-side data inconsistencies
	ErrBracketFieldInvalid = errors.New("tournament field is not a full power-of-two bracket")
)
