package domain

import "errors"

// Store errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already exists")
	ErrTaskNotFound = errors.New("task not found")
)

// Input errors.
var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrInvalidRole      = errors.New("invalid role")
	ErrAssigneeNotFound = errors.New("assigned user not found")
	ErrPasswordTooLong  = errors.New("password is too long")
)

// Login failure. Unknown username and wrong password are not distinguished.
var ErrInvalidLogin = errors.New("invalid credentials")

// Token verification failures.
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// Auth boundary taxonomy. Token and role lookup failures wrap one of these.
// The middleware answers them directly, so handlers never see them.
var (
	ErrMissingCredential = errors.New("no token provided")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrInsufficientRole  = errors.New("admins only")
	ErrIdentityNotFound  = errors.New("identity not found")
	ErrStoreUnavailable  = errors.New("credential store unavailable")
)
