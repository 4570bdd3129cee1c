// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between failure scenarios and map
// them to HTTP statuses without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert would violate the unique
// constraint on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the given id or email.
var ErrUserNotFound = errors.New("user not found")

// ErrEventNotFound is returned when no event matches the given id.
var ErrEventNotFound = errors.New("event not found")

// ErrAlreadyRegistered is returned when a registration add finds the
// (event, user) pair already present.
var ErrAlreadyRegistered = errors.New("already registered")

// ErrNotRegistered is returned when a registration remove finds no
// (event, user) pair to delete.
var ErrNotRegistered = errors.New("not registered")

// ErrResetTokenInvalid is returned when a reset-token consumption finds
// no user with a matching, unexpired token hash. Wrong, already-used and
// expired tokens are deliberately indistinguishable.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")
