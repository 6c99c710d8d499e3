package services

import (
	"errors"
	"fmt"
)

// Base errors. The specific errors below wrap one of these so callers can
// branch either on the exact failure or on its class.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
)

var (
	ErrEmployeeNotFound  = fmt.Errorf("employee %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrCategoryNotFound  = fmt.Errorf("category %w", ErrNotFound)
	ErrDishNotFound      = fmt.Errorf("dish %w", ErrNotFound)
	ErrTableNotFound     = fmt.Errorf("table %w", ErrNotFound)
	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrOrderLineNotFound = fmt.Errorf("order line %w", ErrNotFound)
	ErrClientNotFound    = fmt.Errorf("client %w", ErrNotFound)

	ErrDuplicateUsername     = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrDuplicateCategoryName = fmt.Errorf("%w: category name already exists", ErrConflict)
	ErrDuplicateTableNumber  = fmt.Errorf("%w: table number already exists", ErrConflict)
	ErrCategoryHasDishes     = fmt.Errorf("%w: category still has dishes", ErrConflict)
	ErrDishInUse             = fmt.Errorf("%w: dish is referenced by orders", ErrConflict)
	ErrDishUnavailable       = fmt.Errorf("%w: dish is not available", ErrConflict)
	ErrTableOccupied         = fmt.Errorf("%w: table is occupied", ErrConflict)
	ErrTableHasOpenOrder     = fmt.Errorf("%w: table has an open order", ErrConflict)
	ErrTableNotOccupied      = fmt.Errorf("%w: table is already free", ErrConflict)
	ErrOrderClosed           = fmt.Errorf("%w: order is closed", ErrConflict)
	ErrInvalidTransition     = fmt.Errorf("%w: status transition not allowed", ErrConflict)

	ErrMissingTable       = fmt.Errorf("%w: a table is required", ErrValidation)
	ErrMissingDishes      = fmt.Errorf("%w: at least one dish is required", ErrValidation)
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	ErrInvalidStatus      = fmt.Errorf("%w: unknown order status", ErrValidation)
	ErrInvalidRole        = fmt.Errorf("%w: unknown employee role", ErrValidation)
	ErrInvalidPrice       = fmt.Errorf("%w: price must not be negative", ErrValidation)
	ErrInvalidTableNumber = fmt.Errorf("%w: table number must be positive", ErrValidation)
	ErrEmptyName          = fmt.Errorf("%w: name must not be empty", ErrValidation)
	ErrMissingCredentials = fmt.Errorf("%w: username and password are required", ErrValidation)

	ErrInvalidCredentials = errors.New("invalid username or password")
)
