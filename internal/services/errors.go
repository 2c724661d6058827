package services

import (
	"errors"
	"time"

	"dealership/internal/repository"
)

var (
	ErrNotFound             = repository.ErrNotFound
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInactiveProfile      = errors.New("profile is disabled")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrCarNotAvailable      = errors.New("car is not available")
	ErrOrderHasCar          = errors.New("order already has an assigned car")
	ErrNoCarAssigned        = errors.New("order has no assigned car")
	ErrConfirmationRequired = errors.New("confirmation is required")
	ErrNoShippingDraft      = errors.New("no open shipping draft for this order")
	ErrUnknownDocument      = errors.New("unknown document kind")
)

// timeNow is swapped in tests.
var timeNow = time.Now
