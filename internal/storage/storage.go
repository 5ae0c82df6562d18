package storage

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user with this email already exists")
	ErrItemNotFound    = errors.New("item not found")
	ErrItemUnavailable = errors.New("item is not available")
	ErrBookingNotFound = errors.New("booking not found")
	ErrBookingOverlap  = errors.New("item is already booked for this period")
	ErrStatusConflict  = errors.New("booking status has already changed")
)
