package domain

import "errors"

var (
	ErrBidNotFound         = errors.New("bid not found")
	ErrBidExpired          = errors.New("bid is expired")
	ErrSubmissionNotFound  = errors.New("retail bid not found")
	ErrNotEnoughSeats      = errors.New("not enough seats available")
	ErrSeatsOutOfRange     = errors.New("seat count outside bid limits")
	ErrInvalidDecision     = errors.New("invalid decision")
	ErrDuplicateReference  = errors.New("payment reference already exists")
	ErrStatusNotFound      = errors.New("status not found")
	ErrStatusConfigMissing = errors.New("status configuration missing")
	ErrUserNotFound        = errors.New("user not found")
	ErrFlightNotFound      = errors.New("flight not found")
)
