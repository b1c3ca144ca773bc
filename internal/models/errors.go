package models

import "errors"

var (
	ErrInvalidTerm        = errors.New("term years must be positive")
	ErrInvalidDownPayment = errors.New("down payment percent must be between 0 and 100")
	ErrNegativeRate       = errors.New("rates must not be negative")
	ErrMissingCity        = errors.New("city is required")
	ErrMissingPrice       = errors.New("median price must be positive")
)
