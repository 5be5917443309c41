package domain

import "errors"

// Validation errors
var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidMenuDate    = errors.New("menu date must be YYYY-MM-DD")
	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 20")
	ErrDuplicateOrderDish = errors.New("dish appears more than once in order")
	ErrDishNotOnMenu      = errors.New("dish is not on the menu for this date")
)
