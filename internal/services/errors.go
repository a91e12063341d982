package services

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicate            = errors.New("already exists")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrCategoryInUse        = errors.New("category is in use")
)
