package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation error")
	// ErrOutOfRange matches every *RangeError.
	ErrOutOfRange = errors.New("expense position out of range")
)

// User-facing validation failures.
var (
	ErrMissingField     = &ValidationError{Message: "Please fill in all fields."}
	ErrInvalidAmount    = &ValidationError{Field: FieldAmount, Message: "Please enter a valid amount."}
	ErrInvalidDate      = &ValidationError{Field: FieldDate, Message: "Please enter a valid date in DD/MM/YYYY format."}
	ErrUsernameRequired = &ValidationError{Field: "username", Message: "Username is required."}
	ErrInvalidUsername  = &ValidationError{Field: "username", Message: "Username cannot contain path separators."}
	ErrNoSelection      = &ValidationError{Message: "Please select an expense to delete."}
)

// ValidationError is a rejected user input. Message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RangeError reports a delete position outside [0, Length).
type RangeError struct {
	Position int
	Length   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid expense index %d (have %d)", e.Position, e.Length)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// UserMessage returns the text a shell should display for err.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, ErrOutOfRange) {
		return "Invalid expense index."
	}
	return "Something went wrong, please try again."
}
