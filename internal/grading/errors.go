package grading

import "errors"

// Input validation failures. The messages are shown to end users as-is.
var (
	ErrEmptyInput   = errors.New("Please add at least one subject.")
	ErrInvalidEntry = errors.New("Please fill all subject fields with valid grades and positive credit hours.")
	ErrZeroCredits  = errors.New("Total credit hours cannot be zero.")
	ErrUnknownGrade = errors.New("unknown grade")
)
