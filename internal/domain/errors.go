package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "internal_error",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrUnauthorized = &AppError{
		Code:       "unauthorized",
		Message:    "Invalid or missing API key",
		StatusCode: 401,
	}

	ErrNotFound = &AppError{
		Code:       "not_found",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrInvalidPayload = &AppError{
		Code:       "invalid_payload",
		Message:    "Missing or malformed request fields",
		StatusCode: 400,
	}

	// ErrAlreadyMarked is a conflict, not a failure: the student is
	// already marked for that day, so the caller's goal is satisfied.
	ErrAlreadyMarked = &AppError{
		Code:       "already_marked",
		Message:    "Attendance already marked for this student today",
		StatusCode: 409,
	}

	ErrNoRecords = &AppError{
		Code:       "no_records",
		Message:    "Records array must be a non-empty list",
		StatusCode: 400,
	}

	ErrStudentNotFound = &AppError{
		Code:       "student_not_found",
		Message:    "Student not found",
		StatusCode: 404,
	}

	ErrDuplicateRoll = &AppError{
		Code:       "duplicate_roll",
		Message:    "A student with this roll already exists",
		StatusCode: 409,
	}

	ErrInvalidEmbedding = &AppError{
		Code:       "invalid_payload",
		Message:    "Embedding must be a non-empty numeric vector",
		StatusCode: 400,
	}
)
