package models

// ErrorType classifies API errors for clients.
type ErrorType string

const (
	GeneralErrorType    ErrorType = "general"
	ValidationErrorType ErrorType = "validation"
	NotFoundErrorType   ErrorType = "not_found"
	ConflictErrorType   ErrorType = "conflict"
)
