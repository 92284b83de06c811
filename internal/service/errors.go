package service

import "errors"

// ErrNotFound is returned when the document, or the file it references, does not exist.
var ErrNotFound = errors.New("document not found")

// ValidationError is a client error: the request is rejected and nothing is stored.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingFields = &ValidationError{Code: "MISSING_FIELDS", Message: "Missing required fields: title, department, docType"}
	ErrFileRequired  = &ValidationError{Code: "FILE_REQUIRED", Message: "No file provided"}
	ErrFileType      = &ValidationError{Code: "INVALID_FILE_TYPE", Message: "Only PDF and Word documents are allowed"}
	ErrFileTooLarge  = &ValidationError{Code: "FILE_TOO_LARGE", Message: "File exceeds the 10 MB upload limit"}
	ErrInvalidStatus = &ValidationError{Code: "INVALID_STATUS", Message: "Status must be one of: draft, published"}
)
