package service

import (
	"path/filepath"
	"strings"
)

// MaxUploadSize caps the size of an uploaded file.
const MaxUploadSize int64 = 10 << 20

var allowedMIMETypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

// ValidateFile accepts PDF and Word files up to MaxUploadSize. A file passes the type check
// when either its content type or its extension is allowed.
func ValidateFile(filename, contentType string, size int64) error {
	if size > MaxUploadSize {
		return ErrFileTooLarge
	}

	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if _, ok := allowedMIMETypes[mediaType]; ok {
		return nil
	}
	if _, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return nil
	}
	return ErrFileType
}

// DocumentInput carries the metadata fields accepted by Upload and Create.
type DocumentInput struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Department  string `json:"department" form:"department"`
	Level       string `json:"level" form:"level"`
	DocType     string `json:"docType" form:"docType"`
	Status      string `json:"status" form:"status"`
	SubmittedBy string `json:"submittedBy" form:"submittedBy"`
}

func (in DocumentInput) validate() error {
	if in.Title == "" || in.Department == "" || in.DocType == "" {
		return ErrMissingFields
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
