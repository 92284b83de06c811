package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		wantErr     error
	}{
		{name: "pdf", filename: "a.pdf", contentType: "application/pdf", size: 10},
		{name: "docx", filename: "a.docx", contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", size: 10},
		{name: "doc with params", filename: "a.doc", contentType: "application/msword; charset=binary", size: 10},
		{name: "extension only", filename: "Report.PDF", contentType: "application/octet-stream", size: 10},
		{name: "mime only", filename: "report", contentType: "application/pdf", size: 10},
		{name: "exactly max size", filename: "a.pdf", contentType: "application/pdf", size: MaxUploadSize},
		{name: "exe", filename: "virus.exe", contentType: "application/x-msdownload", size: 10, wantErr: ErrFileType},
		{name: "text", filename: "notes.txt", contentType: "text/plain", size: 10, wantErr: ErrFileType},
		{name: "too large", filename: "a.pdf", contentType: "application/pdf", size: MaxUploadSize + 1, wantErr: ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.filename, tt.contentType, tt.size)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDocumentInput_Validate(t *testing.T) {
	valid := DocumentInput{Title: "T", Department: "D", DocType: "Notes"}
	assert.NoError(t, valid.validate())

	// Only empty values count as missing.
	spaces := DocumentInput{Title: "  ", Department: " ", DocType: "\t"}
	assert.NoError(t, spaces.validate())

	for name, in := range map[string]DocumentInput{
		"missing title":      {Department: "D", DocType: "Notes"},
		"missing department": {Title: "T", DocType: "Notes"},
		"missing docType":    {Title: "T", Department: "D"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, in.validate(), ErrMissingFields)
		})
	}
}
