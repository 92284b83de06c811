package model

// DateLayout is the calendar-date format used for Document.Date.
const DateLayout = "2006-01-02"

// Status is the visibility state of a document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Document is a metadata record optionally paired with a stored file blob.
// It carries no persistence-specific tags and is shared by the HTTP, service and repository layers.
type Document struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Department  string  `json:"department"`
	Level       string  `json:"level"`
	DocType     string  `json:"docType"`
	Status      Status  `json:"status"`
	Date        string  `json:"date"`
	FileName    *string `json:"fileName"` // generated blob name, nil when no file is attached
	SubmittedBy string  `json:"submittedBy"`
}

// HasFile reports whether the document references a stored blob.
func (d *Document) HasFile() bool {
	return d.FileName != nil && *d.FileName != ""
}

// DocumentPatch is a partial update. Nil fields are left untouched.
type DocumentPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Department  *string `json:"department"`
	Level       *string `json:"level"`
	DocType     *string `json:"docType"`
	Status      *Status `json:"status"`
}
