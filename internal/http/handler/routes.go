package handler

import (
	"mime"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docrepo/internal/model"
	"docrepo/internal/service"
)

// BodyLimit is the largest request body accepted: the upload limit plus room for the multipart
// envelope and metadata fields.
const BodyLimit = int(service.MaxUploadSize) + 1<<20

type messageResponse struct {
	Message string `json:"message"`
}

type documentResponse struct {
	Message  string          `json:"message"`
	Document *model.Document `json:"document"`
}

type uploadResponse struct {
	Message  string          `json:"message"`
	Document *model.Document `json:"document"`
	Success  bool            `json:"success"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, docSvc service.DocumentService) {
	app.Get("/healthz", LivenessProbe())
	app.Get("/api/health", HealthCheck(docSvc))

	// "published" must be registered before ":id".
	app.Get("/api/documents", ListDocuments(docSvc))
	app.Get("/api/documents/published", ListPublishedDocuments(docSvc))
	app.Post("/api/documents/upload", UploadDocument(docSvc))
	app.Post("/api/documents", CreateDocument(docSvc))
	app.Get("/api/documents/:id", GetDocument(docSvc))
	app.Put("/api/documents/:id", UpdateDocument(docSvc))
	app.Delete("/api/documents/:id", DeleteDocument(docSvc))
	app.Post("/api/documents/:id/approve", ApproveDocument(docSvc))
	app.Post("/api/documents/:id/reject", RejectDocument(docSvc))
	app.Get("/api/documents/:id/download", DownloadDocument(docSvc))

	// Stored files by generated name.
	app.Get("/documents/*", ServeFile(docSvc))
}

// parseID reads the :id parameter. Only positive integers can name a document.
func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// HealthCheck godoc
// @Summary Server status, document count and storage location
// @Tags health
// @Produce json
// @Success 200 {object} service.HealthStatus
// @Router /api/health [get]
func HealthCheck(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h, err := docSvc.Health(c.UserContext())
		if err != nil {
			return writeInternal(c, err)
		}
		return c.JSON(h)
	}
}

// ListDocuments godoc
// @Summary List all documents
// @Tags documents
// @Produce json
// @Success 200 {array} model.Document
// @Failure 500 {object} errorPayload
// @Router /api/documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := docSvc.List(c.UserContext())
		if err != nil {
			return writeInternal(c, err)
		}
		return c.JSON(items)
	}
}

// ListPublishedDocuments godoc
// @Summary List published documents
// @Tags documents
// @Produce json
// @Success 200 {array} model.Document
// @Failure 500 {object} errorPayload
// @Router /api/documents/published [get]
func ListPublishedDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := docSvc.ListPublished(c.UserContext())
		if err != nil {
			return writeInternal(c, err)
		}
		return c.JSON(items)
	}
}

// GetDocument godoc
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Router /api/documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeNotFound(c)
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// UploadDocument godoc
// @Summary Upload a PDF or Word file and publish it
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF or Word document, at most 10 MB"
// @Param title formData string true "Title"
// @Param department formData string true "Department"
// @Param docType formData string true "Document type"
// @Param description formData string false "Description"
// @Param level formData string false "Level"
// @Param submittedBy formData string false "Submitter"
// @Success 201 {object} uploadResponse
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/documents/upload [post]
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := service.DocumentInput{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Department:  c.FormValue("department"),
			Level:       c.FormValue("level"),
			DocType:     c.FormValue("docType"),
			SubmittedBy: c.FormValue("submittedBy"),
		}

		// A missing file is reported by the service after the metadata checks.
		var file *service.FileInput
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			file = &service.FileInput{
				Reader:      f,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			}
		}

		doc, err := docSvc.Upload(c.UserContext(), in, file)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{
			Message:  "Document uploaded and published successfully!",
			Document: doc,
			Success:  true,
		})
	}
}

// CreateDocument godoc
// @Summary Create a document without a file
// @Tags documents
// @Accept json
// @Produce json
// @Param body body service.DocumentInput true "Document metadata"
// @Success 201 {object} documentResponse
// @Failure 400 {object} errorPayload
// @Router /api/documents [post]
func CreateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.DocumentInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(documentResponse{
			Message:  "Document created successfully.",
			Document: doc,
		})
	}
}

// UpdateDocument godoc
// @Summary Partially update a document
// @Tags documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param body body model.DocumentPatch true "Fields to change"
// @Success 200 {object} documentResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/documents/{id} [put]
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeNotFound(c)
		}
		// An empty body is an empty patch.
		var patch model.DocumentPatch
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&patch); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}
		doc, err := docSvc.Update(c.UserContext(), id, patch)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(documentResponse{
			Message:  "Document updated successfully",
			Document: doc,
		})
	}
}

// ApproveDocument godoc
// @Summary Publish a document
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} documentResponse
// @Failure 404 {object} errorPayload
// @Router /api/documents/{id}/approve [post]
func ApproveDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeNotFound(c)
		}
		doc, err := docSvc.Approve(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(documentResponse{
			Message:  "Document approved and published",
			Document: doc,
		})
	}
}

// RejectDocument godoc
// @Summary Reject a document, removing it and its file
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errorPayload
// @Router /api/documents/{id}/reject [post]
func RejectDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeNotFound(c)
		}
		if err := docSvc.Reject(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Message: "Document rejected and deleted"})
	}
}

// DeleteDocument godoc
// @Summary Delete a document and its file
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errorPayload
// @Router /api/documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeNotFound(c)
		}
		if err := docSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Message: "Document deleted successfully"})
	}
}

// DownloadDocument godoc
// @Summary Download the file of a document, named after its title
// @Tags documents
// @Produce octet-stream
// @Param id path int true "Document ID"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /api/documents/{id}/download [get]
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeNotFound(c)
		}
		dl, err := docSvc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		// The body stream is closed by fasthttp once the response is written.
		name := filepath.Base(dl.Name)
		c.Set(fiber.HeaderContentDisposition, attachmentDisposition(name))
		c.Type(filepath.Ext(name))
		return c.SendStream(dl.Body, int(dl.Info.Size))
	}
}

// attachmentDisposition quotes ASCII names and falls back to an RFC 2231 filename* parameter
// for anything else.
func attachmentDisposition(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}

// ServeFile godoc
// @Summary Fetch a stored file by its generated name
// @Tags files
// @Produce octet-stream
// @Param name path string true "Stored file name"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /documents/{name} [get]
func ServeFile(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("*")
		body, info, err := docSvc.Open(c.UserContext(), name)
		if err != nil {
			return writeServiceError(c, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		} else {
			c.Type(filepath.Ext(name))
		}
		return c.SendStream(body, int(info.Size))
	}
}
