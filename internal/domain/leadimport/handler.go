package leadimport

import (
	"errors"
	"net/http"
	"strconv"

	"leadcrm/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	LeadsPath  = "/api/v1/leads"
	UploadPath = "/api/v1/leads/import/upload"

	maxReportedRows = 100

	// formOverhead leaves room for the mapping_<field> values next to the token.
	formOverhead = 1 << 20
)

// Handler serves the staff-only import wizard.
type Handler struct {
	service  *Service
	maxBytes int64
}

func NewHandler(service *Service, maxBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxBytes}
}

// Upload godoc
// @Summary Upload leads file
// @Description Step one of the import wizard. Accepts .csv or .xlsx and returns the detected columns and a token.
// @Tags Lead Import
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} response.Response{data=UploadResult}
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /leads/import/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "No file was submitted.")
		return
	}
	if _, err := DetectFormat(fh.Filename); err != nil {
		h.writeError(c, err)
		return
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		h.writeError(c, ErrFileTooLarge)
		return
	}

	file, err := fh.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer file.Close()

	res, err := h.service.Upload(c.Request.Context(), c.GetInt64("user_id"), fh.Filename, file)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// SubmitMapping godoc
// @Summary Submit column mapping
// @Description Step two of the import wizard. Accepts JSON {token, mapping} or a form with token and mapping_<field>.
// @Tags Lead Import
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param request body MappingRequest true "Mapping"
// @Success 201 {object} response.Response{data=CommitResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 410 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /leads/import/mapping [post]
func (h *Handler) SubmitMapping(c *gin.Context) {
	var req MappingRequest
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
	} else {
		if err := h.parseMappingForm(c); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "The request body is too large.")
				return
			}
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
		req = mappingFromForm(c)
	}

	res, err := h.service.Commit(c.Request.Context(), c.GetInt64("user_id"), req.Token, req.Mapping)
	if err != nil {
		var mErr *MappingError
		if errors.As(err, &mErr) {
			response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "MAPPING_INCOMPLETE", "Please map all required fields.",
				MappingIncompleteDetails{
					MissingFields: mErr.Missing,
					Token:         req.Token,
					Redirect:      UploadPath,
				})
			return
		}
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, CommitResponse{
		ImportID: res.ImportID,
		Imported: res.Imported,
		Message:  res.Message,
		Redirect: LeadsPath,
	})
}

// History godoc
// @Summary Import history
// @Tags Lead Import
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Limit" default(50)
// @Success 200 {object} response.Response{data=[]ImportRecord}
// @Router /leads/import/history [get]
func (h *Handler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if records == nil {
		records = []ImportRecord{}
	}

	response.Success(c, http.StatusOK, records)
}

// parseMappingForm parses the form body up front so failures surface instead of
// reading as an empty token. The body is capped at the largest token the
// service issues, which also lifts net/http's default 10MB form limit.
func (h *Handler) parseMappingForm(c *gin.Context) error {
	limit := h.service.MaxTokenBytes()
	if limit > 0 {
		limit += formOverhead
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		if limit <= 0 {
			limit = formOverhead
		}
		return c.Request.ParseMultipartForm(limit)
	}
	return c.Request.ParseForm()
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var rowErr *RowValidationError
	if errors.As(err, &rowErr) {
		details := RowValidationDetails{
			InvalidRows: len(rowErr.Rows),
			TotalRows:   rowErr.TotalRows,
			Rows:        rowErr.Rows,
		}
		if len(details.Rows) > maxReportedRows {
			details.Rows = details.Rows[:maxReportedRows]
			details.Truncated = true
		}
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "ROW_VALIDATION_FAILED",
			"Some rows are invalid. No leads were imported.", details)
		return
	}

	// errors after the upload step send the client back to it
	back := gin.H{"redirect": UploadPath}

	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		response.Error(c, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Unsupported file format.")
	case errors.Is(err, ErrUnreadableFile):
		response.Error(c, http.StatusBadRequest, "UNREADABLE_FILE", "The file could not be read.")
	case errors.Is(err, ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, "EMPTY_FILE", "The submitted file is empty.")
	case errors.Is(err, ErrSessionTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "The file has too much data for one import.")
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "The submitted file is too large.")
	case errors.Is(err, ErrInvalidToken):
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_TOKEN", "The import session is invalid. Please upload the file again.", back)
	case errors.Is(err, ErrTokenExpired):
		response.ErrorWithDetails(c, http.StatusGone, "TOKEN_EXPIRED", "The import session has expired. Please upload the file again.", back)
	case errors.Is(err, ErrImportConflict):
		response.ErrorWithDetails(c, http.StatusConflict, "IMPORT_CONFLICT", "Import failed: duplicate email addresses. No leads were imported.", back)
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Import failed")
	}
}
