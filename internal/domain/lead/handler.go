package lead

import (
	"errors"
	"net/http"
	"strconv"

	"leadcrm/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler handles lead HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates lead handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListLeads handles GET /api/v1/leads
// @Summary List leads
// @Description Every lead, newest first, with the assigned agent
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=LeadListResponse}
// @Failure 500 {object} response.Response
// @Router /leads [get]
func (h *Handler) ListLeads(c *gin.Context) {
	leads, err := h.service.List(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	if leads == nil {
		leads = []Lead{}
	}

	response.Success(c, http.StatusOK, LeadListResponse{
		Leads: leads,
		Total: len(leads),
	})
}

// CreateLead handles POST /api/v1/leads
// @Summary Create lead
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LeadRequest true "Lead data"
// @Success 201 {object} response.Response{data=Lead}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /leads [post]
func (h *Handler) CreateLead(c *gin.Context) {
	var req LeadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	lead, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, lead)
}

// GetLead handles GET /api/v1/leads/:id
// @Summary Get lead by ID
// @Description Lead details with the comment thread, newest first
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} response.Response{data=Lead}
// @Failure 404 {object} response.Response
// @Router /leads/{id} [get]
func (h *Handler) GetLead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lead, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, lead)
}

// UpdateLead handles PUT /api/v1/leads/:id
// @Summary Update lead
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Param request body LeadRequest true "Lead data"
// @Success 200 {object} response.Response{data=Lead}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /leads/{id} [put]
func (h *Handler) UpdateLead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req LeadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	lead, err := h.service.Update(c.Request.Context(), c.GetInt64("user_id"), id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, lead)
}

// DeleteLead handles DELETE /api/v1/leads/:id
// @Summary Delete lead
// @Description Removes the lead and its comments
// @Tags Leads
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /leads/{id} [delete]
func (h *Handler) DeleteLead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

// AddComment handles POST /api/v1/leads/:id/comments
// @Summary Add comment
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} response.Response{data=Comment}
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /leads/{id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), c.GetInt64("user_id"), id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, comment)
}

// ListComments handles GET /api/v1/leads/:id/comments
// @Summary List comments
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} response.Response{data=[]Comment}
// @Failure 404 {object} response.Response
// @Router /leads/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if comments == nil {
		comments = []Comment{}
	}

	response.Success(c, http.StatusOK, comments)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if verr, ok := IsValidation(err); ok {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", verr.Fields)
		return
	}
	switch {
	case errors.Is(err, ErrLeadNotFound):
		response.Error(c, http.StatusNotFound, "LEAD_NOT_FOUND", "Lead not found")
	case errors.Is(err, ErrEmailExists):
		response.ErrorWithDetails(c, http.StatusConflict, "EMAIL_EXISTS", "Lead with this Email Address already exists.",
			map[string]string{"email": "Lead with this Email Address already exists."})
	default:
		h.internalError(c, err)
	}
}

func (h *Handler) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return 0, false
	}
	return id, true
}
