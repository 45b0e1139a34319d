package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pneutrack/internal/core/apperror"
	"pneutrack/internal/core/id"
	"pneutrack/internal/domain"
	"pneutrack/internal/domain/scheduling"
	"pneutrack/internal/infrastructure/http/v1/dto"
)

// AppointmentHandler handles HTTP requests for appointment documents.
type AppointmentHandler struct {
	*BaseHandler
	service *scheduling.Service
}

// NewAppointmentHandler creates a new appointment handler.
func NewAppointmentHandler(base *BaseHandler, service *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /documents/appointments
func (h *AppointmentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateAppointmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	appt := req.ToEntity()

	if err := h.service.Create(ctx, appt); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromAppointment(appt))
}

// Get handles GET /documents/appointments/:id
func (h *AppointmentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	apptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	appt, err := h.service.GetByID(ctx, apptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAppointment(appt))
}

// Update handles PUT /documents/appointments/:id
func (h *AppointmentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	apptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateAppointmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	appt, err := h.service.GetByID(ctx, apptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(appt)

	if err := h.service.Modify(ctx, appt); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAppointment(appt))
}

// Cancel handles DELETE /documents/appointments/:id
// Cancelled appointments stay in history and no longer block the slot.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	apptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Cancel(ctx, apptID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkDone handles POST /documents/appointments/:id/done
func (h *AppointmentHandler) MarkDone(c *gin.Context) {
	ctx := c.Request.Context()

	apptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.MarkDone(ctx, apptID); err != nil {
		h.Error(c, err)
		return
	}

	appt, err := h.service.GetByID(ctx, apptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAppointment(appt))
}

// List handles GET /documents/appointments
func (h *AppointmentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := scheduling.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "start_at")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if clientID := c.Query("clientId"); clientID != "" {
		if parsed, err := id.Parse(clientID); err == nil {
			filter.ClientID = &parsed
		}
	}

	if workerID := c.Query("workerId"); workerID != "" {
		if parsed, err := id.Parse(workerID); err == nil {
			filter.WorkerID = &parsed
		}
	}

	if bay := c.Query("bay"); bay != "" {
		val := h.ParseIntQuery(c, "bay", 0)
		if val > 0 {
			filter.Bay = &val
		}
	}

	if status := c.Query("status"); status != "" {
		val := scheduling.Status(status)
		filter.Status = &val
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.AppointmentResponse, len(result.Items))
	for i, appt := range result.Items {
		items[i] = dto.FromAppointment(appt)
	}

	c.JSON(http.StatusOK, dto.AppointmentListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegisterRoutes registers appointment routes.
func (h *AppointmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Cancel)
	rg.POST("/:id/done", h.MarkDone)
}
