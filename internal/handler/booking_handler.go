package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proconnect/service-engagement/internal/application"
	bookingDomain "github.com/proconnect/service-engagement/internal/domain/booking"
	"github.com/proconnect/service-engagement/internal/platform/auth"
	"github.com/proconnect/service-engagement/internal/platform/middleware"
	"github.com/proconnect/service-engagement/internal/platform/response"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	bookings     *application.BookingService
	requirements *application.RequirementService
	history      *application.HistoryService
	logger       *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(
	bookings *application.BookingService,
	requirements *application.RequirementService,
	history *application.HistoryService,
	logger *zap.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookings:     bookings,
		requirements: requirements,
		history:      history,
		logger:       logger,
	}
}

// RegisterRoutes mounts the booking routes under the given group. All routes
// require an authenticated session.
func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListMyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/status", h.UpdateStatus)
		bookings.PATCH("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)

		bookings.POST("/:id/requirements", h.AddRequirement)
		bookings.GET("/:id/requirements", h.ListRequirements)
		bookings.DELETE("/:id/requirements/:requirementId", h.RemoveRequirement)

		bookings.GET("/:id/history", h.ListHistory)
	}
}

// CreateBooking handles POST /bookings. The session user becomes the client.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, bookingDomain.NewUnauthorizedError("authentication required"))
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.bookings.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto)
}

// ListMyBookings handles GET /bookings. The session role picks the side of
// the marketplace to list; admins get everything.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, bookingDomain.NewUnauthorizedError("authentication required"))
		return
	}
	page, limit := pagination(c)

	var (
		result *application.PaginatedBookings
		err    error
	)
	role, _ := middleware.GetUserRole(c)
	switch role {
	case auth.RoleAdmin:
		result, err = h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	case auth.RoleProfessional:
		result, err = h.bookings.GetProfessionalBookings(c.Request.Context(), userID, page, limit)
	default:
		result, err = h.bookings.GetClientBookings(c.Request.Context(), userID, page, limit)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, bookingID, ok := h.actorAndBookingID(c)
	if !ok {
		return
	}

	dto, err := h.bookings.GetBooking(c.Request.Context(), bookingID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// UpdateStatus handles PATCH /bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	actor, bookingID, ok := h.actorAndBookingID(c)
	if !ok {
		return
	}

	var req application.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.bookings.UpdateStatus(c.Request.Context(), bookingID, actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// UpdateBooking handles PATCH /bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	actor, bookingID, ok := h.actorAndBookingID(c)
	if !ok {
		return
	}

	var req application.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.bookings.UpdateBooking(c.Request.Context(), bookingID, actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// DeleteBooking handles DELETE /bookings/:id.
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	actor, bookingID, ok := h.actorAndBookingID(c)
	if !ok {
		return
	}

	if err := h.bookings.DeleteBooking(c.Request.Context(), bookingID, actor); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// AddRequirement handles POST /bookings/:id/requirements.
func (h *BookingHandler) AddRequirement(c *gin.Context) {
	actor, bookingID, ok := h.actorAndBookingID(c)
	if !ok {
		return
	}

	var req application.CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.requirements.AddRequirement(c.Request.Context(), bookingID, actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto)
}

// ListRequirements handles GET /bookings/:id/requirements.
func (h *BookingHandler) ListRequirements(c *gin.Context) {
	actor, bookingID, ok := h.actorAndBookingID(c)
	if !ok {
		return
	}

	dtos, err := h.requirements.ListRequirements(c.Request.Context(), bookingID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dtos)
}

// RemoveRequirement handles DELETE /bookings/:id/requirements/:requirementId.
func (h *BookingHandler) RemoveRequirement(c *gin.Context) {
	actor, bookingID, ok := h.actorAndBookingID(c)
	if !ok {
		return
	}
	requirementID, err := uuid.Parse(c.Param("requirementId"))
	if err != nil {
		response.BadRequest(c, "invalid requirement id")
		return
	}

	if err := h.requirements.RemoveRequirement(c.Request.Context(), bookingID, requirementID, actor); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ListHistory handles GET /bookings/:id/history.
func (h *BookingHandler) ListHistory(c *gin.Context) {
	actor, bookingID, ok := h.actorAndBookingID(c)
	if !ok {
		return
	}

	opts := bookingDomain.HistoryListOptions{
		Ascending: c.Query("order") == "asc",
	}

	entries, err := h.history.ListHistory(c.Request.Context(), bookingID, actor, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, entries)
}

// actorAndBookingID resolves the session actor and the :id path param,
// writing the error response itself when either is missing.
func (h *BookingHandler) actorAndBookingID(c *gin.Context) (bookingDomain.Actor, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, bookingDomain.NewUnauthorizedError("authentication required"))
		return bookingDomain.Actor{}, uuid.Nil, false
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return bookingDomain.Actor{}, uuid.Nil, false
	}
	return bookingDomain.Actor{ID: userID, Admin: middleware.IsAdmin(c)}, bookingID, true
}
