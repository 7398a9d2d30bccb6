package get_customer_bookings

import (
	"errors"
	"net/http"

	"github.com/bookline/booking-engine/internal/api/handlers"
	"github.com/bookline/booking-engine/internal/api/middleware"
	"github.com/bookline/booking-engine/internal/service/bookings"
	"github.com/bookline/booking-engine/internal/service/bookings/models"
	"github.com/bookline/booking-engine/pkg/ptr"
)

const (
	msgInvalidStatus = "некорректный статус"
	msgMissingAuth   = "отсутствует идентификатор вызывающего"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings
//
// История бронирований аутентифицированного клиента.
// Query параметры: status (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingAuth)
		return
	}

	req := &models.GetCustomerBookingsRequest{
		CustomerID: userID,
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		req.Status = ptr.Ptr(raw)
	}

	result, err := h.service.GetCustomerBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /bookings - Invalid status filter: customer=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /bookings - Failed to fetch: customer=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings - Fetched %d bookings for customer=%d", len(result.Bookings), userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
