package reschedule_booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bookline/booking-engine/internal/api/handlers"
	"github.com/bookline/booking-engine/internal/api/middleware"
	reschedule "github.com/bookline/booking-engine/internal/usecase/reschedule_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidBookingID    = "некорректный ID бронирования"
	msgInvalidTimeFormat   = "некорректный формат времени, ожидается RFC3339"
	msgNotFound            = "бронирование не найдено"
	msgNotActive           = "бронирование не в активном статусе"
	msgSlotTaken           = "новый интервал уже занят"
	msgIdempotencyConflict = "ключ идемпотентности уже использован с другими параметрами"
	msgMissingAuth         = "отсутствует идентификатор вызывающего"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := uuid.Parse(vars["bookingId"])
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/reschedule - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingAuth)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest(tenantID, bookingID)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid time format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTimeFormat)
		return
	}

	result, err := h.useCase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, reschedule.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/reschedule - Booking not found: booking_id=%s, tenant=%d", bookingID, tenantID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reschedule.ErrBookingNotActive):
			h.logger.Warn("POST /bookings/{id}/reschedule - Booking not active: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgNotActive)

		case errors.Is(err, reschedule.ErrSlotTaken):
			h.logger.Warn("POST /bookings/{id}/reschedule - Slot taken: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, reschedule.ErrIdempotencyConflict):
			h.logger.Warn("POST /bookings/{id}/reschedule - Idempotency conflict: client_generated_id=%s", req.ClientGeneratedID)
			handlers.RespondConflict(w, msgIdempotencyConflict)

		case errors.Is(err, reschedule.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/reschedule - Failed to reschedule: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	h.logger.Info("POST /bookings/{id}/reschedule - Booking rescheduled: old=%s, new=%s, replayed=%v",
		bookingID, result.ID, result.Replayed)
	handlers.RespondJSON(w, status, result)
}
