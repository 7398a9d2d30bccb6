package create_booking

import (
	"errors"
	"net/http"

	"github.com/bookline/booking-engine/internal/api/handlers"
	"github.com/bookline/booking-engine/internal/api/middleware"
	createBooking "github.com/bookline/booking-engine/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidTime          = "некорректный формат времени, ожидается RFC 3339"
	msgMissingAuth          = "отсутствует идентификатор вызывающего"
	msgSlotTaken            = "выбранный интервал уже занят"
	msgIdempotencyConflict  = "ключ идемпотентности уже использован с другими параметрами"
	msgQuotaExceeded        = "исчерпана квота бронирований тарифного плана"
	msgTenantNotFound       = "тенант не найден"
	msgResourceNotFound     = "ресурс не найден"
	msgTimezoneUnresolved   = "не удалось определить таймзону бронирования"
	msgPromotionRejected    = "промокод или подарочная карта не применимы"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, okTenant := middleware.GetTenantID(r.Context())
	userID, okUser := middleware.GetUserID(r.Context())
	if !okTenant || !okUser {
		h.logger.Warn("POST /bookings - Missing caller identity")
		handlers.RespondUnauthorized(w, msgMissingAuth)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(tenantID, userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotTaken):
			h.logger.Warn("POST /bookings - Slot taken: tenant=%d, resource=%d", tenantID, req.ResourceID)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, createBooking.ErrIdempotencyConflict):
			h.logger.Warn("POST /bookings - Idempotency conflict: tenant=%d, client_id=%s", tenantID, req.ClientGeneratedID)
			handlers.RespondConflict(w, msgIdempotencyConflict)

		case errors.Is(err, createBooking.ErrQuotaExceeded):
			h.logger.Warn("POST /bookings - Quota exceeded: tenant=%d", tenantID)
			handlers.RespondError(w, http.StatusPaymentRequired, msgQuotaExceeded)

		case errors.Is(err, createBooking.ErrTenantNotFound):
			h.logger.Warn("POST /bookings - Tenant not found: tenant=%d", tenantID)
			handlers.RespondNotFound(w, msgTenantNotFound)

		case errors.Is(err, createBooking.ErrResourceNotFound):
			h.logger.Warn("POST /bookings - Resource not found: tenant=%d, resource=%d", tenantID, req.ResourceID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, createBooking.ErrTimezoneUnresolved):
			// Неразрешимая таймзона — ошибка конфигурации тенанта, не клиента
			h.logger.Error("POST /bookings - Timezone unresolved: tenant=%d, resource=%d", tenantID, req.ResourceID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgTimezoneUnresolved)

		case errors.Is(err, createBooking.ErrPromotionRejected):
			h.logger.Warn("POST /bookings - Promotion rejected: tenant=%d: %v", tenantID, err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgPromotionRejected)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: tenant=%d: %v", tenantID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings - Failed to create booking: tenant=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	// Повтор ключа идемпотентности возвращает исходный результат с 200
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%s, tenant=%d, replayed=%v",
		result.ID, tenantID, result.Replayed)
	handlers.RespondJSON(w, status, response)
}
