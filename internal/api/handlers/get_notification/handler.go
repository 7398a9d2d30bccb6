package get_notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bookline/booking-engine/internal/api/handlers"
	"github.com/bookline/booking-engine/internal/api/middleware"
	"github.com/bookline/booking-engine/internal/service/notifications"
)

const (
	msgInvalidTenantID  = "некорректный ID тенанта"
	msgInvalidRequestID = "некорректный ID запроса"
	msgTenantMismatch   = "доступ к чужому тенанту запрещен"
	msgNotFound         = "запрос на уведомление не найден"
	msgMissingAuth      = "отсутствует идентификатор вызывающего"
)

type Handler struct {
	controller NotificationController
	logger     Logger
}

func NewHandler(controller NotificationController, logger Logger) *Handler {
	return &Handler{
		controller: controller,
		logger:     logger,
	}
}

// Handle GET /api/v1/tenants/{tenantId}/notifications/{requestId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	tenantID, err := strconv.ParseInt(vars["tenantId"], 10, 64)
	if err != nil || tenantID <= 0 {
		h.logger.Warn("GET /tenants/{id}/notifications/{id} - Invalid tenant ID: %s", vars["tenantId"])
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	requestID, err := uuid.Parse(vars["requestId"])
	if err != nil {
		h.logger.Warn("GET /tenants/{id}/notifications/{id} - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	authTenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /tenants/{id}/notifications/{id} - Missing tenant ID in context")
		handlers.RespondUnauthorized(w, msgMissingAuth)
		return
	}

	if tenantID != authTenantID {
		h.logger.Warn("GET /tenants/{id}/notifications/{id} - Tenant mismatch: path=%d, auth=%d", tenantID, authTenantID)
		handlers.RespondForbidden(w, msgTenantMismatch)
		return
	}

	req, err := h.controller.GetByID(r.Context(), tenantID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, notifications.ErrRequestNotFound):
			h.logger.Warn("GET /tenants/{id}/notifications/{id} - Not found: request_id=%s, tenant=%d", requestID, tenantID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /tenants/{id}/notifications/{id} - Failed to fetch: request_id=%s, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tenants/{id}/notifications/{id} - Fetched: request_id=%s, status=%s", requestID, req.Status)
	handlers.RespondJSON(w, http.StatusOK, FromDomainNotification(req))
}
