package get_tenant_bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bookline/booking-engine/internal/api/handlers"
	"github.com/bookline/booking-engine/internal/api/middleware"
	"github.com/bookline/booking-engine/internal/service/bookings"
	"github.com/bookline/booking-engine/internal/service/bookings/models"
	"github.com/bookline/booking-engine/pkg/ptr"
)

const (
	msgInvalidTenantID   = "некорректный ID тенанта"
	msgTenantMismatch    = "доступ к чужому тенанту запрещен"
	msgInvalidResourceID = "некорректный ID ресурса"
	msgInvalidCustomerID = "некорректный ID клиента"
	msgInvalidTimeFormat = "некорректный формат времени, ожидается RFC3339"
	msgInvalidFilter     = "некорректные параметры фильтра"
	msgMissingAuth       = "отсутствует идентификатор вызывающего"
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

// Handle GET /api/v1/tenants/{tenantId}/bookings
//
// Query параметры: resourceId, customerId, from, to, status, includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	tenantID, err := strconv.ParseInt(vars["tenantId"], 10, 64)
	if err != nil || tenantID <= 0 {
		h.logger.Warn("GET /tenants/{id}/bookings - Invalid tenant ID: %s", vars["tenantId"])
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	authTenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /tenants/{id}/bookings - Missing tenant ID in context")
		handlers.RespondUnauthorized(w, msgMissingAuth)
		return
	}

	// Тенант из пути обязан совпадать с тенантом вызывающего
	if tenantID != authTenantID {
		h.logger.Warn("GET /tenants/{id}/bookings - Tenant mismatch: path=%d, auth=%d", tenantID, authTenantID)
		handlers.RespondForbidden(w, msgTenantMismatch)
		return
	}

	req := &models.GetTenantBookingsRequest{
		TenantID: tenantID,
	}

	query := r.URL.Query()

	if raw := query.Get("resourceId"); raw != "" {
		resourceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || resourceID <= 0 {
			h.logger.Warn("GET /tenants/{id}/bookings - Invalid resource ID: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidResourceID)
			return
		}
		req.ResourceID = ptr.Ptr(resourceID)
	}

	if raw := query.Get("customerId"); raw != "" {
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || customerID <= 0 {
			h.logger.Warn("GET /tenants/{id}/bookings - Invalid customer ID: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidCustomerID)
			return
		}
		req.CustomerID = ptr.Ptr(customerID)
	}

	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.logger.Warn("GET /tenants/{id}/bookings - Invalid from: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidTimeFormat)
			return
		}
		req.From = ptr.Ptr(from)
	}

	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.logger.Warn("GET /tenants/{id}/bookings - Invalid to: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidTimeFormat)
			return
		}
		req.To = ptr.Ptr(to)
	}

	if raw := query.Get("status"); raw != "" {
		req.Status = ptr.Ptr(raw)
	}

	if raw := query.Get("includeInactive"); raw != "" {
		includeInactive, err := strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /tenants/{id}/bookings - Invalid includeInactive: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidFilter)
			return
		}
		req.IncludeInactive = includeInactive
	}

	result, err := h.service.GetTenantBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /tenants/{id}/bookings - Invalid filter: tenant=%d, error=%v", tenantID, err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /tenants/{id}/bookings - Failed to fetch: tenant=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tenants/{id}/bookings - Fetched %d bookings for tenant=%d", len(result.Bookings), tenantID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
