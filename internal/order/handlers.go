package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/antonminaichev/foodflow/internal/middleware"
	"github.com/antonminaichev/foodflow/internal/response"
	"github.com/antonminaichev/foodflow/internal/types/order"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createReq struct {
	DonationID string `json:"donationId"`
}

type statusReq struct {
	Status order.OrderStatus `json:"status"`
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrDonationUnavailable), errors.Is(err, ErrNotAvailableForDelivery),
		errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNotFoundOrAlreadyDelivered):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrDonationNotFound), errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrPartyNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		response.Internal(w, "Internal Server Error", err)
		return
	}
	response.Error(w, code, err.Error())
}

func views(vs []order.View) []order.View {
	if vs == nil {
		return []order.View{}
	}
	return vs
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.DonationID) == "" {
		response.Error(w, http.StatusBadRequest, "donationId is required")
		return
	}
	o, err := h.svc.Create(r.Context(), req.DonationID, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Order created successfully",
		"order":   o,
	})
}

// ClaimDonation serves PUT /donations/{id}/claim.
func (h *Handler) ClaimDonation(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Create(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Donation claimed successfully",
		"order":   o,
	})
}

func (h *Handler) VolunteerClaim(w http.ResponseWriter, r *http.Request) {
	err := h.svc.ClaimDeliveryForDonation(r.Context(), chi.URLParam(r, "donationId"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Delivery claimed successfully")
}

func (h *Handler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkDelivered(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Order marked as delivered")
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()
	err := h.svc.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status, middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Order status updated")
}

func (h *Handler) My(w http.ResponseWriter, r *http.Request) {
	vs, err := h.svc.ListForReceiver(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, views(vs))
}

func (h *Handler) Available(w http.ResponseWriter, r *http.Request) {
	vs, err := h.svc.ListAvailable(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, views(vs))
}

func (h *Handler) Assigned(w http.ResponseWriter, r *http.Request) {
	vs, err := h.svc.ListAssigned(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, views(vs))
}

func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	loc, err := h.svc.Locations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, loc)
}

func (h *Handler) Parties(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Parties(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}
