package donation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/antonminaichev/foodflow/internal/middleware"
	"github.com/antonminaichev/foodflow/internal/response"
	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/util/geo"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// quantity accepts both "5 kg" and 5.
type quantity string

func (q *quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = quantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("quantity must be a string or a number")
	}
	*q = quantity(n.String())
	return nil
}

type pointReq struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type createReq struct {
	Description *string   `json:"description"`
	Quantity    *quantity `json:"quantity"`
	Location    *pointReq `json:"location"`
	Image       *string   `json:"image"`
	ExpiresAt   *string   `json:"expiresAt"`
}

type editReq struct {
	Description *string   `json:"description"`
	Quantity    *quantity `json:"quantity"`
	Image       *string   `json:"image"`
	ExpiresAt   *string   `json:"expiresAt"`
}

type rateReq struct {
	Rating json.RawMessage `json:"rating"`
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidExpiry),
		errors.Is(err, ErrInvalidLocation), errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrInvalidState), errors.Is(err, ErrNotAvailable):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotClaimant), errors.Is(err, ErrOwnDonation), errors.Is(err, ErrAlreadyRated):
		return http.StatusForbidden
	case errors.Is(err, ErrDonationNotFound), errors.Is(err, ErrDonorNotFound), errors.Is(err, ErrNotOwner):
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

func list(ds []donation.Donation) []donation.Donation {
	if ds == nil {
		return []donation.Donation{}
	}
	return ds
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Description == nil || req.Quantity == nil || req.Location == nil || req.Image == nil ||
		req.ExpiresAt == nil || req.Location.Lat == nil || req.Location.Lng == nil {
		writeErr(w, ErrMissingFields)
		return
	}

	d, notified, err := h.svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), CreateInput{
		Description: *req.Description,
		Quantity:    string(*req.Quantity),
		Location:    geo.Point{Lat: *req.Location.Lat, Lng: *req.Location.Lng},
		Image:       *req.Image,
		ExpiresAt:   *req.ExpiresAt,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Donation created and nearby receivers notified!",
		"id":       d.ID,
		"notified": notified,
	})
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.ListPending(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, list(ds))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.ListMine(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, list(ds))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, d)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Confirm(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Donation confirmed")
}

func (h *Handler) DeleteExpired(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteExpired(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%d expired donations removed", n),
		"count":   n,
	})
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	var req editReq
	if err := decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	in := EditInput{Description: req.Description, Image: req.Image, ExpiresAt: req.ExpiresAt}
	if req.Quantity != nil {
		q := string(*req.Quantity)
		in.Quantity = &q
	}
	if err := h.svc.Edit(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()), in); err != nil {
		writeErr(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Donation updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context())); err != nil {
		writeErr(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Donation deleted successfully")
}

func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	var req rateReq
	if err := decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	// only a bare JSON integer is a valid rating
	value, err := strconv.Atoi(string(bytes.TrimSpace(req.Rating)))
	if err != nil {
		writeErr(w, ErrInvalidRating)
		return
	}
	if err := h.svc.Rate(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()), value); err != nil {
		writeErr(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Rating submitted successfully")
}

func (h *Handler) MyRating(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.MyRating(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]*int{"rating": v})
}

func (h *Handler) DonorProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.DonorProfile(r.Context(), chi.URLParam(r, "donorId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (h *Handler) DonorCompleted(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.ListDonorCompleted(r.Context(), chi.URLParam(r, "donorId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, list(ds))
}

func (h *Handler) UserDelivered(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.ListDonorDelivered(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, list(ds))
}
