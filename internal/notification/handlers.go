package notification

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antonminaichev/foodflow/internal/middleware"
	"github.com/antonminaichev/foodflow/internal/response"
	"github.com/antonminaichev/foodflow/internal/types/notification"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createReq struct {
	User                string  `json:"user"`
	Message             string  `json:"message"`
	Type                string  `json:"type"`
	TargetDonationID    *string `json:"targetDonationId"`
	TargetDonationTitle *string `json:"targetDonationTitle"`
	TargetDonationImage *string `json:"targetDonationImage"`
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotificationNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	default:
		response.Internal(w, "Internal Server Error", err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ns, err := h.svc.List(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	if ns == nil {
		ns = []notification.Notification{}
	}
	response.JSON(w, http.StatusOK, ns)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := h.svc.Create(r.Context(), CreateInput{
		UserID:              req.User,
		Message:             req.Message,
		Type:                req.Type,
		TargetDonationID:    req.TargetDonationID,
		TargetDonationTitle: req.TargetDonationTitle,
		TargetDonationImage: req.TargetDonationImage,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, n)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, n)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context())); err != nil {
		writeErr(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Notification deleted")
}
