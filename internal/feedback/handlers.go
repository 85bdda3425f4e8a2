package feedback

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antonminaichev/foodflow/internal/middleware"
	"github.com/antonminaichev/foodflow/internal/response"
	"github.com/antonminaichev/foodflow/internal/types/feedback"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	var req feedback.LeaveRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := h.svc.Leave(r.Context(), middleware.UserIDFromContext(r.Context()), &req)
	if err != nil {
		if errors.Is(err, ErrMissingFields) || errors.Is(err, ErrInvalidRating) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		response.Internal(w, "Internal Server Error", err)
		return
	}
	response.JSON(w, http.StatusCreated, f)
}

func (h *Handler) ListForTarget(w http.ResponseWriter, r *http.Request) {
	fs, err := h.svc.ListForTarget(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		response.Internal(w, "Internal Server Error", err)
		return
	}
	if fs == nil {
		fs = []feedback.Feedback{}
	}
	response.JSON(w, http.StatusOK, fs)
}
