package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antonminaichev/foodflow/internal/middleware"
	"github.com/antonminaichev/foodflow/internal/response"
	"github.com/antonminaichev/foodflow/internal/types/user"
	"github.com/antonminaichev/foodflow/internal/util/geo"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerReq struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	Role       user.Role  `json:"role"`
	ProfilePic string     `json:"profilePic"`
	Location   *geo.Point `json:"location"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateReq struct {
	Name         *string    `json:"name"`
	Role         *user.Role `json:"role"`
	ProfilePic   *string    `json:"profilePic"`
	MobileNumber *string    `json:"mobileNumber"`
	Location     *geo.Point `json:"location"`
	Password     *string    `json:"password"`
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrInvalidLocation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCreds):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		response.Internal(w, "internal error", err)
		return
	}
	response.Error(w, code, err.Error())
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err := h.svc.Register(r.Context(), RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		ProfilePic: req.ProfilePic,
		Location:   req.Location,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	response.Message(w, http.StatusCreated, "User registered successfully")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	token, u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"token":  token,
		"role":   u.Role,
		"userId": u.ID,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateReq
	if err := decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), UpdateInput(req))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated",
		"user":    u,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		writeErr(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Account deleted successfully")
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, http.StatusOK, u.Public())
}
