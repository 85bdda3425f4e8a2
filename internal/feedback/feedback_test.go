package feedback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/antonminaichev/foodflow/internal/middleware"
	"github.com/antonminaichev/foodflow/internal/types/feedback"
	"github.com/antonminaichev/foodflow/internal/types/user"
)

type stubFeedbackRepo struct {
	items     []feedback.Feedback
	errCreate error
	errList   error
}

func (r *stubFeedbackRepo) CreateFeedback(ctx context.Context, f *feedback.Feedback) error {
	if r.errCreate != nil {
		return r.errCreate
	}
	r.items = append(r.items, *f)
	return nil
}

func (r *stubFeedbackRepo) ListFeedbackByTarget(ctx context.Context, targetID string) ([]feedback.Feedback, error) {
	if r.errList != nil {
		return nil, r.errList
	}
	var out []feedback.Feedback
	for _, f := range r.items {
		if f.TargetID == targetID {
			out = append(out, f)
		}
	}
	return out, nil
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestLeave(t *testing.T) {
	repo := &stubFeedbackRepo{}
	svc := NewService(repo)

	f, err := svc.Leave(context.Background(), "u1", &feedback.LeaveRequest{
		Target: strp("v1"), Type: strp("volunteer"), Rating: intp(5), Comment: "on time",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ID == "" || f.UserID != "u1" || f.TargetID != "v1" {
		t.Errorf("unexpected feedback %+v", f)
	}
	if len(repo.items) != 1 {
		t.Errorf("expected 1 stored feedback, got %d", len(repo.items))
	}
}

func TestLeaveValidation(t *testing.T) {
	svc := NewService(&stubFeedbackRepo{})
	tests := []struct {
		name string
		req  feedback.LeaveRequest
		want error
	}{
		{"no target", feedback.LeaveRequest{Type: strp("donor"), Rating: intp(3)}, ErrMissingFields},
		{"no rating", feedback.LeaveRequest{Target: strp("d1"), Type: strp("donor")}, ErrMissingFields},
		{"rating too high", feedback.LeaveRequest{Target: strp("d1"), Type: strp("donor"), Rating: intp(6)}, ErrInvalidRating},
		{"rating zero", feedback.LeaveRequest{Target: strp("d1"), Type: strp("donor"), Rating: intp(0)}, ErrInvalidRating},
	}
	for _, tt := range tests {
		req := tt.req
		if _, err := svc.Leave(context.Background(), "u1", &req); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestLeaveRepoError(t *testing.T) {
	svc := NewService(&stubFeedbackRepo{errCreate: errors.New("db error")})
	_, err := svc.Leave(context.Background(), "u1", &feedback.LeaveRequest{
		Target: strp("v1"), Type: strp("volunteer"), Rating: intp(4),
	})
	if err == nil {
		t.Error("expected error, got nil")
	}
}

func TestHandlers(t *testing.T) {
	repo := &stubFeedbackRepo{}
	h := NewHandler(NewService(repo))
	r := chi.NewRouter()
	r.Post("/feedback", h.Leave)
	r.Get("/feedback/{userId}", h.ListForTarget)

	call := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(middleware.ContextWithUser(req.Context(), "u1", user.RoleReceiver))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := call(http.MethodGet, "/feedback/v1", ""); rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty list, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := call(http.MethodPost, "/feedback", `{"target":"v1","type":"volunteer","rating":9}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if rec := call(http.MethodPost, "/feedback", `{"target":"v1","type":"volunteer","rating":4,"comment":"ok"}`); rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if rec := call(http.MethodGet, "/feedback/v1", ""); !strings.Contains(rec.Body.String(), `"comment":"ok"`) {
		t.Errorf("expected stored feedback, got %s", rec.Body.String())
	}

	repo.errList = errors.New("db error")
	if rec := call(http.MethodGet, "/feedback/v1", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
