package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/antonminaichev/foodflow/internal/middleware"
	"github.com/antonminaichev/foodflow/internal/storage/memory"
	"github.com/antonminaichev/foodflow/internal/types/notification"
	"github.com/antonminaichev/foodflow/internal/types/user"
)

type fakePublisher struct {
	got []*notification.Notification
	err error
}

func (p *fakePublisher) Publish(ctx context.Context, n *notification.Notification) error {
	p.got = append(p.got, n)
	return p.err
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestSinkStoresAndPublishes(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	sink := NewSink(store, pub, nil)
	ctx := context.Background()

	n := &notification.Notification{UserID: "u1", Message: "hello", Type: notification.TypeDonation}
	require.NoError(t, sink.Notify(ctx, n))
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
	require.Len(t, pub.got, 1)
	assert.Equal(t, n.ID, pub.got[0].ID)

	stored, err := store.ListNotificationsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "hello", stored[0].Message)
}

func TestSinkPublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := memory.New()
	sink := NewSink(store, &fakePublisher{err: errors.New("broker down")}, zap.New(core))

	err := sink.Notify(context.Background(), &notification.Notification{UserID: "u1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("notification publish failed").Len())

	stored, err := store.ListNotificationsByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestKafkaPublisherKeysByRecipient(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}
	n := &notification.Notification{ID: "n1", UserID: "u7", Message: "m"}
	require.NoError(t, p.Publish(context.Background(), n))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "u7", string(w.msgs[0].Key))
	var got notification.Notification
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "n1", got.ID)
}

func TestServiceCRUD(t *testing.T) {
	store := memory.New()
	svc := NewService(store, NewSink(store, nil, nil))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{UserID: "u1"})
	assert.ErrorIs(t, err, ErrMissingFields)

	n, err := svc.Create(ctx, CreateInput{UserID: "u1", Message: "welcome"})
	require.NoError(t, err)
	assert.Equal(t, notification.TypeInfo, n.Type)

	_, err = svc.MarkRead(ctx, n.ID, "u2")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	read, err := svc.MarkRead(ctx, n.ID, "u1")
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	assert.ErrorIs(t, svc.Delete(ctx, n.ID, "u2"), ErrNotificationNotFound)
	require.NoError(t, svc.Delete(ctx, n.ID, "u1"))
	ns, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestHandlers(t *testing.T) {
	store := memory.New()
	h := NewHandler(NewService(store, NewSink(store, nil, nil)))
	r := chi.NewRouter()
	r.Get("/notifications", h.List)
	r.Post("/notifications", h.Create)
	r.Put("/notifications/{id}/read", h.MarkRead)

	call := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(middleware.ContextWithUser(req.Context(), "u1", user.RoleReceiver))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := call(http.MethodGet, "/notifications", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = call(http.MethodPost, "/notifications", `{"user":"u1","message":"hi","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(http.MethodPost, "/notifications", `{"user":"u1","message":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var n notification.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))

	rec = call(http.MethodPut, "/notifications/"+n.ID+"/read", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = call(http.MethodPut, "/notifications/nope/read", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
