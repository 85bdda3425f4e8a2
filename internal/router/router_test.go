package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonminaichev/foodflow/internal/donation"
	"github.com/antonminaichev/foodflow/internal/feedback"
	"github.com/antonminaichev/foodflow/internal/notification"
	"github.com/antonminaichev/foodflow/internal/order"
	"github.com/antonminaichev/foodflow/internal/storage/memory"
	usersvc "github.com/antonminaichev/foodflow/internal/user"
)

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func (c *client) do(method, path, token, body string) (int, map[string]interface{}) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.srv.URL+path, strings.NewReader(body))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (c *client) signup(name, role string, lat, lng float64) string {
	c.t.Helper()
	email := name + "@example.com"
	body := `{"name":"` + name + `","email":"` + email + `","password":"secret123","role":"` + role +
		`","location":{"lat":` + jsonNum(lat) + `,"lng":` + jsonNum(lng) + `}}`
	code, _ := c.do(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(c.t, http.StatusCreated, code)

	code, out := c.do(http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"secret123"}`)
	require.Equal(c.t, http.StatusOK, code)
	return out["token"].(string)
}

func jsonNum(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func newServer(t *testing.T) (*client, *memory.Storage) {
	t.Helper()
	store := memory.New()
	secret := []byte("test-secret")

	sink := notification.NewSink(store, nil, nil)
	notifier := donation.NewProximityNotifier(store, sink, donation.DefaultRadiusKm, 4, nil)

	r := NewRouter(Handlers{
		User:         usersvc.NewHandler(usersvc.NewService(store, secret, time.Hour)),
		Donation:     donation.NewHandler(donation.NewService(store, store, store, notifier, time.UTC, nil)),
		Order:        order.NewHandler(order.NewService(store, store, store, nil)),
		Notification: notification.NewHandler(notification.NewService(store, sink)),
		Feedback:     feedback.NewHandler(feedback.NewService(store)),
	}, secret, store, store)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &client{t: t, srv: srv}, store
}

func TestDonationToConfirmedOrder(t *testing.T) {
	c, store := newServer(t)

	donor := c.signup("donor", "donor", 6.9271, 79.8612)
	near := c.signup("near", "receiver", 7.0, 79.8612)
	far := c.signup("far", "receiver", 8.0, 79.8612)
	volunteer := c.signup("vol", "volunteer", 6.9, 79.85)

	exp := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"description":"rice","quantity":"10","location":{"lat":6.9271,"lng":79.8612},"image":"","expiresAt":"` + exp + `"}`

	code, _ := c.do(http.MethodPost, "/api/donations", near, body)
	assert.Equal(t, http.StatusForbidden, code, "receivers cannot donate")

	code, out := c.do(http.MethodPost, "/api/donations", donor, body)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, float64(1), out["notified"])
	donationID := out["id"].(string)

	code, _ = c.do(http.MethodPut, "/api/donations/"+donationID+"/claim", volunteer, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = c.do(http.MethodPut, "/api/donations/"+donationID+"/claim", near, "")
	require.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodPut, "/api/donations/"+donationID+"/claim", far, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do(http.MethodPut, "/api/orders/volunteer/claim/"+donationID, volunteer, "")
	require.Equal(t, http.StatusOK, code)

	o, err := store.FindOrderByDonation(context.Background(), donationID)
	require.NoError(t, err)

	code, _ = c.do(http.MethodPut, "/api/orders/"+o.ID+"/status", volunteer, `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodPut, "/api/orders/"+o.ID+"/status", near, `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, code)

	code, out = c.do(http.MethodGet, "/api/donations/"+donationID, near, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "confirmed", out["status"])
}

func TestOrderStatusRoleChecks(t *testing.T) {
	c, store := newServer(t)

	donor := c.signup("donor", "donor", 6.9271, 79.8612)
	near := c.signup("near", "receiver", 7.0, 79.8612)
	volunteer := c.signup("vol", "volunteer", 6.9, 79.85)

	exp := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"description":"rice","quantity":"10","location":{"lat":6.9271,"lng":79.8612},"image":"","expiresAt":"` + exp + `"}`
	code, out := c.do(http.MethodPost, "/api/donations", donor, body)
	require.Equal(t, http.StatusCreated, code)
	donationID := out["id"].(string)

	code, out = c.do(http.MethodGet, "/api/donations/"+donationID, near, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{}, out["ratings"])

	code, _ = c.do(http.MethodPut, "/api/donations/"+donationID+"/claim", near, "")
	require.Equal(t, http.StatusOK, code)
	o, err := store.FindOrderByDonation(context.Background(), donationID)
	require.NoError(t, err)
	status := "/api/orders/" + o.ID + "/status"

	// receivers and donors cannot take the volunteer slot
	code, _ = c.do(http.MethodPut, status, near, `{"status":"in-transit"}`)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = c.do(http.MethodPut, status, donor, `{"status":"in-transit"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = c.do(http.MethodPut, status, volunteer, `{"status":"in-transit"}`)
	require.Equal(t, http.StatusOK, code)
	code, me := c.do(http.MethodGet, "/api/auth/me", volunteer, "")
	require.Equal(t, http.StatusOK, code)
	got, err := store.FindOrderByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VolunteerID)
	assert.Equal(t, me["id"], *got.VolunteerID)

	code, _ = c.do(http.MethodPut, status, near, `{"status":"delivered"}`)
	assert.Equal(t, http.StatusForbidden, code)

	// donation receipt waits for delivery
	code, _ = c.do(http.MethodPut, "/api/donations/confirm/"+donationID, near, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do(http.MethodPut, status, volunteer, `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, code)

	code, _ = c.do(http.MethodPut, status, volunteer, `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = c.do(http.MethodPut, status, donor, `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = c.do(http.MethodPut, "/api/donations/confirm/"+donationID, near, "")
	require.Equal(t, http.StatusOK, code)
	code, out = c.do(http.MethodGet, "/api/donations/"+donationID, near, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "confirmed", out["status"])
}

func TestAuthRequired(t *testing.T) {
	c, _ := newServer(t)

	code, out := c.do(http.MethodGet, "/api/donations", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, out["error"])

	code, _ = c.do(http.MethodGet, "/api/donations", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = c.do(http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusOK, code)
}
