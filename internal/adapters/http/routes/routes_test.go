package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	_ "congregation-api/docs"
	"congregation-api/internal/adapters/http/middleware"
	"congregation-api/internal/adapters/lock"
	"congregation-api/internal/config"
	"congregation-api/internal/pkg/jwt"
	"congregation-api/internal/pkg/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type outbox struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (o *outbox) Send(_ context.Context, address, _, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return assert.AnError
	}
	o.sent = append(o.sent, address)
	return nil
}

type testApp struct {
	app    *fiber.App
	db     *gorm.DB
	cfg    *config.Config
	outbox *outbox
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.TestDB(t)
	config.DB = db
	t.Cleanup(func() { config.DB = nil })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Cron: config.CronConfig{
			ReceiptRetrySpec: "@every 15m",
			TokenCleanupSpec: "0 3 * * *",
			PhoneCodeSpec:    "@every 30m",
		},
		LockTTL: 5 * time.Second,
	}

	box := &outbox{}
	deps := Dependencies{
		DB:       db,
		Config:   cfg,
		Redis:    client,
		Notifier: box,
		Locker:   lock.NewRedisLocker(client),
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Setup(app, NewContainer(deps), deps)

	return &testApp{app: app, db: db, cfg: cfg, outbox: box}
}

func (a *testApp) token(t *testing.T, id uint, kind, username, role string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(id, kind, username, role, a.cfg.JWT.Secret, a.cfg.JWT.AccessTokenMins)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (a *testApp) do(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "healthy", body.Checks["redis"])
}

func TestSwaggerDocument(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/donations/{id}/receipt")
	assert.Contains(t, doc.Paths, "/forum/posts/{id}/upvote")
}

func TestAuthRequired(t *testing.T) {
	a := newTestApp(t)

	status, env := a.do(t, http.MethodGet, "/api/v1/forum/posts", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = a.do(t, http.MethodGet, "/api/v1/forum/posts", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestKindGuards(t *testing.T) {
	a := newTestApp(t)

	member := testutil.CreateMember(t, a.db, "nathanael")
	admin := testutil.CreateAdmin(t, a.db, "overseer")
	memberToken := a.token(t, member.ID, "MEMBER", member.Username, "MEMBER")
	adminToken := a.token(t, admin.ID, "ADMIN", admin.Username, "ADMIN")

	status, _ := a.do(t, http.MethodGet, "/api/v1/members", memberToken, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.do(t, http.MethodGet, "/api/v1/members", adminToken, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(t, http.MethodGet, "/api/v1/profile", adminToken, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.do(t, http.MethodGet, "/api/v1/profile", memberToken, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestForumOverHTTP(t *testing.T) {
	a := newTestApp(t)

	author := testutil.CreateMember(t, a.db, "mark")
	other := testutil.CreateMember(t, a.db, "luke")
	authorToken := a.token(t, author.ID, "MEMBER", author.Username, "MEMBER")
	otherToken := a.token(t, other.ID, "MEMBER", other.Username, "MEMBER")

	status, env := a.do(t, http.MethodPost, "/api/v1/forum/posts", authorToken, `{"title":"Harvest festival","content":"Volunteers needed"}`)
	require.Equal(t, http.StatusCreated, status, env.Error)

	var post struct {
		ID      uint `json:"id"`
		Upvotes int  `json:"upvotes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &post))

	path := "/api/v1/forum/posts/" + itoa(post.ID)

	status, env = a.do(t, http.MethodPost, path+"/upvote", otherToken, "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Equal(t, 1, post.Upvotes)

	status, _ = a.do(t, http.MethodPut, path, otherToken, `{"title":"Hijacked"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.do(t, http.MethodDelete, path, authorToken, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(t, http.MethodGet, path, otherToken, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDonationReceiptOverHTTP(t *testing.T) {
	a := newTestApp(t)

	donor := testutil.CreateMember(t, a.db, "cornelius")
	stranger := testutil.CreateMember(t, a.db, "simon")
	donorToken := a.token(t, donor.ID, "MEMBER", donor.Username, "MEMBER")
	strangerToken := a.token(t, stranger.ID, "MEMBER", stranger.Username, "MEMBER")

	status, env := a.do(t, http.MethodPost, "/api/v1/donations", donorToken, `{"amount":50,"currency":"USD","payment_method":"card"}`)
	require.Equal(t, http.StatusCreated, status, env.Error)

	var donation struct {
		ID          uint   `json:"id"`
		Status      string `json:"status"`
		ReceiptSent bool   `json:"receipt_sent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &donation))
	assert.Equal(t, "Pending", donation.Status)

	path := "/api/v1/donations/" + itoa(donation.ID)

	status, _ = a.do(t, http.MethodGet, path, strangerToken, "")
	assert.Equal(t, http.StatusForbidden, status)

	a.outbox.fail = true
	status, env = a.do(t, http.MethodPost, path+"/receipt", donorToken, "")
	require.Equal(t, http.StatusAccepted, status)
	require.NoError(t, json.Unmarshal(env.Data, &donation))
	assert.False(t, donation.ReceiptSent)

	a.outbox.fail = false
	status, env = a.do(t, http.MethodPost, path+"/receipt", donorToken, "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &donation))
	assert.True(t, donation.ReceiptSent)

	status, _ = a.do(t, http.MethodPost, path+"/receipt", donorToken, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{donor.Email}, a.outbox.sent)

	status, env = a.do(t, http.MethodGet, path+"/receipt", donorToken, "")
	require.Equal(t, http.StatusOK, status)
	var preview struct {
		Receipt string `json:"receipt"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &preview))
	assert.Contains(t, preview.Receipt, "Amount: 50.00 USD")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
