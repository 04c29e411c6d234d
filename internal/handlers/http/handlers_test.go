package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"
	"murmurnet/internal/core/services"
	"murmurnet/internal/infrastructure/broadcast"
	"murmurnet/internal/infrastructure/middleware"
	"murmurnet/internal/infrastructure/repositories/memory"
	"murmurnet/pkg/password"
)

type stubModeration struct {
	report *domain.ModerationReport
	err    error
}

func (s *stubModeration) Classify(ctx context.Context, text string) (*domain.ModerationReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

type testApp struct {
	router *gin.Engine
	hub    *broadcast.Hub
	mod    *stubModeration
}

// newTestApp wires the full request path with in-memory storage and header
// token transport, which keeps the responses JSON.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop().Sugar()

	tokens, err := services.NewTokenService("handler-test-secret", time.Hour)
	require.NoError(t, err)

	users := memory.NewMemoryUserRepository()
	posts := memory.NewMemoryPostRepository(users)

	hub := broadcast.NewHub(16, logger, nil)
	t.Cleanup(hub.Shutdown)

	mod := &stubModeration{report: &domain.ModerationReport{}}

	userService := services.NewUserService(users, tokens, password.NewHasher(password.DefaultParams()), logger)
	feedService := services.NewFeedService(posts, mod, hub, nil, nil, logger)

	router := gin.New()

	authHandler := NewAuthHandler(userService, middleware.TransportHeader, "jwt", time.Hour, logger)
	authHandler.SetupRoutes(router)

	protected := router.Group("/", middleware.AuthRequired(tokens, middleware.TransportHeader, "jwt"))
	NewFeedHandler(feedService, logger).SetupRoutes(protected)
	NewLiveHandler(hub, time.Minute, time.Second, logger).SetupRoutes(protected)

	return &testApp{router: router, hub: hub, mod: mod}
}

func (a *testApp) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) signup(t *testing.T, username, pass string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/signup", "", `{"username":"`+username+`","password":"`+pass+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSignupAndLogin(t *testing.T) {
	app := newTestApp(t)

	token := app.signup(t, "alice", "correct horse battery")
	assert.NotEmpty(t, token)

	t.Run("duplicate username conflicts", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/signup", "", `{"username":"alice","password":"correct horse battery"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "username already taken")
	})

	t.Run("login with right password", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/login", "", `{"username":"alice","password":"correct horse battery"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "token")
	})

	t.Run("wrong password and unknown user answer alike", func(t *testing.T) {
		w1 := app.do(t, http.MethodPost, "/login", "", `{"username":"alice","password":"wrong password!"}`)
		w2 := app.do(t, http.MethodPost, "/login", "", `{"username":"nobody","password":"wrong password!"}`)

		assert.Equal(t, http.StatusUnauthorized, w1.Code)
		assert.Equal(t, http.StatusUnauthorized, w2.Code)
		assert.Equal(t, w1.Body.String(), w2.Body.String())
	})

	t.Run("short username rejected", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/signup", "", `{"username":"ab","password":"correct horse battery"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFeedRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/posts", "", `{"content":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostAndReadFeed(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice", "correct horse battery")

	w := app.do(t, http.MethodPost, "/posts", token, `{"content":"first post"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/posts", token, `{"content":"second post"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(t, http.MethodGet, "/", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Posts []domain.FeedEvent `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 2)
	// newest first
	assert.Equal(t, "second post", resp.Posts[0].Content)
	assert.Equal(t, "alice", resp.Posts[0].Author)
	assert.Equal(t, "first post", resp.Posts[1].Content)
}

func TestCreatePostValidation(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice", "correct horse battery")

	t.Run("empty post", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/posts", token, `{"content":"   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "empty")
	})

	t.Run("too long post", func(t *testing.T) {
		long := strings.Repeat("a", domain.MaxPostLength+1)
		w := app.do(t, http.MethodPost, "/posts", token, `{"content":"`+long+`"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "too long")
	})
}

func TestCreatePostModerationRejection(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice", "correct horse battery")

	app.mod.report = &domain.ModerationReport{Spam: 0.95}

	w := app.do(t, http.MethodPost, "/posts", token, `{"content":"BUY NOW!!!"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "declined by content moderation")

	// nothing persisted, nothing in the feed
	app.mod.report = &domain.ModerationReport{}
	w = app.do(t, http.MethodGet, "/", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Posts []domain.FeedEvent `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Posts)
}

func TestAcceptedPostReachesLiveSubscriber(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice", "correct horse battery")

	sub := app.hub.Register()
	defer app.hub.Unregister(sub.ID)

	w := app.do(t, http.MethodPost, "/posts", token, `{"content":"hello live"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	select {
	case event := <-sub.C:
		assert.Equal(t, domain.EventKindPost, event.Kind)
		assert.Equal(t, "alice", event.Author)
		assert.Equal(t, "hello live", event.Content)
	case <-time.After(time.Second):
		t.Fatal("no event delivered to live subscriber")
	}
}

func TestRejectedPostPublishesNothing(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice", "correct horse battery")

	sub := app.hub.Register()
	defer app.hub.Unregister(sub.ID)

	app.mod.report = &domain.ModerationReport{Toxic: 0.9}
	w := app.do(t, http.MethodPost, "/posts", token, `{"content":"something nasty"}`)
	require.Equal(t, http.StatusOK, w.Code)

	select {
	case event := <-sub.C:
		t.Fatalf("unexpected event delivered: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

var _ ports.ModerationClient = (*stubModeration)(nil)
