package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalhub/internal/adapter/api"
	"rentalhub/internal/adapter/api/handler"
	"rentalhub/internal/adapter/api/middleware"
	"rentalhub/internal/adapter/api/router"
	"rentalhub/internal/adapter/repository"
	"rentalhub/internal/domain/entity"
	"rentalhub/internal/infrastructure/jwtauth"
	"rentalhub/internal/infrastructure/ratelimit"
	"rentalhub/internal/infrastructure/taskqueue"
	ws "rentalhub/internal/infrastructure/websocket"
	"rentalhub/internal/usecase"
	"rentalhub/pkg/response"
)

const readTimeout = 3 * time.Second

type harness struct {
	server    *httptest.Server
	authority *jwtauth.Authority
	manager   *ws.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := repository.OpenDatabase("sqlite", ":memory:")
	require.NoError(t, err)
	store := repository.NewGormStore(db)

	dir := repository.NewStaticDirectory()
	dir.PutUser(&entity.User{ID: "4", Name: "Tenant Four"})
	dir.PutUser(&entity.User{ID: "1", Name: "Landlord One"})
	dir.PutProperty(&entity.Property{ID: "1", Title: "Sunny loft", LandlordID: "1"})

	manager := ws.NewManager()
	tasks := taskqueue.New(2, 16)
	limiter := ratelimit.NewRateLimiter(ratelimit.Policy{PerMinute: 6000, Burst: 1000}, nil)

	chatUseCase := usecase.NewChatUseCase(store, store.Interactions(), dir, dir, manager, tasks, limiter)
	readTracker := usecase.NewReadTracker(store, manager)
	validator := api.NewValidator()
	authority := jwtauth.NewAuthority("test-secret", time.Hour)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	handler.Setup(
		handler.NewChatHandler(chatUseCase, readTracker),
		handler.NewWebSocketHandler(manager, chatUseCase, readTracker, validator, nil),
		handler.NewHealthHandler(sqlDB.PingContext, manager.ClientCount),
		handler.NewDevTokenHandler(authority),
	)

	e := echo.New()
	e.Validator = validator
	e.HTTPErrorHandler = response.ErrorHandler
	router.Setup(e, middleware.NewAuthMiddleware(authority), limiter, "development")

	server := httptest.NewServer(e)
	t.Cleanup(func() {
		server.Close()
		manager.Shutdown()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		tasks.Stop(ctx)
		sqlDB.Close()
	})

	return &harness{server: server, authority: authority, manager: manager}
}

func (h *harness) token(t *testing.T, uid string) string {
	t.Helper()
	token, err := h.authority.GenerateToken(context.Background(), uid)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends a REST request as uid. An empty uid sends no credentials.
func (h *harness) do(t *testing.T, method, path, uid string, body io.Reader) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, h.server.URL+path, body)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if uid != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+h.token(t, uid))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

type socket struct {
	t    *testing.T
	conn *gorillaws.Conn
}

func (h *harness) wsURL(query string) string {
	return "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws" + query
}

func (h *harness) connect(t *testing.T, uid string) *socket {
	t.Helper()
	conn, _, err := gorillaws.DefaultDialer.Dial(h.wsURL("?token="+h.token(t, uid)), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &socket{t: t, conn: conn}
}

func (s *socket) send(event string, data interface{}) {
	s.t.Helper()
	frame, err := ws.Encode(event, data)
	require.NoError(s.t, err)
	require.NoError(s.t, s.conn.WriteMessage(gorillaws.TextMessage, frame))
}

// sync round-trips a ping. Frames are handled in order per connection, so
// once the pong arrives every earlier frame has been processed.
func (s *socket) sync() {
	s.t.Helper()
	s.send(handler.EventPing, nil)
	s.expect(usecase.EventPong)
}

// expect reads until event arrives, skipping anything else, and decodes its
// data into out when out is non-nil.
func (s *socket) expect(event string, out ...interface{}) {
	s.t.Helper()
	deadline := time.Now().Add(readTimeout)
	for {
		require.NoError(s.t, s.conn.SetReadDeadline(deadline))
		_, frame, err := s.conn.ReadMessage()
		require.NoError(s.t, err, "waiting for %s", event)

		var env ws.Envelope
		require.NoError(s.t, json.Unmarshal(frame, &env))
		if env.Event != event {
			continue
		}
		if len(out) > 0 && out[0] != nil {
			require.NoError(s.t, json.Unmarshal(env.Data, out[0]))
		}
		return
	}
}

// assertWireKeys decodes a JSON array of objects and checks that every object
// carries the want keys and no snake_case ones.
func assertWireKeys(t *testing.T, raw []byte, want ...string) {
	t.Helper()
	var objects []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &objects))
	require.NotEmpty(t, objects)
	for _, obj := range objects {
		for _, key := range want {
			assert.Contains(t, obj, key)
		}
		for key := range obj {
			assert.NotContains(t, key, "_", "snake_case key %q in %s", key, raw)
		}
	}
}

// silent asserts that nothing but pongs arrives within wait. The read
// deadline breaks the connection, so this must be the socket's last read.
func (s *socket) silent(wait time.Duration) {
	s.t.Helper()
	require.NoError(s.t, s.conn.SetReadDeadline(time.Now().Add(wait)))
	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var env ws.Envelope
		require.NoError(s.t, json.Unmarshal(frame, &env))
		require.Equal(s.t, usecase.EventPong, env.Event, "unexpected frame %s", frame)
	}
}
