package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-users/internal/api/handlers/mocks"
	"github.com/talx-hub/gopher-users/internal/api/middlewares"
	"github.com/talx-hub/gopher-users/internal/model/user"
)

const (
	strongPassword  = "very-strong-password"
	anotherPassword = "another-very-strong-password"
)

var testSecret = []byte("super-secret-key")

type testMocks struct {
	repo     *mocks.MockUserRepository
	mailer   *mocks.MockMailDispatcher
	tokens   *mocks.MockResetTokenStore
	throttle *mocks.MockLoginThrottle
	pinger   *mocks.MockPinger
}

func testSettings() Settings {
	return Settings{
		SecretKey:          testSecret,
		AccessTokenExpire:  time.Hour,
		ResetTokenExpire:   2 * time.Hour,
		PasswordMinEntropy: 50,
		EmailsEnabled:      true,
	}
}

func newTestHandler(t *testing.T, settings Settings) (*HTTPHandler, *testMocks) {
	t.Helper()

	m := &testMocks{
		repo:     mocks.NewMockUserRepository(t),
		mailer:   mocks.NewMockMailDispatcher(t),
		tokens:   mocks.NewMockResetTokenStore(t),
		throttle: mocks.NewMockLoginThrottle(t),
		pinger:   mocks.NewMockPinger(t),
	}
	h := New(m.repo, m.mailer, m.tokens, m.throttle, m.pinger, settings, slog.Default())
	return h, m
}

func newRequest(method, target, body string) *http.Request {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	return httptest.NewRequest(method, target, r)
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asUser(r *http.Request, u user.User) *http.Request {
	return r.WithContext(middlewares.WithUser(r.Context(), u))
}

func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, r)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func detailOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	return decodeBody[struct {
		Detail string `json:"detail"`
	}](t, rr).Detail
}

func fieldsOf(t *testing.T, rr *httptest.ResponseRecorder) []string {
	t.Helper()

	body := decodeBody[struct {
		Detail map[string]string `json:"detail"`
	}](t, rr)
	fields := make([]string, 0, len(body.Detail))
	for f := range body.Detail {
		fields = append(fields, f)
	}
	return fields
}

func ptr[T any](v T) *T {
	return &v
}
