package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-users/internal/api/handlers/mocks"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/auth"
)

var testSecret = []byte("test-secret")

func issueToken(t *testing.T, userID int64, scopes []string, expiresIn time.Duration) string {
	t.Helper()

	token, err := auth.CreateAccessToken(
		auth.TokenData{UserID: userID, Scopes: scopes}, testSecret, expiresIn)
	require.NoError(t, err)
	return token
}

func detail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Detail
}

func TestAuthentication(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantCode   int
		wantDetail string
	}{
		{"no header", "", http.StatusUnauthorized, msgNotAuthenticated},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, msgNotAuthenticated},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized, msgBadCredentials},
		{"foreign key", "Bearer " + func() string {
			tok, _ := auth.CreateAccessToken(auth.TokenData{UserID: 1}, []byte("other"), time.Hour)
			return tok
		}(), http.StatusUnauthorized, msgBadCredentials},
		{"reset token", "Bearer " + issueToken(t, 1, []string{model.ScopeResetPassword}, time.Hour),
			http.StatusUnauthorized, msgBadCredentials},
		{"valid", "Bearer " + issueToken(t, 7, []string{"me"}, time.Hour), http.StatusTeapot, ""},
		{"lowercase scheme", "bearer " + issueToken(t, 7, nil, time.Hour), http.StatusTeapot, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken auth.TokenData
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotToken, _ = TokenFromContext(r.Context())
				w.WriteHeader(http.StatusTeapot)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", http.NoBody)
			if tt.header != "" {
				req.Header.Set(model.HeaderAuthorization, tt.header)
			}
			rr := httptest.NewRecorder()
			Authentication(testSecret, slog.Default())(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rr.Header().Get(model.HeaderWWWAuthenticate))
				assert.Equal(t, tt.wantDetail, detail(t, rr))
				return
			}
			assert.Equal(t, int64(7), gotToken.UserID)
		})
	}
}

func TestActiveUser(t *testing.T) {
	active := user.User{ID: 1, Email: "a@example.com", IsActive: true}
	inactive := user.User{ID: 2, Email: "b@example.com"}

	tests := []struct {
		name       string
		noToken    bool
		userID     int64
		findUser   user.User
		findErr    error
		wantCode   int
		wantDetail string
	}{
		{"active", false, 1, active, nil, http.StatusTeapot, ""},
		{"inactive", false, 2, inactive, nil, http.StatusBadRequest, msgInactiveUser},
		{"deleted", false, 3, user.User{}, serviceerrs.ErrNotFound, http.StatusNotFound, msgUserNotFound},
		{"db down", false, 1, user.User{}, errors.New("conn refused"), http.StatusInternalServerError, "Internal Server Error"},
		{"no token in context", true, 0, user.User{}, nil, http.StatusUnauthorized, msgNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockUserRepository(t)
			if !tt.noToken {
				repo.EXPECT().FindByID(mock.Anything, tt.userID).Return(tt.findUser, tt.findErr)
			}

			var got user.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = CurrentUser(r.Context())
				w.WriteHeader(http.StatusTeapot)
			})

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if !tt.noToken {
				ctx := context.WithValue(req.Context(), model.KeyContextToken,
					auth.TokenData{UserID: tt.userID})
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()
			ActiveUser(repo)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode == http.StatusTeapot {
				assert.Equal(t, tt.findUser, got)
				return
			}
			assert.Equal(t, tt.wantDetail, detail(t, rr))
		})
	}
}

func TestSuperuser(t *testing.T) {
	tests := []struct {
		name     string
		user     *user.User
		wantCode int
	}{
		{"superuser", &user.User{ID: 1, IsActive: true, IsSuperuser: true}, http.StatusTeapot},
		{"regular", &user.User{ID: 2, IsActive: true}, http.StatusBadRequest},
		{"anonymous", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			})

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), *tt.user))
			}
			rr := httptest.NewRecorder()
			Superuser(next).ServeHTTP(rr, req)
			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var fromCtx *slog.Logger
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx, _ = r.Context().Value(model.KeyContextLogger).(*slog.Logger)
		w.WriteHeader(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	RequestLogger(slog.Default())(next).ServeHTTP(rr,
		httptest.NewRequest(http.MethodPost, "/api/v1/users/", http.NoBody))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotNil(t, fromCtx)
}
