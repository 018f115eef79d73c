package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"valid", "Bearer abc.def", "abc.def", true},
		{"lowercase scheme", "bearer abc", "abc", true},
		{"extra spaces", "  Bearer   abc  ", "abc", true},
		{"empty", "", "", false},
		{"no token", "Bearer ", "", false},
		{"other scheme", "Basic abc", "", false},
		{"token only", "abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bearerToken(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	s := &Server{logger: logging.Nop{}, jwtSecret: []byte("secret")}

	valid, err := auth.GenerateToken("u1", "u1@example.com", []byte("secret"), time.Hour)
	require.NoError(t, err)
	expired, err := auth.GenerateToken("u1", "u1@example.com", []byte("secret"), -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken("u1", "u1@example.com", []byte("other"), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   auth.Identity
	}{
		{"valid token", "Bearer " + valid, auth.Identity{Authenticated: true, UserID: "u1", Email: "u1@example.com"}},
		{"no header", "", auth.Identity{}},
		{"expired token", "Bearer " + expired, auth.Identity{}},
		{"wrong secret", "Bearer " + foreign, auth.Identity{}},
		{"garbage", "Bearer garbage", auth.Identity{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got auth.Identity
			h := s.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = auth.FromContext(r.Context())
				w.WriteHeader(http.StatusTeapot)
			}))

			req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusTeapot, rec.Code, "authentication never rejects")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCORS(t *testing.T) {
	called := false
	h := cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/graphql", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called, "pre-flight must not reach the handler")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	assert.True(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightThroughRouter(t *testing.T) {
	f := newFixture(t, testConfig())

	req, err := http.NewRequest(http.MethodOptions, f.ts.URL+"/post-image", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRecoverPanics(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	for _, dev := range []bool{false, true} {
		s := &Server{logger: logging.Nop{}, development: dev}

		rec := httptest.NewRecorder()
		s.recoverPanics(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body errorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Internal server error", body.Message)
		if dev {
			assert.Contains(t, body.Stack, "panic: boom")
		} else {
			assert.Empty(t, body.Stack)
		}
	}
}

func TestLogRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := &Server{logger: logging.NewZapLogger(zap.New(core))}

	h := s.logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/post-image", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "PUT", fields["method"])
	assert.Equal(t, "/post-image", fields["path"])
	assert.EqualValues(t, http.StatusCreated, fields["status"])
	assert.Contains(t, fields, "duration")
}
