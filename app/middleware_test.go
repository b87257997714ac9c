package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newMiddlewareTestApp() *application {
	return &application{config: testConfig(), logger: discardLogger()}
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRecoverPanic(t *testing.T) {
	app := newMiddlewareTestApp()

	h := app.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}

func TestLogRequest(t *testing.T) {
	app := newMiddlewareTestApp()

	var seen string
	h := app.logRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestID(r)
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates an id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTeapot, rr.Code)
		id := rr.Header().Get("X-Request-ID")
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("keeps a valid incoming id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", id)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, id, rr.Header().Get("X-Request-ID"))
		assert.Equal(t, id, seen)
	})

	t.Run("replaces a malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "not-an-id")

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.NotEqual(t, "not-an-id", rr.Header().Get("X-Request-ID"))
	})
}

func TestEnableCORS(t *testing.T) {
	app := newMiddlewareTestApp()
	h := app.enableCORS(http.HandlerFunc(okHandler))

	testCases := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantOrigin  string
		wantMethods string
	}{
		{name: "no origin", method: http.MethodGet},
		{name: "untrusted origin", method: http.MethodGet, origin: "https://evil.com"},
		{name: "trusted origin", method: http.MethodGet, origin: "https://trusted.com", wantOrigin: "https://trusted.com"},
		{
			name:        "preflight",
			method:      http.MethodOptions,
			origin:      "https://trusted.com",
			preflight:   true,
			wantOrigin:  "https://trusted.com",
			wantMethods: "OPTIONS, PUT, PATCH, DELETE",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/blog", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			}

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tc.wantMethods, rr.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, []string{"Origin", "Access-Control-Request-Method"}, rr.Header().Values("Vary"))
		})
	}
}

func TestRateLimit(t *testing.T) {
	request := func(h http.Handler, addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	t.Run("enabled", func(t *testing.T) {
		app := newMiddlewareTestApp()
		app.config.RateLimitEnabled = true
		app.config.RateLimitRPS = 0.001
		app.config.RateLimitBurst = 2
		h := app.rateLimit(http.HandlerFunc(okHandler))

		assert.Equal(t, http.StatusOK, request(h, "10.0.0.1:1234"))
		assert.Equal(t, http.StatusOK, request(h, "10.0.0.1:1235"))
		assert.Equal(t, http.StatusTooManyRequests, request(h, "10.0.0.1:1236"))
		assert.Equal(t, http.StatusOK, request(h, "10.0.0.2:1234"))
	})

	t.Run("disabled", func(t *testing.T) {
		app := newMiddlewareTestApp()
		app.config.RateLimitEnabled = false
		app.config.RateLimitBurst = 1
		h := app.rateLimit(http.HandlerFunc(okHandler))

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, request(h, "10.0.0.1:1234"))
		}
	})
}

func TestAuthenticateWithoutService(t *testing.T) {
	app := newMiddlewareTestApp()

	var anonymous bool
	h := app.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		anonymous = app.getAuthorContext(r).IsAnonymous()
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no header runs as anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, anonymous)
		assert.False(t, app.submitter(httptest.NewRequest(http.MethodGet, "/", nil)).CanWrite)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token abc")

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	})
}

func TestRequireAuthenticatedAuthor(t *testing.T) {
	app := newMiddlewareTestApp()
	h := app.authenticate(app.requireAuthenticatedAuthor(okHandler))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/authors/logout", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHealthCheckWithoutBroker(t *testing.T) {
	app := newMiddlewareTestApp()

	rr := httptest.NewRecorder()
	app.healthCheckHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/healthcheck", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var res healthResponse
	decode(t, rr.Body.Bytes(), &res)
	assert.Equal(t, "unavailable", res.Status)
	assert.Equal(t, "disconnected", res.SystemInfo["broker"])
}
