package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/myblog/internal/authorservice"
	"github.com/sushihentaime/myblog/internal/blogservice"
	"github.com/sushihentaime/myblog/internal/common"
)

func testConfig() *Config {
	return &Config{
		Port:            "4000",
		Environment:     "test",
		Version:         "1.0.0",
		BaseURL:         "https://myblog.com",
		TrustedOrigins:  []string{"https://trusted.com"},
		AuthorPolicy:    string(blogservice.AuthorModeDefault),
		DefaultAuthorID: 1,
		CacheTTL:        time.Minute,
		CacheCleanup:    time.Minute,
		RateLimitRPS:    2,
		RateLimitBurst:  4,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApplication wires the services against throwaway postgres and rabbitmq containers.
func newTestApplication(t *testing.T) (*application, *common.MessageBroker) {
	db := common.TestDB("file://../migrations", t)

	mb := common.TestBroker(t)

	cfg := testConfig()
	cache := common.NewCache(cfg.CacheTTL, cfg.CacheCleanup)
	policy := blogservice.AuthorPolicy{Mode: blogservice.AuthorModeDefault, DefaultAuthorID: cfg.DefaultAuthorID}

	return &application{
		config:        cfg,
		logger:        discardLogger(),
		authorService: authorservice.NewAuthorService(db, mb, cache),
		blogService:   blogservice.NewBlogService(db, cache, mb, policy),
		broker:        mb,
	}, mb
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	ts.Client().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &testServer{ts}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (int, http.Header, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, res.Header, out
}

func decode(t *testing.T, body []byte, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, dst))
}
