package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prescripto/prescripto/internal/platform/auth"
)

func runRequest(t *testing.T, mw echo.MiddlewareFunc, handler echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(handler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequestID_Minted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := runRequest(t, RequestID(), okHandler, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id to be minted")
	}
}

func TestRequestID_Preserved(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-123")
	rec := runRequest(t, RequestID(), okHandler, req)

	if got := rec.Header().Get("X-Request-ID"); got != "upstream-123" {
		t.Fatalf("expected upstream-123, got %q", got)
	}
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := runRequest(t, mw, okHandler, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := runRequest(t, mw, okHandler, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

// TestRateLimit_KeysOnActor chains the limiter after auth the way the server
// wires it, and checks that actors sharing one IP do not share a bucket.
func TestRateLimit_KeysOnActor(t *testing.T) {
	limit := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})
	chain := auth.DevAuthMiddleware()(limit(okHandler))

	e := echo.New()
	send := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Dev-Role", "patient")
		req.Header.Set("X-Dev-User", user)
		req.RemoteAddr = "203.0.113.7:55000"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := chain(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec.Code
	}

	for _, user := range []string{"patient-a", "patient-b", "patient-c"} {
		if code := send(user); code != http.StatusOK {
			t.Fatalf("actor %s: expected 200, got %d", user, code)
		}
	}

	// The same actor still exhausts its own bucket.
	send("patient-a")
	if code := send("patient-a"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for exhausted actor, got %d", code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := runRequest(t, SecurityHeaders(), okHandler, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s: expected %q, got %q", k, v, got)
		}
	}
}

func TestRequestTimeout_Exceeded(t *testing.T) {
	slow := func(c echo.Context) error {
		select {
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		case <-time.After(time.Second):
			return c.NoContent(http.StatusOK)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := runRequest(t, RequestTimeout(10*time.Millisecond), slow, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
}

func TestRequestTimeout_FastHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := runRequest(t, RequestTimeout(time.Second), okHandler, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRecovery_Panic(t *testing.T) {
	panicky := func(c echo.Context) error {
		panic("boom")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := runRequest(t, Recovery(testLogger()), panicky, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
