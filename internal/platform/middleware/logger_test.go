package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(bytes.NewBuffer(nil))
}

func TestLogger_WritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := runRequest(t, Logger(logger), okHandler, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if line["method"] != "GET" {
		t.Errorf("expected method GET, got %v", line["method"])
	}
	if line["path"] != "/api/v1/orders" {
		t.Errorf("expected path /api/v1/orders, got %v", line["path"])
	}
}

func TestLogger_ErrorLevelOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	failing := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad input")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	runRequest(t, Logger(logger), failing, req)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if line["level"] != "error" {
		t.Errorf("expected error level, got %v", line["level"])
	}
}
