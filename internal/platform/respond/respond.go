// Package respond renders the uniform success/failure envelope used by every
// API operation.
package respond

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prescripto/prescripto/internal/platform/apperr"
)

// OK writes a success envelope with the supplied payload fields merged in at
// the top level, mirroring the flat response shape the clients expect.
func OK(c echo.Context, message string, data map[string]interface{}) error {
	body := map[string]interface{}{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// Fail maps the error to its HTTP status and writes a failure envelope.
// Invalid transitions additionally expose the attempted (from, to) pair.
func Fail(c echo.Context, err error) error {
	body := map[string]interface{}{
		"success": false,
		"message": err.Error(),
		"kind":    string(apperr.KindOf(err)),
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body["message"] = ae.Message
		if ae.Kind == apperr.KindInvalidTransition {
			body["from"] = ae.From
			body["to"] = ae.To
		}
	}
	return c.JSON(apperr.HTTPStatus(err), body)
}
