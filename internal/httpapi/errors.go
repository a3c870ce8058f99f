package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gitlab.com/adigun/schoolfin/internal/logger"
	"gitlab.com/adigun/schoolfin/internal/service"
)

// httpErrorHandler maps the service error taxonomy onto HTTP status codes:
// validation 400, not-found 404, cross-school 403, business-rule conflicts
// 409. The over-payment and not-yet-approved violations are reported as 400
// to match the API contract callers already depend on.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(http.StatusInternalServerError)

	var httpErr *echo.HTTPError
	var validationErrs validator.ValidationErrors
	var ve *service.ValidationError
	var ce *service.ConflictError

	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	case errors.As(err, &validationErrs):
		code = http.StatusBadRequest
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = "failed on " + fe.Tag() + " validation"
		}
		if jsonErr := c.JSON(code, echo.Map{"error": "invalid request", "fields": fields}); jsonErr != nil {
			logger.Log.Error().Err(jsonErr).Msg("failed to write error response")
		}
		return
	case errors.As(err, &ve):
		code = http.StatusBadRequest
		message = ve.Error()
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
		message = "not found"
	case errors.Is(err, service.ErrCrossSchool):
		code = http.StatusForbidden
		message = "forbidden"
	case errors.Is(err, service.ErrOverPayment), errors.Is(err, service.ErrExpenseNotPayable):
		code = http.StatusBadRequest
		message = err.Error()
	case errors.As(err, &ce):
		code = http.StatusConflict
		message = ce.Error()
	default:
		logger.Log.Error().Err(err).
			Str("path", c.Request().URL.Path).
			Msg("unhandled error")
	}

	if jsonErr := c.JSON(code, echo.Map{"error": message}); jsonErr != nil {
		logger.Log.Error().Err(jsonErr).Msg("failed to write error response")
	}
}
