package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/adigun/schoolfin/internal/service"
)

func testContext(t *testing.T, target string, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestActorMiddleware(t *testing.T) {
	t.Parallel()

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	t.Run("extracts actor and school from headers", func(t *testing.T) {
		t.Parallel()
		c, _ := testContext(t, "/", map[string]string{
			headerActorID:       "101",
			headerActorSchoolID: "7",
		})

		require.NoError(t, actorMiddleware(next)(c))
		actor := actorFrom(c)
		require.Equal(t, int64(101), actor.ID)
		require.Equal(t, int64(7), actor.SchoolID)
	})

	t.Run("school header is optional", func(t *testing.T) {
		t.Parallel()
		c, _ := testContext(t, "/", map[string]string{headerActorID: "101"})

		require.NoError(t, actorMiddleware(next)(c))
		require.Zero(t, actorFrom(c).SchoolID)
	})

	t.Run("rejects a missing or invalid actor", func(t *testing.T) {
		t.Parallel()
		for _, headers := range []map[string]string{
			{},
			{headerActorID: "abc"},
			{headerActorID: "0"},
			{headerActorID: "-3"},
			{headerActorID: "101", headerActorSchoolID: "nope"},
		} {
			c, _ := testContext(t, "/", headers)
			err := actorMiddleware(next)(c)

			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr, "headers %v", headers)
			require.Equal(t, http.StatusUnauthorized, httpErr.Code)
		}
	})
}

func TestHTTPErrorHandler(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation error", service.NewValidationError("month", "month must be in YYYY-MM format"), http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"cross school", service.ErrCrossSchool, http.StatusForbidden},
		{"over-payment", service.ErrOverPayment, http.StatusBadRequest},
		{"expense not payable", service.ErrExpenseNotPayable, http.StatusBadRequest},
		{"approval conflict", service.ErrNotPendingApproval, http.StatusConflict},
		{"reject with payments", service.ErrRejectWithPayments, http.StatusConflict},
		{"delete with payments", service.ErrDeleteWithPayments, http.StatusConflict},
		{"echo error passes through", echo.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot},
		{"unknown errors are internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, rec := testContext(t, "/", nil)

			httpErrorHandler(tc.err, c)
			require.Equal(t, tc.code, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Contains(t, body, "error")
		})
	}

	t.Run("wrapped service errors still map", func(t *testing.T) {
		t.Parallel()
		c, rec := testContext(t, "/", nil)

		httpErrorHandler(fmt.Errorf("handler: %w", service.ErrOverPayment), c)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("does nothing once the response is committed", func(t *testing.T) {
		t.Parallel()
		c, rec := testContext(t, "/", nil)
		require.NoError(t, c.NoContent(http.StatusOK))

		httpErrorHandler(service.ErrNotFound, c)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPathID(t *testing.T) {
	t.Parallel()

	c, _ := testContext(t, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, err := pathID(c)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "0", "-1"} {
		c, _ := testContext(t, "/", nil)
		c.SetParamNames("id")
		c.SetParamValues(raw)
		_, err := pathID(c)
		require.Error(t, err, "id %q", raw)
	}
}

func TestExpenseFilterFrom(t *testing.T) {
	t.Parallel()

	t.Run("parses the full query surface", func(t *testing.T) {
		t.Parallel()
		c, _ := testContext(t, "/?schoolId=7&status=Partially%20Paid&type=Utilities&month=2025-09&from=2025-09-01&to=2025-09-30&limit=10&offset=20", nil)

		filter, err := expenseFilterFrom(c)
		require.NoError(t, err)
		require.Equal(t, int64(7), filter.SchoolID)
		require.NotNil(t, filter.Status)
		require.Equal(t, "partially_paid", string(*filter.Status))
		require.NotNil(t, filter.Type)
		require.Equal(t, "2025-09", filter.Month)
		require.NotNil(t, filter.DateFrom)
		require.NotNil(t, filter.DateTo)
		require.Equal(t, 10, filter.Limit)
		require.Equal(t, 20, filter.Offset)
	})

	t.Run("falls back to the actor's school", func(t *testing.T) {
		t.Parallel()
		c, _ := testContext(t, "/", nil)
		c.Set(actorContextKey, service.Actor{ID: 101, SchoolID: 9})

		filter, err := expenseFilterFrom(c)
		require.NoError(t, err)
		require.Equal(t, int64(9), filter.SchoolID)
	})

	t.Run("rejects malformed parameters", func(t *testing.T) {
		t.Parallel()
		for _, target := range []string{
			"/?schoolId=abc",
			"/?schoolId=7&status=unknown",
			"/?schoolId=7&type=Nonsense",
			"/?schoolId=7&month=2025-13",
			"/?schoolId=7&from=01-09-2025",
			"/?schoolId=7&limit=-1",
			"/?schoolId=7&offset=x",
		} {
			c, _ := testContext(t, target, nil)
			_, err := expenseFilterFrom(c)
			require.True(t, service.IsValidation(err), "target %q", target)
		}
	})
}

func TestPaymentFilterFrom(t *testing.T) {
	t.Parallel()

	t.Run("parses the query surface", func(t *testing.T) {
		t.Parallel()
		c, _ := testContext(t, "/?schoolId=7&payeeType=Staff&from=2025-09-01&limit=5", nil)

		filter, err := paymentFilterFrom(c)
		require.NoError(t, err)
		require.Equal(t, int64(7), filter.SchoolID)
		require.NotNil(t, filter.PayeeType)
		require.Equal(t, "Staff", string(*filter.PayeeType))
		require.NotNil(t, filter.DateFrom)
		require.Equal(t, 5, filter.Limit)
	})

	t.Run("rejects an unknown payee type", func(t *testing.T) {
		t.Parallel()
		c, _ := testContext(t, "/?schoolId=7&payeeType=Sponsor", nil)

		_, err := paymentFilterFrom(c)
		require.True(t, service.IsValidation(err))
	})
}

func formContext(t *testing.T, values url.Values) echo.Context {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestPaymentFormHelpers(t *testing.T) {
	t.Parallel()

	t.Run("optional id and date values", func(t *testing.T) {
		t.Parallel()
		c := formContext(t, url.Values{"payeeId": {"55"}, "paymentDate": {"2025-09-15"}})

		id, err := optionalIDValue(c, "payeeId")
		require.NoError(t, err)
		require.Equal(t, int64(55), *id)

		date, err := optionalDateValue(c, "paymentDate")
		require.NoError(t, err)
		require.Equal(t, time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC), *date)

		missing, err := optionalIDValue(c, "absent")
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Parallel()
		c := formContext(t, url.Values{"payeeId": {"-2"}, "paymentDate": {"15/09/2025"}})

		_, err := optionalIDValue(c, "payeeId")
		require.True(t, service.IsValidation(err))

		_, err = optionalDateValue(c, "paymentDate")
		require.True(t, service.IsValidation(err))
	})

	t.Run("breakdown values", func(t *testing.T) {
		t.Parallel()
		c := formContext(t, url.Values{"allowances": {"5000"}, "deductions": {"1500.50"}})

		b, err := breakdownValues(c)
		require.NoError(t, err)
		require.True(t, b.Allowances.Equal(decimal.NewFromInt(5000)))
		require.True(t, b.Deductions.Equal(decimal.NewFromFloat(1500.50)))

		c = formContext(t, url.Values{"allowances": {"lots"}})
		_, err = breakdownValues(c)
		require.True(t, service.IsValidation(err))
	})
}
