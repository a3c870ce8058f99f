// Package httpapi exposes the expense and payment services over HTTP.
// Authentication happens in front of this API; the identity it establishes
// arrives as headers (see actor middleware).
package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gitlab.com/adigun/schoolfin/internal/service"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server is the HTTP front end for the expense workflows.
type Server struct {
	echo     *echo.Echo
	expenses *service.ExpenseService
	payments *service.PaymentService
}

// requestValidator adapts go-playground/validator to echo.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(expenses *service.ExpenseService, payments *service.PaymentService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.HTTPErrorHandler = httpErrorHandler
	e.Use(middleware.Recover())
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "schoolfin.http")
	}))

	s := &Server{echo: e, expenses: expenses, payments: payments}

	e.GET("/healthz", s.handleHealthz)

	api := e.Group("/api/v1", actorMiddleware)

	api.POST("/expenses", s.handleCreateExpense)
	api.GET("/expenses", s.handleListExpenses)
	api.GET("/expenses/summary", s.handleExpenseSummary)
	api.GET("/expenses/export", s.handleExportExpenses)
	api.GET("/expenses/:id", s.handleGetExpense)
	api.PATCH("/expenses/:id", s.handleUpdateExpense)
	api.DELETE("/expenses/:id", s.handleDeleteExpense)
	api.POST("/expenses/:id/approve", s.handleApproveExpense)
	api.POST("/expenses/:id/reject", s.handleRejectExpense)
	api.POST("/expenses/:id/payments", s.handleCreatePayment)
	api.GET("/expenses/:id/payments", s.handleListExpensePayments)

	api.GET("/payments", s.handleListPayments)
	api.GET("/payments/:id", s.handleGetPayment)
	api.PATCH("/payments/:id", s.handleUpdatePayment)
	api.DELETE("/payments/:id", s.handleDeletePayment)

	return s
}

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Echo exposes the underlying router. Used for testing.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
