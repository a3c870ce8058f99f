package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gitlab.com/adigun/schoolfin/internal/models"
	"gitlab.com/adigun/schoolfin/internal/repository"
	"gitlab.com/adigun/schoolfin/internal/service"
)

type paymentResponse struct {
	ID             int64                   `json:"id"`
	ExpenseID      int64                   `json:"expenseId"`
	SchoolID       int64                   `json:"schoolId"`
	PayeeType      string                  `json:"payeeType"`
	PayeeID        *int64                  `json:"payeeId,omitempty"`
	PayeeName      string                  `json:"payeeName,omitempty"`
	PaymentDate    time.Time               `json:"paymentDate"`
	AmountPaid     decimal.Decimal         `json:"amountPaid"`
	Currency       string                  `json:"currency"`
	PaymentMethod  string                  `json:"paymentMethod"`
	TransactionRef string                  `json:"transactionReference"`
	PeriodCovered  string                  `json:"periodCovered,omitempty"`
	ReceiptURL     string                  `json:"receiptUrl"`
	Notes          string                  `json:"notes,omitempty"`
	Breakdown      models.PaymentBreakdown `json:"breakdown"`
	RecordedBy     int64                   `json:"recordedBy"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

func toPaymentResponse(p *models.ExpensePayment) paymentResponse {
	return paymentResponse{
		ID:             p.ID,
		ExpenseID:      p.ExpenseID,
		SchoolID:       p.SchoolID,
		PayeeType:      string(p.PayeeType),
		PayeeID:        p.PayeeID,
		PayeeName:      p.PayeeName,
		PaymentDate:    p.PaymentDate,
		AmountPaid:     p.AmountPaid,
		Currency:       p.Currency,
		PaymentMethod:  string(p.Method),
		TransactionRef: p.TransactionRef,
		PeriodCovered:  p.PeriodCovered,
		ReceiptURL:     p.ReceiptURL,
		Notes:          p.Notes,
		Breakdown:      p.Breakdown,
		RecordedBy:     p.RecordedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func paymentResultJSON(c echo.Context, code int, result *service.PaymentResult) error {
	return c.JSON(code, echo.Map{
		"payment":   toPaymentResponse(result.Payment),
		"totalPaid": result.TotalPaid,
		"balance":   result.Balance,
	})
}

// handleCreatePayment records a payment against an expense. The request is
// multipart: payment fields as form values plus the receipt file, which is
// staged to a temp file for the service to upload.
func (s *Server) handleCreatePayment(c echo.Context) error {
	expenseID, err := pathID(c)
	if err != nil {
		return err
	}

	input := service.CreatePaymentInput{
		PayeeType:      models.PayeeType(c.FormValue("payeeType")),
		PayeeName:      c.FormValue("payeeName"),
		Method:         models.PaymentMethod(c.FormValue("paymentMethod")),
		Currency:       c.FormValue("currency"),
		TransactionRef: c.FormValue("transactionRef"),
		PeriodCovered:  c.FormValue("periodCovered"),
		Notes:          c.FormValue("notes"),
	}

	if raw := c.FormValue("amountPaid"); raw != "" {
		amount, err := models.ParseAmount(raw)
		if err != nil {
			return service.NewValidationError("amountPaid", err.Error())
		}
		input.AmountPaid = amount
	}
	if input.PayeeID, err = optionalIDValue(c, "payeeId"); err != nil {
		return err
	}
	if date, err := optionalDateValue(c, "paymentDate"); err != nil {
		return err
	} else if date != nil {
		input.PaymentDate = *date
	}
	if input.Breakdown, err = breakdownValues(c); err != nil {
		return err
	}

	file, err := c.FormFile("receipt")
	if err == nil {
		input.ReceiptPath, err = stageReceiptFile(file)
		if err != nil {
			return err
		}
	}

	result, err := s.payments.Create(c.Request().Context(), expenseID, input, actorFrom(c))
	if err != nil {
		return err
	}
	return paymentResultJSON(c, http.StatusCreated, result)
}

func (s *Server) handleUpdatePayment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var input service.UpdatePaymentInput
	if raw := c.FormValue("payeeType"); raw != "" {
		payeeType := models.PayeeType(raw)
		input.PayeeType = &payeeType
	}
	if raw := c.FormValue("payeeName"); raw != "" {
		input.PayeeName = &raw
	}
	if raw := c.FormValue("paymentMethod"); raw != "" {
		method := models.PaymentMethod(raw)
		input.Method = &method
	}
	if raw := c.FormValue("currency"); raw != "" {
		input.Currency = &raw
	}
	if raw := c.FormValue("periodCovered"); raw != "" {
		input.PeriodCovered = &raw
	}
	if raw := c.FormValue("notes"); raw != "" {
		input.Notes = &raw
	}
	if raw := c.FormValue("amountPaid"); raw != "" {
		amount, err := models.ParseAmount(raw)
		if err != nil {
			return service.NewValidationError("amountPaid", err.Error())
		}
		input.AmountPaid = &amount
	}
	if input.PayeeID, err = optionalIDValue(c, "payeeId"); err != nil {
		return err
	}
	if input.PaymentDate, err = optionalDateValue(c, "paymentDate"); err != nil {
		return err
	}
	if c.FormValue("allowances") != "" || c.FormValue("deductions") != "" {
		breakdown, err := breakdownValues(c)
		if err != nil {
			return err
		}
		input.Breakdown = &breakdown
	}

	if file, err := c.FormFile("receipt"); err == nil {
		input.ReceiptPath, err = stageReceiptFile(file)
		if err != nil {
			return err
		}
	}

	result, err := s.payments.Update(c.Request().Context(), id, input, actorFrom(c))
	if err != nil {
		return err
	}
	return paymentResultJSON(c, http.StatusOK, result)
}

func (s *Server) handleDeletePayment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.payments.Delete(c.Request().Context(), id, actorFrom(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetPayment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	payment, err := s.payments.Get(c.Request().Context(), id, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (s *Server) handleListPayments(c echo.Context) error {
	filter, err := paymentFilterFrom(c)
	if err != nil {
		return err
	}
	return s.listPayments(c, filter)
}

func (s *Server) handleListExpensePayments(c echo.Context) error {
	expenseID, err := pathID(c)
	if err != nil {
		return err
	}
	filter, err := paymentFilterFrom(c)
	if err != nil {
		return err
	}
	filter.ExpenseID = &expenseID
	return s.listPayments(c, filter)
}

func (s *Server) listPayments(c echo.Context, filter repository.PaymentFilter) error {
	payments, err := s.payments.List(c.Request().Context(), filter, actorFrom(c))
	if err != nil {
		return err
	}
	resp := make([]paymentResponse, 0, len(payments))
	for i := range payments {
		resp = append(resp, toPaymentResponse(&payments[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": resp})
}

// paymentFilterFrom builds the school-scoped payment filter from query
// parameters.
func paymentFilterFrom(c echo.Context) (repository.PaymentFilter, error) {
	var filter repository.PaymentFilter

	schoolID, err := schoolScopeFrom(c)
	if err != nil {
		return filter, err
	}
	filter.SchoolID = schoolID

	if raw := c.QueryParam("payeeType"); raw != "" {
		payeeType, err := models.ParsePayeeType(raw)
		if err != nil {
			return filter, service.NewValidationError("payeeType", err.Error())
		}
		filter.PayeeType = &payeeType
	}
	if filter.DateFrom, err = dateParam(c, "from"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = dateParam(c, "to"); err != nil {
		return filter, err
	}
	if filter.Limit, filter.Offset, err = pageParams(c); err != nil {
		return filter, err
	}
	return filter, nil
}

// stageReceiptFile copies an uploaded receipt part to a temp file the
// payment service can hand to the object-storage uploader. The service
// removes the temp file in all paths.
func stageReceiptFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open receipt upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "receipt-*")
	if err != nil {
		return "", fmt.Errorf("failed to stage receipt: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to stage receipt: %w", err)
	}
	return dst.Name(), nil
}

func optionalIDValue(c echo.Context, name string) (*int64, error) {
	raw := c.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	var id int64
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil || id <= 0 {
		return nil, service.NewValidationError(name, "invalid id")
	}
	return &id, nil
}

func optionalDateValue(c echo.Context, name string) (*time.Time, error) {
	raw := c.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, service.NewValidationError(name, "date must be in YYYY-MM-DD format")
	}
	return &t, nil
}

func breakdownValues(c echo.Context) (models.PaymentBreakdown, error) {
	var b models.PaymentBreakdown
	if raw := c.FormValue("allowances"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return b, service.NewValidationError("allowances", "invalid amount")
		}
		b.Allowances = d
	}
	if raw := c.FormValue("deductions"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return b, service.NewValidationError("deductions", "invalid amount")
		}
		b.Deductions = d
	}
	return b, nil
}
