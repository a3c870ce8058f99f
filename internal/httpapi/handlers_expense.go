package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gitlab.com/adigun/schoolfin/internal/models"
	"gitlab.com/adigun/schoolfin/internal/repository"
	"gitlab.com/adigun/schoolfin/internal/service"
)

type createExpenseRequest struct {
	SchoolID    int64           `json:"schoolId"`
	SessionID   *int64          `json:"sessionId"`
	TermID      *int64          `json:"termId"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Type        string          `json:"type" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Month       string          `json:"month" validate:"required"`
	ExpenseDate *time.Time      `json:"expenseDate"`
	Notes       string          `json:"notes"`
	Attachments []string        `json:"attachments"`
}

type updateExpenseRequest struct {
	SessionID   *int64           `json:"sessionId"`
	TermID      *int64           `json:"termId"`
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Type        *string          `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Currency    *string          `json:"currency"`
	Month       *string          `json:"month"`
	ExpenseDate *time.Time       `json:"expenseDate"`
	Notes       *string          `json:"notes"`
	Attachments []string         `json:"attachments"`
}

type rejectExpenseRequest struct {
	Reason string `json:"reason"`
}

type expenseResponse struct {
	ID          int64           `json:"id"`
	SchoolID    int64           `json:"schoolId"`
	SessionID   *int64          `json:"sessionId,omitempty"`
	TermID      *int64          `json:"termId,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Month       string          `json:"month"`
	ExpenseDate time.Time       `json:"expenseDate"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	Attachments []string        `json:"attachments"`
	CreatedBy   int64           `json:"createdBy"`
	UpdatedBy   *int64          `json:"updatedBy,omitempty"`
	ApprovedBy  *int64          `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time      `json:"approvedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func toExpenseResponse(exp *models.Expense) expenseResponse {
	return expenseResponse{
		ID:          exp.ID,
		SchoolID:    exp.SchoolID,
		SessionID:   exp.SessionID,
		TermID:      exp.TermID,
		Title:       exp.Title,
		Description: exp.Description,
		Type:        string(exp.Type),
		Amount:      exp.Amount,
		Currency:    exp.Currency,
		Month:       exp.Month,
		ExpenseDate: exp.ExpenseDate,
		Status:      string(exp.Status),
		Notes:       exp.Notes,
		Attachments: exp.Attachments,
		CreatedBy:   exp.CreatedBy,
		UpdatedBy:   exp.UpdatedBy,
		ApprovedBy:  exp.ApprovedBy,
		ApprovedAt:  exp.ApprovedAt,
		CreatedAt:   exp.CreatedAt,
		UpdatedAt:   exp.UpdatedAt,
	}
}

func (s *Server) handleCreateExpense(c echo.Context) error {
	var req createExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	expenseType, err := models.ParseExpenseType(req.Type)
	if err != nil {
		return service.NewValidationError("type", err.Error())
	}

	input := service.CreateExpenseInput{
		SchoolID:    req.SchoolID,
		SessionID:   req.SessionID,
		TermID:      req.TermID,
		Title:       req.Title,
		Description: req.Description,
		Type:        expenseType,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Month:       req.Month,
		Notes:       req.Notes,
		Attachments: req.Attachments,
	}
	if req.ExpenseDate != nil {
		input.ExpenseDate = *req.ExpenseDate
	}

	expense, err := s.expenses.Create(c.Request().Context(), input, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleGetExpense(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	expense, err := s.expenses.Get(c.Request().Context(), id, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleListExpenses(c echo.Context) error {
	filter, err := expenseFilterFrom(c)
	if err != nil {
		return err
	}
	expenses, err := s.expenses.List(c.Request().Context(), filter, actorFrom(c))
	if err != nil {
		return err
	}
	resp := make([]expenseResponse, 0, len(expenses))
	for i := range expenses {
		resp = append(resp, toExpenseResponse(&expenses[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"expenses": resp})
}

func (s *Server) handleUpdateExpense(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	input := service.UpdateExpenseInput{
		SessionID:   req.SessionID,
		TermID:      req.TermID,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Month:       req.Month,
		ExpenseDate: req.ExpenseDate,
		Notes:       req.Notes,
		Attachments: req.Attachments,
	}
	if req.Type != nil {
		expenseType, err := models.ParseExpenseType(*req.Type)
		if err != nil {
			return service.NewValidationError("type", err.Error())
		}
		input.Type = &expenseType
	}

	expense, err := s.expenses.Update(c.Request().Context(), id, input, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleDeleteExpense(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.expenses.Delete(c.Request().Context(), id, actorFrom(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleApproveExpense(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	expense, err := s.expenses.Approve(c.Request().Context(), id, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleRejectExpense(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req rejectExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	expense, err := s.expenses.Reject(c.Request().Context(), id, req.Reason, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleExpenseSummary(c echo.Context) error {
	filter, err := expenseFilterFrom(c)
	if err != nil {
		return err
	}
	summary, err := s.expenses.Summary(c.Request().Context(), filter, actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"summary": summary})
}

func (s *Server) handleExportExpenses(c echo.Context) error {
	filter, err := expenseFilterFrom(c)
	if err != nil {
		return err
	}
	doc, err := s.expenses.ExportPDF(c.Request().Context(), filter, actorFrom(c))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="expenses.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// expenseFilterFrom builds the school-scoped expense filter from query
// parameters. Free-form status casing is normalized here, at the boundary.
func expenseFilterFrom(c echo.Context) (repository.ExpenseFilter, error) {
	var filter repository.ExpenseFilter

	schoolID, err := schoolScopeFrom(c)
	if err != nil {
		return filter, err
	}
	filter.SchoolID = schoolID

	if raw := c.QueryParam("status"); raw != "" {
		status, err := models.ParseExpenseStatus(raw)
		if err != nil {
			return filter, service.NewValidationError("status", err.Error())
		}
		filter.Status = &status
	}
	if raw := c.QueryParam("type"); raw != "" {
		expenseType, err := models.ParseExpenseType(raw)
		if err != nil {
			return filter, service.NewValidationError("type", err.Error())
		}
		filter.Type = &expenseType
	}
	if month := c.QueryParam("month"); month != "" {
		if !models.ValidMonth(month) {
			return filter, service.NewValidationError("month", "month must be in YYYY-MM format")
		}
		filter.Month = month
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

// schoolScopeFrom resolves the tenant scope for listing endpoints: an
// explicit schoolId query parameter, or the actor's assigned school.
func schoolScopeFrom(c echo.Context) (int64, error) {
	if raw := c.QueryParam("schoolId"); raw != "" {
		schoolID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || schoolID <= 0 {
			return 0, service.NewValidationError("schoolId", "invalid school id")
		}
		return schoolID, nil
	}
	return actorFrom(c).SchoolID, nil
}

func dateParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, service.NewValidationError(name, "date must be in YYYY-MM-DD format")
	}
	return &t, nil
}

func pageParams(c echo.Context) (limit, offset int, err error) {
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return 0, 0, service.NewValidationError("limit", "invalid limit")
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, service.NewValidationError("offset", "invalid offset")
		}
	}
	return limit, offset, nil
}
