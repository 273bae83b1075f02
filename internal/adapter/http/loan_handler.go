package http

import (
	"net/http"
	"strings"

	"github.com/uzochukwuV/lendcore/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type requestLoanReq struct {
	OfferID      uint64  `json:"offer_id" validate:"required"`
	AssetID      string  `json:"asset_id" validate:"required"`
	AmountUSD    float64 `json:"amount_usd" validate:"required"`
	DurationDays int     `json:"duration_days" validate:"required"`
}

func (h *LoanHandler) RequestLoan(c echo.Context) error {
	borrower, err := callerID(c)
	if err != nil {
		return writeFault(c, err)
	}
	var req requestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	id, err := h.uc.Request(c.Request().Context(), borrower, loan.RequestInput{
		OfferID:      req.OfferID,
		AssetID:      req.AssetID,
		AmountUSD:    req.AmountUSD,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		return writeFault(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]uint64{"loan_id": id})
}

func (h *LoanHandler) FundLoan(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return writeFault(c, err)
	}
	id, err := pathID(c, "loan_id")
	if err != nil {
		return writeFault(c, err)
	}
	if err := h.uc.Fund(c.Request().Context(), caller, id); err != nil {
		return writeFault(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LoanHandler) RepayLoan(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return writeFault(c, err)
	}
	id, err := pathID(c, "loan_id")
	if err != nil {
		return writeFault(c, err)
	}
	if err := h.uc.Repay(c.Request().Context(), caller, id); err != nil {
		return writeFault(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LoanHandler) LiquidateLoan(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return writeFault(c, err)
	}
	id, err := pathID(c, "loan_id")
	if err != nil {
		return writeFault(c, err)
	}
	res, err := h.uc.Liquidate(c.Request().Context(), caller, id)
	if err != nil {
		return writeFault(c, err)
	}
	// 200 even when the downstream transfer failed: the status flip is final
	// and the body carries the reconciliation detail.
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := pathID(c, "loan_id")
	if err != nil {
		return writeFault(c, err)
	}
	l, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeFault(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) ListUserLoans(c echo.Context) error {
	principal := strings.ToLower(strings.TrimSpace(c.Param("principal")))
	if !reHex32.MatchString(principal) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid principal"})
	}
	out, err := h.uc.ListByParticipant(c.Request().Context(), principal)
	if err != nil {
		return writeFault(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": out})
}

func (h *LoanHandler) GetStats(c echo.Context) error {
	s, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return writeFault(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
