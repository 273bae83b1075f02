package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/uzochukwuV/lendcore/internal/usecase/breaker"
	"github.com/uzochukwuV/lendcore/internal/usecase/scanner"

	"github.com/labstack/echo/v4"
)

// HeaderAdminToken authorizes the privileged operations. The real admin-role
// collaborator lives outside this service; the shared token is its stand-in.
const HeaderAdminToken = "X-Admin-Token"

type AdminHandler struct {
	breaker *breaker.Breaker
	scanner *scanner.Scanner
	token   string
}

func NewAdminHandler(b *breaker.Breaker, s *scanner.Scanner, token string) *AdminHandler {
	return &AdminHandler{breaker: b, scanner: s, token: token}
}

func (h *AdminHandler) authorized(c echo.Context) bool {
	got := c.Request().Header.Get(HeaderAdminToken)
	return h.token != "" && subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

func (h *AdminHandler) Pause(c echo.Context) error {
	if !h.authorized(c) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin token required"})
	}
	if err := h.breaker.Pause(c.Request().Context()); err != nil {
		return writeFault(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) Unpause(c echo.Context) error {
	if !h.authorized(c) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin token required"})
	}
	if err := h.breaker.Unpause(c.Request().Context()); err != nil {
		return writeFault(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RunScan triggers the same sweep the ticker runs.
func (h *AdminHandler) RunScan(c echo.Context) error {
	if !h.authorized(c) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin token required"})
	}
	ids, err := h.scanner.RunOnce(c.Request().Context())
	if err != nil {
		return writeFault(c, err)
	}
	if ids == nil {
		ids = []uint64{}
	}
	return c.JSON(http.StatusOK, map[string]any{"liquidated": ids})
}
