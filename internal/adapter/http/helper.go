package http

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/uzochukwuV/lendcore/internal/domain/fault"

	"github.com/labstack/echo/v4"
)

// HeaderCallerID carries the caller's principal (32-char lowercase hex).
const HeaderCallerID = "X-Caller-Id"

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// faultStatus maps the stable error kinds onto HTTP statuses.
func faultStatus(k fault.Kind) int {
	switch k {
	case fault.KindInvalidInput:
		return http.StatusBadRequest
	case fault.KindUnauthorized:
		return http.StatusForbidden
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindInvalidState:
		return http.StatusConflict
	case fault.KindVerificationFailed:
		return http.StatusUnprocessableEntity
	case fault.KindPaused, fault.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeFault renders any use-case error as {error: kind, reason: text}.
func writeFault(c echo.Context, err error) error {
	var fe *fault.Error
	if !errors.As(err, &fe) {
		fe = fault.New(fault.KindUnavailable, "internal error")
	}
	return c.JSON(faultStatus(fe.Kind), map[string]string{
		"error":  string(fe.Kind),
		"reason": fe.Reason,
	})
}

// callerID reads and validates the caller principal header.
func callerID(c echo.Context) (string, error) {
	id := strings.ToLower(strings.TrimSpace(c.Request().Header.Get(HeaderCallerID)))
	if !reHex32.MatchString(id) {
		return "", fault.New(fault.KindUnauthorized, "missing or invalid "+HeaderCallerID)
	}
	return id, nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fault.Newf(fault.KindInvalidInput, "invalid %s", name)
	}
	return id, nil
}
