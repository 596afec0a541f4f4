package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
)

type SweepHandler struct {
	useCase app.SweepWaitlist
}

type sweepRequest struct {
	Date string `json:"date"`
}

func NewSweepHandler(useCase app.SweepWaitlist) *SweepHandler {
	return &SweepHandler{useCase: useCase}
}

// SweepWaitlist promotes the waitlist entries due on the requested date, or
// today when the body is empty.
func (h *SweepHandler) SweepWaitlist(c echo.Context) error {
	var req sweepRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.useCase.Execute(c.Request().Context(), app.SweepWaitlistInput{Date: req.Date})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidSweepDate):
			return errorResponse(c, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		case errors.Is(err, app.ErrSweepInProgress):
			return errorResponse(c, http.StatusConflict, "sweep_in_progress", "another waitlist sweep is running")
		}
		c.Logger().Errorf("sweep waitlist: %v", err)
		return errorResponse(c, http.StatusInternalServerError, "internal_error", "failed to sweep waitlist")
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
