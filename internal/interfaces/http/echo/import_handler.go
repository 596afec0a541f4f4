package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
)

type ImportHandler struct {
	useCase app.StartImportUsersFromCSV
}

type importUsersRequest struct {
	SourcePath string   `json:"source_path"`
	Roles      []string `json:"roles"`
	Notify     bool     `json:"notify"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func errorResponse(c echo.Context, status int, code, message string) error {
	return c.JSON(status, apiResponse{Error: &errorBody{Code: code, Message: message}})
}

func NewImportHandler(useCase app.StartImportUsersFromCSV) *ImportHandler {
	return &ImportHandler{useCase: useCase}
}

func (h *ImportHandler) ImportUsers(c echo.Context) error {
	var req importUsersRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.useCase.Execute(c.Request().Context(), app.StartImportUsersFromCSVInput{
		SourcePath: req.SourcePath,
		Roles:      req.Roles,
		Notify:     req.Notify,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidImportSource):
			return errorResponse(c, http.StatusBadRequest, "invalid_source", "source_path must be a .csv file")
		case errors.Is(err, app.ErrInvalidRoles):
			return errorResponse(c, http.StatusBadRequest, "invalid_roles", "at least one role is required")
		}
		c.Logger().Errorf("enqueue import job: %v", err)
		return errorResponse(c, http.StatusInternalServerError, "internal_error", "failed to enqueue import job")
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}
