package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
)

type JobHandler struct {
	useCase app.GetImportJob
}

func NewJobHandler(useCase app.GetImportJob) *JobHandler {
	return &JobHandler{useCase: useCase}
}

func (h *JobHandler) GetImportJob(c echo.Context) error {
	out, err := h.useCase.Execute(c.Request().Context(), app.GetImportJobInput{
		ID: c.Param("id"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidJobID) {
			return errorResponse(c, http.StatusBadRequest, "invalid_job_id", "id must be a valid UUID")
		}
		if errors.Is(err, app.ErrImportJobNotFound) {
			return errorResponse(c, http.StatusNotFound, "not_found", "import job not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal_error", "failed to get import job")
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
