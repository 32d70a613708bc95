package ui

import (
	"errors"
	"net/http"

	"sheetview/domain/table"
	"sheetview/internal"
	apperrors "sheetview/internal/errors"
	"sheetview/internal/session"

	"github.com/gin-gonic/gin"
)

// toAppError classifies any handler error
func toAppError(err error) *apperrors.AppError {
	if errors.Is(err, session.ErrNotFound) {
		notFound := apperrors.NotFound("session")
		notFound.Message = "This session has expired or does not exist. Please upload the file again."
		notFound.Cause = err
		return notFound
	}
	return apperrors.FromDomain(err)
}

func bannerFor(appErr *apperrors.AppError) *bannerView {
	banner := &bannerView{Level: "error", Message: appErr.Message}
	if appErr.Code == apperrors.CodePlotting {
		banner.Message = "An error occurred while plotting."
		if appErr.Cause != nil {
			banner.Message = "An error occurred while plotting: " + appErr.Cause.Error()
		}
		banner.Hint = table.PlottingHint
		banner.Level = "warning"
	}
	return banner
}

// respondError answers htmx requests with a banner fragment and everything
// else with a JSON error body
func (s *Server) respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	status := apperrors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		internal.DefaultLogger.Error("[%s %s] %v", c.Request.Method, c.FullPath(), err)
	} else {
		internal.DefaultLogger.Debug("[%s %s] %v", c.Request.Method, c.FullPath(), err)
	}

	if isHTMX(c) {
		// htmx only swaps 2xx responses
		s.renderFragment(c, http.StatusOK, "banner.html", bannerFor(appErr))
		return
	}

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if appErr.Cause != nil {
		body["details"] = appErr.Cause.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
