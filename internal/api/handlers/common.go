package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirevox/hirevox/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

func requireUserID(c *gin.Context) (string, bool) {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return "", false
}

// requireSessionAccess checks that a candidate token is scoped to the
// session named in the path. Recruiter tokens carry no session scope and
// pass through; ownership is checked at the resource level.
func requireSessionAccess(c *gin.Context, sessionID string) bool {
	v, ok := c.Get("token_session_id")
	if !ok {
		return true
	}
	if s, _ := v.(string); s == sessionID {
		return true
	}
	writeError(c, utils.E(utils.CodeForbidden, "Auth", "token not valid for this session", nil))
	return false
}
