package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/response"
)

// bindJSON decodes the request body into dest. A malformed body is reported
// with the same message the service uses for missing fields.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Validation(err, message))
		return false
	}
	return true
}

// bindOptionalJSON decodes the body when one was sent.
func bindOptionalJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Validation(err, message))
		return false
	}
	return true
}
