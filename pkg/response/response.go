package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

// ErrorBody is the only shape error responses take.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is returned by mutations that have nothing else to report.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, payload interface{}) {
	noStore(c)
	c.JSON(status, payload)
}

// OK responds with HTTP 200 and the payload.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Message responds with HTTP 200 and a {"message": ...} body.
func Message(c *gin.Context, message string) {
	JSON(c, http.StatusOK, MessageBody{Message: message})
}

// Error sends an error response converting the error to the common structure.
// The wrapped cause is attached to the gin context for request logging only.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	noStore(c)
	c.JSON(appErr.Status, ErrorBody{Error: appErr.Message})
}

// Attachment streams a downloadable file.
func Attachment(c *gin.Context, contentType, filename string, data []byte) {
	noStore(c)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
