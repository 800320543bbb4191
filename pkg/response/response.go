package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
)

// SuccessDescription is the description attached to every successful response.
const SuccessDescription = "Operation success"

// Envelope represents the common response contract. ErrorCode mirrors the HTTP status.
type Envelope struct {
	ErrorCode        int                    `json:"errorCode"`
	ErrorDescription string                 `json:"errorDescription"`
	Data             interface{}            `json:"data,omitempty"`
	Meta             map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{ErrorCode: status, ErrorDescription: SuccessDescription, Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// OK responds with HTTP 200 and the given payload.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// NoContent responds with HTTP 204 and an empty body.
func NoContent(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusNoContent)
}

// Error sends an error response converting the error to the common structure.
// Internal failures never expose their cause.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{ErrorCode: appErr.Status, ErrorDescription: appErr.Message})
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
