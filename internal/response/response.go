package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the standard success envelope.
type APIResponse struct {
	Data   any    `json:"data"`
	Status int    `json:"status"`
	Path   string `json:"path"`
}

// APIError is the standard error envelope.
type APIError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Path    string `json:"path"`
	Status  int    `json:"status"`
}

func pathFromContext(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().URL.Path
}

// OK sends a 200 response with data.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, APIResponse{
		Data:   data,
		Status: http.StatusOK,
		Path:   pathFromContext(c),
	})
}

// Text sends raw text content with a 200 status.
func Text(c echo.Context, content []byte) error {
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", content)
}

// Error sends a JSON error response using APIError.
func Error(c echo.Context, status int, message, errDetail string) error {
	return c.JSON(status, APIError{
		Message: message,
		Error:   errDetail,
		Path:    pathFromContext(c),
		Status:  status,
	})
}

// BadRequest sends 400 with message and error detail.
func BadRequest(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusBadRequest, message, errDetail)
}

// NotFound sends 404 with message and error detail.
func NotFound(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusNotFound, message, errDetail)
}

// InternalError sends 500 with message and error detail.
func InternalError(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusInternalServerError, message, errDetail)
}
