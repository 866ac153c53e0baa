package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/bornholm/go-x/slogx"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gurkanbulca/tasktracker/internal/service"
)

const (
	detailUnauthenticated = "Authentication credentials were not provided."
	detailNotFound        = "Not found."
	detailServerError     = "A server error occurred."
	detailTokenInvalid    = "Token is invalid or expired"
)

func handleUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.JSON(http.StatusUnauthorized, gin.H{"detail": detailUnauthenticated})
}

// respondError writes the response for an error returned by a service.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, service.ErrUnauthenticated):
		handleUnauthorized(c)
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "No active account found with the given credentials"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": detailTokenInvalid})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": detailNotFound})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slogx.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailServerError})
	}
}

// bindJSON decodes the request body into obj. An empty body leaves obj
// untouched. On failure the 400 response is already written.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			name := jsonFieldName(fe)
			fields[name] = append(fields[name], fieldMessage(fe))
		}
		c.JSON(http.StatusBadRequest, fields)
		return false
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		c.JSON(http.StatusBadRequest, map[string][]string{
			typeErr.Field: {typeMessage(typeErr.Type)},
		})
		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
	return false
}

// typeMessage describes the value a field expected when the payload sent another JSON type.
func typeMessage(t reflect.Type) string {
	if t == nil {
		return "Invalid value."
	}
	switch t.Kind() {
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		return "Not a valid string."
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	default:
		return "Invalid value."
	}
}

func jsonFieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return service.MsgRequired
	default:
		return "Invalid value."
	}
}
