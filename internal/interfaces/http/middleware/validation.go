package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// postal codes as the carrier aggregator accepts them: 8 digits, with or
// without the customary hyphen
var postalCodePattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)

// SetupValidator configures gin's validator engine: error messages use
// JSON field names and the postalcode tag becomes available to binding
// structs.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("postalcode", func(fl validator.FieldLevel) bool {
		return postalCodePattern.MatchString(fl.Field().String())
	})
}

// FormatValidationErrors turns validator errors into a field-by-field
// message; non-validator errors fall back to their plain text.
func FormatValidationErrors(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s: %s", e.Field(), validationMessage(e)))
	}
	return strings.Join(messages, "; ")
}

// HandleValidationError writes a 400 response for a binding failure
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeValidation, FormatValidationErrors(err), requestID))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "postalcode":
		return "must be a valid postal code"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
