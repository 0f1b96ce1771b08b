package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/trade"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

var (
	setupOnce sync.Once
	setupErr  error
)

// customValidations are the tags added to gin's validator:
//
//	order_status  one of the order status names, any letter case
//	role          buyer, seller, shipper or admin
var customValidations = map[string]validator.Func{
	"order_status": func(fl validator.FieldLevel) bool {
		_, err := trade.ParseOrderStatus(fl.Field().String())
		return err == nil
	},
	"role": func(fl validator.FieldLevel) bool {
		return identity.Role(strings.ToLower(fl.Field().String())).IsValid()
	},
}

// SetupValidator registers json field names and the custom tags on gin's validator.
// Requests must not be served when it fails: the custom tags would go unchecked.
func SetupValidator() error {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		setupErr = registerValidations(v, customValidations)
	})
	return setupErr
}

func registerValidations(v *validator.Validate, validations map[string]validator.Func) error {
	var errs []error
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			errs = append(errs, fmt.Errorf("register %q validation: %w", tag, err))
		}
	}
	return errors.Join(errs...)
}

// FormatValidationErrors formats binding errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, "Request body is not valid JSON", requestID)
	}

	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 response for a binding error
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " entries"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "order_status":
		return "Must be one of: Pending Processing Dispatched Delivering Delivered"
	case "role":
		return "Must be one of: buyer seller shipper"
	default:
		return "Invalid value"
	}
}
