package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/farmerp/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var setupOnce sync.Once

// SetupValidator configures gin's validator: field names come from json or
// form tags, decimals validate as their string form, and the currency,
// decimal_gt and decimal_gte tags are registered. Safe to call repeatedly.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
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
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		_ = v.RegisterValidation("currency", validateCurrency)
		_ = v.RegisterValidation("decimal_gt", compareDecimal(func(c int) bool { return c > 0 }))
		_ = v.RegisterValidation("decimal_gte", compareDecimal(func(c int) bool { return c >= 0 }))
	})
}

func validateCurrency(fl validator.FieldLevel) bool {
	_, err := valueobject.ParseCurrency(fl.Field().String())
	return err == nil
}

// compareDecimal builds a validator comparing the field against the tag
// parameter with decimal precision.
func compareDecimal(accept func(cmp int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return accept(value.Cmp(bound))
	}
}

// BindStrictJSON decodes the body into obj rejecting unknown fields and
// trailing data, then runs gin's validator on it.
func BindStrictJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil {
		return errEmptyBody
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		return &MalformedJSONError{Err: err}
	}
	if dec.More() {
		return &MalformedJSONError{Err: errors.New("unexpected data after JSON body")}
	}
	return binding.Validator.ValidateStruct(obj)
}

var errEmptyBody = &MalformedJSONError{Err: errors.New("request body is empty")}

// MalformedJSONError reports a body that is not acceptable JSON for the target
type MalformedJSONError struct {
	Err error
}

func (e *MalformedJSONError) Error() string { return e.Err.Error() }

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// FormatValidationErrors turns a bind error into a validation envelope
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]dto.ValidationDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, dto.ValidationDetail{
				Field:   fieldPath(fe),
				Message: validationMessage(fe),
			})
		}
		return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
	}

	var malformed *MalformedJSONError
	if errors.As(err, &malformed) {
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, malformed.Error(), requestID)
	}
	return dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, err.Error(), requestID)
}

// HandleValidationError writes a 400 for a bind error
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// fieldPath drops the top-level struct name and embedded struct segments,
// giving e.g. "items[0].quantity". Wire names are lower case, Go names are not.
func fieldPath(fe validator.FieldError) string {
	segments := strings.Split(fe.Namespace(), ".")
	if len(segments) < 2 {
		return fe.Field()
	}
	kept := segments[:0]
	for _, s := range segments[1 : len(segments)-1] {
		if s != "" && unicode.IsUpper(rune(s[0])) {
			continue
		}
		kept = append(kept, s)
	}
	kept = append(kept, segments[len(segments)-1])
	return strings.Join(kept, ".")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "Must be at least " + fe.Param() + " characters"
		}
		return "Must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "Must be at most " + fe.Param() + " characters"
		}
		return "Must be at most " + fe.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "datetime":
		return "Must be a date in " + fe.Param() + " format"
	case "currency":
		return "Must be an ISO 4217 currency code"
	case "decimal_gt":
		return "Must be a decimal greater than " + fe.Param()
	case "decimal_gte":
		return "Must be a decimal greater than or equal to " + fe.Param()
	default:
		return "Invalid value"
	}
}
