package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"github.com/go-playground/validator/v10"
)

// Error carries every rejected field of a request.
type Error struct {
	Fields []models.FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// RequestValidator implements echo.Validator with go-playground/validator.
// Field names in errors use the json tag.
type RequestValidator struct {
	validate *validator.Validate
}

func New() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(accountUpdateStructLevel, models.AccountUpdate{})
	return &RequestValidator{validate: v}
}

// accountUpdateStructLevel rejects a present but empty username or email, which
// omitempty would otherwise let through.
func accountUpdateStructLevel(sl validator.StructLevel) {
	u := sl.Current().Interface().(models.AccountUpdate)
	if u.Username != nil && *u.Username == "" {
		sl.ReportError(u.Username, "username", "Username", "min", "5")
	}
	if u.Email != nil && *u.Email == "" {
		sl.ReportError(u.Email, "email", "Email", "email", "")
	}
}

// Validate returns *Error for rule violations and a plain error for anything else.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return &Error{Fields: fields}
}

// message returns the user facing text for a failed rule.
func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "username":
		if fe.Tag() == "alphanum" {
			return "Username is only allowed in alphabet and number."
		}
		return "Username must be at least 5 characters"
	case "email":
		return "E-mail is not valid"
	case "password", "newPassword":
		return "Password must be at least 5 characters"
	case "currentPassword":
		return "Current password is required"
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is not valid", fe.Field())
	}
}
