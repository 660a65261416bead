package directory

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check runs struct validation and maps the failures to a ValidationError.
// requiredMsg is used when any required field is missing.
func check(payload any, requiredMsg string) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make(map[string]string, len(errs))
	code, message := CodeInvalidField, ""
	for _, fe := range errs {
		fields[fe.Field()] = fe.Tag()
		switch {
		case fe.Tag() == "required":
			code, message = CodeRequiredFields, requiredMsg
		case fe.Tag() == "email" && message == "":
			message = "Invalid email format."
		case message == "":
			message = "Invalid value for " + fe.Field() + "."
		}
	}
	return &ValidationError{Code: code, Message: message, Fields: fields}
}
