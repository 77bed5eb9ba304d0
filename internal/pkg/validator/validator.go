package validator

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	// Go's \w and \d are ASCII only, so letters and digits are spelled as Unicode classes.
	emailPattern = regexp.MustCompile(`^[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+\.[\p{L}\p{N}_]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\p{Nd}\s\p{Zs}\-()]{7,20}$`)
)

func init() {
	validate = validator.New()

	// report fields by their JSON name so errors line up with request bodies
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("lead_email", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	_ = validate.RegisterValidation("lead_phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	_ = validate.RegisterValidation("timezone", func(fl validator.FieldLevel) bool {
		return IsTimezone(fl.Field().String())
	})
}

// IsEmail applies the lead email pattern. Empty input is not an email.
func IsEmail(v string) bool {
	return emailPattern.MatchString(v)
}

// IsPhone accepts E.164 and common national formats: digits, spaces, dashes, parentheses.
func IsPhone(v string) bool {
	return phonePattern.MatchString(v)
}

// IsTimezone reports whether v names an IANA time zone. Empty is allowed.
func IsTimezone(v string) bool {
	if v == "" {
		return true
	}
	// time.LoadLocation accepts "Local", which is not a portable zone name
	if v == "Local" {
		return false
	}
	_, err := time.LoadLocation(v)
	return err == nil
}

// Validate struct fields and return field -> message, or nil when valid.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		errors[fe.Field()] = message(fe)
	}
	return errors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "lead_email", "email":
		return "Enter a valid email address."
	case "lead_phone":
		return "Enter a valid phone number."
	case "timezone":
		return "Select a valid timezone."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "min":
		return "Ensure this value has at least " + fe.Param() + " characters."
	case "oneof":
		return "Select a valid choice: " + fe.Param() + "."
	case "alphanumunicode", "username":
		return "Enter a valid username."
	}
	return fe.Tag()
}
