package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Phone numbers: digits, spaces, '+' and '-', at most 15 characters
	PhonePattern = `^[0-9+\- ]{1,15}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 1
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Phone *regexp.Regexp
}{
	Phone: regexp.MustCompile(PhonePattern),
}

// RegisterCustomValidators installs the custom tags on gin's validator and
// reports field names by their json tag.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return Register(v)
}

// Register installs the custom rules on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonTagName)
	rules := map[string]validator.Func{
		"phone":    validatePhone,
		"grade":    validateGrade,
		"notblank": validateNotBlank,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func validatePhone(fl validator.FieldLevel) bool {
	return IsValidPhone(fl.Field().String())
}

// validateNotBlank rejects strings made only of whitespace.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateGrade(fl validator.FieldLevel) bool {
	return models.GradeValue(fl.Field().String()).IsValid()
}

// IsValidPhone reports whether s looks like a phone number.
func IsValidPhone(s string) bool {
	return CompiledPatterns.Phone.MatchString(s)
}
