package validation

import (
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/offerdesk/internal/pkg/helpers"
)

// Validation rule patterns
var (
	// Reference codes are "OL" followed by six digits
	RefCodePattern = `^OL\d{6}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	RefCode *regexp.Regexp
}{
	RefCode: regexp.MustCompile(RefCodePattern),
}

// Custom tags understood by request DTOs
const (
	TagISODate  = "isodate"
	TagRefCode  = "refcode"
	TagNotBlank = "notblank"
)

var registerOnce sync.Once

// RegisterRules installs the custom tags on gin's validator engine.
// Safe to call more than once.
func RegisterRules() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err = Register(v)
	})
	return err
}

// Register installs the custom tags on v
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagISODate:  isISODate,
		TagRefCode:  isRefCode,
		TagNotBlank: isNotBlank,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := helpers.ParseISODate(fl.Field().String())
	return err == nil
}

func isRefCode(fl validator.FieldLevel) bool {
	return IsRefCode(fl.Field().String())
}

func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// IsRefCode reports whether s looks like a generated reference code
func IsRefCode(s string) bool {
	return CompiledPatterns.RefCode.MatchString(strings.TrimSpace(s))
}

// Message turns a validator tag into a human readable phrase
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", TagNotBlank:
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case TagISODate:
		return fe.Field() + " must be a date in YYYY-MM-DD format"
	case TagRefCode:
		return fe.Field() + " must be a reference code like OL123456"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "url":
		return fe.Field() + " must be a valid URL"
	default:
		return fe.Field() + " is invalid"
	}
}
