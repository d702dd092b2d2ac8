package announcements

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var hoursRangePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d) - ([01]\d|2[0-3]):([0-5]\d)$`)

// validHoursRange accepts "HH:MM - HH:MM" where the start is not after the end
func validHoursRange(s string) bool {
	m := hoursRangePattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	// zero padded, so lexical order is time order
	return m[1]+m[2] <= m[3]+m[4]
}

// NewValidator returns a validator knowing the announcement tags
func NewValidator() *validator.Validate {
	v := validator.New()
	registerValidations(v)
	return v
}

func registerValidations(v *validator.Validate) {
	_ = v.RegisterValidation("hoursrange", func(fl validator.FieldLevel) bool {
		return validHoursRange(fl.Field().String())
	})
}
