package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator builds the validator used on analysis output, with the
// dcfrange rule for "low-high" valuation strings.
func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for a blank tag name.
	_ = v.RegisterValidation("dcfrange", func(fl validator.FieldLevel) bool {
		low, high, err := parseRange(fl.Field().String())
		return err == nil && low < high
	})
	return v
}

// parseRange splits a "low-high" string into its bounds.
func parseRange(s string) (float64, float64, error) {
	lowStr, highStr, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("dcf range %q is not low-high", s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(lowStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("dcf range %q: bad low bound: %w", s, err)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(highStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("dcf range %q: bad high bound: %w", s, err)
	}
	return low, high, nil
}
