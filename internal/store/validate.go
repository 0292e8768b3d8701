package store

import (
	"regexp"
	"strings"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"

	"github.com/shopspring/decimal"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func requireText(field string, value *string, maxLen int) error {
	if value == nil || strings.TrimSpace(*value) == "" {
		return apperror.Validation(field, "%s is required", field)
	}
	return checkLength(field, *value, maxLen)
}

func checkLength(field, value string, maxLen int) error {
	if maxLen > 0 && len([]rune(value)) > maxLen {
		return apperror.Validation(field, "%s must be at most %d characters", field, maxLen)
	}
	return nil
}

func validateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return apperror.Validation("slug", "slug may only contain letters, numbers, hyphens and underscores")
	}
	return nil
}

func positivePrice(field string, d *decimal.Decimal) error {
	if d == nil {
		return apperror.Validation(field, "%s is required", field)
	}
	if d.Sign() <= 0 {
		return apperror.Validation(field, "%s must be greater than zero", field)
	}
	return nil
}

func nonNegativeAmount(field string, d decimal.NullDecimal) error {
	if d.Valid && d.Decimal.Sign() < 0 {
		return apperror.Validation(field, "%s cannot be negative", field)
	}
	return nil
}

func nonNegative(field string, n int) error {
	if n < 0 {
		return apperror.Validation(field, "%s cannot be negative", field)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// lockCells takes the mutation lock of every cell and returns the matching unlock
func lockCells(cells []*stockCell) func() {
	for _, c := range cells {
		c.mu.Lock()
	}
	return func() {
		for i := len(cells) - 1; i >= 0; i-- {
			cells[i].mu.Unlock()
		}
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setNullDecimal(dst *decimal.NullDecimal, o model.Optional[decimal.Decimal]) {
	if !o.Set {
		return
	}
	if o.Null {
		*dst = decimal.NullDecimal{}
		return
	}
	*dst = decimal.NewNullDecimal(o.Value)
}
