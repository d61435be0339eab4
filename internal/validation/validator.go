package validation

import (
	"fmt"
	"math"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// reject unit prices that would not survive the cents rounding the
	// renderers apply everywhere (e.g. NaN or absurd magnitudes)
	v.RegisterStructValidation(addItemStructValidation, AddItemRequest{})

	return v
}

func addItemStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(AddItemRequest)

	if math.IsNaN(req.UnitPrice) || math.IsInf(req.UnitPrice, 0) {
		sl.ReportError(req.UnitPrice, "unit_price", "UnitPrice", "price_finite", "unit price must be a finite number")
		return
	}
	cents := req.UnitPrice * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		sl.ReportError(req.UnitPrice, "unit_price", "UnitPrice", "price_cents", fmt.Sprintf("unit price %.6f is not a whole number of cents", req.UnitPrice))
	}
}
