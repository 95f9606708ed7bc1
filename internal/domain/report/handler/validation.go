package handler

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("product_type", func(fl validator.FieldLevel) bool {
		_, err := report.ParseProductType(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("supply_type", func(fl validator.FieldLevel) bool {
		switch report.SupplyType(fl.Field().String()) {
		case report.SupplyTypeOrigin, report.SupplyTypeWholesale, report.SupplyTypeRetail:
			return true
		}
		return false
	})
	return v
}
