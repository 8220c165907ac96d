package forms

import (
	"regexp"

	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var (
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadhaarPattern = regexp.MustCompile(`^[0-9]{4} ?[0-9]{4} ?[0-9]{4}$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("phone", func(fl validator.FieldLevel) bool {
		return utils.ValidatePhoneNumber(fl.Field().String(), utils.CountryCode) == nil
	})
	must("amount", func(fl validator.FieldLevel) bool {
		d, err := utils.ParseDecimal(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	must("pan", func(fl validator.FieldLevel) bool {
		return panPattern.MatchString(fl.Field().String())
	})
	must("aadhaar", func(fl validator.FieldLevel) bool {
		return aadhaarPattern.MatchString(fl.Field().String())
	})
	must("pincode", func(fl validator.FieldLevel) bool {
		return pincodePattern.MatchString(fl.Field().String())
	})
	return v
}

const (
	tagDate  = "datetime=2006-01-02"
	tagEmail = "email"
	tagPhone = "phone"
	tagMoney = "amount"
	tagCount = "number"
)

func equals(name, value string) func(Fields) bool {
	return func(f Fields) bool { return f.String(name) == value }
}

func truthy(name string) func(Fields) bool {
	return func(f Fields) bool { return f.Bool(name) }
}
