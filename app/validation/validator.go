package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const MinPasswordLength = 4

// Validator checks complete candidate records (for updates, the record after the patch
// was merged) and converts failures into *apperrors.ValidationError.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterStructValidation(tourStructLevel, models.Tour{})
	v.RegisterStructValidation(userStructLevel, models.User{})

	return &Validator{validate: v}
}

func (v *Validator) Tour(t *models.Tour) error {
	return v.check(t)
}

func (v *Validator) User(u *models.User) error {
	return v.check(u)
}

func (v *Validator) Review(r *models.Review) error {
	return v.check(r)
}

func (v *Validator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", s, err)
	}

	out := apperrors.NewValidationError()
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func tourStructLevel(sl validator.StructLevel) {
	t := sl.Current().Interface().(models.Tour)
	if t.PriceDiscount == nil {
		return
	}
	if !t.PriceDiscount.LessThan(t.Price) {
		sl.ReportError(t.PriceDiscount, "priceDiscount", "PriceDiscount", "ltprice", t.PriceDiscount.String())
	}
}

// userStructLevel enforces the password rules only when a new password is staged, so
// ordinary saves of an existing user never need the plaintext.
func userStructLevel(sl validator.StructLevel) {
	u := sl.Current().Interface().(models.User)
	if !u.PasswordModified() {
		return
	}

	switch {
	case u.Password == "":
		sl.ReportError(u.Password, "password", "Password", "required", "")
	case utf8.RuneCountInString(u.Password) < MinPasswordLength:
		sl.ReportError(u.Password, "password", "Password", "min", fmt.Sprint(MinPasswordLength))
	}

	switch {
	case u.PasswordConfirm == "":
		sl.ReportError(u.PasswordConfirm, "passwordConfirm", "PasswordConfirm", "required", "")
	case u.PasswordConfirm != u.Password:
		sl.ReportError(u.PasswordConfirm, "passwordConfirm", "PasswordConfirm", "eqfield", "password")
	}
}
