package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// messages is keyed by "<Type>.<jsonField>.<tag>". {value} and {param} are substituted.
var messages = map[string]string{
	"Tour.name.required":         "A tour must have a name",
	"Tour.name.min":              "A tour name must have more or equal then 10 characters",
	"Tour.name.max":              "A tour name must have less or equal then 40 characters",
	"Tour.duration.required":     "A tour must have a duration",
	"Tour.duration.gt":           "A tour duration must be positive",
	"Tour.maxGroupSize.required": "A tour must have a group size",
	"Tour.maxGroupSize.gt":       "A tour group size must be positive",
	"Tour.difficulty.required":   "A tour must have a difficulty",
	"Tour.difficulty.oneof":      "Difficulty is either: easy, medium, difficult",
	"Tour.ratingsAverage.gte":    "Rating must be above 1.0",
	"Tour.ratingsAverage.lte":    "Rating must be below 5.0",
	"Tour.price.required":        "A tour must have a price",
	"Tour.price.gt":              "A tour price must be positive",
	"Tour.priceDiscount.ltprice": "Discount price ({param}) should be below regular price",
	"Tour.summary.required":      "A tour must have a description",

	"User.name.required":            "name is required.",
	"User.email.required":           "email is required.",
	"User.email.email":              "({value}): not a valid email.",
	"User.role.required":            "role is required.",
	"User.role.oneof":               "role must be user, admin, guide or lead-guide",
	"User.password.required":        "password is required.",
	"User.password.min":             "password must have at least {param} characters.",
	"User.passwordConfirm.required": "you need to confirm your password",
	"User.passwordConfirm.eqfield":  "passwords do not match.",

	"Review.review.required": "review can not be empty!",
	"Review.rating.required": "a review must have a rating",
	"Review.rating.gte":      "rating must be at least 1",
	"Review.rating.lte":      "rating must be at most 5",
	"Review.tour.required":   "review must belong to a tour.",
	"Review.UserID.required": "review must belong to a user.",
}

func message(fe validator.FieldError) string {
	tmpl, ok := messages[fe.Namespace()+"."+fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
	}
	return strings.NewReplacer(
		"{value}", fmt.Sprint(fe.Value()),
		"{param}", fe.Param(),
	).Replace(tmpl)
}
