package fakers

import (
	"math/rand"
	"strings"

	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Password is shared by every fake account so they can be logged into during development.
const Password = "test1234"

func UserFaker() *models.UserInput {
	name := faker.FirstName() + " " + faker.LastName()
	email := slug.Make(name) + "-" + uuid.NewString()[:6] + "@example.com"

	return &models.UserInput{
		Name:            name,
		Email:           strings.ToLower(email),
		Role:            models.RoleUser,
		Password:        Password,
		PasswordConfirm: Password,
	}
}

// ReviewFaker writes a review with a rating between 3 and 5 in half steps.
func ReviewFaker(tourID, userID string) *models.ReviewInput {
	return &models.ReviewInput{
		Review: faker.Sentence(),
		Rating: 3 + float64(rand.Intn(5))/2,
		Tour:   tourID,
		User:   userID,
	}
}
