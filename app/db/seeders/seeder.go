package seeders

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/Rakhulsr/go-tours/app/db/fakers"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/Rakhulsr/go-tours/app/services"
	"github.com/Rakhulsr/go-tours/app/validation"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixtures reference each other by natural keys: users by email and tours by name.
type Fixtures struct {
	Users   []UserFixture   `yaml:"users"`
	Tours   []TourFixture   `yaml:"tours"`
	Reviews []ReviewFixture `yaml:"reviews"`
}

type UserFixture struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Role     string `yaml:"role"`
	Photo    string `yaml:"photo"`
	Password string `yaml:"password"`
}

type TourFixture struct {
	Name          string            `yaml:"name"`
	Duration      int               `yaml:"duration"`
	MaxGroupSize  int               `yaml:"maxGroupSize"`
	Difficulty    string            `yaml:"difficulty"`
	Price         float64           `yaml:"price"`
	PriceDiscount *float64          `yaml:"priceDiscount"`
	Summary       string            `yaml:"summary"`
	Description   string            `yaml:"description"`
	StartLocation models.Location   `yaml:"startLocation"`
	Locations     []models.Location `yaml:"locations"`
	StartDates    []time.Time       `yaml:"startDates"`
	SecretTour    bool              `yaml:"secretTour"`
	Guides        []string          `yaml:"guides"`
}

type ReviewFixture struct {
	Tour   string  `yaml:"tour"`
	User   string  `yaml:"user"`
	Rating float64 `yaml:"rating"`
	Review string  `yaml:"review"`
}

func LoadFixtures(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return ParseFixtures(f)
}

func ParseFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

type UserCreator interface {
	Create(ctx context.Context, in *models.UserInput) (*models.User, error)
}

type TourCreator interface {
	Create(ctx context.Context, in *models.Tour) (*models.Tour, error)
}

type ReviewCreator interface {
	Create(ctx context.Context, in *models.ReviewInput) (*models.Review, error)
}

// Seeder writes fixtures through the services so every record passes the same
// validation and hooks as one created over the API.
type Seeder struct {
	users   UserCreator
	tours   TourCreator
	reviews ReviewCreator
}

func NewSeeder(users UserCreator, tours TourCreator, reviews ReviewCreator) *Seeder {
	return &Seeder{users: users, tours: tours, reviews: reviews}
}

type Result struct {
	Users   int
	Tours   int
	Reviews int
}

func (s *Seeder) Seed(ctx context.Context, fx *Fixtures, fakeUsers int) (Result, error) {
	var res Result
	userIDs := make(map[string]string, len(fx.Users))
	tourIDs := make(map[string]string, len(fx.Tours))

	for _, uf := range fx.Users {
		user, err := s.users.Create(ctx, &models.UserInput{
			Name:            uf.Name,
			Email:           uf.Email,
			Role:            uf.Role,
			Photo:           uf.Photo,
			Password:        uf.Password,
			PasswordConfirm: uf.Password,
		})
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", uf.Email, err)
		}
		userIDs[uf.Email] = user.ID
		res.Users++
	}

	for _, tf := range fx.Tours {
		tour, err := tf.toTour(userIDs)
		if err != nil {
			return res, err
		}
		created, err := s.tours.Create(ctx, tour)
		if err != nil {
			return res, fmt.Errorf("seed tour %q: %w", tf.Name, err)
		}
		tourIDs[tf.Name] = created.ID
		res.Tours++
	}

	for _, rf := range fx.Reviews {
		tourID, ok := tourIDs[rf.Tour]
		if !ok {
			return res, fmt.Errorf("review references unknown tour %q", rf.Tour)
		}
		userID, ok := userIDs[rf.User]
		if !ok {
			return res, fmt.Errorf("review references unknown user %q", rf.User)
		}
		if _, err := s.reviews.Create(ctx, &models.ReviewInput{
			Review: rf.Review,
			Rating: rf.Rating,
			Tour:   tourID,
			User:   userID,
		}); err != nil {
			return res, fmt.Errorf("seed review of %q by %s: %w", rf.Tour, rf.User, err)
		}
		res.Reviews++
	}

	tours := make([]string, 0, len(tourIDs))
	for _, id := range tourIDs {
		tours = append(tours, id)
	}

	for i := 0; i < fakeUsers; i++ {
		user, err := s.users.Create(ctx, fakers.UserFaker())
		if err != nil {
			return res, fmt.Errorf("seed fake user: %w", err)
		}
		res.Users++

		if len(tours) == 0 {
			continue
		}
		tourID := tours[rand.Intn(len(tours))]
		if _, err := s.reviews.Create(ctx, fakers.ReviewFaker(tourID, user.ID)); err != nil {
			return res, fmt.Errorf("seed fake review: %w", err)
		}
		res.Reviews++
	}

	return res, nil
}

func (tf TourFixture) toTour(userIDs map[string]string) (*models.Tour, error) {
	tour := &models.Tour{
		Name:          tf.Name,
		Duration:      tf.Duration,
		MaxGroupSize:  tf.MaxGroupSize,
		Difficulty:    tf.Difficulty,
		Price:         decimal.NewFromFloat(tf.Price),
		Summary:       tf.Summary,
		Description:   tf.Description,
		StartLocation: tf.StartLocation,
		Locations:     tf.Locations,
		StartDates:    tf.StartDates,
		SecretTour:    tf.SecretTour,
		Guides:        make([]models.User, 0, len(tf.Guides)),
	}
	if tf.PriceDiscount != nil {
		discount := decimal.NewFromFloat(*tf.PriceDiscount)
		tour.PriceDiscount = &discount
	}

	for _, email := range tf.Guides {
		id, ok := userIDs[email]
		if !ok {
			return nil, fmt.Errorf("tour %q references unknown guide %q", tf.Name, email)
		}
		tour.Guides = append(tour.Guides, models.User{ID: id})
	}
	return tour, nil
}

// DBSeed wires the services over db and loads fx plus fakeUsers generated accounts.
func DBSeed(ctx context.Context, db *gorm.DB, fx *Fixtures, fakeUsers int) (Result, error) {
	v := validation.New()
	userRepo := repositories.NewUserRepository(db)
	tourRepo := repositories.NewTourRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)

	seeder := NewSeeder(
		services.NewUserService(userRepo, v, nil, nil, ""),
		services.NewTourService(tourRepo, userRepo, v),
		services.NewReviewService(reviewRepo, tourRepo, v),
	)

	res, err := seeder.Seed(ctx, fx, fakeUsers)
	if err != nil {
		return res, err
	}
	log.Info().Int("users", res.Users).Int("tours", res.Tours).Int("reviews", res.Reviews).Msg("database seeded")
	return res, nil
}
