package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/Rakhulsr/go-tours/app/validation"
	"github.com/google/uuid"
)

// StatsMinRating is the rating floor of the tour statistics aggregation.
const StatsMinRating = 4.5

var (
	listTours = repositories.ReadOptions{IncludeGuides: true}
	oneTour   = repositories.ReadOptions{IncludeGuides: true, IncludeReviews: true}
)

type TourService struct {
	tours     repositories.TourRepositoryImpl
	users     repositories.UserRepositoryImpl
	validator *validation.Validator
}

func NewTourService(tours repositories.TourRepositoryImpl, users repositories.UserRepositoryImpl, v *validation.Validator) *TourService {
	return &TourService{tours: tours, users: users, validator: v}
}

func (s *TourService) Create(ctx context.Context, in *models.Tour) (*models.Tour, error) {
	tour := *in
	tour.ID = uuid.NewString()
	tour.Reviews = nil
	tour.ApplyDefaults()
	tour.Normalize()

	if err := s.validator.Tour(&tour); err != nil {
		return nil, err
	}
	if err := s.resolveGuides(ctx, &tour); err != nil {
		return nil, err
	}
	if err := s.tours.Create(ctx, &tour); err != nil {
		return nil, err
	}
	return s.tours.FindByID(ctx, tour.ID, oneTour)
}

// Update merges the patch onto the stored tour and re-validates the whole record before saving.
func (s *TourService) Update(ctx context.Context, id string, patch map[string]any) (*models.Tour, error) {
	tour, err := s.tours.FindByID(ctx, id, repositories.ReadOptions{IncludeGuides: true, IncludeInactive: true})
	if err != nil {
		return nil, err
	}

	delete(patch, "reviews")
	if err := mergePatch(tour, patch); err != nil {
		return nil, err
	}
	tour.ID = id
	tour.Normalize()

	if err := s.validator.Tour(tour); err != nil {
		return nil, err
	}
	if _, ok := patch["guides"]; ok {
		if err := s.resolveGuides(ctx, tour); err != nil {
			return nil, err
		}
	}
	if err := s.tours.Save(ctx, tour); err != nil {
		return nil, err
	}
	return s.tours.FindByID(ctx, id, oneTour)
}

func (s *TourService) Delete(ctx context.Context, id string) error {
	return s.tours.Delete(ctx, id)
}

func (s *TourService) FindByID(ctx context.Context, id string) (*models.Tour, error) {
	return s.tours.FindByID(ctx, id, oneTour)
}

func (s *TourService) FindBySlug(ctx context.Context, slug string) (*models.Tour, error) {
	return s.tours.FindBySlug(ctx, slug, oneTour)
}

func (s *TourService) FindAll(ctx context.Context, q repositories.Query) ([]models.Tour, error) {
	return s.tours.FindAll(ctx, q, listTours)
}

func (s *TourService) Stats(ctx context.Context) ([]models.TourStats, error) {
	return s.tours.Stats(ctx, StatsMinRating)
}

// resolveGuides swaps the referenced ids for the stored active users they name.
func (s *TourService) resolveGuides(ctx context.Context, tour *models.Tour) error {
	ids := tour.GuideIDs()
	if len(ids) == 0 {
		tour.Guides = []models.User{}
		return nil
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	guides := make([]models.User, 0, len(ids))
	var missing []string
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		guides = append(guides, u)
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError(apperrors.FieldError{
			Field:   "guides",
			Message: fmt.Sprintf("no active user found for guide ids: %s", strings.Join(missing, ", ")),
		})
	}
	tour.Guides = guides
	return nil
}
