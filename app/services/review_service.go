package services

import (
	"context"

	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/Rakhulsr/go-tours/app/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ReviewService struct {
	reviews   repositories.ReviewRepositoryImpl
	tours     repositories.TourRepositoryImpl
	validator *validation.Validator
}

func NewReviewService(reviews repositories.ReviewRepositoryImpl, tours repositories.TourRepositoryImpl, v *validation.Validator) *ReviewService {
	return &ReviewService{reviews: reviews, tours: tours, validator: v}
}

func (s *ReviewService) Create(ctx context.Context, in *models.ReviewInput) (*models.Review, error) {
	review := in.ToReview()
	review.ID = uuid.NewString()
	review.Normalize()

	if err := s.validator.Review(review); err != nil {
		return nil, err
	}
	if _, err := s.tours.FindByID(ctx, review.TourID, repositories.ReadOptions{}); err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	if err := s.refreshTourRatings(ctx, review.TourID); err != nil {
		return nil, err
	}
	return s.reviews.FindByID(ctx, review.ID)
}

// Update lets the text and rating change; the tour and author stay fixed.
func (s *ReviewService) Update(ctx context.Context, id string, patch map[string]any) (*models.Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := mergePatch(review, pick(patch, "review", "rating")); err != nil {
		return nil, err
	}
	review.Normalize()

	if err := s.validator.Review(review); err != nil {
		return nil, err
	}
	if err := s.reviews.Save(ctx, review); err != nil {
		return nil, err
	}
	if err := s.refreshTourRatings(ctx, review.TourID); err != nil {
		return nil, err
	}
	return s.reviews.FindByID(ctx, id)
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	review, err := s.reviews.Delete(ctx, id)
	if err != nil {
		return err
	}
	return s.refreshTourRatings(ctx, review.TourID)
}

func (s *ReviewService) FindByID(ctx context.Context, id string) (*models.Review, error) {
	return s.reviews.FindByID(ctx, id)
}

func (s *ReviewService) FindAll(ctx context.Context, q repositories.Query) ([]models.Review, error) {
	return s.reviews.FindAll(ctx, q)
}

// refreshTourRatings recomputes a tour's rating fields from its reviews, falling back to
// the defaults once the last review is gone.
func (s *ReviewService) refreshTourRatings(ctx context.Context, tourID string) error {
	summary, err := s.reviews.RatingSummary(ctx, tourID)
	if err != nil {
		return err
	}
	if summary.Quantity == 0 {
		summary.Average = models.DefaultRatingsAverage
	}
	summary.Average = models.RoundRating(summary.Average)

	log.Debug().Str("tour_id", tourID).Int("quantity", summary.Quantity).Float64("average", summary.Average).Msg("refreshing tour ratings")
	return s.tours.UpdateRatings(ctx, tourID, summary)
}
