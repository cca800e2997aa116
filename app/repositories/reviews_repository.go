package repositories

import (
	"context"

	"github.com/Rakhulsr/go-tours/app/models"
	"gorm.io/gorm"
)

const reviewResource = "review"

var reviewColumns = Columns{
	"id":        "id",
	"tour":      "tour_id",
	"rating":    "rating",
	"createdAt": "created_at",
}

type ReviewRepositoryImpl interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id string) (*models.Review, error)
	FindAll(ctx context.Context, q Query) ([]models.Review, error)
	Save(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id string) (*models.Review, error)
	RatingSummary(ctx context.Context, tourID string) (models.RatingSummary, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepositoryImpl {
	return &reviewRepository{db}
}

func (r *reviewRepository) read(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User", activeUsers(ReadOptions{}))
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Omit("User").Create(review).Error
	return translateError(err, reviewResource, review.ID, "tour and user")
}

func (r *reviewRepository) FindByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.read(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, translateError(err, reviewResource, id, "")
	}
	return &review, nil
}

func (r *reviewRepository) FindAll(ctx context.Context, q Query) ([]models.Review, error) {
	var reviews []models.Review
	if err := q.apply(r.read(ctx).Model(&models.Review{}), reviewColumns, "created_at DESC").Find(&reviews).Error; err != nil {
		return nil, translateError(err, reviewResource, "", "")
	}
	return reviews, nil
}

func (r *reviewRepository) Save(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Omit("User").Save(review).Error
	return translateError(err, reviewResource, review.ID, "tour and user")
}

// Delete removes the review and returns it so the caller can refresh the tour's ratings.
func (r *reviewRepository) Delete(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&review).Error; err != nil {
			return err
		}
		return tx.Delete(&review).Error
	})
	if err != nil {
		return nil, translateError(err, reviewResource, id, "")
	}
	return &review, nil
}

func (r *reviewRepository) RatingSummary(ctx context.Context, tourID string) (models.RatingSummary, error) {
	var summary models.RatingSummary
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COUNT(*) AS quantity, COALESCE(AVG(rating), 0) AS average").
		Where("tour_id = ?", tourID).
		Scan(&summary).Error
	return summary, translateError(err, reviewResource, tourID, "")
}

// refreshRatings recomputes a tour's rating fields from its remaining reviews inside tx.
func refreshRatings(tx *gorm.DB, tourID string) error {
	var summary models.RatingSummary
	err := tx.Model(&models.Review{}).
		Select("COUNT(*) AS quantity, COALESCE(AVG(rating), 0) AS average").
		Where("tour_id = ?", tourID).
		Scan(&summary).Error
	if err != nil {
		return err
	}
	if summary.Quantity == 0 {
		summary.Average = models.DefaultRatingsAverage
	}
	return tx.Model(&models.Tour{}).Where("id = ?", tourID).Updates(map[string]interface{}{
		"ratings_average":  models.RoundRating(summary.Average),
		"ratings_quantity": summary.Quantity,
	}).Error
}
