package repositories

import (
	"context"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tourResource = "tour"

var tourColumns = Columns{
	"id":              "id",
	"name":            "name",
	"slug":            "slug",
	"duration":        "duration",
	"maxGroupSize":    "max_group_size",
	"difficulty":      "difficulty",
	"ratingsAverage":  "ratings_average",
	"ratingsQuantity": "ratings_quantity",
	"price":           "price",
	"priceDiscount":   "price_discount",
	"secretTour":      "secret_tour",
	"createdAt":       "created_at",
}

type TourRepositoryImpl interface {
	Create(ctx context.Context, tour *models.Tour) error
	FindByID(ctx context.Context, id string, opts ReadOptions) (*models.Tour, error)
	FindBySlug(ctx context.Context, slug string, opts ReadOptions) (*models.Tour, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Tour, error)
	FindAll(ctx context.Context, q Query, opts ReadOptions) ([]models.Tour, error)
	Save(ctx context.Context, tour *models.Tour) error
	Delete(ctx context.Context, id string) error
	UpdateRatings(ctx context.Context, id string, summary models.RatingSummary) error
	Stats(ctx context.Context, minRating float64) ([]models.TourStats, error)
}

type tourRepository struct {
	db *gorm.DB
}

func NewTourRepository(db *gorm.DB) TourRepositoryImpl {
	return &tourRepository{db}
}

func (r *tourRepository) read(ctx context.Context, opts ReadOptions) *gorm.DB {
	q := r.db.WithContext(ctx)
	if opts.IncludeGuides {
		q = q.Preload("Guides", activeUsers(opts))
	}
	if opts.IncludeReviews {
		q = q.Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).Preload("Reviews.User", activeUsers(opts))
	}
	return q
}

// Create inserts the tour and its guide references; the guide user rows themselves are never written.
func (r *tourRepository) Create(ctx context.Context, tour *models.Tour) error {
	err := r.db.WithContext(ctx).Omit("Guides.*", "Reviews").Create(tour).Error
	return translateError(err, tourResource, tour.ID, "name")
}

func (r *tourRepository) FindByID(ctx context.Context, id string, opts ReadOptions) (*models.Tour, error) {
	var tour models.Tour
	if err := r.read(ctx, opts).Where("id = ?", id).First(&tour).Error; err != nil {
		return nil, translateError(err, tourResource, id, "")
	}
	return &tour, nil
}

func (r *tourRepository) FindBySlug(ctx context.Context, slug string, opts ReadOptions) (*models.Tour, error) {
	var tour models.Tour
	if err := r.read(ctx, opts).Where("slug = ?", slug).First(&tour).Error; err != nil {
		return nil, translateError(err, tourResource, slug, "")
	}
	return &tour, nil
}

func (r *tourRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Tour, error) {
	var tours []models.Tour
	if len(ids) == 0 {
		return tours, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tours).Error; err != nil {
		return nil, translateError(err, tourResource, "", "")
	}
	return tours, nil
}

func (r *tourRepository) FindAll(ctx context.Context, q Query, opts ReadOptions) ([]models.Tour, error) {
	var tours []models.Tour
	if err := q.apply(r.read(ctx, opts).Model(&models.Tour{}), tourColumns, "created_at DESC").Find(&tours).Error; err != nil {
		return nil, translateError(err, tourResource, "", "")
	}
	return tours, nil
}

// Save writes the tour row and replaces its guide join rows in one transaction.
func (r *tourRepository) Save(ctx context.Context, tour *models.Tour) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(tour).Error; err != nil {
			return err
		}
		return tx.Model(tour).Omit("Guides.*").Association("Guides").Replace(tour.Guides)
	})
	return translateError(err, tourResource, tour.ID, "name")
}

func (r *tourRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tour{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NewNotFoundError(tourResource, id)
		}
		return tx.Select("Guides", "Reviews").Delete(&models.Tour{ID: id}).Error
	})
	return translateError(err, tourResource, id, "")
}

func (r *tourRepository) UpdateRatings(ctx context.Context, id string, summary models.RatingSummary) error {
	err := r.db.WithContext(ctx).Model(&models.Tour{}).Where("id = ?", id).Updates(map[string]interface{}{
		"ratings_average":  summary.Average,
		"ratings_quantity": summary.Quantity,
	}).Error
	return translateError(err, tourResource, id, "")
}

func (r *tourRepository) Stats(ctx context.Context, minRating float64) ([]models.TourStats, error) {
	var stats []models.TourStats
	err := r.db.WithContext(ctx).Model(&models.Tour{}).
		Select(`UPPER(difficulty) AS difficulty,
			COUNT(*) AS num_tours,
			SUM(ratings_quantity) AS num_ratings,
			AVG(ratings_average) AS avg_rating,
			AVG(price) AS avg_price,
			MIN(price) AS min_price,
			MAX(price) AS max_price`).
		Where("ratings_average >= ?", minRating).
		Group("UPPER(difficulty)").
		Order("avg_price").
		Scan(&stats).Error
	if err != nil {
		return nil, translateError(err, tourResource, "stats", "")
	}
	return stats, nil
}
