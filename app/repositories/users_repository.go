package repositories

import (
	"context"

	"github.com/Rakhulsr/go-tours/app/models"
	"gorm.io/gorm"
)

const userResource = "user"

var userColumns = Columns{
	"id":        "id",
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
}

type UserRepositoryImpl interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string, opts ReadOptions) (*models.User, error)
	FindByEmail(ctx context.Context, email string, opts ReadOptions) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	FindByPasswordResetToken(ctx context.Context, hashedToken string) (*models.User, error)
	FindAll(ctx context.Context, q Query, opts ReadOptions) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	// UpdateColumns writes the given columns directly, without running entity validation.
	UpdateColumns(ctx context.Context, id string, columns map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepositoryImpl {
	return &userRepository{db}
}

func (r *userRepository) read(ctx context.Context, opts ReadOptions) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{}).Scopes(activeUsers(opts))
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	return translateError(err, userResource, user.ID, "email")
}

func (r *userRepository) FindByID(ctx context.Context, id string, opts ReadOptions) (*models.User, error) {
	var user models.User
	if err := r.read(ctx, opts).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err, userResource, id, "")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string, opts ReadOptions) (*models.User, error) {
	var user models.User
	if err := r.read(ctx, opts).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err, userResource, email, "")
	}
	return &user, nil
}

// FindByIDs returns the active users among ids; missing or inactive ids are simply absent.
func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.read(ctx, ReadOptions{}).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, translateError(err, userResource, "", "")
	}
	return users, nil
}

func (r *userRepository) FindByPasswordResetToken(ctx context.Context, hashedToken string) (*models.User, error) {
	var user models.User
	if err := r.read(ctx, ReadOptions{}).Where("password_reset_token = ?", hashedToken).First(&user).Error; err != nil {
		return nil, translateError(err, userResource, "reset-token", "")
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, q Query, opts ReadOptions) ([]models.User, error) {
	var users []models.User
	if err := q.apply(r.read(ctx, opts), userColumns, "created_at DESC").Find(&users).Error; err != nil {
		return nil, translateError(err, userResource, "", "")
	}
	return users, nil
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	return translateError(err, userResource, user.ID, "email")
}

func (r *userRepository) UpdateColumns(ctx context.Context, id string, columns map[string]interface{}) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(columns).Error
	return translateError(err, userResource, id, "email")
}

// Delete removes the user along with their guide assignments and reviews, then refreshes the
// ratings of every tour that lost a review.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		var reviewedTours []string
		if err := tx.Model(&models.Review{}).Where("user_id = ?", id).Distinct().Pluck("tour_id", &reviewedTours).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM tour_guides WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
			return err
		}
		for _, tourID := range reviewedTours {
			if err := refreshRatings(tx, tourID); err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err, userResource, id, "")
}
