package repositories

import (
	"context"

	"github.com/Rakhulsr/go-tours/app/models"
	"gorm.io/gorm"
)

const bookingResource = "booking"

type BookingRepositoryImpl interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]models.Booking, error)
	UpdatePaymentStatus(ctx context.Context, orderID, status string, paid bool) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepositoryImpl {
	return &bookingRepository{db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	err := r.db.WithContext(ctx).Create(booking).Error
	return translateError(err, bookingResource, booking.ID, "orderId")
}

func (r *bookingRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&booking).Error; err != nil {
		return nil, translateError(err, bookingResource, orderID, "")
	}
	return &booking, nil
}

func (r *bookingRepository) FindByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&bookings).Error
	if err != nil {
		return nil, translateError(err, bookingResource, "", "")
	}
	return bookings, nil
}

func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, orderID, status string, paid bool) error {
	result := r.db.WithContext(ctx).Model(&models.Booking{}).Where("order_id = ?", orderID).Updates(map[string]interface{}{
		"payment_status": status,
		"paid":           paid,
	})
	if result.Error != nil {
		return translateError(result.Error, bookingResource, orderID, "")
	}
	return nil
}
