package migrations

import (
	"github.com/Rakhulsr/go-tours/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Tour{}, &models.Review{}, &models.Booking{})
}
