package models

import (
	"strings"
	"time"
)

type Review struct {
	ID        string    `gorm:"size:36;primaryKey" json:"id"`
	Review    string    `gorm:"type:text;not null" json:"review" validate:"required"`
	Rating    float64   `gorm:"not null" json:"rating" validate:"required,gte=1,lte=5"`
	TourID    string    `gorm:"size:36;not null;uniqueIndex:idx_reviews_tour_user" json:"tour" validate:"required"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_reviews_tour_user" json:"-" validate:"required"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty" validate:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

type ReviewInput struct {
	Review string  `json:"review"`
	Rating float64 `json:"rating"`
	Tour   string  `json:"tour"`
	User   string  `json:"user"`
}

func (in *ReviewInput) ToReview() *Review {
	return &Review{
		Review: in.Review,
		Rating: in.Rating,
		TourID: in.Tour,
		UserID: in.User,
	}
}

func (r *Review) Normalize() {
	r.Review = strings.TrimSpace(r.Review)
}

// RatingSummary is the aggregate a tour's rating fields are derived from.
type RatingSummary struct {
	Quantity int
	Average  float64
}
