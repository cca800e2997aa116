package models

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"

	DefaultRatingsAverage = 4.5
	LocationTypePoint     = "Point"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Location struct {
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address,omitempty"`
	Day         int       `json:"day,omitempty"`
}

type Tour struct {
	ID              string           `gorm:"size:36;primaryKey" json:"id"`
	Name            string           `gorm:"size:40;not null;uniqueIndex" json:"name" validate:"required,min=10,max=40"`
	Slug            string           `gorm:"size:100;index" json:"slug"`
	Duration        int              `gorm:"not null" json:"duration" validate:"required,gt=0"`
	MaxGroupSize    int              `gorm:"not null" json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty      string           `gorm:"size:20;not null" json:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64          `gorm:"not null;index:idx_tours_price_rating,priority:2,sort:desc" json:"ratingsAverage" validate:"gte=1,lte=5"`
	RatingsQuantity int              `gorm:"not null;default:0" json:"ratingsQuantity" validate:"gte=0"`
	Price           decimal.Decimal  `gorm:"type:decimal(12,2);not null;index:idx_tours_price_rating,priority:1" json:"price" validate:"required,gt=0"`
	PriceDiscount   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"priceDiscount,omitempty"`
	StartLocation   Location         `gorm:"serializer:json;type:text" json:"startLocation"`
	Locations       []Location       `gorm:"serializer:json;type:text" json:"locations"`
	Summary         string           `gorm:"type:text;not null" json:"summary" validate:"required"`
	Description     string           `gorm:"type:text" json:"description,omitempty"`
	StartDates      []time.Time      `gorm:"serializer:json;type:text" json:"startDates"`
	SecretTour      bool             `gorm:"not null;default:false" json:"secretTour"`
	Guides          []User           `gorm:"many2many:tour_guides" json:"guides"`
	Reviews         []Review         `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
	CreatedAt       time.Time        `json:"-"`
	UpdatedAt       time.Time        `json:"-"`
}

// UnmarshalJSON accepts guides either as full user objects or as a list of user ids.
func (t *Tour) UnmarshalJSON(data []byte) error {
	type tourAlias Tour
	aux := struct {
		*tourAlias
		Guides json.RawMessage `json:"guides"`
	}{tourAlias: (*tourAlias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Guides) == 0 {
		return nil
	}

	var ids []string
	if err := json.Unmarshal(aux.Guides, &ids); err == nil {
		t.Guides = make([]User, 0, len(ids))
		for _, id := range ids {
			t.Guides = append(t.Guides, User{ID: id})
		}
		return nil
	}

	var guides []User
	if err := json.Unmarshal(aux.Guides, &guides); err != nil {
		return err
	}
	t.Guides = guides
	return nil
}

// ApplyDefaults fills the fields a freshly created tour starts with.
func (t *Tour) ApplyDefaults() {
	if t.RatingsAverage == 0 {
		t.RatingsAverage = DefaultRatingsAverage
	}
	if t.Guides == nil {
		t.Guides = []User{}
	}
}

// Normalize runs before every validation and write: trims text, recomputes the slug
// from the current name and rounds the rating.
func (t *Tour) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.Summary = strings.TrimSpace(t.Summary)
	t.Description = strings.TrimSpace(t.Description)
	t.Slug = slug.Make(t.Name)
	t.RatingsAverage = RoundRating(t.RatingsAverage)

	if t.StartLocation.Type == "" {
		t.StartLocation.Type = LocationTypePoint
	}
	for i := range t.Locations {
		if t.Locations[i].Type == "" {
			t.Locations[i].Type = LocationTypePoint
		}
	}
}

// GuideIDs returns the referenced guide ids in order.
func (t *Tour) GuideIDs() []string {
	ids := make([]string, 0, len(t.Guides))
	for _, g := range t.Guides {
		ids = append(ids, g.ID)
	}
	return ids
}

// EffectivePrice is what a booking is charged: the discount price when one is set.
func (t *Tour) EffectivePrice() decimal.Decimal {
	if t.PriceDiscount != nil {
		return *t.PriceDiscount
	}
	return t.Price
}

func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// TourStats is one difficulty bucket of the tour statistics aggregation.
type TourStats struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int     `json:"numTours"`
	NumRatings int     `json:"numRatings"`
	AvgRating  float64 `json:"avgRating"`
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}
