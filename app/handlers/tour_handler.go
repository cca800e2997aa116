package handlers

import (
	"context"
	"net/http"

	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/unrolled/render"
)

// TourService is everything the tour routes need from the tour service.
type TourService interface {
	Creator[models.Tour, models.Tour]
	Updater[models.Tour]
	Deleter
	Finder[models.Tour]
	Lister[models.Tour]
	Stats(ctx context.Context) ([]models.TourStats, error)
}

type TourHandler struct {
	render *render.Render
	tours  TourService
}

func NewTourHandler(r *render.Render, tours TourService) *TourHandler {
	return &TourHandler{render: r, tours: tours}
}

func (h *TourHandler) GetAllTours() http.HandlerFunc {
	return GetAll[models.Tour](h.render, h.tours)
}

// GetTopCheapTours is the top-5-cheap alias of the tour list.
func (h *TourHandler) GetTopCheapTours() http.HandlerFunc {
	return GetAll[models.Tour](h.render, h.tours, AliasTopTours)
}

func (h *TourHandler) GetTour() http.HandlerFunc {
	return GetOne[models.Tour](h.render, h.tours)
}

func (h *TourHandler) CreateTour() http.HandlerFunc {
	return CreateOne[models.Tour, models.Tour](h.render, h.tours)
}

func (h *TourHandler) UpdateTour() http.HandlerFunc {
	return UpdateOne[models.Tour](h.render, h.tours)
}

func (h *TourHandler) DeleteTour() http.HandlerFunc {
	return DeleteOne(h.render, h.tours)
}

func (h *TourHandler) GetTourStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tours.Stats(r.Context())
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	if stats == nil {
		stats = []models.TourStats{}
	}
	_ = h.render.JSON(w, http.StatusOK, envelope{
		"status": statusSuccess,
		"data":   envelope{"stats": stats},
	})
}

// AliasTopTours presets the query of the top-5-cheap route.
func AliasTopTours(_ *http.Request, q repositories.Query) repositories.Query {
	q.Limit = 5
	q.Sort = []string{"-ratingsAverage", "price"}
	q.Fields = []string{"name", "price", "ratingsAverage", "summary", "difficulty"}
	return q
}
