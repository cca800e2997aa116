package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-tours/app/helpers"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type ReviewService interface {
	Creator[models.Review, models.ReviewInput]
	Updater[models.Review]
	Deleter
	Finder[models.Review]
	Lister[models.Review]
}

type ReviewHandler struct {
	render  *render.Render
	reviews ReviewService
}

func NewReviewHandler(r *render.Render, reviews ReviewService) *ReviewHandler {
	return &ReviewHandler{render: r, reviews: reviews}
}

// GetAllReviews lists every review, or a single tour's when mounted under /tours/{tourId}.
func (h *ReviewHandler) GetAllReviews() http.HandlerFunc {
	return GetAll[models.Review](h.render, h.reviews, filterByTour)
}

func (h *ReviewHandler) GetReview() http.HandlerFunc {
	return GetOne[models.Review](h.render, h.reviews)
}

func (h *ReviewHandler) CreateReview() http.HandlerFunc {
	return CreateOne[models.Review, models.ReviewInput](h.render, h.reviews, setTourUserIDs)
}

func (h *ReviewHandler) UpdateReview() http.HandlerFunc {
	return UpdateOne[models.Review](h.render, h.reviews)
}

func (h *ReviewHandler) DeleteReview() http.HandlerFunc {
	return DeleteOne(h.render, h.reviews)
}

// setTourUserIDs takes the tour from the nested route and the author from the session.
// Only admins may post a review on behalf of another user.
func setTourUserIDs(r *http.Request, in *models.ReviewInput) {
	if in.Tour == "" {
		in.Tour = mux.Vars(r)["tourId"]
	}
	user := helpers.CurrentUser(r)
	if user == nil {
		return
	}
	if in.User == "" || !user.HasRole(models.RoleAdmin) {
		in.User = user.ID
	}
}

func filterByTour(r *http.Request, q repositories.Query) repositories.Query {
	if tourID := mux.Vars(r)["tourId"]; tourID != "" {
		return q.Where("tour", tourID)
	}
	return q
}
