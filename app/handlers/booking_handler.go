package handlers

import (
	"context"
	"net/http"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/helpers"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/services"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

type BookingService interface {
	Checkout(ctx context.Context, tourID string, user *models.User) (*models.Booking, error)
	MyBookings(ctx context.Context, userID string) ([]models.Booking, error)
	HandleNotification(ctx context.Context, n services.MidtransNotification) (*models.Booking, error)
}

type BookingHandler struct {
	render   *render.Render
	bookings BookingService
}

func NewBookingHandler(r *render.Render, bookings BookingService) *BookingHandler {
	return &BookingHandler{render: r, bookings: bookings}
}

// CheckoutSession opens a midtrans snap payment for the tour in the path.
func (h *BookingHandler) CheckoutSession(w http.ResponseWriter, r *http.Request) {
	user := helpers.CurrentUser(r)
	if user == nil {
		respondError(h.render, w, r, apperrors.ErrNotLoggedIn)
		return
	}

	booking, err := h.bookings.Checkout(r.Context(), mux.Vars(r)["tourId"], user)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, envelope{
		"status": statusSuccess,
		"session": envelope{
			"token":       booking.PaymentToken,
			"redirectUrl": booking.RedirectURL,
		},
		"data": envelope{"booking": booking},
	})
}

func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	user := helpers.CurrentUser(r)
	if user == nil {
		respondError(h.render, w, r, apperrors.ErrNotLoggedIn)
		return
	}

	bookings, err := h.bookings.MyBookings(r.Context(), user.ID)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeDocuments(h.render, w, bookings, len(bookings))
}

// Notification is the midtrans webhook. It always answers 200 once the payload is readable so
// midtrans stops retrying; failures are logged.
func (h *BookingHandler) Notification(w http.ResponseWriter, r *http.Request) {
	var n services.MidtransNotification
	if err := decodeJSON(w, r, &n); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	if n.OrderID == "" {
		respondError(h.render, w, r, &apperrors.BadRequestError{Message: "order_id is required"})
		return
	}

	booking, err := h.bookings.HandleNotification(r.Context(), n)
	if err != nil {
		log.Error().Err(err).Str("order_id", n.OrderID).Msg("midtrans notification not applied")
		_ = h.render.JSON(w, http.StatusOK, envelope{"status": "ignored"})
		return
	}
	_ = h.render.JSON(w, http.StatusOK, envelope{
		"status": statusSuccess,
		"data":   envelope{"paymentStatus": booking.PaymentStatus},
	})
}
