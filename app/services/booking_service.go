package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rs/zerolog/log"
)

// SnapClient is the part of the midtrans snap client the checkout uses.
type SnapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// TransactionChecker is the part of the midtrans core API client the webhook uses.
type TransactionChecker interface {
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

type MidtransNotification struct {
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
}

type BookingService struct {
	bookings repositories.BookingRepositoryImpl
	tours    repositories.TourRepositoryImpl
	snap     SnapClient
	checker  TransactionChecker
	baseURL  string
}

func NewBookingService(
	bookings repositories.BookingRepositoryImpl,
	tours repositories.TourRepositoryImpl,
	snapClient SnapClient,
	checker TransactionChecker,
	baseURL string,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		tours:    tours,
		snap:     snapClient,
		checker:  checker,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// Checkout opens a snap transaction for the tour and records a pending booking for it.
func (s *BookingService) Checkout(ctx context.Context, tourID string, user *models.User) (*models.Booking, error) {
	tour, err := s.tours.FindByID(ctx, tourID, repositories.ReadOptions{})
	if err != nil {
		return nil, err
	}

	price := tour.EffectivePrice()
	amount := price.Round(0).IntPart()
	orderID := fmt.Sprintf("TOUR-%s-%s", time.Now().Format("20060102"), uuid.NewString()[:8])

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    tour.ID,
			Name:  tour.Name,
			Price: amount,
			Qty:   1,
		}},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.Name,
			Email: user.Email,
		},
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/my-tours?tour=%s", s.baseURL, tour.ID),
		},
	}

	resp, midErr := s.snap.CreateTransaction(req)
	if midErr != nil {
		log.Error().Str("order_id", orderID).Str("error", midErr.Message).Msg("midtrans snap transaction failed")
		return nil, fmt.Errorf("create snap transaction: %s", midErr.Message)
	}
	if resp == nil {
		return nil, errors.New("create snap transaction: empty response")
	}

	booking := &models.Booking{
		ID:            uuid.NewString(),
		OrderID:       orderID,
		TourID:        tour.ID,
		TourName:      tour.Name,
		UserID:        user.ID,
		Price:         price,
		PaymentStatus: models.PaymentStatusPending,
		PaymentToken:  resp.Token,
		RedirectURL:   resp.RedirectURL,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) MyBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.bookings.FindByUser(ctx, userID)
}

// HandleNotification verifies a webhook call against the midtrans API and records the
// verified status. The payload itself is never trusted.
func (s *BookingService) HandleNotification(ctx context.Context, n MidtransNotification) (*models.Booking, error) {
	status, midErr := s.checker.CheckTransaction(n.OrderID)
	if midErr != nil {
		return nil, fmt.Errorf("verify transaction %s: %s", n.OrderID, midErr.Message)
	}
	if status == nil {
		return nil, fmt.Errorf("verify transaction %s: empty response", n.OrderID)
	}
	if status.TransactionStatus != n.TransactionStatus || status.FraudStatus != n.FraudStatus {
		log.Warn().
			Str("order_id", n.OrderID).
			Str("api_status", status.TransactionStatus).
			Str("notified_status", n.TransactionStatus).
			Msg("notification status differs from midtrans, using midtrans")
	}

	booking, err := s.bookings.FindByOrderID(ctx, n.OrderID)
	if err != nil {
		return nil, err
	}
	if booking.Paid || booking.PaymentStatus == models.PaymentStatusFailed || booking.PaymentStatus == models.PaymentStatusCancelled {
		log.Info().Str("order_id", n.OrderID).Str("status", booking.PaymentStatus).Msg("booking already settled, skipping")
		return booking, nil
	}

	paymentStatus, err := paymentStatusFor(status.TransactionStatus, status.FraudStatus)
	if err != nil {
		return nil, err
	}
	paid := paymentStatus == models.PaymentStatusPaid
	if err := s.bookings.UpdatePaymentStatus(ctx, booking.OrderID, paymentStatus, paid); err != nil {
		return nil, err
	}

	booking.PaymentStatus = paymentStatus
	booking.Paid = paid
	log.Info().Str("order_id", booking.OrderID).Str("status", paymentStatus).Msg("booking payment updated")
	return booking, nil
}

func paymentStatusFor(transactionStatus, fraudStatus string) (string, error) {
	switch transactionStatus {
	case "capture", "settlement":
		if fraudStatus == "" || fraudStatus == "accept" {
			return models.PaymentStatusPaid, nil
		}
		return models.PaymentStatusFailed, nil
	case "pending":
		return models.PaymentStatusPending, nil
	case "deny", "expire", "failure":
		return models.PaymentStatusFailed, nil
	case "cancel":
		return models.PaymentStatusCancelled, nil
	default:
		return "", fmt.Errorf("unhandled transaction status %q", transactionStatus)
	}
}
