package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/Rakhulsr/go-tours/app/storage"
	"github.com/Rakhulsr/go-tours/app/testutil"
	"github.com/Rakhulsr/go-tours/app/validation"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentEmail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (m *fakeMailer) SendHTMLEmail(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to, subject, body})
	return nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) EnsureBucket(context.Context) error { return nil }

func (m *memStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return nil
}

func (m *memStorage) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, "", storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), "image/png", nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type fixture struct {
	db       *gorm.DB
	mailer   *fakeMailer
	photos   *memStorage
	tours    *TourService
	users    *UserService
	reviews  *ReviewService
	tourRepo repositories.TourRepositoryImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	v := validation.New()
	tourRepo := repositories.NewTourRepository(db)
	userRepo := repositories.NewUserRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	mailer := &fakeMailer{}
	photos := newMemStorage()

	return &fixture{
		db:       db,
		mailer:   mailer,
		photos:   photos,
		tours:    NewTourService(tourRepo, userRepo, v),
		users:    NewUserService(userRepo, v, mailer, photos, "http://localhost:8080/"),
		reviews:  NewReviewService(reviewRepo, tourRepo, v),
		tourRepo: tourRepo,
	}
}

func (f *fixture) signup(t *testing.T, name, email string) *models.User {
	t.Helper()
	u, err := f.users.Signup(context.Background(), &models.UserInput{
		Name: name, Email: email, Password: "pass1234", PasswordConfirm: "pass1234",
	})
	require.NoError(t, err)
	return u
}

func tourInput(name string) *models.Tour {
	return &models.Tour{
		Name:         name,
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   models.DifficultyEasy,
		Price:        decimal.NewFromInt(397),
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
	}
}

func TestTourServiceCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guide := f.signup(t, "Lourdes Browning", "lourdes@example.com")

	in := tourInput("  The Forest Hiker ")
	in.Guides = []models.User{{ID: guide.ID}}
	tour, err := f.tours.Create(ctx, in)
	require.NoError(t, err)

	assert.NotEmpty(t, tour.ID)
	assert.Equal(t, "The Forest Hiker", tour.Name)
	assert.Equal(t, "the-forest-hiker", tour.Slug)
	assert.Equal(t, models.DefaultRatingsAverage, tour.RatingsAverage)
	assert.Zero(t, tour.RatingsQuantity)
	require.Len(t, tour.Guides, 1)
	assert.Equal(t, "Lourdes Browning", tour.Guides[0].Name)
}

func TestTourServiceCreateRejectsUnknownGuide(t *testing.T) {
	f := newFixture(t)

	in := tourInput("The Sea Explorer")
	in.Guides = []models.User{{ID: "ghost"}}
	_, err := f.tours.Create(context.Background(), in)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldMessages()["guides"], "ghost")
}

func TestTourServiceCreateRejectsDiscountAbovePrice(t *testing.T) {
	f := newFixture(t)

	in := tourInput("The Snow Adventurer")
	discount := decimal.NewFromInt(500)
	in.PriceDiscount = &discount
	_, err := f.tours.Create(context.Background(), in)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldMessages(), "priceDiscount")

	all, err := f.tours.FindAll(context.Background(), repositories.Query{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTourServiceUpdateValidatesMergedRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := tourInput("The Star Gazer")
	in.Price = decimal.NewFromInt(500)
	discount := decimal.NewFromInt(400)
	in.PriceDiscount = &discount
	tour, err := f.tours.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.tours.Update(ctx, tour.ID, map[string]any{"price": 350})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Discount price (400) should be below regular price", verr.FieldMessages()["priceDiscount"])

	stored, err := f.tours.FindByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(stored.Price))
}

func TestTourServiceUpdateRecomputesSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tour, err := f.tours.Create(ctx, tourInput("The Sea Explorer"))
	require.NoError(t, err)

	updated, err := f.tours.Update(ctx, tour.ID, map[string]any{"name": "The Ocean Explorer", "id": "hijack"})
	require.NoError(t, err)
	assert.Equal(t, tour.ID, updated.ID)
	assert.Equal(t, "the-ocean-explorer", updated.Slug)
	assert.True(t, decimal.NewFromInt(397).Equal(updated.Price))
}

func TestTourServiceUpdateReplacesLocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := tourInput("The Coastal Walker")
	in.StartLocation = models.Location{Description: "Miami, USA", Address: "301 Biscayne Blvd", Coordinates: []float64{-80.18, 25.77}}
	in.Locations = []models.Location{{Description: "Old", Address: "Old Street", Day: 3, Coordinates: []float64{1, 2}}}
	tour, err := f.tours.Create(ctx, in)
	require.NoError(t, err)

	updated, err := f.tours.Update(ctx, tour.ID, map[string]any{
		"locations":     []any{map[string]any{"description": "New"}},
		"startLocation": map[string]any{"description": "Key West"},
	})
	require.NoError(t, err)

	require.Len(t, updated.Locations, 1)
	assert.Equal(t, models.Location{Description: "New", Type: models.LocationTypePoint}, updated.Locations[0])
	assert.Equal(t, models.Location{Description: "Key West", Type: models.LocationTypePoint}, updated.StartLocation)
	assert.Equal(t, "The Coastal Walker", updated.Name)
}

func TestTourServiceUnknownID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tours.Update(ctx, "abc123", map[string]any{"price": 100})
	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "abc123", nf.ID)

	err = f.tours.Delete(ctx, "abc123")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "abc123", nf.ID)
}

func TestUserServiceSignup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Signup(ctx, &models.UserInput{
		Name:            "Jonas",
		Email:           "  Jonas@Example.COM ",
		Role:            models.RoleAdmin,
		Password:        "pass1234",
		PasswordConfirm: "pass1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "jonas@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, models.DefaultPhoto, u.Photo)
	assert.Empty(t, u.PasswordConfirm)
	assert.NotEqual(t, "pass1234", u.Password)
	assert.Nil(t, u.PasswordChangedAt)

	var stored models.User
	require.NoError(t, f.db.First(&stored, "id = ?", u.ID).Error)
	assert.True(t, stored.ValidatePassword("pass1234"))
	assert.True(t, stored.Active)
}

func TestUserServiceSignupPasswordMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Signup(context.Background(), &models.UserInput{
		Name: "Jonas", Email: "jonas@example.com", Password: "pass1234", PasswordConfirm: "pass9999",
	})

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "passwords do not match.", verr.FieldMessages()["passwordConfirm"])
}

func TestUserServiceLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Jonas", "jonas@example.com")

	got, err := f.users.Login(ctx, "JONAS@example.com", "pass1234")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.users.Login(ctx, "jonas@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.users.Login(ctx, "nobody@example.com", "pass1234")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.users.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestUserServiceDeactivateHidesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Jonas", "jonas@example.com")

	require.NoError(t, f.users.Deactivate(ctx, u.ID))

	_, err := f.users.FindByID(ctx, u.ID)
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = f.users.Login(ctx, "jonas@example.com", "pass1234")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.users.Authenticate(ctx, u.ID, time.Now().Unix())
	assert.ErrorIs(t, err, apperrors.ErrUserGone)
}

func TestUserServiceUpdatePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Jonas", "jonas@example.com")
	issuedBefore := time.Now().Add(-time.Hour).Unix()

	_, err := f.users.UpdatePassword(ctx, u.ID, "wrong", "newpass1", "newpass1")
	assert.ErrorIs(t, err, apperrors.ErrIncorrectOldPassword)

	updated, err := f.users.UpdatePassword(ctx, u.ID, "pass1234", "newpass1", "newpass1")
	require.NoError(t, err)
	require.NotNil(t, updated.PasswordChangedAt)

	_, err = f.users.Authenticate(ctx, u.ID, issuedBefore)
	assert.ErrorIs(t, err, apperrors.ErrPasswordChanged)

	_, err = f.users.Authenticate(ctx, u.ID, time.Now().Unix())
	assert.NoError(t, err)

	_, err = f.users.Login(ctx, "jonas@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestUserServiceUpdateIgnoresPasswordChangedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.signup(t, "Lourdes Browning", "lourdes@example.com")

	updated, err := f.users.Update(ctx, user.ID, map[string]any{
		"name":              "Lourdes B",
		"passwordChangedAt": "2099-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lourdes B", updated.Name)
	assert.Nil(t, updated.PasswordChangedAt)

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPasswordChangedAfter(time.Now().Unix()))
}

func TestUserServiceDeleteGuide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guide := f.signup(t, "Miyah Myles", "miyah@example.com")

	in := tourInput("The Wine Taster")
	in.Guides = []models.User{{ID: guide.ID}}
	tour, err := f.tours.Create(ctx, in)
	require.NoError(t, err)
	_, err = f.reviews.Create(ctx, &models.ReviewInput{Review: "Superb", Rating: 5, Tour: tour.ID, User: guide.ID})
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, guide.ID))

	stored, err := f.tours.FindByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Guides)
	assert.Equal(t, 0, stored.RatingsQuantity)
	assert.Equal(t, models.DefaultRatingsAverage, stored.RatingsAverage)
}

func TestUserServiceUpdateMe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Jonas", "jonas@example.com")

	_, err := f.users.UpdateMe(ctx, u.ID, map[string]any{"password": "x"})
	assert.ErrorIs(t, err, ErrNotPasswordRoute)

	updated, err := f.users.UpdateMe(ctx, u.ID, map[string]any{"name": "Jonas S", "role": "admin"})
	require.NoError(t, err)
	assert.Equal(t, "Jonas S", updated.Name)
	assert.Equal(t, models.RoleUser, updated.Role)

	_, err = f.users.UpdateMe(ctx, u.ID, map[string]any{"email": "not-an-email"})
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

var tokenInURL = regexp.MustCompile(`reset-password/([0-9a-f]{64})`)

func TestUserServiceForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Jonas", "jonas@example.com")

	require.NoError(t, f.users.ForgotPassword(ctx, "jonas@example.com"))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "jonas@example.com", f.mailer.sent[0].to)
	assert.Contains(t, f.mailer.sent[0].body, "http://localhost:8080/api/v1/users/reset-password/")

	m := tokenInURL.FindStringSubmatch(f.mailer.sent[0].body)
	require.Len(t, m, 2)
	token := m[1]

	var stored models.User
	require.NoError(t, f.db.First(&stored, "id = ?", u.ID).Error)
	require.NotNil(t, stored.PasswordResetToken)
	assert.NotEqual(t, token, *stored.PasswordResetToken)
	assert.False(t, stored.IsExpiredResetToken())

	_, err := f.users.ResetPassword(ctx, "deadbeef", "newpass1", "newpass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)

	_, err = f.users.ResetPassword(ctx, token, "newpass1", "mismatch")
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)

	reset, err := f.users.ResetPassword(ctx, token, "newpass1", "newpass1")
	require.NoError(t, err)
	assert.Nil(t, reset.PasswordResetToken)
	assert.NotNil(t, reset.PasswordChangedAt)

	_, err = f.users.ResetPassword(ctx, token, "again123", "again123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)

	_, err = f.users.Login(ctx, "jonas@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestUserServiceForgotPasswordMailFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Jonas", "jonas@example.com")
	f.mailer.err = errors.New("smtp down")

	err := f.users.ForgotPassword(ctx, "jonas@example.com")
	assert.ErrorIs(t, err, ErrResetEmailFailed)

	var stored models.User
	require.NoError(t, f.db.First(&stored, "id = ?", u.ID).Error)
	assert.Nil(t, stored.PasswordResetToken)
	assert.Nil(t, stored.PasswordResetExpiresAt)
}

func TestUserServiceForgotPasswordUnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.users.ForgotPassword(context.Background(), "nobody@example.com")

	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Empty(t, f.mailer.sent)
}

func TestUserServiceUpdatePhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Jonas", "jonas@example.com")

	_, err := f.users.UpdatePhoto(ctx, u.ID, strings.NewReader("text"), 4, "text/plain")
	var bad *apperrors.BadRequestError
	require.ErrorAs(t, err, &bad)

	first, err := f.users.UpdatePhoto(ctx, u.ID, strings.NewReader("png-1"), 5, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Photo, "user-"+u.ID+"-"))
	assert.True(t, strings.HasSuffix(first.Photo, ".png"))
	firstKey := first.Photo

	rc, _, err := f.users.OpenPhoto(ctx, "/img/users/../"+firstKey)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "png-1", string(body))

	time.Sleep(2 * time.Millisecond)
	second, err := f.users.UpdatePhoto(ctx, u.ID, strings.NewReader("png-2"), 5, "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, second.Photo)

	_, _, err = f.users.OpenPhoto(ctx, firstKey)
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)

	stored, err := f.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Photo, stored.Photo)
}

func TestReviewServiceRecomputesTourRatings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour, err := f.tours.Create(ctx, tourInput("The Forest Hiker"))
	require.NoError(t, err)
	a := f.signup(t, "Ann", "ann@example.com")
	b := f.signup(t, "Bob", "bob@example.com")

	first, err := f.reviews.Create(ctx, &models.ReviewInput{Review: "Loved it", Rating: 5, Tour: tour.ID, User: a.ID})
	require.NoError(t, err)
	require.NotNil(t, first.User)
	assert.Equal(t, "Ann", first.User.Name)

	_, err = f.reviews.Create(ctx, &models.ReviewInput{Review: "Good", Rating: 4, Tour: tour.ID, User: b.ID})
	require.NoError(t, err)

	stored, err := f.tours.FindByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RatingsQuantity)
	assert.Equal(t, 4.5, stored.RatingsAverage)
	assert.Len(t, stored.Reviews, 2)

	_, err = f.reviews.Update(ctx, first.ID, map[string]any{"rating": 2, "tour": "elsewhere"})
	require.NoError(t, err)
	stored, err = f.tours.FindByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, stored.RatingsAverage)

	reviews, err := f.reviews.FindAll(ctx, repositories.Query{}.Where("tour", tour.ID))
	require.NoError(t, err)
	for _, r := range reviews {
		require.NoError(t, f.reviews.Delete(ctx, r.ID))
	}

	stored, err = f.tours.FindByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.RatingsQuantity)
	assert.Equal(t, models.DefaultRatingsAverage, stored.RatingsAverage)
}

func TestReviewServiceRejectsOutOfRangeRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour, err := f.tours.Create(ctx, tourInput("The Forest Hiker"))
	require.NoError(t, err)
	a := f.signup(t, "Ann", "ann@example.com")

	_, err = f.reviews.Create(ctx, &models.ReviewInput{Review: "Too good", Rating: 6, Tour: tour.ID, User: a.ID})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.reviews.Create(ctx, &models.ReviewInput{Review: "Where", Rating: 4, Tour: "missing", User: a.ID})
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

type fakeSnap struct {
	req *snap.Request
	err *midtrans.Error
}

func (s *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &snap.Response{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}, nil
}

type fakeChecker struct {
	status *coreapi.TransactionStatusResponse
}

func (c *fakeChecker) CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error) {
	if c.status == nil {
		return nil, &midtrans.Error{Message: "not found", StatusCode: 404}
	}
	s := *c.status
	s.OrderID = orderID
	return &s, nil
}

func TestBookingServiceCheckoutAndNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := tourInput("The Forest Hiker")
	discount := decimal.NewFromInt(297)
	in.PriceDiscount = &discount
	tour, err := f.tours.Create(ctx, in)
	require.NoError(t, err)
	user := f.signup(t, "Ann", "ann@example.com")

	snapClient := &fakeSnap{}
	checker := &fakeChecker{}
	svc := NewBookingService(repositories.NewBookingRepository(f.db), f.tourRepo, snapClient, checker, "http://localhost:8080")

	booking, err := svc.Checkout(ctx, tour.ID, user)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	assert.True(t, discount.Equal(booking.Price))
	assert.Equal(t, int64(297), snapClient.req.TransactionDetails.GrossAmt)
	assert.Equal(t, "ann@example.com", snapClient.req.CustomerDetail.Email)
	assert.True(t, strings.HasPrefix(booking.OrderID, "TOUR-"))

	_, err = svc.HandleNotification(ctx, MidtransNotification{OrderID: booking.OrderID, TransactionStatus: "settlement"})
	require.Error(t, err)

	checker.status = &coreapi.TransactionStatusResponse{TransactionStatus: "settlement", FraudStatus: "accept"}
	// the notified status is ignored in favour of the verified one
	updated, err := svc.HandleNotification(ctx, MidtransNotification{OrderID: booking.OrderID, TransactionStatus: "deny"})
	require.NoError(t, err)
	assert.True(t, updated.Paid)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)

	mine, err := svc.MyBookings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].Paid)
}

func TestBookingServiceCheckoutFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour, err := f.tours.Create(ctx, tourInput("The Forest Hiker"))
	require.NoError(t, err)
	user := f.signup(t, "Ann", "ann@example.com")

	svc := NewBookingService(repositories.NewBookingRepository(f.db), f.tourRepo,
		&fakeSnap{err: &midtrans.Error{Message: "unauthorized", StatusCode: 401}}, &fakeChecker{}, "")

	_, err = svc.Checkout(ctx, tour.ID, user)
	require.Error(t, err)

	mine, err := svc.MyBookings(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestPaymentStatusFor(t *testing.T) {
	cases := []struct {
		tx, fraud, want string
	}{
		{"capture", "accept", models.PaymentStatusPaid},
		{"capture", "challenge", models.PaymentStatusFailed},
		{"settlement", "", models.PaymentStatusPaid},
		{"pending", "", models.PaymentStatusPending},
		{"expire", "", models.PaymentStatusFailed},
		{"cancel", "", models.PaymentStatusCancelled},
	}
	for _, c := range cases {
		got, err := paymentStatusFor(c.tx, c.fraud)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s/%s", c.tx, c.fraud)
	}

	_, err := paymentStatusFor("refund", "")
	assert.Error(t, err)
}

func TestMergePatchTypeMismatch(t *testing.T) {
	tour := &models.Tour{Name: "The Forest Hiker"}

	err := mergePatch(tour, map[string]any{"duration": "five"})

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldMessages(), "duration")
	assert.Equal(t, "The Forest Hiker", tour.Name)
}
