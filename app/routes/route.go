package routes

import (
	"net/http"

	"github.com/Rakhulsr/go-tours/app/auth"
	"github.com/Rakhulsr/go-tours/app/handlers"
	"github.com/Rakhulsr/go-tours/app/middlewares"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/services"
	"github.com/Rakhulsr/go-tours/app/utils/sessions"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/unrolled/render"
)

// TourService is what both the API and the views use of the tour service.
type TourService interface {
	handlers.TourService
	handlers.TourViews
}

type Services struct {
	Tours   TourService
	Reviews handlers.ReviewService
	Users   interface {
		handlers.UserService
		middlewares.Authenticator
	}
	Bookings handlers.BookingService
}

type Options struct {
	Render      *render.Render
	Tokens      *auth.TokenService
	Sessions    sessions.SessionStore
	Logger      zerolog.Logger
	CSRFKey     []byte
	Secure      bool
	CORSOrigins []string
}

func NewRouter(svc Services, opts Options) http.Handler {
	rnd := opts.Render
	authMW := middlewares.NewAuthMiddleware(opts.Tokens, svc.Users, opts.Sessions, handlers.ErrorResponder(rnd))
	requireLogin := authMW.RequireLogin
	restrictTo := func(roles ...string) func(http.HandlerFunc) http.Handler {
		return func(h http.HandlerFunc) http.Handler {
			return requireLogin(authMW.RestrictTo(roles...)(h))
		}
	}
	protected := func(h http.HandlerFunc) http.Handler { return requireLogin(h) }
	adminOnly := restrictTo(models.RoleAdmin)
	reviewers := restrictTo(models.RoleUser, models.RoleAdmin)

	tourHandler := handlers.NewTourHandler(rnd, svc.Tours)
	reviewHandler := handlers.NewReviewHandler(rnd, svc.Reviews)
	authHandler := handlers.NewAuthHandler(rnd, svc.Users, opts.Tokens, opts.Sessions)
	userHandler := handlers.NewUserHandler(rnd, svc.Users)
	bookingHandler := handlers.NewBookingHandler(rnd, svc.Bookings)
	viewHandler := handlers.NewViewHandler(rnd, svc.Tours, svc.Users, svc.Bookings, opts.Tokens, opts.Sessions)

	router := mux.NewRouter()
	router.NotFoundHandler = handlers.NotFound(rnd)

	api := router.PathPrefix("/api/v1").Subrouter()

	// tours: the fixed paths must be registered before /tours/{id}
	api.Handle("/tours", protected(tourHandler.GetAllTours())).Methods(http.MethodGet)
	api.Handle("/tours", tourHandler.CreateTour()).Methods(http.MethodPost)
	api.Handle("/tours/top-5-cheap", tourHandler.GetTopCheapTours()).Methods(http.MethodGet)
	api.HandleFunc("/tours/stats", tourHandler.GetTourStats).Methods(http.MethodGet)
	api.Handle("/tours/{id}", tourHandler.GetTour()).Methods(http.MethodGet)
	api.Handle("/tours/{id}", tourHandler.UpdateTour()).Methods(http.MethodPatch)
	api.Handle("/tours/{id}", tourHandler.DeleteTour()).Methods(http.MethodDelete)

	// reviews, also nested under a tour
	api.Handle("/tours/{tourId}/reviews", protected(reviewHandler.GetAllReviews())).Methods(http.MethodGet)
	api.Handle("/tours/{tourId}/reviews", reviewers(reviewHandler.CreateReview())).Methods(http.MethodPost)
	api.Handle("/reviews", protected(reviewHandler.GetAllReviews())).Methods(http.MethodGet)
	api.Handle("/reviews", reviewers(reviewHandler.CreateReview())).Methods(http.MethodPost)
	api.Handle("/reviews/{id}", protected(reviewHandler.GetReview())).Methods(http.MethodGet)
	api.Handle("/reviews/{id}", reviewers(reviewHandler.UpdateReview())).Methods(http.MethodPatch)
	api.Handle("/reviews/{id}", reviewers(reviewHandler.DeleteReview())).Methods(http.MethodDelete)

	// users
	api.HandleFunc("/users/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/users/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/users/logout", authHandler.Logout).Methods(http.MethodGet)
	api.HandleFunc("/users/forgot-password", authHandler.ForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/users/reset-password/{token}", authHandler.ResetPassword).Methods(http.MethodPatch)
	api.Handle("/users/update-my-password", protected(authHandler.UpdateMyPassword)).Methods(http.MethodPatch)
	api.Handle("/users/me", protected(userHandler.GetMe())).Methods(http.MethodGet)
	api.Handle("/users/me/photo", protected(userHandler.UpdateMyPhoto)).Methods(http.MethodPatch)
	api.Handle("/users/update-me", protected(userHandler.UpdateMe)).Methods(http.MethodPatch)
	api.Handle("/users/delete-me", protected(userHandler.DeleteMe)).Methods(http.MethodDelete)
	api.Handle("/users", adminOnly(userHandler.GetAllUsers())).Methods(http.MethodGet)
	api.Handle("/users", adminOnly(userHandler.CreateUser())).Methods(http.MethodPost)
	api.Handle("/users/{id}", adminOnly(userHandler.GetUser())).Methods(http.MethodGet)
	api.Handle("/users/{id}", adminOnly(userHandler.UpdateUser())).Methods(http.MethodPatch)
	api.Handle("/users/{id}", adminOnly(userHandler.DeleteUser())).Methods(http.MethodDelete)

	// bookings
	api.Handle("/bookings/checkout-session/{tourId}", protected(bookingHandler.CheckoutSession)).Methods(http.MethodPost)
	api.Handle("/bookings/my", protected(bookingHandler.MyBookings)).Methods(http.MethodGet)
	api.HandleFunc("/bookings/notifications", bookingHandler.Notification).Methods(http.MethodPost)

	router.HandleFunc("/img/users/{name}", userHandler.Photo).Methods(http.MethodGet)

	views := router.NewRoute().Subrouter()
	views.Use(authMW.IsLoggedIn)
	if len(opts.CSRFKey) > 0 {
		views.Use(csrf.Protect(opts.CSRFKey, csrf.Secure(opts.Secure), csrf.Path("/")))
	}
	views.HandleFunc("/", viewHandler.Overview).Methods(http.MethodGet)
	views.HandleFunc("/tour/{slug}", viewHandler.Tour).Methods(http.MethodGet)
	views.HandleFunc("/auth/login", viewHandler.LoginForm).Methods(http.MethodGet)
	views.HandleFunc("/auth/login", viewHandler.Login).Methods(http.MethodPost)
	views.HandleFunc("/auth/logout", viewHandler.Logout).Methods(http.MethodGet)
	views.HandleFunc("/me", viewHandler.Account).Methods(http.MethodGet)
	views.HandleFunc("/my-tours", viewHandler.MyTours).Methods(http.MethodGet)

	var handler http.Handler = router
	handler = middlewares.CORS(opts.CORSOrigins)(handler)
	handler = middlewares.RequestLogger(opts.Logger)(handler)
	handler = middlewares.Recovery(opts.Logger)(handler)
	return handler
}

// Compile-time checks that the concrete services satisfy the routing contracts.
var (
	_ TourService               = (*services.TourService)(nil)
	_ handlers.ReviewService    = (*services.ReviewService)(nil)
	_ handlers.UserService      = (*services.UserService)(nil)
	_ middlewares.Authenticator = (*services.UserService)(nil)
	_ handlers.BookingService   = (*services.BookingService)(nil)
)
