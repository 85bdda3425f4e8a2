package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/antonminaichev/foodflow/internal/donation"
	"github.com/antonminaichev/foodflow/internal/feedback"
	"github.com/antonminaichev/foodflow/internal/logger"
	"github.com/antonminaichev/foodflow/internal/middleware"
	"github.com/antonminaichev/foodflow/internal/notification"
	"github.com/antonminaichev/foodflow/internal/order"
	"github.com/antonminaichev/foodflow/internal/response"
	"github.com/antonminaichev/foodflow/internal/types/user"
	usersvc "github.com/antonminaichev/foodflow/internal/user"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	User         *usersvc.Handler
	Donation     *donation.Handler
	Order        *order.Handler
	Notification *notification.Handler
	Feedback     *feedback.Handler
}

func NewRouter(h Handlers, jwtSecret []byte, users middleware.UserFinder, db Pinger) chi.Router {
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)

	r.Use(middleware.GzipHandler)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			response.Internal(w, "storage unavailable", err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	auth := middleware.JWTMiddleware(jwtSecret, users)
	donor := middleware.RequireRole(user.RoleDonor)
	receiver := middleware.RequireRole(user.RoleReceiver)
	volunteer := middleware.RequireRole(user.RoleVolunteer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.User.Register)
			r.Post("/login", h.User.Login)

			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Get("/me", h.User.Me)
				r.Put("/update", h.User.Update)
				r.Delete("/delete", h.User.Delete)
				r.Get("/users/{id}", h.User.GetByID)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Route("/donations", func(r chi.Router) {
				r.With(donor).Post("/", h.Donation.Create)
				r.Get("/", h.Donation.ListPending)
				r.Get("/my", h.Donation.ListMine)
				r.Delete("/expired", h.Donation.DeleteExpired)
				r.Put("/confirm/{id}", h.Donation.Confirm)
				r.Get("/donor/{donorId}/profile", h.Donation.DonorProfile)
				r.Get("/donor/{donorId}/completed", h.Donation.DonorCompleted)
				r.Get("/user/{userId}", h.Donation.UserDelivered)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Donation.Get)
					r.Put("/", h.Donation.Edit)
					r.Delete("/", h.Donation.Delete)
					r.Get("/summary", h.Donation.Get)
					r.With(receiver).Put("/claim", h.Order.ClaimDonation)
					r.Post("/rate", h.Donation.Rate)
					r.Get("/my-rating", h.Donation.MyRating)
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(receiver).Post("/", h.Order.Create)
				r.Get("/my", h.Order.My)
				r.Get("/available", h.Order.Available)
				r.Get("/assigned", h.Order.Assigned)
				r.With(volunteer).Put("/volunteer/claim/{donationId}", h.Order.VolunteerClaim)
				r.Get("/locations/{id}", h.Order.Locations)
				r.Get("/users/{id}", h.Order.Parties)
				r.Put("/{id}/mark-delivered", h.Order.MarkDelivered)
				r.Put("/{id}/status", h.Order.UpdateStatus)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Post("/", h.Notification.Create)
				r.Put("/{id}/read", h.Notification.MarkRead)
				r.Delete("/{id}", h.Notification.Delete)
			})

			r.Post("/feedback", h.Feedback.Leave)
			r.Get("/feedback/{userId}", h.Feedback.ListForTarget)
		})
	})

	return r
}
