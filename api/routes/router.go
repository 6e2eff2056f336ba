package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pmcollective/pmc-backend/api/controllers"
	"github.com/pmcollective/pmc-backend/api/middleware"
	"github.com/pmcollective/pmc-backend/internal/buddies"
	"github.com/pmcollective/pmc-backend/internal/events"
	"github.com/pmcollective/pmc-backend/internal/messaging"
	"github.com/pmcollective/pmc-backend/internal/users"
	"github.com/pmcollective/pmc-backend/pkg/config"
	"github.com/pmcollective/pmc-backend/pkg/db"
	"github.com/pmcollective/pmc-backend/pkg/logger"
	"github.com/pmcollective/pmc-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	usersService users.Service,
	buddiesService buddies.Service,
	messagingService messaging.Service,
	eventsService events.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	// Public event surface: the landing page lists published webinars and
	// takes registrations without any identity.
	r.Route("/api/v1/events", func(r chi.Router) {
		r.Get("/", controllers.EventsPublished(eventsService, logg))
		r.Post("/{eventId}/registrations", controllers.EventRegister(eventsService, logg))
	})

	// Learner surface, keyed by the opaque identity header.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))

		r.Route("/profile", func(r chi.Router) {
			r.Post("/", controllers.ProfileUpsert(usersService, logg))
			r.Patch("/", controllers.ProfileUpdate(usersService, logg))
			r.Get("/", controllers.ProfileMe(usersService, logg))
		})

		r.Get("/buddies/search", controllers.BuddySearch(usersService, logg))
		r.Get("/buddies", controllers.BuddiesList(buddiesService, logg))

		r.Route("/buddy-requests", func(r chi.Router) {
			r.Post("/", controllers.BuddyRequestSend(buddiesService, logg))
			r.Get("/incoming", controllers.BuddyRequestsIncoming(buddiesService, logg))
			r.Get("/sent", controllers.BuddyRequestsSent(buddiesService, logg))
			r.Post("/{requestId}/respond", controllers.BuddyRequestRespond(buddiesService, logg))
			r.Delete("/{requestId}", controllers.BuddyRequestWithdraw(buddiesService, logg))
			r.Post("/{requestId}/messages", controllers.MessageSend(messagingService, logg))
			r.Get("/{requestId}/messages", controllers.MessagesList(messagingService, logg))
		})
	})

	// Admin surface: access-key login mints a JWT, everything else sits
	// behind token verification.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AdminLogin(cfg, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))

			r.Route("/events", func(r chi.Router) {
				r.Get("/", controllers.EventsList(eventsService, logg))
				r.Post("/", controllers.EventCreate(eventsService, logg))
				r.Get("/{eventId}", controllers.EventGet(eventsService, logg))
				r.Put("/{eventId}", controllers.EventUpdate(eventsService, logg))
				r.Delete("/{eventId}", controllers.EventDelete(eventsService, logg))
				r.Get("/{eventId}/registrations", controllers.RegistrationsList(eventsService, logg))
			})
		})
	})

	return r
}
