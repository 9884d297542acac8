package router

import (
	"net/http"
	"os"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/dto"
	"github.com/fazamuttaqien/slotbook/internal/presenter"
	"github.com/fazamuttaqien/slotbook/middleware"
	"github.com/fazamuttaqien/slotbook/pkg/validator"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func New(presenters presenter.Presenter) *chi.Mux {
	r := chi.NewRouter()

	// Basic CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{os.Getenv("FRONTEND_ORIGIN")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize middlewares
	authMiddleware := middleware.AuthMiddleware
	errorHandlerMiddleware := middleware.ErrorMiddleware

	// Global middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(errorHandlerMiddleware)
	r.Use(securityHeadersMiddleware)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// --- Auth Routes (Public) ---
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.WithValidation[dto.RegisterDto](validator.SourceBody)).
				Post("/register", presenters.Controllers.Register)

			r.With(middleware.WithValidation[dto.LoginDto](validator.SourceBody)).
				Post("/login", presenters.Controllers.Login)
		})

		// --- Calendar Routes (Protected) ---
		r.Route("/calendar", func(r chi.Router) {
			r.Use(authMiddleware)

			r.Get("/", presenters.Controllers.GetUserCalendars)

			r.With(middleware.WithValidation[dto.CreateCalendarDto](validator.SourceBody)).
				Post("/", presenters.Controllers.CreateCalendar)

			r.Route("/{calendarId}", func(r chi.Router) {
				r.Get("/", presenters.Controllers.GetCalendar)
				r.Delete("/", presenters.Controllers.DeleteCalendar)
				r.Post("/sync", presenters.Controllers.TriggerCalendarSync)
			})
		})

		// --- Availability Rule Routes (Protected) ---
		r.Route("/rule", func(r chi.Router) {
			r.Use(authMiddleware)

			r.Get("/", presenters.Controllers.GetUserRules)

			r.With(middleware.WithValidation[dto.CreateRuleDto](validator.SourceBody)).
				Post("/", presenters.Controllers.CreateRule)

			r.Route("/{ruleId}", func(r chi.Router) {
				r.Get("/", presenters.Controllers.GetRule)

				r.With(middleware.WithValidation[dto.UpdateRuleDto](validator.SourceBody)).
					Put("/", presenters.Controllers.UpdateRule)

				r.With(middleware.WithValidation[dto.SetRuleActiveDto](validator.SourceBody)).
					Put("/active", presenters.Controllers.SetRuleActive)

				r.Delete("/", presenters.Controllers.DeleteRule)
			})
		})

		// --- Booking Routes (Protected, owner view) ---
		r.Route("/booking", func(r chi.Router) {
			r.Use(authMiddleware)

			r.Get("/", presenters.Controllers.GetUserBookings)
			r.Put("/{bookingId}/confirm", presenters.Controllers.ConfirmBooking)

			r.With(middleware.WithValidation[dto.CancelBookingDto](validator.SourceBody)).
				Delete("/{bookingId}", presenters.Controllers.CancelBooking)
		})

		// --- Public Booking-Page Routes ---
		r.Route("/public", func(r chi.Router) {
			r.Route("/{shareToken}", func(r chi.Router) {
				r.Get("/", presenters.Controllers.GetPublicRule)
				r.Get("/slots", presenters.Controllers.GetPublicAvailableSlots)

				r.With(middleware.WithValidation[dto.CreateBookingDto](validator.SourceBody)).
					Post("/bookings", presenters.Controllers.CreatePublicBooking)
			})

			r.With(middleware.WithValidation[dto.CancelBookingDto](validator.SourceBody)).
				Post("/bookings/{bookingId}/cancel", presenters.Controllers.CancelPublicBooking)
		})
	})

	// Health check endpoint for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

// Enhanced security headers middleware
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Basic security headers
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")

		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self'; connect-src 'self'; img-src 'self'; style-src 'self';")

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(self), microphone=(), camera=(), payment=()")

		// Cache control for API responses
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		next.ServeHTTP(w, r)
	})
}
