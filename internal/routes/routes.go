package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/therapytreasure/backend/internal/config"
	"github.com/therapytreasure/backend/internal/handlers"
	"github.com/therapytreasure/backend/internal/middleware"
	"github.com/therapytreasure/backend/internal/models"
	"github.com/therapytreasure/backend/internal/services"
)

// SetupRoutes builds the router with all API routes and middleware.
func SetupRoutes(cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)

	// Health stays outside the rate-limited group so probes never get 429.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit)
		if cfg.IsProduction() {
			r.Use(middleware.LoginRateLimit)
		}
		r.Use(middleware.Authenticate(services.ResolveSession))

		r.Route("/api", apiRoutes)
	})

	return r
}

func apiRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", handlers.Signup)
		r.Post("/signin", handlers.Signin)
		r.Post("/logout", handlers.Logout)
		r.Get("/verify-email/{token}", handlers.VerifyEmail)
		r.Post("/forgot-password", handlers.ForgotPassword)
		r.Get("/reset-password/{token}", handlers.CheckResetToken)
		r.Post("/reset-password/{token}", handlers.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleUser, models.RoleTherapist, models.RoleAdmin))
			r.Get("/me", handlers.Me)
		})
	})

	// Public therapist directory and application intake.
	r.Route("/therapists", func(r chi.Router) {
		r.Get("/", handlers.ListTherapists)
		r.Get("/search", handlers.SearchTherapists)
		r.Post("/apply", handlers.Apply)
		r.Get("/{id}", handlers.GetTherapist)
		r.Get("/{id}/schedule", handlers.GetTherapistSchedule)
	})

	// Therapist self-service.
	r.Route("/therapist", func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleTherapist))
		r.Get("/profile", handlers.GetMyProfile)
		r.Put("/profile", handlers.UpdateMyProfile)
		r.Get("/schedule", handlers.GetMySchedule)
		r.Post("/schedule", handlers.SubmitSchedule)
		r.Get("/bookings", handlers.TherapistBookings)
		r.Get("/statistics", handlers.TherapistStatistics)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleUser, models.RoleAdmin))
			r.Post("/", handlers.CreateBooking)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleUser, models.RoleTherapist, models.RoleAdmin))
			r.Get("/", handlers.ListMyBookings)
			r.Post("/{id}/cancel", handlers.CancelBooking)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleTherapist, models.RoleAdmin))
			r.Post("/{id}/approve", handlers.ReinstateBooking)
		})
	})

	r.Get("/expertises", handlers.ListExpertises)
	r.Get("/categories", handlers.ListCategories)

	r.Post("/contact", handlers.Contact)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleAdmin))

		r.Get("/applications", handlers.ListApplications)
		r.Post("/applications/{id}/approve", handlers.ApproveApplication)
		r.Post("/applications/{id}/reject", handlers.RejectApplication)

		r.Get("/users", handlers.ListUsers)
		r.Get("/users/{id}", handlers.GetUser)
		r.Put("/users/{id}", handlers.UpdateUser)
		r.Delete("/users/{id}", handlers.DeleteUser)

		r.Get("/admins", handlers.ListAdmins)
		r.Post("/admins", handlers.CreateAdmin)
		r.Put("/admins/{id}", handlers.UpdateAdmin)
		r.Delete("/admins/{id}", handlers.DeleteAdmin)

		r.Get("/bookings", handlers.ListAllBookings)

		r.Post("/expertises", handlers.CreateExpertise)
		r.Put("/expertises/{id}", handlers.UpdateExpertise)
		r.Delete("/expertises/{id}", handlers.DeleteExpertise)
		r.Post("/categories", handlers.CreateCategory)
		r.Put("/categories/{id}", handlers.UpdateCategory)
		r.Delete("/categories/{id}", handlers.DeleteCategory)

		r.Get("/contacts", handlers.ListContactMessages)
		r.Delete("/contacts/{id}", handlers.DeleteContactMessage)

		r.Get("/statistics", handlers.AdminStatistics)
	})
}
