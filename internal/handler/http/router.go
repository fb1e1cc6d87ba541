package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/paygrid-hq/paygrid-backend-go/internal/handler/http/middleware"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	payrollHandler PayrollHandler,
	integrationHandler IntegrationHandler,
	healthHandler HealthHandler,
	notificationHandler NotificationHandler,
	taxHandler TaxHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "paygrid-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Webhook-Signature"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Provider callbacks authenticate with an HMAC signature, not a JWT
		r.Post("/webhooks/{organizationID}", integrationHandler.ReceiveWebhook)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Get("/tax/jurisdictions", taxHandler.ListJurisdictions)

			r.Route("/payroll-runs", func(r chi.Router) {
				r.Post("/", payrollHandler.CalculateRun)
				r.Get("/", payrollHandler.ListRuns)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetRun)
					r.Patch("/status", payrollHandler.UpdateRunStatus)
					r.Post("/submit", integrationHandler.SubmitRun)
				})
			})

			r.Route("/integrations", func(r chi.Router) {
				r.Route("/settings", func(r chi.Router) {
					r.Get("/", integrationHandler.GetSettings)
					r.Put("/", integrationHandler.UpdateSettings)
				})
				r.Route("/attempts/{id}", func(r chi.Router) {
					r.Get("/", integrationHandler.GetAttempt)
					r.Post("/retry", integrationHandler.RetryAttempt)
				})
				r.Route("/health", func(r chi.Router) {
					r.Get("/", healthHandler.CheckHealth)
					r.Get("/report", healthHandler.GetHealthReport)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Post("/read", notificationHandler.MarkAsRead)
			})
		})
	})
	return r
}
