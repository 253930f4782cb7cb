package httpapi

import (
	"net/http"
	"strings"

	"stroke-warning-system/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router wraps chi with the middleware stack shared by every route.
type Router struct {
	mux chi.Router
}

func NewRouter(logger *zap.Logger, corsOrigins []string) *Router {
	mux := chi.NewRouter()
	mux.Use(requestID)
	mux.Use(middleware.RealIP)
	mux.Use(accessLog(logger))
	mux.Use(middleware.Recoverer)

	var origins []string
	for _, o := range corsOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Requested-With"},
			ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	return &Router{mux: mux}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler registers an http.Handler (pprof and friends).
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes mounts the login page, form login and logout.
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.mux.Get("/", h.LoginPage)
	r.mux.Post("/login", h.Login)
	r.mux.Get("/logout", h.Logout)
	r.mux.Post("/logout", h.Logout)
}

// RegisterDoctorRoutes mounts the doctor pages and patient API.
func (r *Router) RegisterDoctorRoutes(sessions *SessionManager, h *PatientHandler) {
	r.mux.Route("/doctor", func(doctor chi.Router) {
		doctor.With(sessions.RequirePage(domain.RoleDoctor)).Get("/dashboard", h.Dashboard)

		api := doctor.With(sessions.RequireAPI(domain.RoleDoctor))
		api.Get("/patients", h.ListPatients)
		api.Post("/add_patient", h.AddPatient)
		api.Post("/update_patient", h.UpdatePatient)
	})
}

// RegisterDataScientistRoutes mounts the analytics dashboard, its data
// feed and the export endpoint.
func (r *Router) RegisterDataScientistRoutes(sessions *SessionManager, analytics *AnalyticsHandler, export *ExportHandler) {
	r.mux.With(sessions.RequirePage(domain.RoleDataScientist)).Get("/data_scientist/dashboard", analytics.Dashboard)

	r.mux.Route("/api", func(api chi.Router) {
		api.Use(sessions.RequireAPI(domain.RoleDataScientist))
		api.Get("/analytics/dashboard-data", analytics.DashboardData)
		api.Post("/export-data", export.Export)
	})
}
