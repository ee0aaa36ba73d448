package bootstrap

import (
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/webforge-labs/webforge-backend/internal/api/http"
	"github.com/webforge-labs/webforge-backend/internal/api/http/middleware"
	"github.com/webforge-labs/webforge-backend/internal/auth"
	"github.com/webforge-labs/webforge-backend/internal/generate"
	"github.com/webforge-labs/webforge-backend/internal/projects"
	"github.com/webforge-labs/webforge-backend/internal/routes"
	"github.com/webforge-labs/webforge-backend/internal/routes/dispatch"
	"github.com/webforge-labs/webforge-backend/internal/routes/registry"
	"github.com/webforge-labs/webforge-backend/internal/routes/repository"
	"github.com/webforge-labs/webforge-backend/internal/routes/sandbox"
	"github.com/webforge-labs/webforge-backend/internal/routes/stats"
	"github.com/webforge-labs/webforge-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string

	DB         *pgxpool.Pool  // nil → in-memory stores
	Redis      *redis.Client  // nil → stats disabled
	AuthClient *fbauth.Client // nil → header identity

	AdminUID         string
	CascadeOnDelete  bool
	GeneratorBaseURL string
	SandboxTimeout   time.Duration
	PythonBin        string
	RateLimitRPS     int
}

// BuildRouter wires the whole surface: the CRUD facade under /api, the
// health endpoint, and the catch-all dispatcher for everything else.
// The returned registry is handed to the reconcile scheduler.
func BuildRouter(dep RouterDeps) (*gin.Engine, *registry.Registry) {
	r := gin.Default()
	r.Use(cors.Default())

	var (
		userStore    users.Store
		projectStore projects.Store
		routeStore   repository.Store
	)
	if dep.DB != nil {
		userStore = users.NewRepo(dep.DB)
		projectStore = projects.NewRepo(dep.DB)
		routeStore = repository.NewPostgres(dep.DB)
	} else {
		userStore = users.NewMemory()
		projectStore = projects.NewMemory()
		routeStore = repository.NewMemory()
	}

	host := sandbox.NewHost(dep.PythonBin)
	reg := registry.New(routeStore, host)
	rec := stats.New(dep.Redis)

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, reg)
	healthHandler.RegisterRoutes(r)

	routesHandler := routes.NewHandler(routeStore, projectStore, reg, rec)

	api := r.Group("/api")
	api.Use(middleware.RequestID())
	api.Use(auth.WithUser(dep.AuthClient, userStore))

	projects.Register(api.Group("/projects"), projectStore, routesHandler, dep.CascadeOnDelete)
	routesHandler.RegisterEndpointRoutes(api.Group("/endpoints"))
	routesHandler.RegisterPageRoutes(api.Group("/pages"))

	debug := api.Group("/debug")
	debug.Use(auth.AdminOnly(dep.AdminUID))
	routesHandler.RegisterDebugRoutes(debug)

	var gen generate.Generator
	if dep.GeneratorBaseURL != "" {
		gen = generate.NewClient(dep.GeneratorBaseURL)
	}
	generate.Register(api.Group("/generate"), gen)

	dispatcher := dispatch.New(reg, routeStore, rec, dep.SandboxTimeout)
	r.NoRoute(middleware.RateLimit(dep.RateLimitRPS), dispatcher.Handle)

	return r, reg
}
