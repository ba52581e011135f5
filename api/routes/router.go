package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cafemenu/cafemenu-backend/api/controllers"
	"github.com/cafemenu/cafemenu-backend/api/middleware"
	authsvc "github.com/cafemenu/cafemenu-backend/internal/auth"
	categorysvc "github.com/cafemenu/cafemenu-backend/internal/categories"
	cleanupsvc "github.com/cafemenu/cafemenu-backend/internal/cleanup"
	itemsvc "github.com/cafemenu/cafemenu-backend/internal/menuitems"
	placesvc "github.com/cafemenu/cafemenu-backend/internal/places"
	uploadsvc "github.com/cafemenu/cafemenu-backend/internal/uploads"
	usersvc "github.com/cafemenu/cafemenu-backend/internal/users"
	"github.com/cafemenu/cafemenu-backend/pkg/config"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
	"github.com/cafemenu/cafemenu-backend/pkg/metrics"
	"github.com/cafemenu/cafemenu-backend/pkg/redis"
)

// catalogCacheMaxAge matches the response-cache window the menu clients were
// built against.
const catalogCacheMaxAge = 60 * time.Second

// Services bundles everything the router mounts.
type Services struct {
	Auth       authsvc.Service
	Places     placesvc.Service
	Categories categorysvc.Service
	MenuItems  itemsvc.Service
	Users      usersvc.Service
	Uploads    uploadsvc.Service
	Cleanup    cleanupsvc.Service
}

// NewRouter assembles the HTTP surface. redisClient may be nil; the login
// rate limiter is skipped without it.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	userSource middleware.UserSource,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
		middleware.Auth(cfg.JWT, userSource, logg),
	)

	legacyOpen := cfg.FeatureFlags.LegacyOpenMutations
	requireActor := middleware.RequireActor(legacyOpen, logg)
	requireSystemAdmin := middleware.RequireSystemAdmin(logg)
	cacheCatalog := middleware.CacheControl(catalogCacheMaxAge)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, logg))
	})

	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		login := r.With()
		if redisClient != nil {
			loginPolicy := middleware.NewAuthRateLimitPolicy(
				"login",
				cfg.AuthRateLimit.LoginWindow,
				cfg.AuthRateLimit.LoginIPLimit,
				cfg.AuthRateLimit.LoginUsernameLimit,
			)
			login = r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg))
		}
		login.Post("/login", controllers.Login(svcs.Auth, logg))
		r.Post("/verify", controllers.Verify(svcs.Auth, logg))
	})

	r.Route("/places", func(r chi.Router) {
		r.With(cacheCatalog).Get("/", controllers.ListPlaces(svcs.Places, logg))
		r.With(cacheCatalog).Get("/{id}", controllers.GetPlace(svcs.Places, logg))
		r.With(requireActor).Post("/", controllers.CreatePlace(svcs.Places, logg))
		r.With(requireActor).Put("/{id}", controllers.UpdatePlace(svcs.Places, logg))
		r.With(requireActor).Delete("/{id}", controllers.DeletePlace(svcs.Places, logg))
	})

	r.Route("/categories", func(r chi.Router) {
		r.With(cacheCatalog).Get("/", controllers.ListCategories(svcs.Categories, logg))
		r.With(cacheCatalog).Get("/{id}", controllers.GetCategory(svcs.Categories, logg))
		r.With(requireActor).Post("/", controllers.CreateCategory(svcs.Categories, logg))
		r.With(requireActor).Post("/{id}/update", controllers.UpdateCategory(svcs.Categories, logg))
		r.With(requireActor).Post("/{id}/delete", controllers.DeleteCategory(svcs.Categories, logg))
	})

	r.Route("/menuitems", func(r chi.Router) {
		r.With(cacheCatalog).Get("/", controllers.ListMenuItems(svcs.MenuItems, logg))
		r.With(cacheCatalog).Get("/{id}", controllers.GetMenuItem(svcs.MenuItems, logg))
		r.With(cacheCatalog).Get("/category/{categoryId}", controllers.ListMenuItemsByCategory(svcs.MenuItems, logg))
		r.With(requireActor).Post("/", controllers.CreateMenuItem(svcs.MenuItems, logg))
		r.With(requireActor).Post("/{id}/update", controllers.UpdateMenuItem(svcs.MenuItems, logg))
		r.With(requireActor).Post("/{id}/delete", controllers.DeleteMenuItem(svcs.MenuItems, logg))
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(requireSystemAdmin)
		r.Get("/", controllers.ListUsers(svcs.Users, logg))
		r.Get("/{id}", controllers.GetUser(svcs.Users, logg))
		r.Post("/", controllers.CreateUser(svcs.Users, logg))
		r.Post("/{id}/update", controllers.UpdateUser(svcs.Users, logg))
		r.Post("/{id}/delete", controllers.DeleteUser(svcs.Users, logg))
	})

	r.Route("/upload", func(r chi.Router) {
		r.Use(requireActor)
		r.Post("/image", controllers.UploadImage(svcs.Uploads, cfg.Uploads, logg))
		r.Post("/images", controllers.UploadImages(svcs.Uploads, cfg.Uploads, logg))
		r.Post("/image/{fileName}/delete", controllers.DeleteImage(svcs.Uploads, logg))
	})

	r.Route("/cleanup", func(r chi.Router) {
		r.Use(requireSystemAdmin)
		r.Post("/reset-database", controllers.ResetDatabase(svcs.Cleanup, logg))
		r.Get("/database-status", controllers.DatabaseStatus(svcs.Cleanup, logg))
		r.Post("/migrate-base64-images", controllers.MigrateBase64Images(svcs.Cleanup, logg))
		r.Get("/analyze-images", controllers.AnalyzeImages(svcs.Cleanup, logg))
	})

	uploadsFS := http.StripPrefix(cfg.Uploads.PublicPath+"/", http.FileServer(http.Dir(cfg.Uploads.Dir)))
	r.Get(cfg.Uploads.PublicPath+"/*", uploadsFS.ServeHTTP)

	return r
}
