package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nisal-dev/portfolio-backend/config"
	httpapi "github.com/nisal-dev/portfolio-backend/internal/api/http"
	"github.com/nisal-dev/portfolio-backend/internal/api/http/middleware"
	"github.com/nisal-dev/portfolio-backend/internal/cache"
	projecthttp "github.com/nisal-dev/portfolio-backend/internal/projects/http"
	"github.com/nisal-dev/portfolio-backend/internal/webhooks"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Config      *config.Config
	DB          *pgxpool.Pool
	Cache       *cache.Store
	Projects    projecthttp.Deps
	Webhook     *webhooks.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  dep.Config.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Cache)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	handler := projecthttp.NewHandler(dep.Projects)
	handler.RegisterPublic(api)
	dep.Webhook.Register(api)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(dep.Config.Admin.JWTSecret))
	handler.RegisterAdmin(admin)

	return r
}
