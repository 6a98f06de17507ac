package routes

import (
	"competence-exchange/internal/config"
	"competence-exchange/internal/database"
	"competence-exchange/internal/delivery/http/handler"
	"competence-exchange/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	cfg   config.Config
	db    database.DB
	cache usecase.FeedCache

	health *handler.HealthHandler
}

func NewRegistry(cfg config.Config, db database.DB, cache usecase.FeedCache) *Registry {
	return &Registry{cfg: cfg, db: db, cache: cache, health: handler.NewHealthHandler()}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.cfg, r.db, r.cache)
}
