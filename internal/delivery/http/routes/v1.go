package routes

import (
	"competence-exchange/internal/config"
	"competence-exchange/internal/database"
	"competence-exchange/internal/delivery/http/handler"
	"competence-exchange/internal/delivery/http/middleware"
	"competence-exchange/internal/pkg/jwt"
	"competence-exchange/internal/repository"
	"competence-exchange/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// RegisterV1 wires the repositories, usecases, and handlers for the
// /api/v1 surface.
func RegisterV1(r fiber.Router, cfg config.Config, db database.DB, cache usecase.FeedCache) {
	if r == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)
	authMw := middleware.NewAuthMiddleware(jwtSvc)

	userRepo := repository.NewPostgresUserRepository(db)
	competenceRepo := repository.NewPostgresCompetenceRepository(db)
	profileRepo := repository.NewPostgresProfileRepository(db)
	slotRepo := repository.NewPostgresSlotRepository(db)
	activityRepo := repository.NewPostgresActivityRepository(db)

	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc)
	competenceUC := usecase.NewCompetenceUsecase(competenceRepo, cache)
	profileUC := usecase.NewProfileUsecase(profileRepo, competenceRepo)
	slotUC := usecase.NewSlotUsecase(slotRepo, competenceRepo, cache)
	activityUC := usecase.NewActivityUsecase(activityRepo, profileRepo, userRepo)

	authHandler := handler.NewAuthHandler(authUC)
	competenceHandler := handler.NewCompetenceHandler(competenceUC)
	profileHandler := handler.NewProfileHandler(profileUC)
	slotHandler := handler.NewSlotHandler(slotUC)
	activityHandler := handler.NewActivityHandler(activityUC)

	authHandler.RegisterRoutes(r.Group("/auth"))

	// Public, read-only surface.
	competenceHandler.RegisterRoutes(r)
	slotHandler.RegisterPublicRoutes(r)

	protected := r.Group("", authMw.Middleware())
	profileHandler.RegisterRoutes(protected.Group("/users"))
	slotHandler.RegisterRoutes(protected)
	activityHandler.RegisterRoutes(protected)
}
