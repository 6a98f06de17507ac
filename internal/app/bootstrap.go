package app

import (
	"fmt"
	"log"
	"strings"

	"competence-exchange/internal/config"
	"competence-exchange/internal/delivery/http/middleware"
	"competence-exchange/internal/delivery/http/routes"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	ctr, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})
	registerGlobalMiddleware(f)

	registry := routes.NewRegistry(cfg, ctr.DB, ctr.Cache)
	registry.Register(f)

	return &App{Fiber: f, Container: ctr}, ctr.Close, nil
}

func registerGlobalMiddleware(app *fiber.App) {
	if app == nil {
		return
	}

	app.Use(middleware.NewErrorMiddleware().Middleware())
	app.Use(middleware.NewAccessLogMiddleware(log.Default()).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
