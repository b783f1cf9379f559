package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/mayacreations/boutique/internal/config"
	"github.com/mayacreations/boutique/internal/db"
	"github.com/mayacreations/boutique/internal/es"
	"github.com/mayacreations/boutique/internal/events"
	"github.com/mayacreations/boutique/internal/handlers"
	"github.com/mayacreations/boutique/internal/logging"
	"github.com/mayacreations/boutique/internal/middleware/loggingmw"
	"github.com/mayacreations/boutique/internal/service"
	httpserver "github.com/mayacreations/boutique/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.DatabaseDSN())
	if err != nil {
		logger.Error("database open failed", "error", err)
		log.Fatal(err)
	}
	if err := db.Migrate(database); err != nil {
		logger.Error("migration failed", "error", err)
		log.Fatal(err)
	}

	producer := events.NewProducer(cfg.KAFKA_BROKERS)
	if producer == nil {
		logger.Warn("kafka not configured, events disabled")
	}
	defer producer.Close()

	deps := &httpserver.Deps{
		JWTSecret: cfg.JWTSecret,

		AuthHandler:       &handlers.AuthHandler{DB: database, JWTSecret: cfg.JWTSecret, Producer: producer},
		AdminAuthHandler:  &handlers.AdminAuthHandler{DB: database, JWTSecret: cfg.JWTSecret, AdminCode: cfg.AdminCode, Producer: producer},
		CategoryHandler:   &handlers.CategoryHandler{DB: database},
		CartHandler:       &handlers.CartHandler{DB: database, Producer: producer},
		OrderHandler:      &handlers.OrderHandler{DB: database, Svc: &service.OrderService{DB: database}, Producer: producer},
		UserHandler:       &handlers.UserHandler{DB: database},
		NewsletterHandler: &handlers.NewsletterHandler{DB: database, Producer: producer},
		PagesHandler:      &handlers.PagesHandler{},
	}

	productHandler := &handlers.ProductHandler{DB: database, ESIndex: cfg.ES_INDEX, Producer: producer}
	searchHandler := &handlers.SearchHandler{Index: cfg.ES_INDEX}
	if cfg.ES_URL != "" {
		client, err := es.NewClient(cfg)
		if err != nil {
			logger.Error("elasticsearch unavailable", "error", err)
			log.Fatal(err)
		}
		productHandler.ES = client
		searchHandler.ES = client
	} else {
		logger.Warn("elasticsearch not configured, search disabled")
	}
	deps.ProductHandler = productHandler
	deps.SearchHandler = searchHandler

	e := echo.New()
	e.HideBanner = true
	e.Use(ecM.Recover())
	e.Use(ecM.RequestID())
	e.Use(ecM.Secure())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, deps)

	logger.Info("server starting", "port", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		logger.Error("server stopped", "error", err)
		log.Fatal(err)
	}
}
