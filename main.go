package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"partyhub/config"
	"partyhub/handlers"
	"partyhub/middleware"
	"partyhub/models"
	"partyhub/routes"
	"partyhub/services"
	"partyhub/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Postgres holds the content pools, Redis the live game documents.
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(&models.Phrase{}, &models.Word{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient := config.InitRedis(cfg)

	charadesGames := store.NewCharadesGames(redisClient)
	vennGames := store.NewVennGames(redisClient)
	sessions := services.NewMemorySessions()

	phraseService := services.NewPhraseService(db)
	wordService := services.NewWordService(db)
	charadesService := services.NewCharadesService(charadesGames, phraseService, sessions)
	vennService := services.NewVennService(vennGames, wordService, sessions)

	hub := services.NewHub(func(ctx context.Context, kind, gameID string) (any, error) {
		if kind == "venn" {
			return vennService.Get(ctx, gameID)
		}
		return charadesService.Get(ctx, gameID)
	})
	go hub.Run()

	charadesHandler := handlers.NewCharadesHandler(charadesService, hub)
	vennHandler := handlers.NewVennHandler(vennService, hub)
	adminHandler := handlers.NewAdminHandler(phraseService, wordService, charadesService, vennService)

	router := gin.Default()
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, charadesHandler, vennHandler, adminHandler, hub, sessions)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
