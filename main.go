package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"medbot-backend/catalog"
	"medbot-backend/config"
	"medbot-backend/database"
	"medbot-backend/logger"
	"medbot-backend/receipt"
	"medbot-backend/resolver"
	"medbot-backend/routes"
	"medbot-backend/services"
	"medbot-backend/session"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg := config.Get()

	logger.Init(cfg.LogLevel, cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	cat, err := catalog.Load(cfg.Catalog.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Catalog.Dir).Msg("Failed to load catalog")
	}

	repo, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := database.Disconnect(cfg); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect database")
		}
	}()

	sessions, closeSessions := newSessionStore(ctx, cfg)
	defer closeSessions()

	receipts := receipt.NewService(receipt.NewPDFRenderer("MedBot"), newReceiptStore(ctx, cfg), cfg.WhatsApp.PublicURL)

	var ai *services.AIService
	if cfg.AIEnabled() {
		ai, err = services.NewAIService(ctx, cfg.AI)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize AI service")
		}
	}

	var classifier resolver.Classifier
	if ai != nil {
		classifier = ai
	}
	res := resolver.New(cfg.Catalog.ResolverStrategy, cat.SymptomRules(), cfg.Catalog.FuzzyCutoff, classifier)

	bookings := services.NewBookingService(receipts, repo)
	chatbot := services.NewChatbotService(cat, res, sessions, bookings, repo, cfg.Catalog.DefaultCity)
	if ai != nil {
		chatbot.WithAI(ai).WithTone(ai)
	}

	var whatsapp *services.WhatsAppService
	if cfg.WhatsAppEnabled() {
		whatsapp = services.NewWhatsAppService(cfg.WhatsApp)
		log.Info().Msg("WhatsApp configuration verified successfully")
	} else {
		log.Warn().Msg("WhatsApp integration disabled: WHATSAPP_ACCESS_TOKEN, WHATSAPP_PHONE_NUMBER_ID and WHATSAPP_VERIFY_TOKEN are required")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger())

	whatsappController := routes.SetupRoutes(router, routes.Dependencies{
		Config:   cfg,
		Chatbot:  chatbot,
		Receipts: receipts,
		WhatsApp: whatsapp,
	})

	logAvailableEndpoints(router)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// AI replies can take a while.
		WriteTimeout: 15*time.Second + cfg.AI.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Int("hospitals", len(cat.HospitalNames())).
			Str("resolver", cfg.Catalog.ResolverStrategy).
			Msg("Server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if whatsappController != nil {
		whatsappController.Wait()
	}

	log.Info().Msg("Server exited")
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func()) {
	if cfg.Session.Store != "redis" {
		return session.NewMemoryStore(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Session.RedisAddr).Msg("Failed to connect to redis")
	}
	log.Info().Str("addr", cfg.Session.RedisAddr).Msg("Connected to redis session store")

	return session.NewRedisStore(client, cfg.Session.TTL), func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}
}

func newReceiptStore(ctx context.Context, cfg *config.Config) receipt.Store {
	if cfg.Receipt.Store != "s3" {
		return receipt.NewLocalStore(cfg.Receipt.Dir)
	}

	client, err := receipt.NewS3Client(ctx, cfg.Receipt)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 client")
	}
	return receipt.NewS3Store(client, cfg.Receipt.BucketName, cfg.Receipt.Prefix)
}

func logAvailableEndpoints(router *gin.Engine) {
	for _, route := range router.Routes() {
		log.Debug().Str("method", route.Method).Str("path", route.Path).Msg("Route registered")
	}
}
