package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tourbook/internal/config"
	"tourbook/internal/database"
	"tourbook/internal/mailer"
	"tourbook/internal/middleware"
	"tourbook/internal/modules/auth"
	"tourbook/internal/modules/booking"
	"tourbook/internal/modules/catalog"
	"tourbook/internal/modules/itinerary"
	"tourbook/internal/modules/notification"
	"tourbook/internal/modules/travellers"
	jwtsvc "tourbook/internal/pkg/jwt"
	"tourbook/internal/realtime"
	"tourbook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	tourRepo := repository.NewTourRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	itineraryRepo := repository.NewItineraryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	var m mailer.Mailer
	if cfg.SMTPHost != "" {
		m = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass)
	} else {
		m = mailer.NewConsoleMailer(true)
	}

	hub := realtime.NewHub()
	gateway := realtime.NewGateway(hub, j, bookingRepo, tourRepo)

	resolver := travellers.NewResolver(bookingRepo)

	notificationService := notification.NewService(notificationRepo, hub, m)
	notificationHandler := notification.NewHandler(notificationService)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(tourRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	bookingService := booking.NewService(bookingRepo, tourRepo, notificationService)
	bookingHandler := booking.NewHandler(bookingService)

	itineraryService := itinerary.NewService(itineraryRepo, tourRepo, resolver, notificationService, hub)
	itineraryHandler := itinerary.NewHandler(itineraryService)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		gateway.RegisterRoutes(v1)

		// authenticated travellers and operators
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			itineraryHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)
		}

		// operator-only administration
		operator := v1.Group("/")
		operator.Use(middleware.JWTAuth(j), middleware.OperatorOnly())
		{
			catalogHandler.RegisterOperatorRoutes(operator)
			itineraryHandler.RegisterOperatorRoutes(operator)
		}
	}

	// Background sweeps: departure activity flags and notification retention.
	ctx := context.Background()
	sweeper := notification.NewSweeper(notificationRepo)
	sweeper.Schedule(ctx, cfg.SweepInterval, cfg.NotificationRetentionDays)
	go scheduleActiveFlagSweep(ctx, tourRepo, cfg)

	log.Printf("listening on :%s env=%s", cfg.Port, cfg.AppEnv)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
