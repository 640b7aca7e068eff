package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notelock/broker"
	"notelock/config"
	"notelock/crypto"
	"notelock/database"
	"notelock/middleware"
	"notelock/routes"
	"notelock/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// The field codec is the only holder of key material; it is built once
	// here and handed to the note service by reference.
	codec, err := crypto.NewCodecFromHex(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize field codec (check NOTE_ENCRYPTION_KEY): %v", err)
	}

	natsAvailable := true
	if err := broker.InitProducer(cfg.NatsURL); err != nil {
		log.Printf("Warning: Failed to connect to NATS: %v", err)
		log.Println("The application will continue, but live updates are disabled")
		natsAvailable = false
	} else {
		defer broker.CloseProducer()
	}

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpirationHours)
	services.AuthServiceInstance = authService

	userService := services.NewUserService(authService)
	services.UserServiceInstance = userService

	noteService := services.NewNoteService(codec, time.Duration(cfg.NoteOpTimeoutSec)*time.Second)
	services.NoteServiceInstance = noteService

	calendarService := services.NewCalendarService()
	services.CalendarServiceInstance = calendarService

	if natsAvailable {
		dispatcher := services.NewEventDispatcher(db)
		services.EventDispatcherInstance = dispatcher
		dispatcher.Start()
		defer dispatcher.Stop()

		webSocketService := services.NewWebSocketService()
		services.WebSocketServiceInstance = webSocketService
		webSocketService.Start(cfg.NatsURL)
		defer webSocketService.Stop()
	}

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	routes.RegisterAuthRoutes(router, db, authService)
	routes.RegisterUserRoutes(router, db, userService)

	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(authService))
	routes.RegisterNoteRoutes(protected, db, noteService)
	routes.RegisterCalendarRoutes(protected, db, calendarService)

	if natsAvailable {
		routes.RegisterWebSocketRoutes(router, authService, services.WebSocketServiceInstance)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		os.Exit(0)
	}()

	log.Printf("API server is running on port %s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
