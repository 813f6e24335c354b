package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/config"
	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/database"
	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/handlers"
	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/logging"
	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/services"
	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/store"
	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/tools"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Luna Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Printf("📋 Configuration loaded (Port: %s, Model: %s)", cfg.Port, cfg.GroqModel)

	// Connect to MongoDB
	log.Println("🔗 Connecting to MongoDB...")
	db, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer db.Close(context.Background())
	log.Println("✅ MongoDB connected successfully")

	if err := db.Initialize(context.Background()); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Document store and agent tools
	todoStore := store.New(db)
	registry := tools.NewRegistry(todoStore)
	log.Printf("🔧 Tool registry initialized with %d tools", registry.Count())

	// Vendor services
	agentService := services.NewAgentService(cfg.GroqAPIKey, cfg.GroqModel, registry)
	agoraService := services.NewAgoraService(cfg)
	ttsService := services.NewTTSService(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModel)
	heygenService := services.NewHeyGenService(cfg.HeyGenAPIKey, cfg.HeyGenAvatarID, cfg.HeyGenBaseURL+"/v2")
	sessionManager := services.NewSessionManager(agoraService, heygenService)
	log.Println("✅ Services initialized")

	// Handlers
	chatHandler := handlers.NewChatHandler(agentService)
	todoHandler := handlers.NewTodoHandler(todoStore)
	ttsHandler := handlers.NewTTSHandler(ttsService)
	agoraHandler := handlers.NewAgoraHandler(agoraService, sessionManager)
	heygenHandler := handlers.NewHeyGenHandler(heygenService, sessionManager)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Luna v1.0",
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second, // streamed TTS responses can run long
		BodyLimit:    1 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("luna")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		if err := db.Ping(c.Context()); err != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status":  status,
			"service": "luna",
		})
	})

	api := app.Group("/api")

	api.Post("/chat", chatHandler.Chat)
	api.Post("/chat/reset", chatHandler.Reset)

	api.Get("/todos", todoHandler.ListTodos)
	api.Get("/todos/:id", todoHandler.GetTodo)
	api.Get("/reminders", todoHandler.ListReminders)

	api.Post("/tts", ttsHandler.Synthesize)
	api.Get("/tts/voices", ttsHandler.Voices)

	agora := api.Group("/agora")
	agora.Post("/token", agoraHandler.Token)
	agora.Get("/channel/:channel/users", agoraHandler.ChannelUsers)
	agora.Post("/conversational-ai/start", agoraHandler.StartConversationalAI)
	agora.Post("/conversational-ai/stop", agoraHandler.StopConversationalAI)

	heygen := api.Group("/heygen")
	heygen.Get("/avatars", heygenHandler.Avatars)
	heygen.Get("/voices", heygenHandler.Voices)
	heygen.Post("/video/create", heygenHandler.CreateVideo)
	heygen.Get("/video/status/:id", heygenHandler.VideoStatus)
	heygen.Post("/streaming/new", heygenHandler.NewStreamingSession)
	heygen.Post("/streaming/start", heygenHandler.StartStreaming)
	heygen.Post("/streaming/speak", heygenHandler.Speak)
	heygen.Post("/streaming/stop", heygenHandler.StopStreaming)
	heygen.Post("/streaming/ice", heygenHandler.ICEServers)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
