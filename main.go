package main

import (
	"context"
	"time"

	"skillbridge-server/internal/config"
	"skillbridge-server/internal/database"
	"skillbridge-server/internal/handlers"
	"skillbridge-server/internal/middleware"
	"skillbridge-server/internal/redis"
	"skillbridge-server/internal/services"
	"skillbridge-server/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	if cfg.GinMode == gin.ReleaseMode {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.SeedSkills(db); err != nil {
		logrus.WithError(err).Warn("Failed to seed skill catalog")
	}

	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	storage, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := storage.EnsureBucket(context.Background()); err != nil {
		logrus.WithError(err).Warn("Failed to ensure avatar bucket")
	}

	push, err := services.NewPushService(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize push notifications")
	}

	hub := websocket.NewHub()
	hub.OnPresence = presenceTracker(db, redisClient)
	go hub.Run()

	handlers.RegisterValidators()

	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)
	userHandler := handlers.NewUserHandler(db, redisClient, cfg, storage)
	skillHandler := handlers.NewSkillHandler(db, redisClient, cfg)
	matchHandler := handlers.NewMatchHandler(db, redisClient, cfg, hub, push)
	reviewHandler := handlers.NewReviewHandler(db, redisClient, cfg)
	messageHandler := handlers.NewMessageHandler(db, redisClient, cfg, hub)
	adminHandler := handlers.NewAdminHandler(db, redisClient, cfg)

	router := setupRoutes(cfg, db, authHandler, userHandler, skillHandler, matchHandler,
		reviewHandler, messageHandler, adminHandler, hub)

	logrus.WithField("port", cfg.Port).Info("Server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}

func setupRoutes(cfg *config.Config, db *gorm.DB, authHandler *handlers.AuthHandler, userHandler *handlers.UserHandler,
	skillHandler *handlers.SkillHandler, matchHandler *handlers.MatchHandler,
	reviewHandler *handlers.ReviewHandler, messageHandler *handlers.MessageHandler,
	adminHandler *handlers.AdminHandler, hub *websocket.Hub) *gin.Engine {

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.AuthRequired(cfg), authHandler.Logout)
		}

		users := v1.Group("/users")
		users.Use(middleware.AuthRequired(cfg))
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/profile", userHandler.UpdateProfile)
			users.POST("/profile/avatar", userHandler.UploadAvatar)
			users.GET("/discover", userHandler.DiscoverUsers)
			users.GET("/online", userHandler.GetOnlineUsers)
			users.GET("/skills", skillHandler.ListUserSkills)
			users.POST("/skills", skillHandler.AddUserSkill)
			users.DELETE("/skills/:id", skillHandler.RemoveUserSkill)
			users.GET("/:id", userHandler.GetUser)
		}

		v1.GET("/skills", middleware.AuthRequired(cfg), skillHandler.ListSkills)

		matches := v1.Group("/matches")
		matches.Use(middleware.AuthRequired(cfg))
		{
			matches.POST("", matchHandler.CreateMatch)
			matches.GET("", matchHandler.GetMatches)
			matches.GET("/:id", matchHandler.GetMatch)
			matches.PUT("/:id", matchHandler.RespondMatch)
			matches.POST("/:id/complete", matchHandler.CompleteMatch)
		}

		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired(cfg))
		{
			reviews.POST("", reviewHandler.CreateReview)
			reviews.GET("/user/:user_id", reviewHandler.GetUserReviews)
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
		}

		messages := v1.Group("/messages")
		messages.Use(middleware.AuthRequired(cfg))
		{
			messages.GET("/conversations", messageHandler.GetConversations)
			messages.GET("/conversations/:conversation_id", messageHandler.GetMessages)
			messages.POST("/conversations/:conversation_id", messageHandler.SendMessage)
			messages.PUT("/conversations/:conversation_id/read", messageHandler.MarkAsRead)
		}

		v1.GET("/ws", middleware.AuthRequired(cfg), func(c *gin.Context) {
			websocket.HandleWebSocket(hub, c)
		})

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(cfg), middleware.AdminRequired(db))
		{
			admin.GET("/users", adminHandler.GetUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.GET("/reviews", adminHandler.GetReviews)
			admin.DELETE("/reviews/:id", adminHandler.DeleteReview)
			admin.GET("/analytics", adminHandler.GetAnalytics)
		}
	}

	return router
}

// presenceTracker mirrors hub presence changes into Redis and the user row.
func presenceTracker(db *gorm.DB, redisClient *redis.Client) func(userID uint, online bool) {
	return func(userID uint, online bool) {
		ctx := context.Background()
		if online {
			if err := redisClient.SAdd(ctx, "online_users", userID); err != nil {
				logrus.WithError(err).Warn("Failed to record online presence")
			}
			db.Table("users").Where("id = ?", userID).
				Update("is_online", true)
		} else {
			if err := redisClient.SRem(ctx, "online_users", userID); err != nil {
				logrus.WithError(err).Warn("Failed to clear online presence")
			}
			db.Table("users").Where("id = ?", userID).
				Updates(map[string]interface{}{"is_online": false, "last_seen": time.Now()})
		}
	}
}
