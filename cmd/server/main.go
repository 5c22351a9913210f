package main

import (
	"context"
	"log"
	"strings"
	"time"

	"anoa.com/classcollab/internal/config"
	"anoa.com/classcollab/internal/handler"
	"anoa.com/classcollab/internal/middleware"
	"anoa.com/classcollab/internal/model"
	"anoa.com/classcollab/internal/repository"
	"anoa.com/classcollab/internal/service"
	"anoa.com/classcollab/pkg/database"
	"anoa.com/classcollab/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	redisClient := connectRedis(cfg.RedisURL)

	fileStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		meiliClient = meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}
	searchService := service.NewUserSearchService(meiliClient)

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	authService := service.NewAuthService(userRepo, searchService, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := handler.NewAuthHandler(authService)

	classService := service.NewClassService(classRepo, userRepo, fileStorage, cfg.CloudinaryUploadFolder+"/class-files")
	classHandler := handler.NewClassHandler(classService)

	groupService := service.NewGroupService(groupRepo, classRepo, userRepo)
	groupHandler := handler.NewGroupHandler(groupService)

	assignmentService := service.NewAssignmentService(assignmentRepo, groupRepo, userRepo, fileStorage, cfg.CloudinaryUploadFolder+"/assignments")
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)

	projectService := service.NewProjectService(projectRepo, classRepo, fileStorage, cfg.CloudinaryUploadFolder+"/projects")
	projectHandler := handler.NewProjectHandler(projectService)

	deadlineService := service.NewDeadlineService(classRepo, groupRepo, projectRepo, assignmentRepo)
	deadlineHandler := handler.NewDeadlineHandler(deadlineService)

	chatService := service.NewChatService(messageRepo, groupRepo, classRepo, userRepo, redisClient, cfg.RateLimitChat)
	chatHandler := handler.NewChatHandler(chatService)
	chatWSHandler := handler.NewChatWSHandler(chatService, redisClient)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	setupCORS(router, cfg.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/auth/me", authHandler.Me)
		api.POST("/users/lookup", authHandler.LookupBySRNs)
		api.GET("/users/search", authHandler.SearchUsers)

		classes := api.Group("/classes")
		{
			classes.POST("", authMiddleware.RequireTeacher(), classHandler.CreateClass)
			classes.GET("/teaching", classHandler.GetTeachingClasses)
			classes.GET("/enrolled", classHandler.GetEnrolledClasses)
			classes.POST("/join", classHandler.JoinClass)
			classes.GET("/:id", classHandler.GetClass)
			classes.DELETE("/:id/students/:studentId", classHandler.RemoveStudent)
			classes.GET("/:id/groups", groupHandler.GetClassGroups)

			classes.POST("/:id/files", authMiddleware.RequireTeacher(), classHandler.UploadClassFile)
			classes.GET("/:id/files", classHandler.GetClassFiles)
			classes.DELETE("/:id/files/:fileId", authMiddleware.RequireTeacher(), classHandler.DeleteClassFile)

			classes.POST("/:id/projects", authMiddleware.RequireTeacher(), projectHandler.CreateProject)
			classes.GET("/:id/projects", projectHandler.GetClassProjects)
			classes.POST("/:id/announcements", authMiddleware.RequireTeacher(), projectHandler.CreateAnnouncement)
			classes.GET("/:id/announcements", projectHandler.GetClassAnnouncements)

			classes.POST("/:id/messages", chatHandler.SendClassMessage)
			classes.GET("/:id/messages", chatHandler.GetClassMessages)
		}

		groups := api.Group("/groups")
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("/me", groupHandler.GetMyGroups)
			groups.GET("/:id", groupHandler.GetGroup)
			groups.POST("/:id/join-requests", groupHandler.RequestToJoin)
			groups.POST("/:id/join-requests/handle", groupHandler.HandleJoinRequest)
			groups.POST("/:id/invitations", groupHandler.InviteMember)
			groups.POST("/:id/invitations/respond", groupHandler.HandleInvitation)
			groups.POST("/:id/members", groupHandler.AddMember)
			groups.DELETE("/:id/members/:userId", groupHandler.RemoveMember)

			groups.POST("/:id/assignments", assignmentHandler.CreateAssignment)
			groups.GET("/:id/assignments", assignmentHandler.GetGroupAssignments)

			groups.POST("/:id/messages", chatHandler.SendGroupMessage)
			groups.GET("/:id/messages", chatHandler.GetGroupMessages)
		}

		assignments := api.Group("/assignments")
		{
			assignments.GET("/me", assignmentHandler.GetMyAssignments)
			assignments.GET("/:id", assignmentHandler.GetAssignment)
			assignments.PUT("/:id/work-division", assignmentHandler.UpdateWorkDivision)
			assignments.POST("/:id/files", assignmentHandler.UploadFile)
			assignments.DELETE("/:id/files/:fileId", assignmentHandler.DeleteFile)
		}
		api.GET("/files/me", assignmentHandler.GetMyFiles)

		projects := api.Group("/projects")
		{
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", authMiddleware.RequireTeacher(), projectHandler.UpdateProject)
			projects.POST("/:id/files", authMiddleware.RequireTeacher(), projectHandler.UploadFile)
		}
		api.GET("/announcements/me", authMiddleware.RequireTeacher(), projectHandler.GetMyAnnouncements)

		api.GET("/deadlines", deadlineHandler.GetMyDeadlines)

		chats := api.Group("/chats")
		{
			chats.GET("/recent", chatHandler.GetRecentChats)
			chats.POST("/:userId/messages", chatHandler.SendPrivateMessage)
			chats.GET("/:userId/messages", chatHandler.GetPrivateMessages)
		}

		api.GET("/ws/chat/:roomType/:roomId", chatWSHandler.HandleWebSocket)
		api.GET("/ws/chat/:roomType", chatWSHandler.HandleWebSocket)
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Class{},
		&model.ClassStudent{},
		&model.ClassFile{},
		&model.Group{},
		&model.GroupMember{},
		&model.GroupJoinRequest{},
		&model.GroupInvitation{},
		&model.Assignment{},
		&model.WorkItem{},
		&model.AssignmentFile{},
		&model.Project{},
		&model.ProjectFile{},
		&model.Announcement{},
		&model.Message{},
	)
}

// connectRedis returns nil when no Redis is configured. Live chat fan-out and
// rate limiting degrade gracefully without it.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Invalid REDIS_URL, running without redis: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable, running without redis: %v", err)
		return nil
	}
	return client
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := strings.Split(allowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
