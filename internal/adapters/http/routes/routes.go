package routes

import (
	"time"

	"congregation-api/internal/adapters/http/handlers"
	"congregation-api/internal/adapters/http/middleware"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/config"
	"congregation-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencies are the outside collaborators the application is built from
type Dependencies struct {
	DB       *gorm.DB
	Config   *config.Config
	Redis    *redis.Client // nil when Redis is not configured
	Notifier services.Notifier
	Locker   services.Locker
}

// Container holds the wired services
type Container struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Phone    *services.PhoneVerificationService
	Forum    *services.ForumService
	Prayers  *services.PrayerService
	Donation *services.DonationService
	Cron     *services.CronService
}

// NewContainer wires repositories and services
func NewContainer(deps Dependencies) *Container {
	cfg := deps.Config

	// Repositories
	memberRepo := repositories.NewMemberRepository(deps.DB)
	adminRepo := repositories.NewAdminRepository(deps.DB)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(deps.DB)
	contentRepo := repositories.NewContentRepository(deps.DB)
	prayerRepo := repositories.NewPrayerRepository(deps.DB)
	donationRepo := repositories.NewDonationRepository(deps.DB)

	// Core components
	credentials := services.NewCredentialStore()
	governance := services.NewContentGovernance(contentRepo, prayerRepo)
	ledger := services.NewDonationLedger(donationRepo)

	// Services
	phone := services.NewPhoneVerificationService(adminRepo, credentials, deps.Notifier)
	donation := services.NewDonationService(donationRepo, memberRepo, ledger, deps.Notifier, deps.Locker, cfg.LockTTL)

	return &Container{
		Auth:     services.NewAuthService(memberRepo, adminRepo, refreshTokenRepo, credentials, deps.Notifier, cfg),
		Users:    services.NewUserService(memberRepo, adminRepo, credentials),
		Phone:    phone,
		Forum:    services.NewForumService(contentRepo, governance),
		Prayers:  services.NewPrayerService(prayerRepo, governance),
		Donation: donation,
		Cron:     services.NewCronService(donation, phone, refreshTokenRepo, cfg.Cron),
	}
}

// Setup configures all routes for the application
func Setup(app *fiber.App, c *Container, deps Dependencies) {
	cfg := deps.Config

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg, deps.Redis)
	authHandler := handlers.NewAuthHandler(c.Auth, cfg)
	userHandler := handlers.NewUserHandler(c.Users)
	adminHandler := handlers.NewAdminHandler(c.Users, c.Phone)
	forumHandler := handlers.NewForumHandler(c.Forum)
	prayerHandler := handlers.NewPrayerHandler(c.Prayers)
	donationHandler := handlers.NewDonationHandler(c.Donation)

	// Health check, metrics & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	auth := middleware.AuthMiddleware(cfg)

	// Auth routes
	authRoutes := apiV1.Group("/auth", middleware.NoCacheHeaders())
	authRoutes.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/admin/login", middleware.AuthRateLimiter(), authHandler.AdminLogin)
	authRoutes.Post("/refresh", authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/me", auth, authHandler.Me)
	authRoutes.Post("/logout-all", auth, authHandler.LogoutAll)

	// Profile routes (members)
	profile := apiV1.Group("/profile", auth, middleware.MemberOnly(), middleware.NoCacheHeaders())
	profile.Get("/", userHandler.GetProfile)
	profile.Put("/", userHandler.UpdateProfile)
	profile.Put("/password", middleware.AuthRateLimiter(), userHandler.ChangePassword)

	// Member management (admins)
	members := apiV1.Group("/members", auth, middleware.AdminOnly())
	members.Get("/", userHandler.ListMembers)
	members.Put("/:id/role", userHandler.SetMemberRole)
	members.Put("/:id/status", userHandler.SetMemberStatus)

	// Administrator accounts
	admin := apiV1.Group("/admin", auth, middleware.AdminOnly(), middleware.NoCacheHeaders())
	admin.Post("/admins", adminHandler.CreateAdmin)
	admin.Post("/phone/request", middleware.StrictRateLimiter(), adminHandler.RequestPhoneCode)
	admin.Post("/phone/verify", middleware.AuthRateLimiter(), adminHandler.VerifyPhoneCode)

	// Forum
	forum := apiV1.Group("/forum", auth)
	forum.Get("/posts", middleware.PrivateCacheHeaders(15*time.Second), forumHandler.ListPosts)
	forum.Post("/posts", forumHandler.CreatePost)
	forum.Get("/posts/:id", forumHandler.GetPost)
	forum.Put("/posts/:id", forumHandler.UpdatePost)
	forum.Delete("/posts/:id", forumHandler.DeletePost)
	forum.Post("/posts/:id/upvote", forumHandler.UpvotePost)
	forum.Post("/posts/:id/downvote", forumHandler.DownvotePost)
	forum.Get("/posts/:id/comments", forumHandler.ListComments)
	forum.Post("/posts/:id/comments", forumHandler.CreateComment)
	forum.Put("/comments/:id", forumHandler.UpdateComment)
	forum.Delete("/comments/:id", forumHandler.DeleteComment)
	forum.Post("/comments/:id/upvote", forumHandler.UpvoteComment)
	forum.Post("/comments/:id/downvote", forumHandler.DownvoteComment)

	// Prayer requests
	prayers := apiV1.Group("/prayers", auth)
	prayers.Get("/", middleware.PrivateCacheHeaders(15*time.Second), prayerHandler.List)
	prayers.Post("/", prayerHandler.Create)
	prayers.Post("/:id/answered", prayerHandler.MarkAnswered)

	// Donations
	donations := apiV1.Group("/donations", auth, middleware.NoCacheHeaders())
	donations.Post("/", donationHandler.Create)
	donations.Get("/", middleware.AdminOnly(), donationHandler.List)
	donations.Get("/my", middleware.MemberOnly(), donationHandler.ListMine)
	donations.Get("/:id", donationHandler.Get)
	donations.Put("/:id/status", middleware.AdminOnly(), donationHandler.UpdateStatus)
	donations.Get("/:id/receipt", donationHandler.PreviewReceipt)
	donations.Post("/:id/receipt", donationHandler.IssueReceipt)
}
