package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/domain/analytics"
	"github.com/tallyapp/tally/internal/app/domain/auth"
	"github.com/tallyapp/tally/internal/app/domain/clients"
	"github.com/tallyapp/tally/internal/app/domain/expenses"
	"github.com/tallyapp/tally/internal/app/domain/projects"
	"github.com/tallyapp/tally/internal/app/domain/revenue"
	"github.com/tallyapp/tally/internal/app/domain/user"
	"github.com/tallyapp/tally/internal/app/middleware"
	"github.com/tallyapp/tally/internal/app/services/payments"
	"github.com/tallyapp/tally/internal/pkg/cache"
	"github.com/tallyapp/tally/internal/pkg/config"
)

// AppHandlers bundles all route handlers.
type AppHandlers struct {
	Auth      *auth.AuthHandlers
	User      *user.Handler
	Clients   *clients.Handler
	Projects  *projects.Handler
	Expenses  *expenses.Handler
	Revenue   *revenue.Handler
	Analytics *analytics.Handler
}

// Setup wires repositories, services and handlers, then registers routes.
func Setup(r *gin.Engine, dbPool *pgxpool.Pool, cfg *config.Config, log *zap.Logger) {
	codec := auth.NewJWTCodec(cfg.Session.SecretKey)
	cacheManager := cache.NewManager(cfg.Cache.ResponseTTL, log)

	handlers := setupDependencies(dbPool, cfg, codec, cacheManager, log)
	setupRouter(r, handlers, codec, cfg, log)
}

func setupDependencies(dbPool *pgxpool.Pool, cfg *config.Config, codec auth.TokenCodec, cacheManager *cache.Manager, log *zap.Logger) *AppHandlers {
	authRepo := auth.NewPostgresAuthRepo(dbPool, log)
	authService := auth.NewAuthService(authRepo, codec, log)

	userRepo := user.NewPostgresUserRepo(dbPool, log)
	clientsRepo := clients.NewRepository(dbPool, log)
	projectsRepo := projects.NewRepository(dbPool, log)
	expensesRepo := expenses.NewRepository(dbPool, log)
	revenueRepo := revenue.NewRepository(dbPool, log)

	analyticsService := analytics.NewService(clientsRepo, projectsRepo, expensesRepo, revenueRepo, log)

	var provider payments.Provider
	if cfg.Stripe.SecretKey != "" {
		provider = payments.NewStripeProvider(cfg.Stripe.SecretKey)
	}

	return &AppHandlers{
		Auth:      auth.NewAuthHandlers(authService, &cfg.Session, log),
		User:      user.NewHandler(userRepo, cacheManager, log),
		Clients:   clients.NewHandler(clientsRepo, cacheManager, log),
		Projects:  projects.NewHandler(projectsRepo, cacheManager, log),
		Expenses:  expenses.NewHandler(expensesRepo, cacheManager, log),
		Revenue:   revenue.NewHandler(revenueRepo, provider, cacheManager, log),
		Analytics: analytics.NewHandler(analyticsService, cacheManager, log),
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers, codec auth.TokenCodec, cfg *config.Config, log *zap.Logger) {
	// Session interception covers everything except the excluded prefixes.
	r.Use(middleware.Session(codec, &cfg.Session, log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth endpoints
	r.POST("/sign-in", h.Auth.SignIn)
	r.POST("/sign-up", h.Auth.Register)
	r.POST("/sign-out", h.Auth.SignOut)
	r.GET("/sign-in", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "sign-in"})
	})

	// Protected pages; the session middleware has already gated these.
	app := r.Group(cfg.Session.ProtectedPrefix)
	{
		app.GET("/dashboard", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"page":    "dashboard",
				"user_id": middleware.GetUserIDFromContext(c),
			})
		})
		app.GET("/reports", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"page": "reports"})
		})
	}

	admin := r.Group(cfg.Session.AdminPrefix)
	{
		admin.GET("/console", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"page":    "admin-console",
				"user_id": middleware.GetUserIDFromContext(c),
			})
		})
	}

	// The API sits outside the interception set; identity is attached
	// opportunistically without renewal or redirects.
	api := r.Group("/api")
	api.Use(middleware.OptionalSession(codec))
	{
		api.GET("/profile", h.User.Profile)
		api.PUT("/profile", h.User.UpdateProfile)

		api.GET("/clients", h.Clients.List)
		api.GET("/clients/:id", h.Clients.Get)
		api.POST("/clients", h.Clients.Create)
		api.PUT("/clients/:id", h.Clients.Update)
		api.DELETE("/clients/:id", h.Clients.Delete)

		api.GET("/projects", h.Projects.List)
		api.GET("/projects/:id", h.Projects.Get)
		api.POST("/projects", h.Projects.Create)
		api.PUT("/projects/:id", h.Projects.Update)
		api.DELETE("/projects/:id", h.Projects.Delete)

		api.GET("/expenses", h.Expenses.Report)
		api.POST("/expenses", h.Expenses.Create)
		api.DELETE("/expenses/:id", h.Expenses.Delete)

		api.GET("/revenue", h.Revenue.Report)
		api.POST("/invoices", h.Revenue.CreateInvoice)
		api.POST("/invoices/:id/paid", h.Revenue.MarkPaid)

		api.GET("/analytics", h.Analytics.Summary)
	}
}
