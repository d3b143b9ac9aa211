package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/salon_backend/config"
	"github.com/HSouheill/salon_backend/controllers"
	"github.com/HSouheill/salon_backend/middleware"
	"github.com/HSouheill/salon_backend/repositories"
	"github.com/HSouheill/salon_backend/routes"
	"github.com/HSouheill/salon_backend/services"
	"github.com/HSouheill/salon_backend/utils"
	"github.com/HSouheill/salon_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	settings := config.LoadSettings()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	firebaseApp := config.InitFirebase()
	redisClient := config.ConnectRedis(settings)
	defer config.CloseRedis(redisClient)

	client := config.ConnectDB()
	db := config.GetDatabase(client)

	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Stores
	store := repositories.NewStore(db)
	automationRepo := repositories.NewAutomationRepository(db)
	operatorRepo := repositories.NewOperatorRepository(db)

	operatorAuth := services.NewOperatorAuth(operatorRepo, settings.JWTSecret, settings.JWTTTL)
	if err := operatorAuth.EnsureBootstrapOperator(ctx, settings.BootstrapAdminEmail, settings.BootstrapAdminPassword); err != nil {
		log.Printf("Warning: %v", err)
	}

	rules, err := automationRepo.ListActiveRules(ctx)
	if err != nil {
		log.Printf("Warning: could not load automation rules: %v", err)
	}

	// Notifications are best-effort; any sender may be nil.
	var (
		emailSender services.EmailSender
		smsSender   services.SMSSender
		pushSender  services.PushSender
	)
	if m := utils.NewMailerFromEnv(); m != nil {
		emailSender = m
	}
	if s := utils.NewSMSServiceFromEnv(); s != nil {
		smsSender = s
	}
	if p := utils.NewPushService(firebaseApp); p != nil {
		pushSender = p
	}
	notifier := services.NewNotifier(services.NotifierDeps{
		Catalog:     store,
		Email:       emailSender,
		SMS:         smsSender,
		Push:        pushSender,
		Hub:         wsHub,
		Automations: automationRepo,
		Rules:       rules,
		AdminEmail:  settings.PayrollAdminEmail,
	})

	// Settlement
	recorder := services.NewEarningsRecorder(store, notifier)
	settlement := services.NewSettlementService(store, recorder, services.NewLocker(redisClient), notifier)

	var terminal services.TerminalClient
	if settings.HelcimAPIToken != "" {
		terminal = services.NewHelcimService(settings.HelcimBaseURL, settings.HelcimAPIToken, settings.HelcimTimeout, settings.HelcimDebug)
	} else {
		log.Println("HELCIM_API_TOKEN not set, terminal initiation and sync disabled")
	}
	reconciler := services.NewTerminalReconciler(settlement, terminal, services.ReconcilerConfig{
		WebhookSecret:      settings.HelcimWebhookSecret,
		TrustedEnvironment: settings.IsTrustedEnv(),
		InvoicePrefix:      settings.InvoicePrefix,
		Currency:           settings.Currency,
	})

	payroll := services.NewPayrollAggregator(store, services.PayrollConfig{
		URLs:    settings.PayrollSyncURLs,
		Retries: settings.PayrollSyncRetries,
		Delay:   settings.PayrollSyncDelay,
	}, notifier)
	if len(settings.PayrollSyncURLs) > 0 {
		go payroll.Run(ctx, settings.PayrollSyncInterval, settings.PayrollPeriodDays)
	} else {
		log.Println("PAYROLL_SYNC_URLS not set, scheduled payroll sync disabled")
	}

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS(settings.CORSOrigins, settings.IsTrustedEnv()))
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		HSTS:            !settings.IsTrustedEnv(),
		NoStorePrefixes: []string{"/api/"},
		ConnectSources:  settings.CORSOrigins,
	}))

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":         "healthy",
			"database":       "connected",
			"redis":          config.RedisHealthy(c.Request().Context(), redisClient),
			"terminal":       terminal != nil,
			"wsConnections":  wsHub.ConnectedClients(),
			"trustedWebhook": settings.IsTrustedEnv(),
		})
	})

	routes.SetupRoutes(e, settings.JWTSecret, wsHub, routes.Controllers{
		Auth:     controllers.NewAuthController(operatorAuth),
		Webhook:  controllers.NewWebhookController(reconciler),
		Payment:  controllers.NewPaymentController(reconciler, settlement),
		Earnings: controllers.NewEarningsController(store),
		Payroll:  controllers.NewPayrollController(payroll),
	})

	// Start server
	go func() {
		if err := e.Start(":" + settings.Port); err != nil {
			log.Printf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
}
