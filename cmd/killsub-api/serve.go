package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killsub/backend/internal/config"
	"github.com/killsub/backend/internal/handlers"
	"github.com/killsub/backend/internal/jobs"
	"github.com/killsub/backend/internal/logger"
	"github.com/killsub/backend/internal/middleware"
	"github.com/killsub/backend/internal/notification"
	"github.com/killsub/backend/internal/plans"
	"github.com/killsub/backend/internal/repository"
	"github.com/killsub/backend/internal/service"
	"github.com/killsub/backend/pkg/plaid"
	"github.com/killsub/backend/pkg/stripe"
	"github.com/killsub/backend/pkg/supabase"
	"github.com/killsub/backend/pkg/tink"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	log := logger.NewSlogLogger(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})
	logger.SetDefault(log)

	log.Info("starting KillSub API server",
		logger.String("env", cfg.Server.Env),
		logger.String("supabase_url", cfg.Supabase.URL),
	)

	// Initialize Supabase client
	supabaseClient := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)

	// Vendor clients are optional; features wired to an unconfigured vendor
	// are not routed at all.
	var stripeClient *stripe.Client
	if cfg.StripeEnabled() {
		stripeClient = stripe.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	}
	var plaidClient *plaid.Client
	if cfg.PlaidEnabled() {
		plaidClient = plaid.NewClient(cfg.Plaid.ClientID, cfg.Plaid.Secret, cfg.Plaid.Env)
	}
	var tinkClient *tink.Client
	if cfg.TinkEnabled() {
		tinkClient = tink.NewClient(cfg.Tink.ClientID, cfg.Tink.ClientSecret)
	}

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(supabaseClient)
	alertRepo := repository.NewAlertRepository(supabaseClient)
	cancellationRepo := repository.NewCancellationRepository(supabaseClient)
	bankConnRepo := repository.NewBankConnectionRepository(supabaseClient)

	// Initialize services
	detectService := service.NewDetectService()
	analyticsService := service.NewAnalyticsService(rand.New(rand.NewSource(time.Now().UnixNano())))
	alertService := service.NewAlertService(alertRepo, notification.NewLogNotifier())
	cancellationService := service.NewCancellationService(cancellationRepo)
	authService := service.NewAuthService(supabaseClient, profileRepo)
	bankService := service.NewBankService(plaidClient, tinkClient, bankConnRepo, cfg.Tink.Market, cfg.Server.BaseURL)
	exportService := service.NewExportService()

	var billingService service.BillingService
	if cfg.StripeEnabled() {
		prices := service.PlanPrices{
			plans.Pro:      cfg.Stripe.PriceIDPro,
			plans.Business: cfg.Stripe.PriceIDBusiness,
		}
		billingService = service.NewBillingService(stripeClient, profileRepo, prices, cfg.Server.BaseURL)
	} else {
		log.Warn("stripe not configured, billing routes disabled")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	subscriptionsHandler := handlers.NewSubscriptionsHandler(detectService)
	insightsHandler := handlers.NewInsightsHandler()
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	alertsHandler := handlers.NewAlertsHandler(alertService)
	cancellationsHandler := handlers.NewCancellationsHandler(cancellationService)
	bankHandler := handlers.NewBankHandler(bankService)
	exportHandler := handlers.NewExportHandler(bankService, detectService, exportService)
	plansHandler := handlers.NewPlansHandler()

	// Set Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimit())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"env":    cfg.Server.Env,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes
		v1.GET("/plans", plansHandler.List)

		// Auth routes
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimitAuth())
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.Auth(supabaseClient), authHandler.Me)
		}

		if billingService != nil {
			billingHandler := handlers.NewBillingHandler(billingService)

			// Stripe calls the webhook directly, no user session involved
			v1.POST("/billing/webhook", middleware.RateLimitWebhook(), billingHandler.Webhook)

			billing := v1.Group("/billing")
			billing.Use(middleware.Auth(supabaseClient))
			{
				billing.POST("/checkout", billingHandler.Checkout)
				billing.POST("/portal", billingHandler.Portal)
				billing.POST("/cancel", billingHandler.Cancel)
			}
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.Auth(supabaseClient))
		{
			// Detection and insight routes
			protected.POST("/subscriptions/detect", subscriptionsHandler.Detect)
			protected.POST("/insights", insightsHandler.Generate)
			protected.POST("/analytics",
				middleware.RequireFeature(profileRepo, plans.FeatureAdvancedAnalytics),
				analyticsHandler.Build)

			// Alert routes
			alerts := protected.Group("/alerts")
			alerts.Use(middleware.RequireFeature(profileRepo, plans.FeatureCustomAlerts))
			{
				alerts.GET("", alertsHandler.List)
				alerts.POST("", alertsHandler.Create)
				alerts.PUT("/:id", alertsHandler.Update)
				alerts.DELETE("/:id", alertsHandler.Delete)
			}

			// Cancellation concierge routes
			protected.GET("/cancellation-requests", cancellationsHandler.List)
			protected.GET("/cancellation-requests/:id", cancellationsHandler.Get)
			protected.POST("/cancellation-requests",
				middleware.RequireFeature(profileRepo, plans.FeatureCancelService),
				cancellationsHandler.Create)
			protected.PATCH("/cancellation-requests/:id", cancellationsHandler.Update)

			// Export routes
			protected.GET("/export/subscriptions.csv",
				middleware.RequireFeature(profileRepo, plans.FeatureExport),
				exportHandler.SubscriptionsCSV)

			// Bank provider routes
			bank := protected.Group("/bank")
			{
				bank.POST("/plaid/link-token", bankHandler.CreatePlaidLinkToken)
				bank.POST("/plaid/exchange", bankHandler.ExchangePlaidToken)
				bank.GET("/plaid/accounts", bankHandler.GetAccounts)
				bank.GET("/plaid/transactions", bankHandler.GetTransactions)
				bank.POST("/tink/connect", bankHandler.TinkConnect)
				bank.POST("/tink/callback", bankHandler.TinkCallback)
				bank.GET("/tink/transactions", bankHandler.GetTransactions)
				bank.GET("/status", bankHandler.Status)
			}
		}
	}

	// Background jobs
	scheduler := jobs.NewScheduler(log)
	alertSweep := jobs.NewAlertSweep(profileRepo, bankService, detectService, alertService)
	if err := scheduler.Register("alert-sweep", cfg.Jobs.AlertSchedule, alertSweep.Run); err != nil {
		return fmt.Errorf("failed to register alert sweep: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
