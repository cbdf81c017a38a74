package router

import (
	"log"
	"time"

	"magari/config"
	"magari/internal/handler"
	"magari/internal/middleware"
	"magari/internal/repository"
	"magari/internal/service"
	"magari/internal/ws"
	"magari/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	revenueRepo := repository.NewRevenueRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	inspectionRepo := repository.NewInspectionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Gateway provider
	var provider payment.Provider
	if cfg.Paystack.SecretKey != "" {
		provider = payment.NewPaystackProvider(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, cfg.Paystack.Timeout)
	} else {
		log.Printf("[Router] PAYSTACK_SECRET_KEY not set, using stub provider")
		provider = payment.NewStubProvider()
	}

	hub := ws.NewHub()

	// Services
	notifSvc := service.NewNotificationService(notificationRepo, hub)
	authSvc := service.NewAuthService(userRepo, &cfg.JWT)
	revenueSvc := service.NewRevenueService(revenueRepo, notifSvc)
	checkoutSvc := service.NewCheckoutService(txnRepo, revenueSvc, walletRepo, vehicleRepo,
		inspectionRepo, orderRepo, provider, notifSvc, cfg.Revenue.MatchWindow, cfg.Paystack.Timeout)
	webhookSvc := service.NewWebhookService(txnRepo, walletRepo, vehicleRepo,
		inspectionRepo, orderRepo, revenueSvc, notifSvc)
	withdrawalSvc := service.NewWithdrawalService(withdrawalRepo, walletRepo, provider, notifSvc, cfg.Paystack.Timeout)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc)
	paymentWebhookHandler := handler.NewPaymentWebhookHandler(&cfg.Paystack, webhookSvc)
	transferWebhookHandler := handler.NewTransferWebhookHandler(&cfg.Paystack, withdrawalSvc)
	walletHandler := handler.NewWalletHandler(walletRepo)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalSvc)
	revenueSettingsHandler := handler.NewRevenueSettingsHandler(revenueRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	activityHandler := handler.NewActivityHandler(inspectionRepo, orderRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		api.GET("/me", authMw, authHandler.Me)
		api.GET("/me/inspections", authMw, activityHandler.ListInspections)
		api.GET("/me/orders", authMw, activityHandler.ListOrders)

		api.POST("/checkout/confirm", authMw, checkoutHandler.ConfirmCheckout)

		wallet := api.Group("/me/wallet")
		wallet.Use(authMw)
		{
			wallet.GET("", walletHandler.GetWallet)
			wallet.GET("/entries", walletHandler.ListEntries)
		}

		withdrawals := api.Group("/me/withdrawals")
		withdrawals.Use(authMw)
		{
			withdrawals.GET("", withdrawalHandler.ListMine)
			withdrawals.POST("", withdrawalHandler.Create)
			withdrawals.POST("/:id/cancel", withdrawalHandler.Cancel)
		}

		notifications := api.Group("/me/notifications")
		notifications.Use(authMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, adminMw)
		{
			admin.GET("/withdrawals/pending", withdrawalHandler.ListPending)
			admin.POST("/withdrawals/:id/approve", withdrawalHandler.Approve)
			admin.POST("/withdrawals/:id/reject", withdrawalHandler.Reject)
			admin.POST("/withdrawals/:id/process", withdrawalHandler.Process)

			admin.GET("/revenue-settings", revenueSettingsHandler.List)
			admin.GET("/revenue-settings/active", revenueSettingsHandler.Active)
			admin.POST("/revenue-settings", revenueSettingsHandler.Create)
			admin.POST("/revenue-settings/:id/activate", revenueSettingsHandler.Activate)
			admin.POST("/revenue-settings/:id/deactivate", revenueSettingsHandler.Deactivate)
		}

		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/paystack", paymentWebhookHandler.HandleCharge)
			webhooks.POST("/transfer", transferWebhookHandler.HandleTransfer)
		}

		api.GET("/ws/notifications", ws.UpgradeNotificationsWS(&cfg.JWT, hub))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "ws_clients": hub.ClientCount()})
	})

	return r
}
