package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-invoice-verify/internal/handler"
	"go-invoice-verify/internal/middleware"
	"go-invoice-verify/internal/model"
	"go-invoice-verify/internal/repository"
	"go-invoice-verify/internal/service"
	"go-invoice-verify/internal/ws"
	"go-invoice-verify/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.User{},
		&model.CatalogEntry{},
		&model.PackingProfile{},
		&model.Invoice{},
		&model.InvoiceLineItem{},
		&model.InvoicePhaseMetadata{},
		&model.ScanTransaction{},
		&model.PhasePerformanceMetric{},
		&model.Tray{},
	)

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	catalogRepo := repository.NewCatalogRepo(db)
	packingRepo := repository.NewPackingRepo(db)
	invoiceRepo := repository.NewInvoiceRepo(db)
	metadataRepo := repository.NewMetadataRepo(db)
	transactionRepo := repository.NewTransactionRepo(db)
	metricsRepo := repository.NewMetricsRepo(db)
	trayRepo := repository.NewTrayRepo(db)

	authService := service.NewAuthService(userRepo, wsHub)
	resolverService := service.NewResolverService(catalogRepo)
	packingService := service.NewPackingService(packingRepo)
	reconcilerService := service.NewReconcilerService(invoiceRepo, packingRepo, trayRepo, db, wsHub)
	metricsService := service.NewMetricsService(metadataRepo, invoiceRepo, transactionRepo, metricsRepo)
	workflowService := service.NewWorkflowService(invoiceRepo, metadataRepo, metricsService, db, wsHub)
	transactionService := service.NewTransactionService(transactionRepo, invoiceRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, catalogRepo, trayRepo)

	authHandler := handler.NewAuthHandler(authService)
	scanHandler := handler.NewScanHandler(resolverService, reconcilerService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, workflowService, metricsService, transactionService)
	packingHandler := handler.NewPackingHandler(packingService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Invoice Verify v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Scan Routes (picker and checker devices)
	protected.Post("/scan/match", middleware.RequireRole(model.RolePicker, model.RoleChecker), scanHandler.Match)
	protected.Put("/scan/quantity", middleware.RequireRole(model.RolePicker, model.RoleChecker), scanHandler.UpdateQuantities)

	// Invoice Routes
	protected.Get("/invoices/:id", invoiceHandler.Detail)
	protected.Get("/invoices/:id/items", invoiceHandler.LineItems)
	protected.Post("/invoices/:id/items", middleware.RequireRole(model.RolePicker, model.RoleChecker), invoiceHandler.AddLineItem)
	protected.Delete("/invoices/:id/items/:itemId", middleware.RequireRole(model.RoleChecker), invoiceHandler.RemoveLineItem)
	protected.Put("/invoices/:id/metadata", invoiceHandler.UpdateMetadata)
	protected.Get("/invoices/:id/metrics", invoiceHandler.Metrics)
	protected.Post("/invoices/:id/transactions", invoiceHandler.AppendTransactions)
	protected.Get("/invoices/:id/transactions", invoiceHandler.Transactions)

	// Tray Routes
	protected.Put("/trays/:trayNo/invoice", middleware.RequireRole(model.RolePicker, model.RolePacker), invoiceHandler.BindTray)

	// Packing Routes
	protected.Get("/packing/:productName", packingHandler.Lookup)
	protected.Put("/packing/:productName", middleware.RequireRole(model.RolePacker), packingHandler.UpdateProfile)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default admin operator if it doesn't exist
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	if _, err := userRepo.FindByEmail("admin@example.com"); err == nil {
		return
	}

	admin := &model.User{
		Email:    "admin@example.com",
		FullName: "Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword("admin123"); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("✅ Admin user created: admin@example.com / admin123")
	}
}
