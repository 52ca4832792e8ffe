package main

import (
	"context"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mclasstourism/travelbill-sub003/api/swagger" // swagger docs
	"github.com/mclasstourism/travelbill-sub003/internal/database"
	"github.com/mclasstourism/travelbill-sub003/internal/handler"
	"github.com/mclasstourism/travelbill-sub003/internal/ledger"
	"github.com/mclasstourism/travelbill-sub003/internal/middleware"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/repository"
	"github.com/mclasstourism/travelbill-sub003/internal/service"
	"github.com/mclasstourism/travelbill-sub003/internal/websocket"
	"github.com/mclasstourism/travelbill-sub003/pkg/logger"
)

// @title           Travel Billing API
// @version         1.0
// @description     Invoice/ticket issuance and multi-party balance bookkeeping for a travel agency.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info("no configs/.env file found")
	}

	dsn := buildDSN()
	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal(err, "stage", "database connection")
	}
	logger.Info("connected to postgres")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)

	// Catch the number sequences up with any documents already stored
	seedSequences(txManager, seqRepo, invoiceRepo, ticketRepo)

	// Balance engine
	policy := ledger.ParsePolicy(os.Getenv("BALANCE_POLICY"))
	engine := ledger.NewEngine(customerRepo, agentRepo, vendorRepo, ledgerRepo, txManager, policy)
	logger.Info("balance engine ready", "policy", string(policy))

	// Services
	userService := service.NewUserService(userRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, customerRepo, agentRepo, vendorRepo, seqRepo, auditRepo, engine, txManager, wsHub)
	ticketService := service.NewTicketService(ticketRepo, customerRepo, agentRepo, vendorRepo, seqRepo, auditRepo, engine, txManager, wsHub)
	transactionService := service.NewTransactionService(ledgerRepo, customerRepo, agentRepo, vendorRepo, auditRepo, engine, txManager, wsHub)
	partyService := service.NewPartyService(customerRepo, agentRepo, vendorRepo, ledgerRepo, auditRepo, engine, txManager, wsHub)
	metricsService := service.NewMetricsService(metricsRepo)
	adminService := service.NewAdminService(customerRepo, agentRepo, vendorRepo, ledgerRepo, invoiceRepo, ticketRepo, seqRepo, userRepo, metricsRepo, auditRepo, txManager, wsHub)
	auditService := service.NewAuditService(auditRepo)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	partyHandler := handler.NewPartyHandler(partyService)
	metricsHandler := handler.NewMetricsHandler(metricsService)
	adminHandler := handler.NewAdminHandler(adminService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = []string{origins}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// API routing
	userHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	ticketHandler.RegisterRoutes(router.Group(""))
	transactionHandler.RegisterRoutes(router.Group(""))
	partyHandler.RegisterRoutes(router.Group(""))
	metricsHandler.RegisterRoutes(router.Group(""))
	adminHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		logger.Fatal(err, "stage", "http server")
	}
}

func buildDSN() string {
	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	host := get("DB_HOST", "localhost")
	port := get("DB_PORT", "5432")
	user := get("DB_USER", "postgres")
	password := get("DB_PASSWORD", "postgres")
	name := get("DB_NAME", "postgres")
	sslMode := get("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + password + "@" + host + ":" + port + "/" + name + "?sslmode=" + sslMode
}

// seedSequences raises each number counter to the highest number any
// stored document carries, so restarts never hand out duplicates.
func seedSequences(
	txManager repository.TransactionManager,
	seqRepo repository.SequenceRepository,
	invoiceRepo repository.InvoiceRepository,
	ticketRepo repository.TicketRepository,
) {
	err := txManager.RunInTx(context.Background(), func(ctx context.Context) error {
		maxInvoice, err := invoiceRepo.MaxAssignedNumber(ctx)
		if err != nil {
			return err
		}
		if err := seqRepo.EnsureAtLeast(ctx, model.SeqInvoice, maxInvoice); err != nil {
			return err
		}

		maxTicket, err := ticketRepo.MaxAssignedNumber(ctx)
		if err != nil {
			return err
		}
		return seqRepo.EnsureAtLeast(ctx, model.SeqTicket, maxTicket)
	})
	if err != nil {
		logger.Fatal(err, "stage", "sequence seeding")
	}
}
