package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appaccounting "github.com/elimu/backend/internal/application/accounting"
	appfinance "github.com/elimu/backend/internal/application/finance"
	appidentity "github.com/elimu/backend/internal/application/identity"
	appschool "github.com/elimu/backend/internal/application/school"
	"github.com/elimu/backend/internal/domain/identity"
	"github.com/elimu/backend/internal/infrastructure/auth"
	"github.com/elimu/backend/internal/infrastructure/cache"
	"github.com/elimu/backend/internal/infrastructure/config"
	"github.com/elimu/backend/internal/infrastructure/event"
	"github.com/elimu/backend/internal/infrastructure/logger"
	"github.com/elimu/backend/internal/infrastructure/persistence"
	"github.com/elimu/backend/internal/infrastructure/scheduler"
	"github.com/elimu/backend/internal/infrastructure/storage"
	"github.com/elimu/backend/internal/infrastructure/telemetry"
	"github.com/elimu/backend/internal/interfaces/http/handler"
	"github.com/elimu/backend/internal/interfaces/http/middleware"
	"github.com/elimu/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Elimu Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Load the permission catalogue. Roles can only grant what it lists,
	// so a missing or malformed file is fatal.
	registry, err := auth.LoadPermissionCatalogue(cfg.Permissions.CatalogueFile)
	if err != nil {
		log.Fatal("Failed to load permission catalogue", zap.Error(err))
	}
	log.Info("Permission catalogue loaded",
		zap.String("file", cfg.Permissions.CatalogueFile),
		zap.Int("permissions", registry.Len()),
	)

	// Initialize repositories
	accountRepo := persistence.NewGormChartOfAccountRepository(db.DB)
	journalRepo := persistence.NewGormJournalEntryRepository(db.DB)
	periodRepo := persistence.NewGormAccountingPeriodRepository(db.DB)
	budgetRepo := persistence.NewGormBudgetRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	planRepo := persistence.NewGormPaymentPlanRepository(db.DB)
	discountRepo := persistence.NewGormStudentDiscountRepository(db.DB)
	rulesRepo := persistence.NewGormPostingRuleSetRepository(db.DB)
	schoolRepo := persistence.NewGormSchoolRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	learningAreaRepo := persistence.NewGormLearningAreaRepository(db.DB)
	seeder := persistence.NewTenantSeeder(db.DB)

	// Redis backs the balance cache and the token blacklist when
	// configured; both fall back to in-process implementations.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var balanceCache appaccounting.BalanceCache
	var tokenBlacklist auth.TokenBlacklist
	if redisClient != nil {
		balanceCache = cache.NewRedisBalanceCache(redisClient, 15*time.Minute, log)
		tokenBlacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
		log.Info("Redis cache and token blacklist enabled",
			zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
	} else {
		balanceCache = cache.NewInMemoryBalanceCache()
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
		log.Info("Using in-memory cache and token blacklist")
	}

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Posted journals invalidate cached account balances
	balanceInvalidation := cache.NewBalanceInvalidationHandler(balanceCache, log)
	eventBus.Subscribe(balanceInvalidation, balanceInvalidation.EventTypes()...)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Receipt storage for expense attachments
	var receiptStorage appfinance.ReceiptStorage
	if cfg.Storage.Provider == "s3" {
		s3Storage, err := storage.NewS3ReceiptStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize S3 receipt storage", zap.Error(err))
		}
		receiptStorage = s3Storage
		log.Info("S3 receipt storage enabled",
			zap.String("bucket", cfg.Storage.Bucket), zap.String("region", cfg.Storage.Region))
	} else {
		receiptStorage = storage.NewStubReceiptStorage()
		log.Info("Using stub receipt storage")
	}

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)

	accountService := appaccounting.NewAccountService(accountRepo, journalRepo, balanceCache, eventBus)
	journalService := appaccounting.NewJournalService(journalRepo, accountRepo, periodRepo, eventBus)
	periodService := appaccounting.NewPeriodService(periodRepo, eventBus)
	budgetService := appaccounting.NewBudgetService(budgetRepo, accountRepo, periodRepo, journalRepo, eventBus)

	invoiceService := appfinance.NewInvoiceService(
		invoiceRepo, discountRepo, studentRepo, accountRepo, journalRepo, periodRepo, rulesRepo, eventBus)
	paymentService := appfinance.NewPaymentService(
		paymentRepo, invoiceRepo, creditNoteRepo, accountRepo, journalRepo, periodRepo, rulesRepo, eventBus)
	planService := appfinance.NewPaymentPlanService(planRepo, invoiceRepo)
	expenseService := appfinance.NewExpenseService(
		expenseRepo, accountRepo, journalRepo, periodRepo, rulesRepo, eventBus)
	receiptService := appfinance.NewReceiptService(expenseRepo, receiptStorage)
	discountService := appfinance.NewDiscountService(discountRepo, studentRepo)
	postingRuleService := appfinance.NewPostingRuleService(rulesRepo, accountRepo)

	authService := appidentity.NewAuthService(
		userRepo, roleRepo, schoolRepo, subscriptionRepo, jwtService, appidentity.DefaultLockoutPolicy())
	schoolService := appidentity.NewSchoolService(
		schoolRepo, userRepo, roleRepo, subscriptionRepo, registry, seeder, eventBus)
	subscriptionService := appidentity.NewSubscriptionService(subscriptionRepo)
	userService := appidentity.NewUserService(userRepo, roleRepo)
	roleService := appidentity.NewRoleService(roleRepo, registry)

	studentService := appschool.NewStudentService(studentRepo, eventBus)
	curriculumService := appschool.NewCurriculumService(learningAreaRepo)

	// Telemetry (optional)
	if cfg.Telemetry.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()

		receivablesProvider := persistence.NewGormReceivablesProvider(db.DB)
		ledgerMetrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
			Meter:               meterProvider.Meter("elimu-backend/ledger"),
			Logger:              log,
			ReceivablesProvider: receivablesProvider,
		})
		if err != nil {
			log.Fatal("Failed to initialize ledger metrics", zap.Error(err))
		}
		ledgerMetricsHandler := event.NewLedgerMetricsHandler(ledgerMetrics)
		eventBus.Subscribe(ledgerMetricsHandler, ledgerMetricsHandler.EventTypes()...)
		ledgerMetrics.StartPeriodicCollection(context.Background(), receivablesProvider, 5*time.Minute)
		defer ledgerMetrics.Stop()

		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("elimu-backend/db"), telemetry.DefaultDBMetricsConfig(), log)
		if err != nil {
			log.Fatal("Failed to initialize database metrics", zap.Error(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			dbMetrics.SetSQLDB(sqlDB)
			dbMetrics.StartPoolStatsCollection(context.Background())
			defer dbMetrics.Stop()
		}
		if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
			log.Warn("Failed to register database metrics plugin", zap.Error(err))
		}

		if cfg.Telemetry.ProfilingEnabled {
			profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
				Enabled:           true,
				ServerAddress:     cfg.Telemetry.ProfilingServer,
				ApplicationName:   cfg.Telemetry.ServiceName,
				ProfileCPU:        true,
				ProfileInuseSpace: true,
			}, log)
			if err != nil {
				log.Fatal("Failed to initialize profiler", zap.Error(err))
			}
			defer func() {
				if err := profiler.Stop(); err != nil {
					log.Error("Error stopping profiler", zap.Error(err))
				}
			}()
		}

		log.Info("Telemetry enabled",
			zap.String("collector", cfg.Telemetry.CollectorEndpoint),
			zap.Float64("sampling_ratio", cfg.Telemetry.SamplingRatio),
		)
	}

	// Background sweeps: overdue instalments and lapsed subscriptions
	if cfg.Scheduler.Enabled {
		sweepRunner := scheduler.NewSweepRunner(scheduler.SweepConfig{
			Interval:          cfg.Scheduler.SweepInterval,
			Timeout:           cfg.Scheduler.SweepTimeout,
			OverdueSweep:      cfg.Scheduler.OverdueSweep,
			SubscriptionSweep: cfg.Scheduler.SubscriptionSweep,
		}, schoolRepo, planService, subscriptionService, log)
		if err := sweepRunner.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweep runner", zap.Error(err))
		}
		defer func() {
			if err := sweepRunner.Stop(context.Background()); err != nil {
				log.Error("Error stopping sweep runner", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	accountHandler := handler.NewAccountHandler(accountService)
	journalHandler := handler.NewJournalHandler(journalService)
	periodHandler := handler.NewPeriodHandler(periodService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, paymentService, planService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	planHandler := handler.NewPaymentPlanHandler(planService)
	expenseHandler := handler.NewExpenseHandler(expenseService, receiptService)
	discountHandler := handler.NewDiscountHandler(discountService)
	postingRuleHandler := handler.NewPostingRuleHandler(postingRuleService)
	authHandler := handler.NewAuthHandler(authService, tokenBlacklist)
	schoolHandler := handler.NewSchoolHandler(schoolService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	studentHandler := handler.NewStudentHandler(studentService)
	curriculumHandler := handler.NewCurriculumHandler(curriculumService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/schools/register",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	perm := func(code string) gin.HandlerFunc {
		return middleware.RequirePermission(identity.Permission(code))
	}
	superAdmin := middleware.RequireSuperAdmin()

	// Identity domain - authentication
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Tenant management. Registration is public; everything else is the
	// platform operator's surface.
	schoolRoutes := router.NewDomainGroup("schools", "/schools")
	schoolRoutes.POST("/register", schoolHandler.Register)
	schoolRoutes.GET("", superAdmin, schoolHandler.List)
	schoolRoutes.GET("/:id", superAdmin, schoolHandler.GetByID)
	schoolRoutes.PUT("/:id", superAdmin, schoolHandler.Update)
	schoolRoutes.POST("/:id/suspend", superAdmin, schoolHandler.Suspend)
	schoolRoutes.POST("/:id/reactivate", superAdmin, schoolHandler.Reactivate)
	schoolRoutes.POST("/:id/close", superAdmin, schoolHandler.Close)

	// Subscription routes (school-scoped)
	subscriptionRoutes := router.NewDomainGroup("subscription", "/subscription")
	subscriptionRoutes.Use(middleware.RequireSchoolContext())
	subscriptionRoutes.GET("", perm("subscriptions.read"), subscriptionHandler.GetCurrent)
	subscriptionRoutes.POST("/:id/activate", perm("subscriptions.manage"), subscriptionHandler.Activate)
	subscriptionRoutes.POST("/:id/renew", perm("subscriptions.manage"), subscriptionHandler.Renew)
	subscriptionRoutes.POST("/:id/past-due", perm("subscriptions.manage"), subscriptionHandler.MarkPastDue)
	subscriptionRoutes.POST("/:id/cancel", perm("subscriptions.manage"), subscriptionHandler.Cancel)
	subscriptionRoutes.PUT("/:id/plan", perm("subscriptions.manage"), subscriptionHandler.ChangePlan)

	// Staff users and roles
	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.Use(middleware.RequireSchoolContext())
	identityRoutes.POST("/users", perm("users.manage"), userHandler.Create)
	identityRoutes.GET("/users", perm("users.read"), userHandler.List)
	identityRoutes.GET("/users/:id", perm("users.read"), userHandler.GetByID)
	identityRoutes.PUT("/users/:id/roles", perm("users.manage"), userHandler.AssignRoles)
	identityRoutes.POST("/users/:id/deactivate", perm("users.manage"), userHandler.Deactivate)
	identityRoutes.POST("/users/:id/unlock", perm("users.manage"), userHandler.Unlock)

	identityRoutes.GET("/permissions", perm("roles.read"), roleHandler.PermissionCatalogue)
	identityRoutes.POST("/roles", perm("roles.manage"), roleHandler.Create)
	identityRoutes.GET("/roles", perm("roles.read"), roleHandler.List)
	identityRoutes.GET("/roles/:id", perm("roles.read"), roleHandler.GetByID)
	identityRoutes.PUT("/roles/:id", perm("roles.manage"), roleHandler.Update)
	identityRoutes.PUT("/roles/:id/permissions", perm("roles.manage"), roleHandler.SetPermissions)
	identityRoutes.DELETE("/roles/:id", perm("roles.manage"), roleHandler.Delete)

	// Accounting domain (chart of accounts, periods, journals, budgets)
	accountingRoutes := router.NewDomainGroup("accounting", "/accounting")
	accountingRoutes.Use(middleware.RequireSchoolContext())

	accountingRoutes.POST("/accounts", perm("accounting.accounts.manage"), accountHandler.Create)
	accountingRoutes.GET("/accounts", perm("accounting.accounts.read"), accountHandler.List)
	accountingRoutes.GET("/accounts/trial-balance", perm("accounting.journal.read"), accountHandler.GetTrialBalance)
	accountingRoutes.GET("/accounts/:id", perm("accounting.accounts.read"), accountHandler.GetByID)
	accountingRoutes.PUT("/accounts/:id", perm("accounting.accounts.manage"), accountHandler.Update)
	accountingRoutes.POST("/accounts/:id/deactivate", perm("accounting.accounts.manage"), accountHandler.Deactivate)
	accountingRoutes.GET("/accounts/:id/balance", perm("accounting.accounts.read"), accountHandler.GetBalance)

	accountingRoutes.POST("/periods", perm("accounting.periods.manage"), periodHandler.Create)
	accountingRoutes.GET("/periods", perm("accounting.periods.read"), periodHandler.List)
	accountingRoutes.GET("/periods/:id", perm("accounting.periods.read"), periodHandler.GetByID)
	accountingRoutes.POST("/periods/:id/close", perm("accounting.periods.manage"), periodHandler.Close)
	accountingRoutes.POST("/periods/:id/lock", perm("accounting.periods.manage"), periodHandler.Lock)

	accountingRoutes.POST("/journals", perm("accounting.journal.create"), journalHandler.Create)
	accountingRoutes.GET("/journals", perm("accounting.journal.read"), journalHandler.List)
	accountingRoutes.GET("/journals/:id", perm("accounting.journal.read"), journalHandler.GetByID)
	accountingRoutes.POST("/journals/:id/post", perm("accounting.journal.post"), journalHandler.Post)
	accountingRoutes.POST("/journals/:id/reverse", perm("accounting.journal.post"), journalHandler.Reverse)

	accountingRoutes.POST("/budgets", perm("budgets.manage"), budgetHandler.Create)
	accountingRoutes.GET("/budgets", perm("budgets.read"), budgetHandler.List)
	accountingRoutes.GET("/budgets/:id", perm("budgets.read"), budgetHandler.GetByID)
	accountingRoutes.POST("/budgets/:id/lines", perm("budgets.manage"), budgetHandler.AddLine)
	accountingRoutes.POST("/budgets/:id/approve", perm("budgets.manage"), budgetHandler.Approve)
	accountingRoutes.PUT("/budgets/:id/lines", perm("budgets.manage"), budgetHandler.ReviseLine)
	accountingRoutes.GET("/budgets/:id/variance", perm("budgets.read"), budgetHandler.VarianceReport)

	accountingRoutes.GET("/posting-rules", perm("accounting.rules.read"), postingRuleHandler.Get)
	accountingRoutes.PUT("/posting-rules", perm("accounting.rules.manage"), postingRuleHandler.Update)

	// Finance domain (fee invoices, payments, expenses)
	financeRoutes := router.NewDomainGroup("finance", "/finance")
	financeRoutes.Use(middleware.RequireSchoolContext())

	financeRoutes.POST("/invoices", perm("invoices.manage"), invoiceHandler.Create)
	financeRoutes.GET("/invoices", perm("invoices.read"), invoiceHandler.List)
	financeRoutes.GET("/invoices/:id", perm("invoices.read"), invoiceHandler.GetByID)
	financeRoutes.POST("/invoices/:id/issue", perm("invoices.manage"), invoiceHandler.Issue)
	financeRoutes.POST("/invoices/:id/cancel", perm("invoices.manage"), invoiceHandler.Cancel)
	financeRoutes.GET("/invoices/:id/credit-notes", perm("invoices.read"), invoiceHandler.ListCreditNotes)
	financeRoutes.GET("/invoices/:id/payment-plan", perm("invoices.read"), invoiceHandler.GetPaymentPlan)

	financeRoutes.POST("/payments", perm("payments.manage"), paymentHandler.Record)
	financeRoutes.GET("/payments", perm("payments.read"), paymentHandler.List)
	financeRoutes.GET("/payments/:id", perm("payments.read"), paymentHandler.GetByID)
	financeRoutes.POST("/payments/:id/confirm", perm("payments.manage"), paymentHandler.Confirm)
	financeRoutes.POST("/payments/:id/void", perm("payments.manage"), paymentHandler.Void)
	financeRoutes.POST("/credit-notes", perm("invoices.credit"), paymentHandler.IssueCreditNote)

	financeRoutes.POST("/payment-plans", perm("payments.plans.manage"), planHandler.Create)
	financeRoutes.GET("/payment-plans/:id", perm("payments.read"), planHandler.GetByID)
	financeRoutes.POST("/payment-plans/:id/instalments/:sequence/pay", perm("payments.plans.manage"), planHandler.MarkInstalmentPaid)

	financeRoutes.POST("/discounts", perm("accounting.discounts.manage"), discountHandler.Create)
	financeRoutes.GET("/students/:id/discounts", perm("invoices.read"), discountHandler.ListForStudent)
	financeRoutes.POST("/discounts/:id/deactivate", perm("accounting.discounts.manage"), discountHandler.Deactivate)

	financeRoutes.POST("/expenses", perm("expenses.create"), expenseHandler.Create)
	financeRoutes.GET("/expenses", perm("expenses.read"), expenseHandler.List)
	financeRoutes.GET("/expenses/:id", perm("expenses.read"), expenseHandler.GetByID)
	financeRoutes.POST("/expenses/:id/submit", perm("expenses.create"), expenseHandler.Submit)
	financeRoutes.POST("/expenses/:id/approve", perm("expenses.approve"), expenseHandler.Approve)
	financeRoutes.POST("/expenses/:id/reject", perm("expenses.approve"), expenseHandler.Reject)
	financeRoutes.POST("/expenses/:id/pay", perm("expenses.approve"), expenseHandler.Pay)
	financeRoutes.POST("/expenses/:id/receipts/upload-url", perm("expenses.create"), expenseHandler.RequestReceiptUpload)
	financeRoutes.POST("/expenses/:id/receipts", perm("expenses.create"), expenseHandler.ConfirmReceiptUpload)
	financeRoutes.GET("/expenses/:id/receipts", perm("expenses.read"), expenseHandler.ListReceipts)
	financeRoutes.DELETE("/expenses/:id/receipts", perm("expenses.create"), expenseHandler.RemoveReceipt)

	// School domain (students, guardians, curriculum)
	studentRoutes := router.NewDomainGroup("students", "/students")
	studentRoutes.Use(middleware.RequireSchoolContext())
	studentRoutes.POST("", perm("students.manage"), studentHandler.Enroll)
	studentRoutes.GET("", perm("students.read"), studentHandler.List)
	studentRoutes.GET("/:id", perm("students.read"), studentHandler.GetByID)
	studentRoutes.PUT("/:id", perm("students.manage"), studentHandler.Update)
	studentRoutes.POST("/:id/guardians", perm("students.manage"), studentHandler.AddGuardian)
	studentRoutes.POST("/:id/promote", perm("students.manage"), studentHandler.Promote)
	studentRoutes.POST("/:id/suspend", perm("students.manage"), studentHandler.Suspend)
	studentRoutes.POST("/:id/reinstate", perm("students.manage"), studentHandler.Reinstate)
	studentRoutes.POST("/:id/graduate", perm("students.manage"), studentHandler.Graduate)
	studentRoutes.POST("/:id/withdraw", perm("students.manage"), studentHandler.Withdraw)

	curriculumRoutes := router.NewDomainGroup("curriculum", "/curriculum")
	curriculumRoutes.Use(middleware.RequireSchoolContext())
	curriculumRoutes.POST("/learning-areas", perm("curriculum.manage"), curriculumHandler.CreateLearningArea)
	curriculumRoutes.GET("/learning-areas", perm("curriculum.read"), curriculumHandler.ListLearningAreas)
	curriculumRoutes.GET("/learning-areas/:id", perm("curriculum.read"), curriculumHandler.GetLearningArea)
	curriculumRoutes.PUT("/learning-areas/:id", perm("curriculum.manage"), curriculumHandler.RenameLearningArea)
	curriculumRoutes.POST("/learning-areas/:id/deactivate", perm("curriculum.manage"), curriculumHandler.DeactivateLearningArea)
	curriculumRoutes.POST("/learning-areas/:id/strands", perm("curriculum.manage"), curriculumHandler.AddStrand)
	curriculumRoutes.POST("/learning-areas/:id/sub-strands", perm("curriculum.manage"), curriculumHandler.AddSubStrand)
	curriculumRoutes.POST("/learning-areas/:id/outcomes", perm("curriculum.manage"), curriculumHandler.AddLearningOutcome)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(schoolRoutes).
		Register(subscriptionRoutes).
		Register(identityRoutes).
		Register(accountingRoutes).
		Register(financeRoutes).
		Register(studentRoutes).
		Register(curriculumRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
