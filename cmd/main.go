package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "github.com/franciscosanchezn/trattoria-api/docs" // Import generated docs
	"github.com/franciscosanchezn/trattoria-api/internal/auth"
	"github.com/franciscosanchezn/trattoria-api/internal/config"
	"github.com/franciscosanchezn/trattoria-api/internal/controllers"
	"github.com/franciscosanchezn/trattoria-api/internal/database"
	"github.com/franciscosanchezn/trattoria-api/internal/events"
	"github.com/franciscosanchezn/trattoria-api/internal/middleware"
	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/franciscosanchezn/trattoria-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

var (
	db            *gorm.DB
	configuration *config.Config

	revocations  auth.RevocationStore
	accounts     middleware.AccountLookup
	publisher    events.Publisher
	oauthService *auth.OAuthService
	loginLimiter *middleware.RateLimiter

	authController      *controllers.AuthController
	employeeController  *controllers.EmployeeController
	menuController      *controllers.MenuController
	tableController     *controllers.TableController
	orderController     *controllers.OrderController
	dashboardController *controllers.DashboardController
	clientController    *controllers.ClientController
)

// @title Trattoria API
// @version 1.0
// @description Front-of-house API for a restaurant: staff, menu, tables and orders
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()

	// Initialize database connection
	setupDatabase(configuration)

	checkPanicErr(validation.RegisterRules())

	revocations = setupRevocationStore(configuration)
	publisher = setupPublisher(configuration)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("Failed to close event publisher")
		}
	}()

	// Initialize services and controllers
	setupControllers(configuration)

	// Initialize Gin router
	var router *gin.Engine = setupRouter()

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	if err := router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)); err != nil {
		log.WithError(err).Error("Server stopped")
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf.String())
	return conf
}

// setupDatabase opens the configured database, migrates the schema and
// seeds it when it is empty
func setupDatabase(conf *config.Config) *gorm.DB {
	var err error
	db, err = database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))

	seed, err := loadSeed(conf.SeedFile)
	checkPanicErr(err)
	checkPanicErr(database.Seed(db, seed))
	return db
}

func loadSeed(path string) (*database.SeedData, error) {
	if path == "" {
		return database.DefaultSeed()
	}
	log.WithField("path", path).Info("Loading seed file")
	return database.LoadSeedFile(path)
}

// setupRevocationStore uses redis when REDIS_URL is set so logouts survive
// restarts and are shared between replicas
func setupRevocationStore(conf *config.Config) auth.RevocationStore {
	if conf.RedisURL == "" {
		log.Info("Using in-memory token revocation store")
		return auth.NewMemoryRevocationStore()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store, err := auth.NewRedisRevocationStoreFromURL(ctx, conf.RedisURL)
	checkPanicErr(err)
	log.Info("Using redis token revocation store")
	return store
}

// setupPublisher picks the order event sink named by EVENTS_BROKER
func setupPublisher(conf *config.Config) events.Publisher {
	logger := log.WithField("broker", conf.EventsBroker)
	switch conf.EventsBroker {
	case "none":
		return events.NopPublisher{}
	case "kafka":
		logger.WithField("topic", conf.KafkaTopic).Info("Publishing order events to kafka")
		return events.NewKafkaPublisher(conf.KafkaBrokers, conf.KafkaTopic)
	case "rabbitmq":
		p, err := events.DialRabbitMQ(conf.RabbitMQURL, conf.RabbitMQExchange)
		checkPanicErr(err)
		logger.WithField("exchange", conf.RabbitMQExchange).Info("Publishing order events to rabbitmq")
		return p
	default:
		return events.NewLogPublisher(log.StandardLogger())
	}
}

// setupControllers builds the services and the controllers on top of them
func setupControllers(conf *config.Config) {
	tokenTTL := time.Duration(conf.TokenTTLHours) * time.Hour

	userService := services.NewUserService(db)
	accounts = userService
	employeeService := services.NewEmployeeService(db)
	categoryService := services.NewCategoryService(db)
	dishService := services.NewDishService(db)
	tableService := services.NewTableService(db)
	orderService := services.NewOrderService(db, publisher)
	dashboardService := services.NewDashboardService(db)
	reportService := services.NewReportService(db)
	clientService := services.NewClientService(db)

	oauthService = auth.NewOAuthService(db, conf.JWTSecret, tokenTTL)
	sessions := auth.NewSessionIssuer(conf.JWTSecret, tokenTTL)
	loginLimiter = middleware.NewRateLimiter(float64(conf.LoginRatePerMinute), conf.LoginRateBurst, 10*time.Minute)

	authController = controllers.NewAuthController(userService, sessions, revocations)
	employeeController = controllers.NewEmployeeController(employeeService)
	menuController = controllers.NewMenuController(categoryService, dishService)
	tableController = controllers.NewTableController(tableService)
	orderController = controllers.NewOrderController(orderService)
	dashboardController = controllers.NewDashboardController(dashboardService, reportService)
	clientController = controllers.NewClientController(clientService)
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter() *gin.Engine {
	// Initialize Gin router
	router := gin.Default()
	router.Use(middleware.RequestLogger())

	// Define routes
	setupRoutes(router)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// Machine clients exchange their credentials here
	router.POST("/oauth/token", oauthService.HandleToken)

	v1 := router.Group("/api/v1")
	{
		authApi := v1.Group("/auth")
		{
			authApi.POST("/login", loginLimiter.Middleware(), authController.Login)
		}

		// Everything below requires a bearer token
		protectedApi := v1.Group("")
		protectedApi.Use(middleware.BearerAuth([]byte(configuration.JWTSecret), revocations, accounts))
		{
			protectedApi.POST("/auth/logout", authController.Logout)
			protectedApi.GET("/auth/me", authController.Me)

			menuApi := protectedApi.Group("/menu")
			{
				menuApi.GET("/categories", menuController.ListCategories)
				menuApi.GET("/categories/:id", menuController.GetCategory)
				menuApi.GET("/dishes", menuController.ListDishes)
				menuApi.GET("/dishes/:id", menuController.GetDish)
			}

			tablesApi := protectedApi.Group("/tables")
			{
				tablesApi.GET("", tableController.ListTables)
				tablesApi.GET("/:id", tableController.GetTable)
				tablesApi.POST("/:id/toggle", tableController.ToggleTable)
			}

			ordersApi := protectedApi.Group("/orders")
			{
				ordersApi.POST("", orderController.CreateOrder)
				ordersApi.GET("/mine", orderController.MyOrders)
				ordersApi.GET("/:id", orderController.GetOrder)
				ordersApi.POST("/:id/lines", orderController.AddLine)
				ordersApi.DELETE("/:id/lines/:lineId", orderController.RemoveLine)
				ordersApi.PATCH("/:id/status", orderController.UpdateStatus)
				ordersApi.POST("/:id/close", orderController.CloseOrder)
			}

			adminApi := protectedApi.Group("/admin")
			adminApi.Use(middleware.RequireRole(models.RoleAdministrator))
			{
				adminApi.GET("/dashboard", dashboardController.GetDashboard)
				adminApi.GET("/reports/orders.xlsx", dashboardController.OrdersReport)

				adminApi.GET("/employees", employeeController.ListEmployees)
				adminApi.POST("/employees", employeeController.CreateEmployee)
				adminApi.GET("/employees/:id", employeeController.GetEmployee)
				adminApi.PUT("/employees/:id", employeeController.UpdateEmployee)
				adminApi.DELETE("/employees/:id", employeeController.DeleteEmployee)

				adminApi.POST("/categories", menuController.CreateCategory)
				adminApi.PUT("/categories/:id", menuController.UpdateCategory)
				adminApi.DELETE("/categories/:id", menuController.DeleteCategory)

				adminApi.POST("/dishes", menuController.CreateDish)
				adminApi.PUT("/dishes/:id", menuController.UpdateDish)
				adminApi.DELETE("/dishes/:id", menuController.DeleteDish)
				adminApi.PATCH("/dishes/:id/availability", menuController.ToggleDishAvailability)

				adminApi.POST("/tables", tableController.CreateTable)
				adminApi.PUT("/tables/:id", tableController.UpdateTable)
				adminApi.DELETE("/tables/:id", tableController.DeleteTable)

				adminApi.GET("/orders", orderController.ListOrders)

				adminApi.GET("/clients", clientController.ListClients)
				adminApi.POST("/clients", clientController.CreateClient)
				adminApi.GET("/clients/:id", clientController.GetClient)
				adminApi.DELETE("/clients/:id", clientController.DeleteClient)
			}
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "trattoria-api",
	})
}
