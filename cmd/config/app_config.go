package config

import (
	"Receipt-Scanner-Backend/internal/api/handlers"
	"Receipt-Scanner-Backend/internal/api/routes"
	"Receipt-Scanner-Backend/internal/middleware"
	"Receipt-Scanner-Backend/internal/utils"
	"Receipt-Scanner-Backend/internal/utils/storage"
	"Receipt-Scanner-Backend/pkg/jwt"
	"Receipt-Scanner-Backend/pkg/ocr"
	"Receipt-Scanner-Backend/pkg/receipt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// collaborator clients, owned here and passed down
	s3, err := storage.NewAwsS3()
	if err != nil {
		return nil, err
	}
	ocrService := ocr.NewOcrService(utils.GetConfig("OCR_SERVICE_URL"))

	// Repository
	receiptRepository := receipt.NewReceiptRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	receiptService := receipt.NewReceiptService(receiptRepository, s3, ocrService)

	// Handler
	receiptHandler := handlers.NewReceiptHandler(receiptService, validator)
	healthHandler := handlers.NewHealthHandler(ocrService)

	// routes
	routesConfig := routes.Config{
		App:            app,
		ReceiptHandler: receiptHandler,
		HealthHandler:  healthHandler,
		Middleware:     middlewares,
		JWTService:     jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
