package routes

import (
	"Receipt-Scanner-Backend/internal/api/handlers"
	"Receipt-Scanner-Backend/internal/middleware"
	"Receipt-Scanner-Backend/pkg/jwt"
	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App            *fiber.App
	ReceiptHandler handlers.ReceiptHandler
	HealthHandler  handlers.HealthHandler
	Middleware     middleware.Middleware
	JWTService     jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.Receipts()
}

func (c *Config) GuestRoute() {
	c.App.Get("/health", c.HealthHandler.HealthCheck)
}

func (c *Config) Receipts() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)

	c.App.Post("/upload", auth, c.ReceiptHandler.UploadReceipt)
	c.App.Get("/categories", auth, c.ReceiptHandler.GetCategories)

	receipts := c.App.Group("/receipts", auth)
	{
		receipts.Get("", c.ReceiptHandler.GetReceipts)
		receipts.Get("/:id", c.ReceiptHandler.GetReceiptByID)
		receipts.Put("/:id", c.ReceiptHandler.UpdateReceipt)
		receipts.Delete("/:id", c.ReceiptHandler.DeleteReceipt)
		receipts.Post("/:id/reprocess", c.ReceiptHandler.ReprocessReceipt)
	}
}
