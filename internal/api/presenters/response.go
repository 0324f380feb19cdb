package presenters

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse writes the success envelope. A fiber.Map payload is
// merged with the message so handlers can shape responses like
// {message, receipt}; any other payload is written as-is (bare arrays
// for list endpoints).
func SuccessResponse(c *fiber.Ctx, data interface{}, code int, message string) error {
	if data == nil {
		return c.Status(code).JSON(fiber.Map{"message": message})
	}
	if m, ok := data.(fiber.Map); ok {
		m["message"] = message
		return c.Status(code).JSON(m)
	}
	return c.Status(code).JSON(data)
}

func ErrorResponse(c *fiber.Ctx, code int, message string, err error) error {
	body := fiber.Map{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(code).JSON(body)
}
