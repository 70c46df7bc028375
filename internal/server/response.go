package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// APIResponse is the success envelope returned by every endpoint.
type APIResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// APIError is the error envelope returned by every endpoint.
type APIError struct {
	Status    string           `json:"status"`
	Message   string           `json:"message"`
	ErrorType models.ErrorType `json:"error_type"`
}

// SendSuccess writes a success envelope with the given payload.
func SendSuccess(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(APIResponse{Status: "success", Data: data})
}

// SendErrorWithType writes an error envelope with a classification clients
// can branch on.
func SendErrorWithType(c *fiber.Ctx, status int, message string, errorType models.ErrorType) error {
	return c.Status(status).JSON(APIError{Status: "error", Message: message, ErrorType: errorType})
}
