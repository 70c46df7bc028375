package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

func (s *Server) handleListAlerts(c *fiber.Ctx) error {
	return SendSuccess(c, fiber.StatusOK, s.engine.Active())
}

func (s *Server) handleAcknowledgeAlert(c *fiber.Ctx) error {
	id := c.Params("alertID")

	var req models.AcknowledgeAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}
	if err := s.validate.Struct(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	// Unknown ids and repeated acknowledgements are no-ops; the caller
	// always gets a success acknowledgment.
	s.engine.Acknowledge(id, req.UserID)
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Alert acknowledged"})
}

func (s *Server) handleResolveAlert(c *fiber.Ctx) error {
	id := c.Params("alertID")
	s.engine.Resolve(id)
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Alert resolved"})
}
