package server

import (
	"bytes"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/gofiber/fiber/v2"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

func (s *Server) handleRecordMetric(c *fiber.Ctx) error {
	var req models.RecordMetricRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}
	if err := s.validate.Struct(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	s.registry.Record(req.Kind, req.Name, req.Labels, req.Value)
	return SendSuccess(c, fiber.StatusAccepted, fiber.Map{"message": "Metric recorded"})
}

func (s *Server) handleMetricSnapshot(c *fiber.Ctx) error {
	return SendSuccess(c, fiber.StatusOK, s.registry.Snapshot())
}

// handleSelfMetrics exposes the process's own operational counters in
// Prometheus text format. These are about the alerting engine itself, not
// the business metrics held in the registry.
func (s *Server) handleSelfMetrics(c *fiber.Ctx) error {
	var buf bytes.Buffer
	vm.WritePrometheus(&buf, true)
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.Send(buf.Bytes())
}
