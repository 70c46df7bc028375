package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kevinDsousa/estoque-mestre-sub001/internal/rules"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/sqlite"
	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

func (s *Server) handleListRules(c *fiber.Ctx) error {
	return SendSuccess(c, fiber.StatusOK, s.rules.List())
}

func (s *Server) handleGetRule(c *fiber.Ctx) error {
	id := c.Params("ruleID")
	rule, ok := s.rules.Get(id)
	if !ok {
		return SendErrorWithType(c, fiber.StatusNotFound, "Rule not found", models.NotFoundErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, rule)
}

func (s *Server) handleCreateRule(c *fiber.Ctx) error {
	var req models.CreateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}
	if err := s.validate.Struct(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	now := time.Now().UTC()
	rule := models.AlertRule{
		ID:              id,
		Name:            req.Name,
		Description:     req.Description,
		Metric:          req.Metric,
		Condition:       req.Condition,
		Threshold:       req.Threshold,
		Severity:        req.Severity,
		Enabled:         enabled,
		CooldownMinutes: req.CooldownMinutes,
		Channels:        req.Channels,
		Recipients:      req.Recipients,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.rules.Add(rule); err != nil {
		if errors.Is(err, rules.ErrDuplicateRule) {
			return SendErrorWithType(c, fiber.StatusConflict, "A rule with this id already exists", models.ConflictErrorType)
		}
		s.log.Error("failed to add rule", "rule_id", id, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create rule", models.GeneralErrorType)
	}

	if err := s.db.InsertRule(c.Context(), &rule); err != nil {
		// Keep memory and disk consistent: drop the half-created rule.
		s.rules.Remove(id)
		s.log.Error("failed to persist rule", "rule_id", id, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to create rule", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusCreated, rule)
}

func (s *Server) handleUpdateRule(c *fiber.Ctx) error {
	id := c.Params("ruleID")

	var req models.UpdateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, "Invalid request body", models.ValidationErrorType)
	}
	if err := s.validate.Struct(&req); err != nil {
		return SendErrorWithType(c, fiber.StatusBadRequest, err.Error(), models.ValidationErrorType)
	}

	prev, _ := s.rules.Get(id)
	updated, ok := s.rules.Update(id, req)
	if !ok {
		// Unknown ids acknowledge success: mutations stay idempotent for
		// callers that retry or race a delete.
		return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Rule updated"})
	}

	if err := s.db.UpdateRule(c.Context(), &updated); err != nil && !errors.Is(err, sqlite.ErrNotFound) {
		// Keep memory and disk consistent: undo the merge.
		s.rules.Set(prev)
		s.log.Error("failed to persist rule update", "rule_id", id, "error", err)
		return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to update rule", models.GeneralErrorType)
	}
	return SendSuccess(c, fiber.StatusOK, updated)
}

func (s *Server) handleDeleteRule(c *fiber.Ctx) error {
	id := c.Params("ruleID")

	prev, _ := s.rules.Get(id)
	if removed := s.rules.Remove(id); removed {
		if err := s.db.DeleteRule(c.Context(), id); err != nil && !errors.Is(err, sqlite.ErrNotFound) {
			// Restore the rule so memory and disk stay consistent. The rule
			// moves to the end of the evaluation order until restart.
			_ = s.rules.Add(prev)
			s.log.Error("failed to persist rule deletion", "rule_id", id, "error", err)
			return SendErrorWithType(c, fiber.StatusInternalServerError, "Failed to delete rule", models.GeneralErrorType)
		}
	}
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"message": "Rule deleted"})
}
