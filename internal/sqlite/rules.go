package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

const (
	insertRuleQuery = `INSERT INTO alert_rules (
    id,
    name,
    description,
    metric,
    condition,
    threshold,
    severity,
    enabled,
    cooldown_minutes,
    channels,
    recipients
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING created_at, updated_at`

	selectRuleBase = `SELECT
    id,
    name,
    description,
    metric,
    condition,
    threshold,
    severity,
    enabled,
    cooldown_minutes,
    channels,
    recipients,
    created_at,
    updated_at
FROM alert_rules`

	listRulesQuery = selectRuleBase + ` ORDER BY position ASC`

	updateRuleQuery = `UPDATE alert_rules
SET name = ?,
    description = ?,
    metric = ?,
    condition = ?,
    threshold = ?,
    severity = ?,
    enabled = ?,
    cooldown_minutes = ?,
    channels = ?,
    recipients = ?,
    updated_at = datetime('now')
WHERE id = ?`

	deleteRuleQuery = `DELETE FROM alert_rules WHERE id = ?`
)

// InsertRule persists a new alert rule definition.
func (db *DB) InsertRule(ctx context.Context, rule *models.AlertRule) error {
	if rule == nil {
		return fmt.Errorf("rule payload is required")
	}

	channelsJSON, err := json.Marshal(rule.Channels)
	if err != nil {
		return fmt.Errorf("failed to marshal rule channels: %w", err)
	}
	recipientsJSON, err := json.Marshal(rule.Recipients)
	if err != nil {
		return fmt.Errorf("failed to marshal rule recipients: %w", err)
	}

	row := db.writeDB.QueryRowContext(ctx, insertRuleQuery,
		rule.ID,
		rule.Name,
		nullableString(rule.Description),
		rule.Metric,
		string(rule.Condition),
		rule.Threshold,
		string(rule.Severity),
		boolToInt(rule.Enabled),
		rule.CooldownMinutes,
		string(channelsJSON),
		string(recipientsJSON),
	)

	var createdAt, updatedAt time.Time
	if err := row.Scan(&createdAt, &updatedAt); err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}
	rule.CreatedAt = createdAt
	rule.UpdatedAt = updatedAt
	return nil
}

// UpdateRule persists changes to an existing rule definition. Returns
// ErrNotFound when no row matched.
func (db *DB) UpdateRule(ctx context.Context, rule *models.AlertRule) error {
	if rule == nil {
		return fmt.Errorf("rule payload is required")
	}

	channelsJSON, err := json.Marshal(rule.Channels)
	if err != nil {
		return fmt.Errorf("failed to marshal rule channels: %w", err)
	}
	recipientsJSON, err := json.Marshal(rule.Recipients)
	if err != nil {
		return fmt.Errorf("failed to marshal rule recipients: %w", err)
	}

	res, err := db.writeDB.ExecContext(ctx, updateRuleQuery,
		rule.Name,
		nullableString(rule.Description),
		rule.Metric,
		string(rule.Condition),
		rule.Threshold,
		string(rule.Severity),
		boolToInt(rule.Enabled),
		rule.CooldownMinutes,
		string(channelsJSON),
		string(recipientsJSON),
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRule removes a rule definition. Returns ErrNotFound when no row
// matched.
func (db *DB) DeleteRule(ctx context.Context, id string) error {
	res, err := db.writeDB.ExecContext(ctx, deleteRuleQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRules fetches all rules in insertion order.
func (db *DB) ListRules(ctx context.Context) ([]models.AlertRule, error) {
	rows, err := db.readDB.QueryContext(ctx, listRulesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var out []models.AlertRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}
	return out, nil
}

func scanRule(rows *sql.Rows) (models.AlertRule, error) {
	var (
		rule           models.AlertRule
		description    sql.NullString
		condition      string
		severity       string
		enabled        int
		channelsJSON   string
		recipientsJSON string
	)
	if err := rows.Scan(
		&rule.ID,
		&rule.Name,
		&description,
		&rule.Metric,
		&condition,
		&rule.Threshold,
		&severity,
		&enabled,
		&rule.CooldownMinutes,
		&channelsJSON,
		&recipientsJSON,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return models.AlertRule{}, fmt.Errorf("failed to scan rule: %w", err)
	}
	rule.Description = description.String
	rule.Condition = models.RuleCondition(condition)
	rule.Severity = models.AlertSeverity(severity)
	rule.Enabled = enabled != 0
	if err := json.Unmarshal([]byte(channelsJSON), &rule.Channels); err != nil {
		return models.AlertRule{}, fmt.Errorf("failed to unmarshal rule channels: %w", err)
	}
	if err := json.Unmarshal([]byte(recipientsJSON), &rule.Recipients); err != nil {
		return models.AlertRule{}, fmt.Errorf("failed to unmarshal rule recipients: %w", err)
	}
	return rule, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
