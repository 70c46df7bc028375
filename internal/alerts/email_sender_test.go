package alerts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinDsousa/estoque-mestre-sub001/internal/config"
	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

func smtpConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host: "smtp.local",
		Port: 587,
		From: "alerts@example.com",
	}
}

func emailNotification(recipients ...string) AlertNotification {
	rule := fanoutRule(models.AlertChannelEmail)
	rule.Recipients = recipients
	rule.Description = "Stock fell below the configured minimum"
	return AlertNotification{
		Alert: storedAlert("a_1"),
		Rule:  rule,
	}
}

func TestEmailSendIsolatesPerRecipientFailures(t *testing.T) {
	s := NewEmailSender(smtpConfig(), testLogger())

	var delivered []string
	s.transmit = func(_ context.Context, recipient string, _ []byte) error {
		if recipient == "b@example.com" {
			return errors.New("mailbox unavailable")
		}
		delivered = append(delivered, recipient)
		return nil
	}

	err := s.Send(context.Background(), emailNotification("a@example.com", "b@example.com", "c@example.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b@example.com")
	assert.Equal(t, []string{"a@example.com", "c@example.com"}, delivered,
		"remaining recipients still get their email")
}

func TestEmailSendDeduplicatesRecipients(t *testing.T) {
	s := NewEmailSender(smtpConfig(), testLogger())

	var delivered []string
	s.transmit = func(_ context.Context, recipient string, _ []byte) error {
		delivered = append(delivered, recipient)
		return nil
	}

	err := s.Send(context.Background(), emailNotification("a@example.com", " a@example.com ", "", "b@example.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, delivered)
}

func TestEmailSendNoRecipientsIsNoOp(t *testing.T) {
	s := NewEmailSender(smtpConfig(), testLogger())

	called := false
	s.transmit = func(context.Context, string, []byte) error {
		called = true
		return nil
	}

	require.NoError(t, s.Send(context.Background(), emailNotification()))
	assert.False(t, called)
}

func TestEmailSendUnconfiguredSMTP(t *testing.T) {
	s := NewEmailSender(config.SMTPConfig{}, testLogger())

	called := false
	s.transmit = func(context.Context, string, []byte) error {
		called = true
		return nil
	}

	err := s.Send(context.Background(), emailNotification("a@example.com"))
	require.Error(t, err)
	assert.False(t, called)
}

func TestEmailMessageContents(t *testing.T) {
	s := NewEmailSender(smtpConfig(), testLogger())

	var captured string
	s.transmit = func(_ context.Context, _ string, message []byte) error {
		captured = string(message)
		return nil
	}

	require.NoError(t, s.Send(context.Background(), emailNotification("a@example.com")))

	assert.Contains(t, captured, "From: alerts@example.com")
	assert.Contains(t, captured, "To: a@example.com")
	assert.Contains(t, captured, "Subject: [Estoque Mestre] Low stock (HIGH)")
	assert.Contains(t, captured, "Content-Type: text/html")
	assert.Contains(t, captured, "Stock for sku-1 is down to 3 units (minimum 10)")
	assert.Contains(t, captured, severityColors[models.AlertSeverityHigh])
	assert.Contains(t, captured, "Stock fell below the configured minimum")
}
