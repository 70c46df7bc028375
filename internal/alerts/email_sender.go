package alerts

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/kevinDsousa/estoque-mestre-sub001/internal/config"
	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

const (
	smtpSecurityNone     = "none"
	smtpSecurityStartTLS = "starttls"
	smtpSecurityTLS      = "tls"
)

// severityColors drive the banner color of the alert email, one per
// severity.
var severityColors = map[models.AlertSeverity]string{
	models.AlertSeverityLow:      "#2563eb",
	models.AlertSeverityMedium:   "#d97706",
	models.AlertSeverityHigh:     "#ea580c",
	models.AlertSeverityCritical: "#dc2626",
}

var emailBodyTmpl = template.Must(template.New("alert_email").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;font-family:Arial,Helvetica,sans-serif;background-color:#f4f4f5;">
  <div style="max-width:600px;margin:24px auto;background:#ffffff;border-radius:8px;overflow:hidden;">
    <div style="background-color:{{.Color}};color:#ffffff;padding:16px 24px;">
      <h2 style="margin:0;font-size:18px;">{{.RuleName}}</h2>
      <p style="margin:4px 0 0;font-size:13px;text-transform:uppercase;">{{.Severity}} alert</p>
    </div>
    <div style="padding:24px;color:#18181b;">
      <p style="font-size:15px;">{{.Message}}</p>
      <table style="width:100%;border-collapse:collapse;font-size:14px;">
        <tr><td style="padding:6px 0;color:#71717a;">Metric</td><td style="padding:6px 0;">{{.Metric}}</td></tr>
        <tr><td style="padding:6px 0;color:#71717a;">Value</td><td style="padding:6px 0;">{{.Value}}</td></tr>
        <tr><td style="padding:6px 0;color:#71717a;">Threshold</td><td style="padding:6px 0;">{{.Threshold}}</td></tr>
        <tr><td style="padding:6px 0;color:#71717a;">Company</td><td style="padding:6px 0;">{{.CompanyID}}</td></tr>
        <tr><td style="padding:6px 0;color:#71717a;">Triggered at</td><td style="padding:6px 0;">{{.TriggeredAt}}</td></tr>
      </table>
      {{if .Description}}<p style="font-size:13px;color:#71717a;margin-top:16px;">{{.Description}}</p>{{end}}
    </div>
  </div>
</body>
</html>`))

type emailBodyData struct {
	Color       string
	RuleName    string
	Severity    string
	Message     string
	Metric      string
	Value       string
	Threshold   string
	CompanyID   string
	TriggeredAt string
	Description string
}

// EmailSender delivers alert emails over SMTP, one message per recipient on
// the rule. Per-recipient failures are isolated and reported together.
type EmailSender struct {
	cfg config.SMTPConfig
	log *slog.Logger

	// transmit delivers one rendered message; swappable in tests.
	transmit func(ctx context.Context, recipient string, message []byte) error
}

// NewEmailSender constructs an SMTP-backed email channel. The security mode
// defaults to STARTTLS when unset or unrecognized.
func NewEmailSender(cfg config.SMTPConfig, log *slog.Logger) *EmailSender {
	security := strings.ToLower(strings.TrimSpace(cfg.Security))
	switch security {
	case smtpSecurityNone, smtpSecurityStartTLS, smtpSecurityTLS:
	default:
		security = smtpSecurityStartTLS
	}
	cfg.Security = security
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.From = strings.TrimSpace(cfg.From)
	s := &EmailSender{cfg: cfg, log: log.With("component", "alert_email_sender")}
	s.transmit = s.sendEmail
	return s
}

// Send renders and delivers the alert email to every recipient on the rule.
func (s *EmailSender) Send(ctx context.Context, notification AlertNotification) error {
	recipients := uniqueEmails(notification.Rule.Recipients)
	if len(recipients) == 0 {
		return nil
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return fmt.Errorf("smtp is not configured")
	}

	var errs []string
	for _, recipient := range recipients {
		message, err := s.buildMessage(notification, recipient)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", recipient, err))
			continue
		}
		if err := s.transmit(ctx, recipient, message); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", recipient, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("email delivery failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s *EmailSender) buildMessage(notification AlertNotification, recipient string) ([]byte, error) {
	alert := notification.Alert
	subject := fmt.Sprintf("[Estoque Mestre] %s (%s)", notification.Rule.Name, strings.ToUpper(string(alert.Severity)))

	color, ok := severityColors[alert.Severity]
	if !ok {
		color = severityColors[models.AlertSeverityMedium]
	}
	var body bytes.Buffer
	if err := emailBodyTmpl.Execute(&body, emailBodyData{
		Color:       color,
		RuleName:    notification.Rule.Name,
		Severity:    string(alert.Severity),
		Message:     alert.Message,
		Metric:      alert.Metric,
		Value:       fmt.Sprintf("%.4f", alert.Value),
		Threshold:   fmt.Sprintf("%.4f", alert.Threshold),
		CompanyID:   alert.CompanyID,
		TriggeredAt: alert.TriggeredAt.Format(time.RFC3339),
		Description: notification.Rule.Description,
	}); err != nil {
		return nil, fmt.Errorf("failed to render email body: %w", err)
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.cfg.From),
		fmt.Sprintf("To: %s", recipient),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
	}
	if s.cfg.ReplyTo != "" {
		headers = append(headers, fmt.Sprintf("Reply-To: %s", s.cfg.ReplyTo))
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body.String()), nil
}

func (s *EmailSender) sendEmail(ctx context.Context, recipient string, message []byte) error {
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(recipient); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(message); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (s *EmailSender) connect(ctx context.Context) (*smtp.Client, error) {
	address := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	deadline := time.Now().Add(5 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	dialer := &net.Dialer{Deadline: deadline}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.Security == smtpSecurityTLS {
		tlsConfig := &tls.Config{ServerName: s.cfg.Host, InsecureSkipVerify: s.cfg.SkipTLSVerify} // #nosec G402
		conn, err = tls.DialWithDialer(dialer, "tcp", address, tlsConfig)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", address)
	}
	if err != nil {
		return nil, err
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if s.cfg.Security == smtpSecurityStartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			_ = client.Close()
			return nil, fmt.Errorf("smtp server does not support STARTTLS")
		}
		tlsConfig := &tls.Config{ServerName: s.cfg.Host, InsecureSkipVerify: s.cfg.SkipTLSVerify} // #nosec G402
		if err := client.StartTLS(tlsConfig); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

func uniqueEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, email := range emails {
		normalized := strings.TrimSpace(email)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
