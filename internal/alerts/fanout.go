package alerts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	vm "github.com/VictoriaMetrics/metrics"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// Fanout dispatches one alert to every channel configured on its rule. All
// channels run concurrently; a channel failure is logged and never blocks the
// others or surfaces to the evaluator.
type Fanout struct {
	log     *slog.Logger
	timeout time.Duration
	source  string
	senders map[models.AlertChannelType]AlertSender
}

// FanoutOptions configures a Fanout.
type FanoutOptions struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Source  string
	InApp   AlertSender
	Email   AlertSender
	Webhook AlertSender
}

// NewFanout wires the per-channel senders. Nil senders disable their channel.
func NewFanout(opts FanoutOptions) *Fanout {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	senders := make(map[models.AlertChannelType]AlertSender)
	if opts.InApp != nil {
		senders[models.AlertChannelInApp] = opts.InApp
	}
	if opts.Email != nil {
		senders[models.AlertChannelEmail] = opts.Email
	}
	if opts.Webhook != nil {
		senders[models.AlertChannelWebhook] = opts.Webhook
	}
	return &Fanout{
		log:     opts.Logger.With("component", "alert_fanout"),
		timeout: timeout,
		source:  opts.Source,
		senders: senders,
	}
}

// Dispatch delivers the alert on every configured channel and returns once
// all channel attempts have finished, regardless of individual outcome.
func (f *Fanout) Dispatch(ctx context.Context, alert models.Alert, rule models.AlertRule) {
	notification := AlertNotification{
		Alert:     alert,
		Rule:      rule,
		Timestamp: time.Now().UTC(),
		Source:    f.source,
	}

	var wg sync.WaitGroup
	for _, channel := range rule.Channels {
		sender, ok := f.senders[channel]
		if !ok {
			f.log.Warn("no sender configured for channel", "channel", channel, "rule_id", rule.ID)
			continue
		}
		wg.Add(1)
		go func(channel models.AlertChannelType, sender AlertSender) {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()
			if err := sender.Send(sendCtx, notification); err != nil {
				vm.GetOrCreateCounter(`estoque_alert_notifications_failed_total{channel="` + string(channel) + `"}`).Inc()
				f.log.Warn("notification delivery failed",
					"channel", channel, "alert_id", alert.ID, "rule_id", rule.ID, "error", err)
				return
			}
			vm.GetOrCreateCounter(`estoque_alert_notifications_sent_total{channel="` + string(channel) + `"}`).Inc()
		}(channel, sender)
	}
	wg.Wait()
}
