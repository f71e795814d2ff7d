package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"StockScanner/internal/model"
)

const (
	discordFooter     = "Ultimate Stock Scanner"
	discordColorMatch = 0x00FF00
	discordColorInfo  = 0x5865F2
)

type discordField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
	Footer      struct {
		Text string `json:"text"`
	} `json:"footer"`
	Timestamp string `json:"timestamp"`
}

type discordMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

// DiscordNotifier posts scan results to a Discord webhook.
type DiscordNotifier struct {
	WebhookURL string
	Client     *http.Client

	retry retryPolicy
	log   *zap.Logger
	now   func() time.Time
}

// NewDiscordNotifier creates a webhook notifier with optional proxy support.
func NewDiscordNotifier(webhookURL, proxyURL string, log *zap.Logger) *DiscordNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &DiscordNotifier{
		WebhookURL: webhookURL,
		Client:     newHTTPClient(proxyURL),
		retry:      defaultRetry,
		log:        log.Named("discord"),
		now:        time.Now,
	}
}

func (d *DiscordNotifier) Name() string { return "discord" }

func (d *DiscordNotifier) embed(title, description string, color int) discordEmbed {
	e := discordEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Fields:      []discordField{},
		Timestamp:   d.now().UTC().Format(time.RFC3339),
	}
	e.Footer.Text = discordFooter
	return e
}

// scanMessage builds the webhook payload for a scan result.
func (d *DiscordNotifier) scanMessage(r *model.ScanResult) discordMessage {
	title := r.Tier.Title()
	e := d.embed(title+" Scan Results", Summary(r), discordColorMatch)
	if len(r.Matches) > 0 {
		e.Fields = append(e.Fields, discordField{Name: "Matching Stocks", Value: ListSymbols(r.Matches)})
	}
	return discordMessage{
		Content: "🔔 " + title + " Scan Results Alert",
		Embeds:  []discordEmbed{e},
	}
}

func (d *DiscordNotifier) post(ctx context.Context, msg discordMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	// Discord answers 204 without a body unless ?wait=true is set.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord webhook error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Deliver implements Sink.
func (d *DiscordNotifier) Deliver(ctx context.Context, result *model.ScanResult) error {
	msg := d.scanMessage(result)
	return d.retry.do(ctx, d.log, d.Name(), func(ctx context.Context) error {
		return d.post(ctx, msg)
	})
}

// Test sends a connection check to the webhook without retrying.
func (d *DiscordNotifier) Test(ctx context.Context) error {
	return d.post(ctx, discordMessage{Embeds: []discordEmbed{
		d.embed("Connection Test", "This is a test alert to verify your Discord webhook is properly configured.", discordColorInfo),
	}})
}
