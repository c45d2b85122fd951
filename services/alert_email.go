package services

import (
	"fmt"
	"log"
	"or_flow_app_go/config"
	"time"

	"github.com/resend/resend-go/v2"
)

// Alert represents an email alert message
type Alert struct {
	To       []string
	Subject  string
	TextBody string
}

// SendAlert sends an alert email via Resend. In test mode the alert is
// logged to the console instead of sent.
func SendAlert(cfg *config.Config, alert *Alert) error {
	if len(alert.To) == 0 {
		return fmt.Errorf("alert has no recipients")
	}

	if cfg.AlertTestMode {
		log.Printf("[ALERT TEST MODE] To: %v | Subject: %s | Body: %s", alert.To, alert.Subject, alert.TextBody)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.AlertFromName, cfg.AlertFrom),
		To:      alert.To,
		Subject: alert.Subject,
		Text:    alert.TextBody,
	}

	if _, err := client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}
	return nil
}

// BuildStartDelayAlert builds the alert sent when a planned case has not
// wheeled in past its scheduled start. boardURL, when set, links the charge
// nurse straight to the tracker board.
func BuildStartDelayAlert(to, caseNumber, roomName string, lateBy time.Duration, boardURL string) *Alert {
	body := fmt.Sprintf(
		"Case %s in %s has not started. Scheduled start passed %.0f minutes ago.",
		caseNumber, roomName, lateBy.Minutes())
	if boardURL != "" {
		body += fmt.Sprintf("\n\nBoard: %s", boardURL)
	}

	return &Alert{
		To:       []string{to},
		Subject:  fmt.Sprintf("Case %s delayed in %s", caseNumber, roomName),
		TextBody: body,
	}
}

// BuildLongPauseAlert builds the advisory sent when a timer has been paused
// beyond the long-pause threshold
func BuildLongPauseAlert(to, timerLabel, caseNumber string, pausedFor time.Duration, boardURL string) *Alert {
	body := fmt.Sprintf(
		"Timer %q on case %s has been paused for %.0f minutes. It may have been forgotten.",
		timerLabel, caseNumber, pausedFor.Minutes())
	if boardURL != "" {
		body += fmt.Sprintf("\n\nBoard: %s", boardURL)
	}

	return &Alert{
		To:       []string{to},
		Subject:  fmt.Sprintf("Timer %q paused for %.0f minutes", timerLabel, pausedFor.Minutes()),
		TextBody: body,
	}
}
