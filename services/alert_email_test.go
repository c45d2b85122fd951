package services

import (
	"or_flow_app_go/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAlertBuilders(t *testing.T) {
	t.Run("Start Delay", func(t *testing.T) {
		alert := BuildStartDelayAlert("charge@hospital.test", "OR-2026-00001", "OR-1",
			12*time.Minute, "https://tracker.hospital.test")
		assert.Equal(t, []string{"charge@hospital.test"}, alert.To)
		assert.Contains(t, alert.Subject, "OR-2026-00001")
		assert.Contains(t, alert.TextBody, "12 minutes")
		assert.Contains(t, alert.TextBody, "https://tracker.hospital.test")
	})

	t.Run("Long Pause", func(t *testing.T) {
		alert := BuildLongPauseAlert("charge@hospital.test", "Tourniquet", "OR-2026-00001",
			15*time.Minute, "https://tracker.hospital.test")
		assert.Contains(t, alert.Subject, "Tourniquet")
		assert.Contains(t, alert.TextBody, "OR-2026-00001")
		assert.Contains(t, alert.TextBody, "https://tracker.hospital.test")
	})

	t.Run("No Board URL Omits The Link", func(t *testing.T) {
		alert := BuildStartDelayAlert("charge@hospital.test", "OR-2026-00001", "OR-1",
			12*time.Minute, "")
		assert.NotContains(t, alert.TextBody, "Board:")
	})
}

func TestSendAlert(t *testing.T) {
	cfg := &config.Config{AlertTestMode: true}

	t.Run("No Recipients Rejected", func(t *testing.T) {
		assert.Error(t, SendAlert(cfg, &Alert{Subject: "x"}))
	})

	t.Run("Test Mode Logs Instead Of Sending", func(t *testing.T) {
		assert.NoError(t, SendAlert(cfg, &Alert{
			To: []string{"charge@hospital.test"}, Subject: "x", TextBody: "y",
		}))
	})
}
