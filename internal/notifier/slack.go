// Package notifier delivers results out-of-band to the user who asked for
// them: text via a Slack incoming webhook, bulk exports via file upload.
package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/shiodat/feelbot/internal/config"
)

const fileUploadURL = "https://slack.com/api/files.upload"

// SlackNotifier posts to Slack. Text notification is fire-and-forget;
// failures are logged, never propagated.
type SlackNotifier struct {
	webhookURL string
	token      string
	channelID  string
	client     *http.Client
}

// NewSlackNotifier builds a notifier from the loaded credentials. Empty
// Slack settings leave the corresponding sink disabled.
func NewSlackNotifier(creds *config.Credentials) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: creds.WebhookURL,
		token:      creds.OAuthToken,
		channelID:  creds.ChannelID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Notify sends a message mentioning the user through the incoming webhook.
func (n *SlackNotifier) Notify(userID, message string) {
	if n.webhookURL == "" {
		log.Printf("notify %s: %s", userID, message)
		return
	}

	text := fmt.Sprintf("<@%s> %s", userID, message)
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		log.Printf("encode webhook payload: %v", err)
		return
	}
	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("webhook delivery failed: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("webhook delivery failed: status %d", resp.StatusCode)
	}
}

// UploadFile ships a text file to the configured channel.
func (n *SlackNotifier) UploadFile(userID, title, content string) error {
	if n.token == "" || n.channelID == "" {
		return fmt.Errorf("file upload not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"token":    n.token,
		"channels": n.channelID,
		"title":    title,
		"content":  content,
	})
	if err != nil {
		return fmt.Errorf("encode upload payload: %w", err)
	}
	resp, err := n.client.Post(fileUploadURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload file: status %d", resp.StatusCode)
	}
	log.Printf("uploaded %s for %s", title, userID)
	return nil
}
