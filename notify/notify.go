// Package notify delivers submission notifications outside of the request
// that produced them. Delivery is best effort: failures are logged and
// counted, never reported back to the submitter.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mbolis/promo-forms/log"
)

type Message struct {
	Phone       string `json:"phoneNumber"`
	Name        string `json:"name"`
	ProgramName string `json:"programName"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// WebhookNotifier posts each message as JSON to a fixed URL.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (n *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("content-type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier only logs, for deployments without a notification service.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, msg Message) error {
	log.WithFields(log.Fields{
		"phone":   msg.Phone,
		"name":    msg.Name,
		"program": msg.ProgramName,
	}).Info("notify.log")
	return nil
}
