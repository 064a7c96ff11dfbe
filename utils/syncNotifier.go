package utils

import (
	"context"
	"log"
	"time"

	"quizcore/models"

	"github.com/go-resty/resty/v2"
)

// SyncNotifier posts every recorded attempt to the offline sync webhook.
// Delivery is best effort: failures are logged and dropped.
type SyncNotifier struct {
	client *resty.Client
	url    string
	async  bool
}

// NewSyncNotifier returns nil when url is empty, which disables notifications.
func NewSyncNotifier(url string, timeout time.Duration) *SyncNotifier {
	if url == "" {
		return nil
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json")
	return &SyncNotifier{client: client, url: url, async: true}
}

// AttemptRecorded implements assessment.Notifier
func (n *SyncNotifier) AttemptRecorded(ctx context.Context, event models.AttemptRecorded) {
	if n == nil {
		return
	}
	if !n.async {
		n.send(ctx, event)
		return
	}
	// the request context ends with the response; delivery must outlive it
	go n.send(context.WithoutCancel(ctx), event)
}

func (n *SyncNotifier) send(ctx context.Context, event models.AttemptRecorded) {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.url)
	if err != nil {
		log.Printf("[SYNC] Failed to notify attempt %d of quiz %s for user %s: %v", event.AttemptNumber, event.QuizID, event.UserID, err)
		return
	}
	if resp.IsError() {
		log.Printf("[SYNC] Webhook rejected attempt %d of quiz %s: %d %s", event.AttemptNumber, event.QuizID, resp.StatusCode(), resp.String())
	}
}
