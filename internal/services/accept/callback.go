package accept

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/arbor"
)

// HTTPNotifier posts job results to caller-supplied callback URLs.
// Delivery is single-shot; the result store keeps the outcome for
// callers whose endpoint was down.
type HTTPNotifier struct {
	client *http.Client
	logger arbor.ILogger
}

// NewHTTPNotifier creates a notifier with the given delivery timeout.
func NewHTTPNotifier(timeout time.Duration, logger arbor.ILogger) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPNotifier{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Notify delivers the result as a JSON POST.
func (n *HTTPNotifier) Notify(callbackURL string, result *models.JobResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}

	resp, err := n.client.Post(callbackURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post callback: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}

	n.logger.Info().
		Str("job_id", result.JobID).
		Bool("success", result.Success).
		Msg("Callback delivered")
	return nil
}
