package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/myrtlewealth/blueprint/internal/resilience"
)

// DefaultPlunkURL is the Plunk transactional send endpoint.
const DefaultPlunkURL = "https://api.useplunk.com/v1/send"

// PlunkMailer sends through the Plunk HTTP API.
type PlunkMailer struct {
	url    string
	key    string
	from   Sender
	client *http.Client
}

// NewPlunkMailer returns a PlunkMailer. An empty url selects DefaultPlunkURL.
func NewPlunkMailer(url, key string, from Sender, timeout time.Duration) (*PlunkMailer, error) {
	if key == "" {
		return nil, eris.New("plunk: api key is required")
	}
	if url == "" {
		url = DefaultPlunkURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PlunkMailer{url: url, key: key, from: from, client: &http.Client{Timeout: timeout}}, nil
}

func (m *PlunkMailer) Name() string { return "plunk" }

type plunkAttachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type plunkPayload struct {
	To          string            `json:"to"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	Text        string            `json:"text,omitempty"`
	From        string            `json:"from,omitempty"`
	Name        string            `json:"name,omitempty"`
	Attachments []plunkAttachment `json:"attachments,omitempty"`
}

// Send posts msg to Plunk. 429 and 5xx responses come back as transient
// errors.
func (m *PlunkMailer) Send(ctx context.Context, msg Message) error {
	payload := plunkPayload{
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.HTML,
		Text:    msg.Text,
		From:    m.from.Address,
		Name:    m.from.Name,
	}
	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, plunkAttachment{
			Filename:    a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "plunk: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "plunk: create request")
	}
	req.Header.Set("Authorization", "Bearer "+m.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "plunk: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 {
		err := eris.Errorf("plunk: api returned status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
		if resilience.TransientHTTPStatus(resp.StatusCode) {
			return resilience.Transient(err, resp.StatusCode)
		}
		return err
	}

	zap.L().Debug("plunk: message accepted",
		zap.String("to", msg.To),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
