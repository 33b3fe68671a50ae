package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"agendanotify/internal/config"
	"agendanotify/internal/metrics"
	"agendanotify/internal/models"
)

// Outcome is the result of one send attempt. A false OK never aborts a
// batch; callers record it and move on.
type Outcome struct {
	OK               bool
	NormalizedPhone  string
	ProviderResponse string
	Err              error
}

// Sender abstracts the outbound channel for the scheduler and the
// reminder dispatcher
type Sender interface {
	Send(ctx context.Context, instance *models.ChannelInstance, phone, body string) Outcome
}

// ChannelClient wraps the provider's send-message call for one process.
// It performs exactly one network call per invocation and never retries;
// retry policy belongs to the caller, and this subsystem has none.
type ChannelClient struct {
	baseURL       string
	apiKey        string
	countryPrefix string
	minDigits     int
	httpClient    *http.Client
	logger        zerolog.Logger
}

// NewChannelClient creates a channel client from the provider config
func NewChannelClient(cfg config.ChannelConfig, logger zerolog.Logger) *ChannelClient {
	minDigits := cfg.MinDigits
	if minDigits <= 0 {
		minDigits = 10
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &ChannelClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		countryPrefix: cfg.CountryPrefix,
		minDigits:     minDigits,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

// sendRequest is the provider wire format
type sendRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// sendResponse carries the provider's accepted marker
type sendResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
}

// acceptedStatuses are the provider statuses treated as a successful
// hand-off
var acceptedStatuses = map[string]bool{
	"sent":    true,
	"queued":  true,
	"pending": true,
}

// NormalizePhone converts a raw phone into the provider's addressing
// format: non-digits stripped, country prefix prepended unless the
// number already carries it at a plausible length. Numbers shorter than
// minDigits after normalization are rejected.
func NormalizePhone(phone, countryPrefix string, minDigits int) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if !(strings.HasPrefix(digits, countryPrefix) && len(digits) >= minDigits) {
		digits = countryPrefix + digits
	}

	if len(digits) < minDigits {
		return "", fmt.Errorf("phone %q has fewer than %d digits after normalization", phone, minDigits)
	}

	return digits, nil
}

// Send normalizes the phone and issues one provider call. OK reflects
// the provider's reported acceptance, not merely the HTTP call
// completing. Invalid addresses are rejected locally without a call.
func (c *ChannelClient) Send(ctx context.Context, instance *models.ChannelInstance, phone, body string) Outcome {
	normalized, err := NormalizePhone(phone, c.countryPrefix, c.minDigits)
	if err != nil {
		c.logger.Warn().Str("phone", phone).Err(err).Msg("rejected phone before provider call")
		return Outcome{OK: false, Err: err}
	}

	payload, err := json.Marshal(sendRequest{Number: normalized, Text: body})
	if err != nil {
		return Outcome{OK: false, NormalizedPhone: normalized, Err: fmt.Errorf("failed to marshal send request: %w", err)}
	}

	url := fmt.Sprintf("%s/send/%s", c.baseURL, instance.InstanceName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Outcome{OK: false, NormalizedPhone: normalized, Err: fmt.Errorf("failed to build send request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveProviderRequest(time.Since(start))
	if err != nil {
		// Timeouts and transport errors count as provider failures
		return Outcome{OK: false, NormalizedPhone: normalized, Err: fmt.Errorf("provider call failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return Outcome{OK: false, NormalizedPhone: normalized, Err: fmt.Errorf("failed to read provider response: %w", err)}
	}

	outcome := Outcome{NormalizedPhone: normalized, ProviderResponse: string(raw)}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome.Err = fmt.Errorf("provider returned status %d", resp.StatusCode)
		return outcome
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		outcome.Err = fmt.Errorf("failed to parse provider response: %w", err)
		return outcome
	}

	if !acceptedStatuses[strings.ToLower(parsed.Status)] {
		outcome.Err = fmt.Errorf("provider did not accept message: status %q", parsed.Status)
		return outcome
	}

	outcome.OK = true
	return outcome
}
