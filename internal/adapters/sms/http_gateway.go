package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the provider's API root.
const DefaultBaseURL = "https://2factor.in/API/V1"

// ErrAllEndpointsFailed is returned when no endpoint shape produced a usable answer.
var ErrAllEndpointsFailed = errors.New("sms provider: all endpoint shapes failed")

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures an HTTPGateway.
type Config struct {
	BaseURL  string
	APIKey   string
	Template string
	Timeout  time.Duration
	DryRun   bool
}

// HTTPGateway talks to the provider over its path-style REST API.
// Each call walks a list of endpoint shapes and stops at the first success.
type HTTPGateway struct {
	cfg  Config
	http httpDoer
}

// NewHTTPGateway creates an HTTPGateway.
// POST: an empty API key forces dry-run mode
func NewHTTPGateway(cfg Config) *HTTPGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		cfg.DryRun = true
	}
	return &HTTPGateway{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// SetHTTPClient replaces the transport, mainly for tests.
func (g *HTTPGateway) SetHTTPClient(client httpDoer) {
	if client == nil {
		client = &http.Client{Timeout: g.cfg.Timeout}
	}
	g.http = client
}

// DryRun reports whether calls skip the network.
func (g *HTTPGateway) DryRun() bool { return g.cfg.DryRun }

// Name identifies the gateway in stored sessions.
func (g *HTTPGateway) Name() string {
	if g.cfg.DryRun {
		return ReasonDryRun
	}
	return "2factor"
}

type providerResponse struct {
	Status  string `json:"Status"`
	Details string `json:"Details"`
}

// requestURLs lists the send endpoint shapes in the order they are tried.
func (g *HTTPGateway) requestURLs(phone string) []string {
	base := g.cfg.BaseURL + "/" + url.PathEscape(g.cfg.APIKey) + "/SMS/"
	var urls []string
	if g.cfg.Template != "" {
		urls = append(urls, base+phone+"/AUTOGEN/"+url.PathEscape(g.cfg.Template))
	}
	return append(urls, base+phone+"/AUTOGEN", base+"+91"+phone+"/AUTOGEN")
}

func (g *HTTPGateway) verifyURLs(sessionID, phone, code string) []string {
	base := g.cfg.BaseURL + "/" + url.PathEscape(g.cfg.APIKey) + "/SMS/"
	var urls []string
	if sessionID != "" {
		urls = append(urls, base+"VERIFY/"+url.PathEscape(sessionID)+"/"+url.PathEscape(code))
	}
	return append(urls, base+"VERIFY3/"+phone+"/"+url.PathEscape(code))
}

// RequestOTP asks the provider to text a code to phone.
// PRE: phone is a normalized 10-digit number
// POST: in dry-run mode nothing is sent and Preview holds the first URL that would have been called
func (g *HTTPGateway) RequestOTP(ctx context.Context, phone string) (RequestResult, error) {
	urls := g.requestURLs(phone)
	if g.cfg.DryRun {
		slog.Info("sms_event", "event", "otp_request_dry_run", "phone", phone)
		return RequestResult{
			Reason:    ReasonDryRun,
			SessionID: uuid.NewString(),
			Preview:   redact(urls[0], g.cfg.APIKey),
		}, nil
	}

	var lastErr error
	for i, u := range urls {
		resp, err := g.call(ctx, u)
		if err != nil {
			lastErr = err
			slog.Warn("sms_event", "event", "otp_request_shape_failed", "shape", i, "error", err)
			continue
		}
		if strings.EqualFold(resp.Status, "Success") {
			slog.Info("sms_event", "event", "otp_requested", "phone", phone, "shape", i)
			return RequestResult{Delivered: true, SessionID: resp.Details}, nil
		}
		lastErr = fmt.Errorf("provider status %q: %s", resp.Status, resp.Details)
	}
	return RequestResult{Reason: ReasonRejected}, fmt.Errorf("%w: %v", ErrAllEndpointsFailed, lastErr)
}

// VerifyOTP checks code against the provider session, falling back to the phone-keyed shape.
// POST: dry-run mode never verifies; the caller checks its locally generated code instead
func (g *HTTPGateway) VerifyOTP(ctx context.Context, sessionID, phone, code string) (VerifyResult, error) {
	if g.cfg.DryRun {
		return VerifyResult{Reason: ReasonDryRun}, nil
	}
	var lastErr error
	for i, u := range g.verifyURLs(sessionID, phone, code) {
		resp, err := g.call(ctx, u)
		if err != nil {
			lastErr = err
			slog.Warn("sms_event", "event", "otp_verify_shape_failed", "shape", i, "error", err)
			continue
		}
		if strings.EqualFold(resp.Status, "Success") && strings.EqualFold(strings.TrimSpace(resp.Details), "OTP Matched") {
			return VerifyResult{Verified: true}, nil
		}
		// A well-formed answer that is not a match is final.
		return VerifyResult{Reason: ReasonMismatch}, nil
	}
	return VerifyResult{}, fmt.Errorf("%w: %v", ErrAllEndpointsFailed, lastErr)
}

// call performs one GET and decodes the provider's JSON envelope.
func (g *HTTPGateway) call(ctx context.Context, endpoint string) (providerResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return providerResponse{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return providerResponse{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return providerResponse{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return providerResponse{}, fmt.Errorf("http %d", resp.StatusCode)
	}
	var out providerResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return providerResponse{}, fmt.Errorf("decode provider response: %w", err)
	}
	return out, nil
}

func redact(u, key string) string {
	if key == "" {
		return u
	}
	return strings.ReplaceAll(u, url.PathEscape(key), "***")
}
