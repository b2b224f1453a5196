// Package submit performs the intercepted form POST and classifies the
// server's answer into one of three terminal outcomes: applied, rejected or
// failed. One call is one attempt; there are no retries and no client-imposed
// timeout beyond what the context or the injected HTTP client carry.
package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Header names and values every submission carries.
const (
	HeaderRequestedWith = "X-Requested-With"
	HeaderCSRFToken     = "X-CSRF-Token"

	// RequestedWithValue marks the request as script-initiated.
	RequestedWithValue = "XMLHttpRequest"
)

const formContentType = "application/x-www-form-urlencoded"

// Client posts form submissions.
type Client struct {
	http   *http.Client
	logger *zap.Logger
	extra  http.Header
}

// New builds a client. Without options it uses a plain http.Client and a
// no-op logger.
func New(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{},
		logger: zap.NewNop(),
		extra:  http.Header{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Post sends values form-encoded to action with the script-initiated marker
// and the authenticity token headers, then decodes the response envelope.
// Failures never escape as errors; they surface as OutcomeFailed with the
// cause in Result.Err and on the diagnostic logger.
func (c *Client) Post(ctx context.Context, action string, token string, values url.Values) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, action, strings.NewReader(values.Encode()))
	if err != nil {
		err = fmt.Errorf("submit: build request for %s: %w", action, err)
		c.logger.Error("submission request could not be built", zap.String("action", action), zap.Error(err))
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	req.Header.Set("Content-Type", formContentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestedWith, RequestedWithValue)
	req.Header.Set(HeaderCSRFToken, token)
	for key, vals := range c.extra {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		err = fmt.Errorf("submit: post %s: %w", action, err)
		c.logger.Error("submission transport failed", zap.String("action", action), zap.Error(err))
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("submit: read response from %s: %w", action, err)
		c.logger.Error("submission response unreadable",
			zap.String("action", action),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return Result{Outcome: OutcomeFailed, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		err = fmt.Errorf("submit: post %s: unexpected status %d", action, resp.StatusCode)
		c.logger.Error("submission rejected at transport level",
			zap.String("action", action),
			zap.Int("status", resp.StatusCode))
		return Result{Outcome: OutcomeFailed, StatusCode: resp.StatusCode, Err: err}
	}

	var envelope Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		err = fmt.Errorf("submit: decode response from %s: %w", action, err)
		c.logger.Error("submission response is not valid JSON",
			zap.String("action", action),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return Result{Outcome: OutcomeFailed, StatusCode: resp.StatusCode, Err: err}
	}

	outcome := OutcomeApplied
	if !envelope.Success {
		outcome = OutcomeRejected
	}
	c.logger.Debug("submission completed",
		zap.String("action", action),
		zap.Int("status", resp.StatusCode),
		zap.String("outcome", outcome.String()))
	return Result{Outcome: outcome, Response: &envelope, StatusCode: resp.StatusCode}
}
