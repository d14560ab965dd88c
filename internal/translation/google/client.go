// Package google calls the public Google Translate endpoint.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/tidwall/gjson"
	"resty.dev/v3"
)

const DefaultBaseURL = "https://translate.googleapis.com"

var errEmptyTranslation = errors.New("empty translation response")

type Client struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

func NewClient(baseURL string, timeout time.Duration, retryAttempts uint) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &Client{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") || strings.Contains(errStr, "EOF") {
		return true
	}
	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}
	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}
	return false
}

// Translate implements the translation.Client interface
func (client *Client) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	var result string
	if err := retry.Do(
		func() error {
			translated, err := client.translate(ctx, text, targetLanguage)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = translated
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Info("Retrying translation",
				"attempt", n+1,
				"targetLanguage", targetLanguage,
				"lastError", err)
		}),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return "", err
	}
	return result, nil
}

func (client *Client) translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     "auto",
			"tl":     targetLanguage,
			"dt":     "t",
			"q":      text,
		}).
		Get("/translate_a/single")
	if err != nil {
		return "", fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.IsError() {
		return "", fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	return parseResponse(response.String())
}

// parseResponse joins the translated segments of a nested-array response like
// [[["translated","source",...],...],...].
func parseResponse(body string) (string, error) {
	if !gjson.Valid(body) {
		return "", fmt.Errorf("invalid translation response: %q", body)
	}

	var builder strings.Builder
	for _, segment := range gjson.Get(body, "0.#.0").Array() {
		builder.WriteString(segment.String())
	}
	if builder.Len() == 0 {
		return "", errEmptyTranslation
	}
	return builder.String(), nil
}
