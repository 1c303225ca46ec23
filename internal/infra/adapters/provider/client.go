// File: internal/infra/adapters/provider/client.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"sixseven-backend/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// maxRetries is the number of additional attempts after the first, applied to
// transport failures and non-2xx responses alike.
const maxRetries = 2

// maxBodyPreview bounds how much of an error response body is preserved for
// diagnostics on the job's error payload.
const maxBodyPreview = 500

// doJSON performs one JSON round-trip against a provider endpoint, retrying up
// to maxRetries extra times. It returns the decoded body on the first 2xx
// response; after exhausting the budget it returns an *adapter.ProviderError
// carrying the last status code and a truncated body.
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, payload any, log *zerolog.Logger) (map[string]any, error) {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = b
	}

	var lastErr *adapter.ProviderError
	for attempt := 0; attempt <= maxRetries; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Int("attempt", attempt+1).Str("url", url).Msg("provider request failed")
			lastErr = &adapter.ProviderError{Err: err}
			continue
		}

		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			log.Warn().Err(readErr).Int("attempt", attempt+1).Msg("provider response read failed")
			lastErr = &adapter.ProviderError{Err: readErr}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).
				Str("body", truncate(string(raw), maxBodyPreview)).Msg("provider returned error status")
			lastErr = &adapter.ProviderError{StatusCode: resp.StatusCode, Body: truncate(string(raw), maxBodyPreview)}
			continue
		}

		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("decode provider response: %w", err)
		}
		return decoded, nil
	}
	return nil, lastErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Accessors for loosely-typed provider payloads. Absent or mistyped fields
// yield zero values rather than errors.

func strField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func mapField(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func strSliceField(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
