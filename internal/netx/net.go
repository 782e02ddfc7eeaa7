// Package netx holds small HTTP helpers shared by outbound clients.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

// SendJSON encodes body as JSON, sends it with method to url and returns the
// response status and the full response body. Transport and encoding failures
// are returned as errors; any HTTP status is returned to the caller to judge.
func SendJSON(ctx context.Context, client *http.Client, method, url string, header http.Header, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, b, nil
}

// Truncate returns at most n characters of b as a string. Invalid UTF-8
// bytes count as one character each.
func Truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	end := 0
	for i := 0; i < n && end < len(b); i++ {
		_, size := utf8.DecodeRune(b[end:])
		end += size
	}
	return string(b[:end])
}
