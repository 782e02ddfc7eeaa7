package cardservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/carddoc"
	"github.com/dmitrijs2005/annokeeper/internal/common"
	"github.com/dmitrijs2005/annokeeper/internal/netx"
)

const DefaultTimeout = 60 * time.Second

type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient builds a client for baseURL (for example
// "https://acme.domo.com"). A non-positive timeout selects DefaultTimeout.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURLForInstance returns the card service root for an instance name.
func BaseURLForInstance(instance string) string {
	return fmt.Sprintf("https://%s.domo.com", instance)
}

func (c *HTTPClient) headers() http.Header {
	h := http.Header{}
	h.Set(common.DeveloperTokenHeaderName, c.token)
	h.Set("Accept", common.JSONContentType)
	h.Set("Content-Type", common.JSONContentType)
	return h
}

func (c *HTTPClient) FetchDefinition(ctx context.Context, cardID int64) (*carddoc.Definition, error) {
	url := c.baseURL + "/api/content/v3/cards/kpi/definition"
	body := map[string]string{"urn": strconv.FormatInt(cardID, 10)}

	status, resp, err := netx.SendJSON(ctx, c.http, http.MethodPut, url, c.headers(), body)
	if err != nil {
		return nil, fmt.Errorf("fetch card %d: %w: %v", cardID, common.ErrUnavailable, err)
	}
	if status != http.StatusOK {
		return nil, &RemoteServiceError{Op: "fetch card definition", StatusCode: status, Body: netx.Truncate(resp, maxErrorBody)}
	}

	raw, err := decode(resp)
	if err != nil {
		return nil, fmt.Errorf("fetch card %d: decode definition: %w", cardID, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	def := &carddoc.Definition{Raw: raw}
	def.DataSourceID = def.FirstColumnSourceID()

	// Subscriptions must agree with the primary data source or the save is rejected.
	if def.DataSourceID != "" {
		for _, sub := range def.Subscriptions() {
			if _, ok := sub["dataSourceId"]; !ok {
				sub["dataSourceId"] = def.DataSourceID
			}
		}
	}

	return def, nil
}

func (c *HTTPClient) SaveDefinition(ctx context.Context, cardID int64, payload map[string]any) (map[string]any, error) {
	url := fmt.Sprintf("%s/api/content/v3/cards/kpi/%d", c.baseURL, cardID)

	status, resp, err := netx.SendJSON(ctx, c.http, http.MethodPut, url, c.headers(), payload)
	if err != nil {
		return nil, fmt.Errorf("save card %d: %w: %v", cardID, common.ErrUnavailable, err)
	}
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
	default:
		return nil, &RemoteServiceError{Op: "save card definition", StatusCode: status, Body: netx.Truncate(resp, maxErrorBody)}
	}

	if len(bytes.TrimSpace(resp)) == 0 {
		return nil, nil
	}
	result, err := decode(resp)
	if err != nil {
		return nil, fmt.Errorf("save card %d: decode response: %w", cardID, err)
	}
	return result, nil
}

func decode(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}
