// Package board talks to the Board project-management API. Every call here
// is best-effort from the caller's point of view: numbering never blocks on
// Board, and Board failures never roll back a committed number.
package board

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/threedv/saiban/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when API credentials are missing. Callers
// treat it the same as "record absent".
var ErrNotConfigured = errors.New("board api credentials not configured")

// Project is the subset of a Board case the service cares about. Amount
// carries the estimate extracted via the configured fallback field list;
// HasAmount distinguishes zero from absent.
type Project struct {
	ID               string `json:"id"`
	ProjectNo        string `json:"project_no"`
	Name             string `json:"name"`
	ClientName       string `json:"client_name"`
	ManagementNumber string `json:"management_number"`
	OrderStatus      string `json:"order_status"`
	Amount           int64  `json:"amount"`
	HasAmount        bool   `json:"has_amount"`
}

type Client interface {
	Configured() bool
	// FindByCaseNumber returns nil when the case number has no Board record.
	FindByCaseNumber(ctx context.Context, caseNumber string) (*Project, error)
	// ListRecent returns the most recently created cases; with
	// onlyUnnumbered it keeps only rows whose management number is empty.
	ListRecent(ctx context.Context, perPage int, onlyUnnumbered bool) ([]Project, error)
	SetManagementNumber(ctx context.Context, projectID, number string) error
}

type client struct {
	baseURL      string
	apiKey       string
	apiToken     string
	amountFields []string
	httpClient   *http.Client
	log          *zap.Logger
}

func NewClient(cfg *config.Config, log *zap.Logger) Client {
	return &client{
		baseURL:      strings.TrimRight(cfg.Board.BaseURL, "/"),
		apiKey:       cfg.Board.APIKey,
		apiToken:     cfg.Board.APIToken,
		amountFields: cfg.Board.AmountFields,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

func (c *client) Configured() bool {
	return c.apiKey != "" && c.apiToken != ""
}

func (c *client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("board request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *client) FindByCaseNumber(ctx context.Context, caseNumber string) (*Project, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/projects?project_no=%s", c.baseURL, caseNumber)
	respBody, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := sonic.Unmarshal(respBody, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	p := c.decode(rows[0])
	return &p, nil
}

func (c *client) ListRecent(ctx context.Context, perPage int, onlyUnnumbered bool) ([]Project, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/projects?per_page=%d&sort=-created_at", c.baseURL, perPage)
	respBody, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := sonic.Unmarshal(respBody, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	out := make([]Project, 0, len(rows))
	for _, row := range rows {
		p := c.decode(row)
		if onlyUnnumbered && p.ManagementNumber != "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *client) SetManagementNumber(ctx context.Context, projectID, number string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := sonic.Marshal(map[string]string{"management_number": number})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/projects/%s", c.baseURL, projectID)
	if _, err := c.do(ctx, http.MethodPut, endpoint, body); err != nil {
		return err
	}

	c.log.Info("board management number updated",
		zap.String("board_project_id", projectID),
		zap.String("management_number", number))
	return nil
}

// decode maps one raw Board row to a Project. The amount fields are tried
// in configured priority order because the Board schema varies by tenant.
func (c *client) decode(row map[string]any) Project {
	p := Project{
		ID:               stringField(row, "id"),
		ProjectNo:        stringField(row, "project_no"),
		Name:             stringField(row, "name"),
		ManagementNumber: stringField(row, "management_number"),
		OrderStatus:      stringField(row, "order_status_name"),
	}

	if cl, ok := row["client"].(map[string]any); ok {
		p.ClientName = stringField(cl, "name")
	}

	for _, field := range c.amountFields {
		if amount, ok := intField(row, field); ok {
			p.Amount = amount
			p.HasAmount = true
			break
		}
	}

	return p
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// sonic decodes JSON numbers as float64; Board ids are integral
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func intField(m map[string]any, key string) (int64, bool) {
	switch v := m[key].(type) {
	case float64:
		return int64(v), true
	case string:
		if v == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
