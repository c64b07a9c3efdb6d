// Package gsheet provides a client for the spreadsheet-backed persistence
// script. The script exposes action-tagged endpoints (getAssets, addAsset,
// updateAsset, deleteAsset, getTransactions, addTransaction,
// deleteTransaction, getPriceHistory); every response carries a success flag
// and either a payload or an error string.
package gsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/interfaces"
	"github.com/khtseng/folio/internal/models"
)

const DefaultTimeout = 30 * time.Second

// ErrReadOnlyHistory is returned when writing price history through the
// script: the PriceHistory sheet is maintained by the script's own trigger,
// the service only reads it.
var ErrReadOnlyHistory = errors.New("price history is maintained by the spreadsheet script")

// Client talks to the deployed Apps Script web app.
type Client struct {
	scriptURL  string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a client for the script deployed at scriptURL.
func NewClient(scriptURL string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(scriptURL) == "" {
		return nil, errors.New("script URL is required")
	}

	c := &Client{
		scriptURL: scriptURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// envelope is the script's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// call performs one action-tagged request. A nil payload issues a GET,
// anything else is POSTed as a JSON body. The decoded data payload is
// written into out when out is non-nil.
func (c *Client) call(ctx context.Context, action string, payload interface{}, out interface{}) error {
	params := url.Values{}
	params.Set("action", action)
	reqURL := c.scriptURL + "?" + params.Encode()

	var req *http.Request
	var err error
	if payload == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	} else {
		var body []byte
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s payload: %w", action, err)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", action, err)
	}

	c.logger.Debug().Str("action", action).Msg("Sheet script request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheet script %s failed: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sheet script %s: status %d: %s", action, resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("sheet script %s: malformed response: %w", action, err)
	}

	if !env.Success {
		if strings.Contains(strings.ToLower(env.Error), "not found") {
			return fmt.Errorf("sheet script %s: %s: %w", action, env.Error, models.ErrNotFound)
		}
		return fmt.Errorf("sheet script %s: %s", action, env.Error)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("sheet script %s: malformed data payload: %w", action, err)
		}
	}

	return nil
}

// --- AssetStore ---

// AssetStore returns the asset store backed by the script.
func (c *Client) AssetStore() interfaces.AssetStore {
	return &assetStore{c: c}
}

type assetStore struct {
	c *Client
}

func (s *assetStore) List(ctx context.Context) ([]*models.Asset, error) {
	var assets []*models.Asset
	if err := s.c.call(ctx, "getAssets", nil, &assets); err != nil {
		return nil, err
	}
	// Migrate any legacy JSON-bearing notes into typed metadata.
	for _, a := range assets {
		a.DecodeNotesMetadata()
	}
	return assets, nil
}

// Get fetches the full list and scans; the script has no single-asset read.
func (s *assetStore) Get(ctx context.Context, id string) (*models.Asset, error) {
	assets, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range assets {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("asset %q: %w", id, models.ErrNotFound)
}

// Save upserts: updateAsset first, addAsset when the script reports the
// asset missing.
func (s *assetStore) Save(ctx context.Context, asset *models.Asset) error {
	err := s.c.call(ctx, "updateAsset", asset, nil)
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return s.c.call(ctx, "addAsset", asset, nil)
	}
	return err
}

func (s *assetStore) Delete(ctx context.Context, id string) error {
	return s.c.call(ctx, "deleteAsset", map[string]string{"id": id}, nil)
}

// --- TransactionStore ---

// TransactionStore returns the transaction store backed by the script.
func (c *Client) TransactionStore() interfaces.TransactionStore {
	return &transactionStore{c: c}
}

type transactionStore struct {
	c *Client
}

func (s *transactionStore) List(ctx context.Context) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	if err := s.c.call(ctx, "getTransactions", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *transactionStore) Get(ctx context.Context, id string) (*models.Transaction, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, fmt.Errorf("transaction %q: %w", id, models.ErrNotFound)
}

func (s *transactionStore) ListByAsset(ctx context.Context, assetID string) ([]*models.Transaction, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]*models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.AssetID == assetID {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}

func (s *transactionStore) Save(ctx context.Context, tx *models.Transaction) error {
	return s.c.call(ctx, "addTransaction", tx, nil)
}

func (s *transactionStore) Delete(ctx context.Context, id string) error {
	return s.c.call(ctx, "deleteTransaction", map[string]string{"id": id}, nil)
}

func (s *transactionStore) DeleteByAsset(ctx context.Context, assetID string) (int, error) {
	txs, err := s.ListByAsset(ctx, assetID)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, tx := range txs {
		if err := s.Delete(ctx, tx.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// --- PriceHistoryStore ---

// PriceHistoryStore returns the read-only history store backed by the script.
func (c *Client) PriceHistoryStore() interfaces.PriceHistoryStore {
	return &historyStore{c: c}
}

type historyStore struct {
	c *Client
}

func (s *historyStore) List(ctx context.Context) ([]*models.PricePoint, error) {
	var points []*models.PricePoint
	if err := s.c.call(ctx, "getPriceHistory", nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (s *historyStore) Save(ctx context.Context, point *models.PricePoint) error {
	return ErrReadOnlyHistory
}
