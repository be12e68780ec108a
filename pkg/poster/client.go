package poster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bildin8/postergram-juice-sub000/pkg/config"
	pkgerrors "github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

const dateLayout = "20060102"

var (
	errBaseURLRequired     = errors.New("poster base url is required")
	errAccessTokenRequired = errors.New("poster access token is required")
	errLoggerRequired      = errors.New("poster logger is required")
)

// Client wraps the POS platform HTTP API with centralized auth, timeouts, and
// error mapping. All quantity fields arrive as JSON numbers or numeric strings;
// decoding normalizes them to decimals.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *logger.Logger
}

// NewClient initializes the POS wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.PosterConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: accessToken,
		logger:      logg,
	}

	logg.Info(ctx, "poster client initialized")
	return c, nil
}

// GetTransactions returns the closed transactions for the inclusive date range.
func (c *Client) GetTransactions(ctx context.Context, dateFrom, dateTo time.Time) ([]Transaction, error) {
	params := url.Values{}
	params.Set("date_from", dateFrom.Format(dateLayout))
	params.Set("date_to", dateTo.Format(dateLayout))

	var payload struct {
		Response []Transaction `json:"response"`
	}
	if err := c.get(ctx, "/api/dash.getTransactions", params, &payload); err != nil {
		return nil, err
	}
	return payload.Response, nil
}

// GetTransactionLines returns the sold line items, with their selected-modifier
// names, for one transaction.
func (c *Client) GetTransactionLines(ctx context.Context, transactionID string) ([]TransactionLine, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	params := url.Values{}
	params.Set("transaction_id", transactionID)

	var payload struct {
		Response []TransactionLine `json:"response"`
	}
	if err := c.get(ctx, "/api/dash.getTransactionProducts", params, &payload); err != nil {
		return nil, err
	}
	for i := range payload.Response {
		payload.Response[i].TransactionID = transactionID
		payload.Response[i].LineIndex = i
	}
	return payload.Response, nil
}

// GetIngredientMovements returns per-ingredient stock movement totals for the
// inclusive date range.
func (c *Client) GetIngredientMovements(ctx context.Context, dateFrom, dateTo time.Time) ([]IngredientMovement, error) {
	params := url.Values{}
	params.Set("date_from", dateFrom.Format(dateLayout))
	params.Set("date_to", dateTo.Format(dateLayout))

	var payload struct {
		Response []IngredientMovement `json:"response"`
	}
	if err := c.get(ctx, "/api/storage.getReportMovement", params, &payload); err != nil {
		return nil, err
	}
	return payload.Response, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest any) error {
	params.Set("token", c.accessToken)
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building pos request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pos request failed")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.New(pkgerrors.CodeDependency, "pos returned non-200").
			WithDetails(map[string]any{"status": resp.StatusCode, "path": path})
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding pos response")
	}
	return nil
}
