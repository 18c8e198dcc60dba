// Package msqpay queries the MSQ Pay canister and ICRC-1 ledgers through a JSON canister gateway.
//
// Every call is POST {gateway}/api/canister/{canisterID}/query/{method} with a JSON argument.
// Nat values travel as decimal strings, blobs as lower-case hex and principals as text.
package msqpay

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/pkg/config"
	"github.com/fort-major/msq-pay/pkg/eds"
	"github.com/fort-major/msq-pay/pkg/transport"
)

const (
	defaultRetryWaitMin = 100 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
)

var errUnknownStatus = errors.New("unknown invoice status variant")

type Client struct {
	baseURL    string
	canisterID string
	http       *http.Client
}

func NewClient(cfg config.MsqPay) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = defaultRetryWaitMin
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = cfg.RequestTimeout
	retryClient.HTTPClient.Transport = transport.NewLoggingRoundTripper(http.DefaultTransport)

	retryClient.Logger = nil

	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}

		return resp.StatusCode >= http.StatusInternalServerError, nil
	}

	return &Client{
		baseURL:    cfg.GatewayURL,
		canisterID: cfg.CanisterID,
		http:       retryClient.StandardClient(),
	}
}

// CanisterID is the payment canister principal the client talks to.
func (c *Client) CanisterID() string {
	return c.canisterID
}

type GetExchangeRatesRequest struct {
	Timestamp *string `json:"timestamp"`
}

type GetExchangeRatesResponse struct {
	Rates *[][2]string `json:"rates"`
}

// ExchangeRates returns USD rates keyed by ticker, in E8s.
func (c *Client) ExchangeRates(ctx context.Context) (map[string]eds.EDs, error) {
	var resp GetExchangeRatesResponse

	err := c.query(ctx, c.canisterID, "get_exchange_rates", GetExchangeRatesRequest{}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Rates == nil {
		return nil, fmt.Errorf("exchange rates: %w", entity.ErrNotFound)
	}

	rates := make(map[string]eds.EDs, len(*resp.Rates))

	for _, pair := range *resp.Rates {
		rate, err := parseNat(pair[1])
		if err != nil {
			return nil, fmt.Errorf("rate of %s: %w", pair[0], err)
		}

		rates[pair[0]] = eds.E8s(rate)
	}

	return rates, nil
}

type GetInvoiceRequest struct {
	InvoiceID string `json:"invoice_id"`
}

type GetInvoiceResponse struct {
	InvoiceOpt *Invoice `json:"invoice_opt"`
}

type Invoice struct {
	ID                     string                     `json:"id"`
	Status                 map[string]json.RawMessage `json:"status"`
	Creator                string                     `json:"creator"`
	ExchangeRatesTimestamp uint64                     `json:"exchange_rates_timestamp,string"`
	CreatedAt              uint64                     `json:"created_at,string"`
	ShopID                 uint64                     `json:"shop_id,string"`
	QtyUSD                 string                     `json:"qty_usd"`
}

type createdStatus struct {
	TTL uint8 `json:"ttl"`
}

type paidStatus struct {
	Qty          eds.EDs `json:"qty"`
	TokenID      string  `json:"token_id"`
	Timestamp    uint64  `json:"timestamp,string"`
	ExchangeRate eds.EDs `json:"exchange_rate"`
}

// Invoice returns entity.ErrNotFound when the canister has no such invoice.
func (c *Client) Invoice(ctx context.Context, id entity.InvoiceID) (entity.Invoice, error) {
	var resp GetInvoiceResponse

	err := c.query(ctx, c.canisterID, "get_invoice", GetInvoiceRequest{InvoiceID: id.String()}, &resp)
	if err != nil {
		return entity.Invoice{}, err
	}

	if resp.InvoiceOpt == nil {
		return entity.Invoice{}, fmt.Errorf("invoice %s: %w", id, entity.ErrNotFound)
	}

	return toInvoice(*resp.InvoiceOpt)
}

func toInvoice(data Invoice) (entity.Invoice, error) {
	id, err := entity.ParseInvoiceID(data.ID)
	if err != nil {
		return entity.Invoice{}, err
	}

	creator, err := principal.Decode(data.Creator)
	if err != nil {
		return entity.Invoice{}, fmt.Errorf("decode creator: %w", err)
	}

	qty, err := parseNat(data.QtyUSD)
	if err != nil {
		return entity.Invoice{}, fmt.Errorf("qty_usd: %w", err)
	}

	status, err := toStatus(data.Status)
	if err != nil {
		return entity.Invoice{}, err
	}

	return entity.Invoice{
		ID:                     id,
		Status:                 status,
		Creator:                creator,
		ExchangeRatesTimestamp: data.ExchangeRatesTimestamp,
		CreatedAt:              data.CreatedAt,
		ShopID:                 data.ShopID,
		QtyUSD:                 eds.E8s(qty),
	}, nil
}

func toStatus(variant map[string]json.RawMessage) (entity.InvoiceStatus, error) {
	if len(variant) != 1 {
		return nil, fmt.Errorf("%w: %d keys", errUnknownStatus, len(variant))
	}

	if raw, ok := variant["Created"]; ok {
		var s createdStatus

		err := json.Unmarshal(raw, &s)
		if err != nil {
			return nil, fmt.Errorf("decode Created: %w", err)
		}

		return entity.StatusCreated{TTL: s.TTL}, nil
	}

	if _, ok := variant["VerifyPayment"]; ok {
		return entity.StatusVerifyPayment{}, nil
	}

	if raw, ok := variant["Paid"]; ok {
		var s paidStatus

		err := json.Unmarshal(raw, &s)
		if err != nil {
			return nil, fmt.Errorf("decode Paid: %w", err)
		}

		tokenID, err := principal.Decode(s.TokenID)
		if err != nil {
			return nil, fmt.Errorf("decode token_id: %w", err)
		}

		return entity.StatusPaid{
			Qty:          s.Qty,
			TokenID:      tokenID,
			Timestamp:    s.Timestamp,
			ExchangeRate: s.ExchangeRate,
		}, nil
	}

	for k := range variant {
		return nil, fmt.Errorf("%w: %s", errUnknownStatus, k)
	}

	return nil, errUnknownStatus
}

type GetSupportedTokensResponse struct {
	SupportedTokens []Token `json:"supported_tokens"`
}

type Token struct {
	ID        string  `json:"id"`
	Fee       eds.EDs `json:"fee"`
	Ticker    string  `json:"ticker"`
	LogoSrc   string  `json:"logo_src"`
	XRCTicker string  `json:"xrc_ticker"`
}

func (c *Client) SupportedTokens(ctx context.Context) ([]entity.Token, error) {
	var resp GetSupportedTokensResponse

	err := c.query(ctx, c.canisterID, "get_supported_tokens", struct{}{}, &resp)
	if err != nil {
		return nil, err
	}

	tokens := make([]entity.Token, 0, len(resp.SupportedTokens))

	for _, t := range resp.SupportedTokens {
		id, err := principal.Decode(t.ID)
		if err != nil {
			return nil, fmt.Errorf("decode token id %q: %w", t.ID, err)
		}

		tokens = append(tokens, entity.Token{
			ID:        id,
			Fee:       t.Fee,
			Ticker:    t.Ticker,
			LogoSrc:   t.LogoSrc,
			XRCTicker: t.XRCTicker,
		})
	}

	return tokens, nil
}

type GetShopByIDRequest struct {
	ID uint64 `json:"id,string"`
}

type GetShopByIDResponse struct {
	Shop *Shop `json:"shop"`
}

type Shop struct {
	ID          uint64 `json:"id,string"`
	IconBase64  string `json:"icon_base64"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c *Client) ShopByID(ctx context.Context, id uint64) (entity.Shop, error) {
	var resp GetShopByIDResponse

	err := c.query(ctx, c.canisterID, "get_shop_by_id", GetShopByIDRequest{ID: id}, &resp)
	if err != nil {
		return entity.Shop{}, err
	}

	if resp.Shop == nil {
		return entity.Shop{}, fmt.Errorf("shop %d: %w", id, entity.ErrNotFound)
	}

	return entity.Shop(*resp.Shop), nil
}

func (c *Client) ShopSubaccount(ctx context.Context, id uint64) ([]byte, error) {
	var resp string

	err := c.query(ctx, c.canisterID, "get_shop_subaccount", strconv.FormatUint(id, 10), &resp)
	if err != nil {
		return nil, err
	}

	sub, err := hex.DecodeString(resp)
	if err != nil {
		return nil, fmt.Errorf("decode subaccount: %w", err)
	}

	if len(sub) != entity.SubaccountLen {
		return nil, fmt.Errorf("subaccount must be %d bytes, got %d", entity.SubaccountLen, len(sub))
	}

	return sub, nil
}

// MetadataValue is one ICRC-1 metadata variant, exactly one field is set.
type MetadataValue struct {
	Nat  *string `json:"Nat,omitempty"`
	Int  *string `json:"Int,omitempty"`
	Text *string `json:"Text,omitempty"`
	Blob *string `json:"Blob,omitempty"`
}

type metadataEntry struct {
	Key   string
	Value MetadataValue
}

func (m *metadataEntry) UnmarshalJSON(b []byte) error {
	var pair [2]json.RawMessage

	err := json.Unmarshal(b, &pair)
	if err != nil {
		return err
	}

	err = json.Unmarshal(pair[0], &m.Key)
	if err != nil {
		return err
	}

	return json.Unmarshal(pair[1], &m.Value)
}

// AssetMetadata reads icrc1_metadata of any ledger.
func (c *Client) AssetMetadata(ctx context.Context, ledger principal.Principal) (entity.AssetMetadata, error) {
	var resp []metadataEntry

	err := c.query(ctx, ledger.String(), "icrc1_metadata", struct{}{}, &resp)
	if err != nil {
		return entity.AssetMetadata{}, err
	}

	var (
		m                   entity.AssetMetadata
		hasDecimals, hasFee bool
	)

	for _, e := range resp {
		switch e.Key {
		case "icrc1:name":
			m.Name = deref(e.Value.Text)
		case "icrc1:symbol":
			m.Symbol = deref(e.Value.Text)
		case "icrc1:logo":
			m.Logo = deref(e.Value.Text)
		case "icrc1:decimals":
			d, err := strconv.ParseUint(deref(e.Value.Nat), 10, 8)
			if err != nil {
				return entity.AssetMetadata{}, fmt.Errorf("decimals: %w", err)
			}

			m.Decimals, hasDecimals = uint8(d), true
		case "icrc1:fee":
			fee, err := parseNat(deref(e.Value.Nat))
			if err != nil {
				return entity.AssetMetadata{}, fmt.Errorf("fee: %w", err)
			}

			m.Fee, hasFee = fee, true
		}
	}

	if m.Symbol == "" || !hasDecimals || !hasFee {
		return entity.AssetMetadata{}, fmt.Errorf("incomplete metadata of %s", ledger)
	}

	return m, nil
}

func (c *Client) query(ctx context.Context, canisterID, method string, arg, out any) error {
	b, err := json.Marshal(arg)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	reqURL := fmt.Sprintf("%s/api/canister/%s/query/%s", c.baseURL, canisterID, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do %s request: %w", method, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s on %s: %w", method, canisterID, entity.ErrNotFound)
		}

		return fmt.Errorf("%s: unexpected status code: %d, body: %s", method, resp.StatusCode, body)
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	return nil
}

func parseNat(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid nat %q", s)
	}

	return n, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
