package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/internal/flow"
	"github.com/fort-major/msq-pay/internal/request"
	"github.com/fort-major/msq-pay/internal/settlement"
	"github.com/fort-major/msq-pay/pkg/logger"
)

// @title MSQ Pay API
// @version 1.0
// @description Payment page backend: resolves payment requests and drives them to checkout
// @BasePath /api

type Service interface {
	HideEmptyAssets(ctx context.Context, deviceID string) (bool, error)
	SetHideEmptyAssets(ctx context.Context, deviceID string, hide bool) error
	VisibleAssets(ctx context.Context, deviceID string, assets []entity.AssetBalance) ([]entity.AssetBalance, error)
	RecordCheckout(ctx context.Context, c entity.CheckoutSnapshot) (entity.CheckoutSnapshot, error)
	Checkouts(ctx context.Context, f entity.CheckoutFilter) ([]entity.CheckoutSnapshot, error)
}

type Sessions interface {
	Create(ctx context.Context, in request.Inputs) (*flow.Session, error)
	Get(id uuid.UUID) (*flow.Session, error)
	Close(id uuid.UUID)
}

type Settlement interface {
	Current(ctx context.Context, id entity.InvoiceID) (settlement.Display, error)
	Watch(ctx context.Context, id entity.InvoiceID, interval time.Duration) <-chan settlement.Display
}

type Catalog interface {
	FetchShopByID(ctx context.Context, id uint64)
	Shop(id uint64) (entity.Shop, bool)
	SupportedTokens() []entity.Token
}

type Handler struct {
	s            Service
	sessions     Sessions
	settlement   Settlement
	catalog      Catalog
	pollInterval time.Duration
}

func NewHandler(s Service, sessions Sessions, settlement Settlement, catalog Catalog, pollInterval time.Duration) *Handler {
	return &Handler{
		s:            s,
		sessions:     sessions,
		settlement:   settlement,
		catalog:      catalog,
		pollInterval: pollInterval,
	}
}

type RPCMessage struct {
	Route   string          `json:"route"`
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

type CreateSessionRequest struct {
	// Query is the raw query string of the payment page URL.
	Query      string      `json:"query"`
	RPC        *RPCMessage `json:"rpc,omitempty"`
	Referrer   string      `json:"referrer"`
	PageOrigin string      `json:"pageOrigin"`
}

type ShopResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconBase64  string `json:"iconBase64"`
}

type AccountRequest struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Principal string `json:"principal"`
	Balance   string `json:"balance"`
}

type AccountResponse struct {
	AccountRequest
	CanContinue bool `json:"canContinue"`
}

type SessionResponse struct {
	ID              uuid.UUID         `json:"id"`
	Mode            entity.Mode       `json:"mode"`
	State           flow.State        `json:"state"`
	InitiatorOrigin string            `json:"initiatorOrigin"`
	WalletKind      string            `json:"walletKind,omitempty"`
	AssetID         string            `json:"assetId,omitempty"`
	Symbol          string            `json:"symbol,omitempty"`
	Decimals        uint8             `json:"decimals"`
	Amount          *string           `json:"amount"`
	AmountPlusFee   *string           `json:"amountPlusFee"`
	InvoiceID       *entity.InvoiceID `json:"invoiceId,omitempty"`
	Shop            *ShopResponse     `json:"shop,omitempty"`
	Accounts        []AccountResponse `json:"accounts"`
}

// CreateSession resolves a payment request into a payment session
// @Summary Create payment session
// @Description Resolves the page URL query or an ICRC-35 request into a payment intent and starts a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param CreateSessionRequest body CreateSessionRequest true "Payment request"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} ErrorResponse "bad-payment-request"
// @Failure 404 {object} ErrorResponse "invoice-not-found"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateSessionRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid json")
		return
	}

	in, err := inputs(req)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	s, err := h.sessions.Create(ctx, in)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	h.sendSession(logger.WithSessionID(ctx, s.ID()), w, http.StatusCreated, s)
}

func inputs(req CreateSessionRequest) (request.Inputs, error) {
	q, err := url.ParseQuery(req.Query)
	if err != nil {
		return request.Inputs{}, fmt.Errorf("query: %w", entity.ErrBadRequest)
	}

	u, err := request.ParseURL(q)
	if err != nil {
		return request.Inputs{}, err
	}

	in := request.Inputs{
		URL:        u,
		Referrer:   req.Referrer,
		PageOrigin: req.PageOrigin,
	}

	if req.RPC != nil {
		in.RPC, err = request.ParseRPC(req.RPC.Route, req.RPC.Payload, req.RPC.Origin)
		if err != nil {
			return request.Inputs{}, err
		}
	}

	return in, nil
}

// GetSession returns the current state of a payment session
// @Summary Get payment session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse "'id' must be UUID"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /sessions/{id} [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ctx, ok := h.session(w, r)
	if !ok {
		return
	}

	h.sendSession(ctx, w, http.StatusOK, s)
}

// CloseSession drops a payment session
// @Summary Close payment session
// @Tags sessions
// @Param id path string true "Session ID (UUID)"
// @Success 204
// @Failure 400 {object} ErrorResponse "'id' must be UUID"
// @Router /sessions/{id} [delete]
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		SendJSONErr(r.Context(), w, http.StatusBadRequest, err, "'id' must be UUID")
		return
	}

	h.sessions.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

type ConnectWalletRequest struct {
	Kind     string           `json:"kind"`
	Accounts []AccountRequest `json:"accounts"`
}

// ConnectWallet stores the connected wallet and its accounts
// @Summary Connect wallet
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Param ConnectWalletRequest body ConnectWalletRequest true "Wallet"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 409 {object} ErrorResponse "Not allowed in the current state"
// @Router /sessions/{id}/wallet [post]
func (h *Handler) ConnectWallet(w http.ResponseWriter, r *http.Request) {
	s, ctx, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ConnectWalletRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid json")
		return
	}

	if req.Kind == "" {
		SendJSONErr(ctx, w, http.StatusBadRequest, errors.New("empty wallet kind"), "kind is required")
		return
	}

	accounts, err := toAccounts(req.Accounts)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	err = s.ConnectWallet(req.Kind, accounts)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	h.sendSession(ctx, w, http.StatusOK, s)
}

type SelectAssetRequest struct {
	AssetID string `json:"assetId"`
}

// SelectAsset picks the asset to pay with
// @Summary Select asset
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Param SelectAssetRequest body SelectAssetRequest true "Asset"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse "Asset is not accepted"
// @Failure 409 {object} ErrorResponse "Not allowed in the current state"
// @Router /sessions/{id}/asset [post]
func (h *Handler) SelectAsset(w http.ResponseWriter, r *http.Request) {
	s, ctx, ok := h.session(w, r)
	if !ok {
		return
	}

	var req SelectAssetRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid json")
		return
	}

	err = s.SelectAsset(ctx, req.AssetID)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	h.sendSession(ctx, w, http.StatusOK, s)
}

type SetAccountsRequest struct {
	Accounts []AccountRequest `json:"accounts"`
}

// SetAccounts replaces the wallet accounts after a balance refresh
// @Summary Refresh accounts
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Param SetAccountsRequest body SetAccountsRequest true "Accounts"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Router /sessions/{id}/accounts [put]
func (h *Handler) SetAccounts(w http.ResponseWriter, r *http.Request) {
	s, ctx, ok := h.session(w, r)
	if !ok {
		return
	}

	var req SetAccountsRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid json")
		return
	}

	accounts, err := toAccounts(req.Accounts)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	s.SetAccounts(accounts)
	h.sendSession(ctx, w, http.StatusOK, s)
}

type BackResponse struct {
	CloseWindow bool             `json:"closeWindow"`
	Session     *SessionResponse `json:"session,omitempty"`
}

// Back steps the session one state back
// @Summary Step back
// @Description From wallet selection the session is closed and the page must close its window
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Success 200 {object} BackResponse
// @Router /sessions/{id}/back [post]
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	s, ctx, ok := h.session(w, r)
	if !ok {
		return
	}

	err := s.Back()
	if errors.Is(err, entity.ErrWindowClosed) {
		h.sessions.Close(s.ID())
		SendJSON(ctx, w, http.StatusOK, BackResponse{CloseWindow: true})

		return
	}

	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	resp, err := toSessionResponse(s)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	SendJSON(ctx, w, http.StatusOK, BackResponse{Session: &resp})
}

type CheckoutRequest struct {
	AccountID int `json:"accountId"`
}

type CheckoutResponse struct {
	ID                  uuid.UUID         `json:"id"`
	SessionID           uuid.UUID         `json:"sessionId"`
	Mode                entity.Mode       `json:"mode"`
	AccountID           int               `json:"accountId"`
	AccountName         string            `json:"accountName"`
	AccountBalance      string            `json:"accountBalance"`
	AccountPrincipal    string            `json:"accountPrincipal"`
	AssetID             string            `json:"assetId"`
	Symbol              string            `json:"symbol"`
	Decimals            uint8             `json:"decimals"`
	Fee                 string            `json:"fee"`
	PeerOrigin          string            `json:"peerOrigin"`
	Amount              string            `json:"amount"`
	AmountPlusFee       string            `json:"amountPlusFee"`
	RecipientPrincipal  string            `json:"recipientPrincipal"`
	RecipientSubaccount string            `json:"recipientSubaccount,omitempty"`
	Memo                string            `json:"memo,omitempty"`
	CreatedAt           uint64            `json:"createdAt,string"`
	InvoiceID           *entity.InvoiceID `json:"invoiceId,omitempty"`
}

// Checkout hands the session over to the checkout page
// @Summary Continue to checkout
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Param CheckoutRequest body CheckoutRequest true "Paying account"
// @Success 201 {object} CheckoutResponse
// @Failure 400 {object} ErrorResponse "Unknown account"
// @Failure 409 {object} ErrorResponse "Insufficient balance or not ready"
// @Failure 500 {object} ErrorResponse "Failed to store checkout"
// @Router /sessions/{id}/checkout [post]
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	s, ctx, ok := h.session(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid json")
		return
	}

	snap, err := s.Continue(req.AccountID)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	snap, err = h.s.RecordCheckout(ctx, snap)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "failed to store checkout")
		return
	}

	SendJSON(ctx, w, http.StatusCreated, toCheckoutResponse(snap))
}

type ReceiveResponse struct {
	AssetID   string `json:"assetId"`
	Principal string `json:"principal"`
	Symbol    string `json:"symbol"`
}

// Receive describes where to top up an account
// @Summary Receive target
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Param accountId query int true "Account ID"
// @Success 200 {object} ReceiveResponse
// @Failure 400 {object} ErrorResponse "Unknown account"
// @Failure 409 {object} ErrorResponse "No asset selected"
// @Router /sessions/{id}/receive [get]
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	s, ctx, ok := h.session(w, r)
	if !ok {
		return
	}

	accountID, err := strconv.Atoi(r.URL.Query().Get("accountId"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "'accountId' must be a number")
		return
	}

	t, err := s.Receive(accountID)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	SendJSON(ctx, w, http.StatusOK, ReceiveResponse{
		AssetID:   t.AssetID,
		Principal: t.Principal,
		Symbol:    t.Symbol,
	})
}

type SettledResponse struct {
	TokenID      string `json:"tokenId"`
	Qty          string `json:"qty"`
	Timestamp    uint64 `json:"timestamp,string"`
	ExchangeRate string `json:"exchangeRate"`
}

type InvoiceStatusResponse struct {
	InvoiceID entity.InvoiceID `json:"invoiceId"`
	Stage     string           `json:"stage"`
	TTL       uint8            `json:"ttl,omitempty"`
	Urgent    bool             `json:"urgent,omitempty"`
	Paid      *SettledResponse `json:"paid,omitempty"`
}

// InvoiceStatus returns the display state of an invoice
// @Summary Invoice status
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (hex)"
// @Success 200 {object} InvoiceStatusResponse
// @Failure 400 {object} ErrorResponse "bad-payment-request"
// @Failure 404 {object} ErrorResponse "invoice-not-found"
// @Router /invoices/{id}/status [get]
func (h *Handler) InvoiceStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := entity.ParseInvoiceID(chi.URLParam(r, "id"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "bad-payment-request")
		return
	}

	d, err := h.settlement.Current(ctx, id)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	SendJSON(ctx, w, http.StatusOK, toInvoiceStatus(d))
}

// InvoiceEvents streams invoice display states until the invoice is paid
// @Summary Invoice status stream
// @Description Server-sent events, one "status" event per display state change
// @Tags invoices
// @Produce text/event-stream
// @Param id path string true "Invoice ID (hex)"
// @Success 200 {object} InvoiceStatusResponse
// @Failure 400 {object} ErrorResponse "bad-payment-request"
// @Failure 404 {object} ErrorResponse "invoice-not-found"
// @Router /invoices/{id}/events [get]
func (h *Handler) InvoiceEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := entity.ParseInvoiceID(chi.URLParam(r, "id"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "bad-payment-request")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		SendJSONErr(ctx, w, http.StatusInternalServerError, errors.New("response writer can't flush"), "streaming is not supported")
		return
	}

	_, err = h.settlement.Current(ctx, id)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for d := range h.settlement.Watch(ctx, id, h.pollInterval) {
		b, err := json.Marshal(toInvoiceStatus(d))
		if err != nil {
			slog.ErrorContext(ctx, "encode invoice status", "error", err)
			return
		}

		_, err = fmt.Fprintf(w, "event: status\ndata: %s\n\n", b)
		if err != nil {
			slog.WarnContext(ctx, "invoice events client is gone", "error", err)
			return
		}

		flusher.Flush()
	}
}

func toInvoiceStatus(d settlement.Display) InvoiceStatusResponse {
	resp := InvoiceStatusResponse{
		InvoiceID: d.InvoiceID,
		Stage:     d.Stage.String(),
		TTL:       d.TTL,
		Urgent:    d.Urgent,
	}

	if d.Paid != nil {
		resp.Paid = &SettledResponse{
			TokenID:      d.Paid.Token.String(),
			Qty:          d.Paid.Qty.String(),
			Timestamp:    d.Paid.Timestamp,
			ExchangeRate: d.Paid.ExchangeRate.String(),
		}
	}

	return resp
}

// Shop returns public shop information
// @Summary Shop
// @Tags shops
// @Produce json
// @Param id path int true "Shop ID"
// @Success 200 {object} ShopResponse
// @Failure 400 {object} ErrorResponse "'id' must be a number"
// @Failure 404 {object} ErrorResponse "Shop not found"
// @Router /shops/{id} [get]
func (h *Handler) Shop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "'id' must be a number")
		return
	}

	h.catalog.FetchShopByID(ctx, id)

	shop, ok := h.catalog.Shop(id)
	if !ok {
		SendJSONErr(ctx, w, http.StatusNotFound, fmt.Errorf("shop %d: %w", id, entity.ErrNotFound), "shop not found")
		return
	}

	SendJSON(ctx, w, http.StatusOK, toShopResponse(shop))
}

type TokenResponse struct {
	ID        string `json:"id"`
	Ticker    string `json:"ticker"`
	LogoSrc   string `json:"logoSrc"`
	Fee       string `json:"fee"`
	Decimals  uint8  `json:"decimals"`
	XRCTicker string `json:"xrcTicker"`
}

type TokensResponse struct {
	Tokens []TokenResponse `json:"tokens"`
}

// Tokens lists the tokens accepted for invoices
// @Summary Supported tokens
// @Tags tokens
// @Produce json
// @Success 200 {object} TokensResponse
// @Router /tokens [get]
func (h *Handler) Tokens(w http.ResponseWriter, r *http.Request) {
	tokens := h.catalog.SupportedTokens()

	resp := TokensResponse{Tokens: make([]TokenResponse, 0, len(tokens))}

	for _, t := range tokens {
		resp.Tokens = append(resp.Tokens, TokenResponse{
			ID:        t.ID.String(),
			Ticker:    t.Ticker,
			LogoSrc:   t.LogoSrc,
			Fee:       t.Fee.String(),
			Decimals:  t.Decimals(),
			XRCTicker: t.XRCTicker,
		})
	}

	SendJSON(r.Context(), w, http.StatusOK, resp)
}

type HideEmptyAssetsBody struct {
	Hide bool `json:"hide"`
}

// HideEmptyAssets returns the "hide empty assets" toggle of a device
// @Summary Get hide empty assets
// @Tags preferences
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 200 {object} HideEmptyAssetsBody
// @Router /preferences/{deviceId}/hide-empty-assets [get]
func (h *Handler) HideEmptyAssets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hide, err := h.s.HideEmptyAssets(ctx, chi.URLParam(r, "deviceId"))
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	SendJSON(ctx, w, http.StatusOK, HideEmptyAssetsBody{Hide: hide})
}

// SetHideEmptyAssets stores the "hide empty assets" toggle of a device
// @Summary Set hide empty assets
// @Tags preferences
// @Accept json
// @Produce json
// @Param deviceId path string true "Device ID"
// @Param HideEmptyAssetsBody body HideEmptyAssetsBody true "Toggle"
// @Success 200 {object} HideEmptyAssetsBody
// @Router /preferences/{deviceId}/hide-empty-assets [put]
func (h *Handler) SetHideEmptyAssets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req HideEmptyAssetsBody

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid json")
		return
	}

	err = h.s.SetHideEmptyAssets(ctx, chi.URLParam(r, "deviceId"), req.Hide)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	SendJSON(ctx, w, http.StatusOK, req)
}

type AssetBalanceBody struct {
	AssetID      string `json:"assetId"`
	Symbol       string `json:"symbol"`
	TotalBalance string `json:"totalBalance"`
}

type VisibleAssetsBody struct {
	Assets []AssetBalanceBody `json:"assets"`
}

// VisibleAssets filters the wallet assets by the device preferences
// @Summary Visible assets
// @Tags preferences
// @Accept json
// @Produce json
// @Param deviceId path string true "Device ID"
// @Param VisibleAssetsBody body VisibleAssetsBody true "Assets"
// @Success 200 {object} VisibleAssetsBody
// @Router /preferences/{deviceId}/visible-assets [post]
func (h *Handler) VisibleAssets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req VisibleAssetsBody

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid json")
		return
	}

	assets := make([]entity.AssetBalance, 0, len(req.Assets))

	for _, a := range req.Assets {
		balance, err := parseBalance(a.TotalBalance)
		if err != nil {
			sendErr(ctx, w, err)
			return
		}

		assets = append(assets, entity.AssetBalance{AssetID: a.AssetID, Symbol: a.Symbol, TotalBalance: balance})
	}

	visible, err := h.s.VisibleAssets(ctx, chi.URLParam(r, "deviceId"), assets)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	resp := VisibleAssetsBody{Assets: make([]AssetBalanceBody, 0, len(visible))}
	for _, a := range visible {
		resp.Assets = append(resp.Assets, AssetBalanceBody{
			AssetID:      a.AssetID,
			Symbol:       a.Symbol,
			TotalBalance: a.TotalBalance.String(),
		})
	}

	SendJSON(ctx, w, http.StatusOK, resp)
}

type CheckoutsResponse struct {
	Checkouts []CheckoutResponse `json:"checkouts"`
}

// Checkouts lists recorded checkouts
// @Summary Checkout history
// @Tags checkouts
// @Produce json
// @Param invoiceId query string false "Filter by invoice ID (hex)"
// @Param origin query string false "Filter by initiator origin"
// @Param limit query int false "Page size (10 by default)"
// @Param page query int false "Page number (1 by default)"
// @Success 200 {object} CheckoutsResponse
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Router /checkouts [get]
func (h *Handler) Checkouts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseCheckoutFilter(r.URL.Query())
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid filter")
		return
	}

	list, err := h.s.Checkouts(ctx, filter)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "failed to get checkouts")
		return
	}

	resp := CheckoutsResponse{Checkouts: make([]CheckoutResponse, 0, len(list))}
	for _, c := range list {
		resp.Checkouts = append(resp.Checkouts, toCheckoutResponse(c))
	}

	SendJSON(ctx, w, http.StatusOK, resp)
}

func parseCheckoutFilter(q url.Values) (entity.CheckoutFilter, error) {
	const (
		defaultLimit uint64 = 10
		maxLimit     uint64 = 100
		defaultPage  uint64 = 1
	)

	limit, err := strconv.ParseUint(q.Get("limit"), 10, 64)
	if err != nil || limit == 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	page, err := strconv.ParseUint(q.Get("page"), 10, 64)
	if err != nil || page == 0 {
		page = defaultPage
	}

	filter := entity.CheckoutFilter{
		PeerOrigin: q.Get("origin"),
		Limit:      limit,
		Page:       page,
	}

	if s := q.Get("invoiceId"); s != "" {
		id, err := entity.ParseInvoiceID(s)
		if err != nil {
			return entity.CheckoutFilter{}, err
		}

		filter.InvoiceID = &id
	}

	return filter, nil
}

type AccountHistoryRequest struct {
	Txns []entity.TxnExternal `json:"txns"`
}

type TxnResponse struct {
	ID            string `json:"id"`
	Sign          string `json:"sign"`
	TimestampMs   int64  `json:"timestampMs"`
	Amount        string `json:"amount"`
	AccountID     string `json:"accountId,omitempty"`
	PrincipalID   string `json:"principalId,omitempty"`
	SubaccountHex string `json:"subaccount,omitempty"`
	Memo          string `json:"memo,omitempty"`
}

type AccountHistoryResponse struct {
	Txns []TxnResponse `json:"txns"`
}

// AccountHistory turns raw ledger transactions into the transfer history of one account
// @Summary Account history
// @Description Keeps transfers only and resolves the counterparty of each one
// @Tags accounts
// @Accept json
// @Produce json
// @Param account path string true "Account id, or principal:subaccount-hex"
// @Param AccountHistoryRequest body AccountHistoryRequest true "Ledger transactions"
// @Success 200 {object} AccountHistoryResponse
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Router /accounts/{account}/history [post]
func (h *Handler) AccountHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AccountHistoryRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid json")
		return
	}

	txns := entity.ConvertTxns(chi.URLParam(r, "account"), req.Txns)

	resp := AccountHistoryResponse{Txns: make([]TxnResponse, 0, len(txns))}

	for _, t := range txns {
		sign := "-"
		if t.Incoming {
			sign = "+"
		}

		resp.Txns = append(resp.Txns, TxnResponse{
			ID:            t.ID.String(),
			Sign:          sign,
			TimestampMs:   t.TimestampMs,
			Amount:        t.Amount.String(),
			AccountID:     t.Account.AccountID,
			PrincipalID:   t.Account.PrincipalID,
			SubaccountHex: t.Account.SubaccountHex,
			Memo:          t.Memo,
		})
	}

	SendJSON(ctx, w, http.StatusOK, resp)
}

// HealthHandler - returns service health status.
// @Summary Health check
// @Description Health check
// @Tags health
// @Accept text/plain
// @Produce text/plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := w.Write([]byte("OK\n"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "service is unavailable")
		return
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*flow.Session, context.Context, bool) {
	ctx := r.Context()

	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "'id' must be UUID")
		return nil, ctx, false
	}

	ctx = logger.WithSessionID(ctx, id)

	s, err := h.sessions.Get(id)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusNotFound, err, "session not found")
		return nil, ctx, false
	}

	return s, ctx, true
}

func (h *Handler) sendSession(ctx context.Context, w http.ResponseWriter, code int, s *flow.Session) {
	resp, err := toSessionResponse(s)
	if err != nil {
		sendErr(ctx, w, err)
		return
	}

	SendJSON(ctx, w, code, resp)
}

func toSessionResponse(s *flow.Session) (SessionResponse, error) {
	v, err := s.View()
	if err != nil {
		return SessionResponse{}, err
	}

	resp := SessionResponse{
		ID:              v.ID,
		Mode:            v.Mode,
		State:           v.State,
		InitiatorOrigin: v.InitiatorOrigin,
		WalletKind:      v.WalletKind,
		AssetID:         v.AssetID,
		Symbol:          v.Symbol,
		Decimals:        v.Decimals,
		InvoiceID:       v.InvoiceID,
		Accounts:        make([]AccountResponse, 0, len(v.Accounts)),
	}

	if v.Amount != nil {
		amount := v.Amount.String()
		resp.Amount = &amount
	}

	if v.AmountPlusFee != nil {
		total := v.AmountPlusFee.String()
		resp.AmountPlusFee = &total
	}

	if v.Shop != nil {
		shop := toShopResponse(*v.Shop)
		resp.Shop = &shop
	}

	for _, a := range v.Accounts {
		resp.Accounts = append(resp.Accounts, AccountResponse{
			AccountRequest: AccountRequest{
				ID:        a.ID,
				Name:      a.Name,
				Principal: a.Principal,
				Balance:   a.Balance.String(),
			},
			CanContinue: a.CanContinue,
		})
	}

	return resp, nil
}

func toShopResponse(s entity.Shop) ShopResponse {
	return ShopResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		IconBase64:  s.IconBase64,
	}
}

func toCheckoutResponse(c entity.CheckoutSnapshot) CheckoutResponse {
	return CheckoutResponse{
		ID:                  c.ID,
		SessionID:           c.SessionID,
		Mode:                c.Mode,
		AccountID:           c.AccountID,
		AccountName:         c.AccountName,
		AccountBalance:      c.AccountBalance.String(),
		AccountPrincipal:    c.AccountPrincipal,
		AssetID:             c.AssetID,
		Symbol:              c.Symbol,
		Decimals:            c.Decimals,
		Fee:                 c.Fee.String(),
		PeerOrigin:          c.PeerOrigin,
		Amount:              c.Amount.String(),
		AmountPlusFee:       c.AmountPlusFee().String(),
		RecipientPrincipal:  c.RecipientPrincipal,
		RecipientSubaccount: hexOrEmpty(c.RecipientSubaccount),
		Memo:                hexOrEmpty(c.Memo),
		CreatedAt:           c.CreatedAt,
		InvoiceID:           c.InvoiceID,
	}
}

func toAccounts(req []AccountRequest) ([]entity.WalletAccount, error) {
	res := make([]entity.WalletAccount, 0, len(req))

	for _, a := range req {
		balance, err := parseBalance(a.Balance)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", a.ID, err)
		}

		res = append(res, entity.WalletAccount{
			ID:        a.ID,
			Name:      a.Name,
			Principal: a.Principal,
			Balance:   balance,
		})
	}

	return res, nil
}

func parseBalance(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("balance %q: %w", s, entity.ErrInvalidArgument)
	}

	return v, nil
}
