// Package request turns the raw payment requests delivered over the URL and over the
// cross-window RPC channel into one entity.PaymentIntent.
package request

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"strconv"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/go-playground/validator/v10"

	"github.com/fort-major/msq-pay/internal/entity"
)

const (
	RouteLogin = "msq:login"
	RoutePay   = "msq:pay"
)

const (
	paramCanisterID   = "canister-id"
	paramToPrincipal  = "to-principal"
	paramToSubaccount = "to-subaccount"
	paramMemo         = "memo"
	paramAmount       = "amount"
	paramInvoiceID    = "invoice-id"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// URLRequests holds what the page query string carries. Either field may be nil.
type URLRequests struct {
	Direct  *entity.DirectTransfer
	Invoice *entity.InvoiceRequest
}

// RPCRequest is a validated request received from the opener window.
// A login request carries neither Direct nor Invoice.
type RPCRequest struct {
	Route      string
	PeerOrigin string
	Direct     *entity.DirectTransfer
	Invoice    *entity.InvoiceRequest
}

// Inputs is everything the normalizer looks at.
type Inputs struct {
	URL        URLRequests
	RPC        *RPCRequest
	Referrer   string
	PageOrigin string
}

// ParseURL reads the direct transfer and the invoice request from the query string.
// A direct transfer is only recognized when canister-id, to-principal and amount are all set.
func ParseURL(q url.Values) (URLRequests, error) {
	var res URLRequests

	if q.Get(paramCanisterID) != "" && q.Get(paramToPrincipal) != "" && q.Get(paramAmount) != "" {
		direct, err := parseDirect(
			q.Get(paramCanisterID),
			q.Get(paramToPrincipal),
			q.Get(paramToSubaccount),
			q.Get(paramMemo),
			q.Get(paramAmount),
			"",
		)
		if err != nil {
			return URLRequests{}, err
		}

		res.Direct = direct
	}

	if raw := q.Get(paramInvoiceID); raw != "" {
		id, err := entity.ParseInvoiceID(raw)
		if err != nil {
			return URLRequests{}, fmt.Errorf("%s: %w", paramInvoiceID, entity.ErrBadRequest)
		}

		res.Invoice = &entity.InvoiceRequest{InvoiceID: id}
	}

	return res, nil
}

type rpcAccount struct {
	Owner      string `json:"owner" validate:"required"`
	Subaccount string `json:"subaccount" validate:"omitempty,hexadecimal,len=64"`
}

type rpcTransfer struct {
	CanisterID string      `json:"canisterId" validate:"required"`
	To         *rpcAccount `json:"to" validate:"required"`
	Memo       string      `json:"memo" validate:"omitempty,hexadecimal,max=64"`
	Amount     string      `json:"amount" validate:"required,number"`
	CreatedAt  string      `json:"createdAt" validate:"omitempty,number"`
}

type rpcInvoice struct {
	InvoiceID string `json:"invoiceId" validate:"required,hexadecimal,len=64"`
}

// ParseRPC validates a payload received on route from peerOrigin.
// Login payloads must be empty. Pay payloads are either an ICRC-1 transfer or an invoice reference.
func ParseRPC(route string, payload json.RawMessage, peerOrigin string) (*RPCRequest, error) {
	req := &RPCRequest{Route: route, PeerOrigin: peerOrigin}

	switch route {
	case RouteLogin:
		if !isEmptyPayload(payload) {
			return nil, fmt.Errorf("login payload must be empty: %w", entity.ErrBadRequest)
		}

		return req, nil
	case RoutePay:
	default:
		return nil, fmt.Errorf("unknown route %q: %w", route, entity.ErrBadRequest)
	}

	if isEmptyPayload(payload) {
		return nil, fmt.Errorf("empty pay payload: %w", entity.ErrBadRequest)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse pay payload: %w", entity.ErrBadRequest)
	}

	if _, ok := fields["invoiceId"]; ok {
		var inv rpcInvoice
		if err := decodeAndValidate(payload, &inv); err != nil {
			return nil, err
		}

		id, err := entity.ParseInvoiceID(inv.InvoiceID)
		if err != nil {
			return nil, fmt.Errorf("invoiceId: %w", entity.ErrBadRequest)
		}

		req.Invoice = &entity.InvoiceRequest{InvoiceID: id}

		return req, nil
	}

	var tr rpcTransfer
	if err := decodeAndValidate(payload, &tr); err != nil {
		return nil, err
	}

	direct, err := parseDirect(tr.CanisterID, tr.To.Owner, tr.To.Subaccount, tr.Memo, tr.Amount, tr.CreatedAt)
	if err != nil {
		return nil, err
	}

	req.Direct = direct

	return req, nil
}

func decodeAndValidate(payload json.RawMessage, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to parse pay payload: %w", entity.ErrBadRequest)
	}

	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation failed: %v: %w", err, entity.ErrBadRequest)
	}

	return nil
}

func isEmptyPayload(payload json.RawMessage) bool {
	s := string(payload)
	return s == "" || s == "null"
}

func parseDirect(canisterID, toPrincipal, toSubaccount, memo, amount, createdAt string) (*entity.DirectTransfer, error) {
	canister, err := principal.Decode(canisterID)
	if err != nil {
		return nil, fmt.Errorf("canister id: %w", entity.ErrBadRequest)
	}

	owner, err := principal.Decode(toPrincipal)
	if err != nil {
		return nil, fmt.Errorf("recipient principal: %w", entity.ErrBadRequest)
	}

	res := &entity.DirectTransfer{
		CanisterID: canister,
		To:         entity.Account{Owner: owner},
	}

	if toSubaccount != "" {
		sub, err := hex.DecodeString(toSubaccount)
		if err != nil || len(sub) != entity.SubaccountLen {
			return nil, fmt.Errorf("recipient subaccount: %w", entity.ErrBadRequest)
		}

		res.To.Subaccount = sub
	}

	if memo != "" {
		res.Memo, err = hex.DecodeString(memo)
		if err != nil || len(res.Memo) > entity.MaxMemoLen {
			return nil, fmt.Errorf("memo: %w", entity.ErrBadRequest)
		}
	}

	qty, ok := new(big.Int).SetString(amount, 10)
	if !ok || qty.Sign() < 0 {
		return nil, fmt.Errorf("amount: %w", entity.ErrBadRequest)
	}

	res.Amount = qty

	if createdAt != "" {
		ts, err := strconv.ParseUint(createdAt, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("created at: %w", entity.ErrBadRequest)
		}

		res.CreatedAt = &ts
	}

	return res, nil
}

// Mode picks the mode by fixed priority: URL invoice, URL direct, RPC invoice, RPC direct.
// ok is false when no request is present.
func Mode(in Inputs) (entity.Mode, bool) {
	switch {
	case in.URL.Invoice != nil:
		return entity.ModeURLInvoice, true
	case in.URL.Direct != nil:
		return entity.ModeURLDirect, true
	case in.RPC != nil && in.RPC.Invoice != nil:
		return entity.ModeRPCInvoice, true
	case in.RPC != nil && in.RPC.Direct != nil:
		return entity.ModeRPCDirect, true
	}

	return "", false
}

// Normalize resolves the inputs into a single intent.
//
// The mode priority decides whether the intent is a direct transfer or an invoice payment.
// Inside that kind the RPC request wins over the URL one, and the returned mode names the
// transport that actually delivered the request.
func Normalize(in Inputs) (entity.PaymentIntent, error) {
	mode, ok := Mode(in)
	if !ok {
		return entity.PaymentIntent{}, fmt.Errorf("no payment request: %w", entity.ErrBadRequest)
	}

	var intent entity.PaymentIntent

	if mode.IsInvoice() {
		switch {
		case in.RPC != nil && in.RPC.Invoice != nil:
			intent = entity.PaymentIntent{Mode: entity.ModeRPCInvoice, Invoice: in.RPC.Invoice}
		default:
			intent = entity.PaymentIntent{Mode: entity.ModeURLInvoice, Invoice: in.URL.Invoice}
		}
	} else {
		switch {
		case in.RPC != nil && in.RPC.Direct != nil:
			intent = entity.PaymentIntent{Mode: entity.ModeRPCDirect, Direct: in.RPC.Direct}
		default:
			intent = entity.PaymentIntent{Mode: entity.ModeURLDirect, Direct: in.URL.Direct}
		}
	}

	if !isValid(intent) {
		return entity.PaymentIntent{}, fmt.Errorf("incomplete payment request: %w", entity.ErrBadRequest)
	}

	intent.InitiatorOrigin = initiatorOrigin(intent.Mode, in)

	return intent, nil
}

func isValid(intent entity.PaymentIntent) bool {
	if d := intent.Direct; d != nil {
		return len(d.CanisterID.Raw) > 0 && len(d.To.Owner.Raw) > 0 && d.Amount != nil
	}

	return intent.Invoice != nil
}

func initiatorOrigin(mode entity.Mode, in Inputs) string {
	if mode.IsRPC() {
		return in.RPC.PeerOrigin
	}

	if in.Referrer != "" {
		if u, err := url.Parse(in.Referrer); err == nil && u.Scheme != "" && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
	}

	return in.PageOrigin
}
