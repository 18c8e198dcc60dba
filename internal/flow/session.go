// Package flow drives one payment page visit through wallet selection, asset selection and
// account selection, and hands a fully resolved snapshot over to checkout.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/gofrs/uuid/v5"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/internal/request"
	"github.com/fort-major/msq-pay/pkg/eds"
)

type State string

const (
	StateWalletSelect  State = "wallet-select"
	StateAssetSelect   State = "asset-select"
	StateAccountSelect State = "account-select"
)

type Store interface {
	FetchInvoice(ctx context.Context, id entity.InvoiceID)
	FetchShopByID(ctx context.Context, id uint64)
	FetchShopSubaccount(ctx context.Context, id uint64)
	FetchAssetMetadata(ctx context.Context, ledger principal.Principal)

	Invoice(id entity.InvoiceID) (entity.Invoice, bool)
	Shop(id uint64) (entity.Shop, bool)
	ShopSubaccount(id uint64) ([]byte, bool)
	ExchangeRate(ticker string) (eds.EDs, bool)
	SupportedToken(id string) (entity.Token, bool)
	AssetMetadata(id string) (entity.AssetMetadata, bool)
}

type Deps struct {
	Store Store
	Memo  request.MemoFunc
	// PayCanister receives every invoice payment.
	PayCanister principal.Principal
	Now         func() time.Time
}

type Session struct {
	id     uuid.UUID
	intent entity.PaymentIntent
	deps   Deps

	mu         sync.Mutex
	state      State
	walletKind string
	assetID    string
	accounts   []entity.WalletAccount
	amount     *eds.EDs
	memo       []byte

	// lastSeen is unix nanoseconds, read without mu by the idle expiry.
	lastSeen atomic.Int64
}

func NewSession(id uuid.UUID, intent entity.PaymentIntent, deps Deps) *Session {
	if deps.Store == nil {
		panic("flow session store is uninitialized")
	}

	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Session{
		id:     id,
		intent: intent,
		deps:   deps,
		state:  StateWalletSelect,
	}
	s.touch()

	return s
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Intent() entity.PaymentIntent {
	return s.intent
}

// Start resolves what the request refers to. An invoice request fetches the invoice first and
// only then its shop and the shop subaccount.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	switch {
	case s.intent.Invoice != nil:
		id := s.intent.Invoice.InvoiceID

		s.deps.Store.FetchInvoice(ctx, id)

		inv, ok := s.deps.Store.Invoice(id)
		if !ok {
			return fmt.Errorf("invoice %s: %w", id, entity.ErrInvoiceNotFound)
		}

		if inv.IsPaid() {
			return fmt.Errorf("invoice %s: %w", id, entity.ErrInvoicePaid)
		}

		s.deps.Store.FetchShopByID(ctx, inv.ShopID)
		s.deps.Store.FetchShopSubaccount(ctx, inv.ShopID)

		if s.deps.Memo != nil {
			s.memo = s.deps.Memo(id)
		}
	case s.intent.Direct != nil:
		s.assetID = s.intent.Direct.CanisterID.String()
		s.deps.Store.FetchAssetMetadata(ctx, s.intent.Direct.CanisterID)
	default:
		return fmt.Errorf("empty payment intent: %w", entity.ErrBadRequest)
	}

	return s.recompute()
}

// ConnectWallet moves to asset selection, or straight to account selection when the request
// already names the asset.
func (s *Session) ConnectWallet(kind string, accounts []entity.WalletAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if s.state != StateWalletSelect {
		return fmt.Errorf("connect wallet in %s: %w", s.state, entity.ErrInvalidTransition)
	}

	s.walletKind = kind
	s.accounts = cloneAccounts(accounts)

	if s.assetID == "" {
		s.state = StateAssetSelect
	} else {
		s.state = StateAccountSelect
	}

	return s.recompute()
}

func (s *Session) SelectAsset(ctx context.Context, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if s.state != StateAssetSelect {
		return fmt.Errorf("select asset in %s: %w", s.state, entity.ErrInvalidTransition)
	}

	ledger, err := principal.Decode(assetID)
	if err != nil {
		return fmt.Errorf("asset id %q: %w", assetID, entity.ErrInvalidArgument)
	}

	if d := s.intent.Direct; d != nil && d.CanisterID.String() != ledger.String() {
		return fmt.Errorf("transfer is bound to %s: %w", d.CanisterID, entity.ErrInvalidArgument)
	}

	if s.intent.Invoice != nil {
		if _, ok := s.deps.Store.SupportedToken(ledger.String()); !ok {
			return fmt.Errorf("asset %s is not supported: %w", ledger, entity.ErrInvalidArgument)
		}
	}

	s.deps.Store.FetchAssetMetadata(ctx, ledger)

	s.assetID = ledger.String()
	s.state = StateAccountSelect

	return s.recompute()
}

// SetAccounts replaces the accounts of the connected wallet, e.g. after a balance refresh.
func (s *Session) SetAccounts(accounts []entity.WalletAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	s.accounts = cloneAccounts(accounts)
}

// Back steps one state back. From wallet selection it returns entity.ErrWindowClosed and the
// caller closes the payment window.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	switch s.state {
	case StateWalletSelect:
		return entity.ErrWindowClosed
	case StateAssetSelect:
		s.state = StateWalletSelect
		s.assetID = ""
		s.amount = nil
	case StateAccountSelect:
		s.state = StateAssetSelect
	}

	return nil
}

// AmountPlusFee is the amount leaving the paying account. ok is false until the amount and the
// asset metadata are known.
func (s *Session) AmountPlusFee() (eds.EDs, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.recompute(); err != nil {
		return eds.EDs{}, false, err
	}

	v, ok := s.amountPlusFee()

	return v, ok, nil
}

// CanContinue reports whether the account holds at least amount plus fee.
func (s *Session) CanContinue(accountID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recompute() != nil {
		return false
	}

	return s.canContinue(accountID)
}

// Continue builds the checkout snapshot for accountID.
func (s *Session) Continue(accountID int) (entity.CheckoutSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if s.state != StateAccountSelect {
		return entity.CheckoutSnapshot{}, fmt.Errorf("continue in %s: %w", s.state, entity.ErrInvalidTransition)
	}

	if err := s.recompute(); err != nil {
		return entity.CheckoutSnapshot{}, err
	}

	acc, ok := s.account(accountID)
	if !ok {
		return entity.CheckoutSnapshot{}, fmt.Errorf("account %d: %w", accountID, entity.ErrInvalidArgument)
	}

	meta, ok := s.deps.Store.AssetMetadata(s.assetID)
	if !ok || s.amount == nil {
		return entity.CheckoutSnapshot{}, fmt.Errorf("amount: %w", entity.ErrNotReady)
	}

	if !s.canContinue(accountID) {
		return entity.CheckoutSnapshot{}, fmt.Errorf("account %d: %w", accountID, entity.ErrInsufficientBalance)
	}

	snap := entity.CheckoutSnapshot{
		SessionID:        s.id,
		Mode:             s.intent.Mode,
		AccountID:        acc.ID,
		AccountName:      acc.Name,
		AccountBalance:   new(big.Int).Set(acc.Balance),
		AccountPrincipal: acc.Principal,
		AssetID:          s.assetID,
		Symbol:           meta.Symbol,
		Decimals:         meta.Decimals,
		Fee:              meta.FeeEDs().Val(),
		PeerOrigin:       s.intent.InitiatorOrigin,
		Amount:           s.amount.Val(),
	}

	switch {
	case s.intent.Direct != nil:
		d := s.intent.Direct

		snap.RecipientPrincipal = d.To.Owner.String()
		snap.RecipientSubaccount = slices.Clone(d.To.Subaccount)
		snap.Memo = slices.Clone(d.Memo)

		if d.CreatedAt != nil {
			snap.CreatedAt = *d.CreatedAt
		} else {
			snap.CreatedAt = s.nowNs()
		}
	default:
		id := s.intent.Invoice.InvoiceID

		inv, ok := s.deps.Store.Invoice(id)
		if !ok {
			return entity.CheckoutSnapshot{}, fmt.Errorf("invoice %s: %w", id, entity.ErrInvoiceNotFound)
		}

		if inv.IsPaid() {
			return entity.CheckoutSnapshot{}, fmt.Errorf("invoice %s: %w", id, entity.ErrInvoicePaid)
		}

		sub, ok := s.deps.Store.ShopSubaccount(inv.ShopID)
		if !ok {
			return entity.CheckoutSnapshot{}, fmt.Errorf("shop %d subaccount: %w", inv.ShopID, entity.ErrNotReady)
		}

		if s.memo == nil {
			return entity.CheckoutSnapshot{}, fmt.Errorf("invoice memo: %w", entity.ErrNotReady)
		}

		snap.RecipientPrincipal = s.deps.PayCanister.String()
		snap.RecipientSubaccount = sub
		snap.Memo = slices.Clone(s.memo)
		snap.CreatedAt = s.nowNs()
		snap.InvoiceID = &id
	}

	slog.Info("checkout started",
		"session_id", s.id,
		"mode", snap.Mode,
		"asset_id", snap.AssetID,
		"amount", snap.Amount.String(),
	)

	return snap, nil
}

// Receive describes where to top up accountID with the selected asset.
func (s *Session) Receive(accountID int) (entity.ReceiveTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	if s.assetID == "" {
		return entity.ReceiveTarget{}, fmt.Errorf("no asset selected: %w", entity.ErrNotReady)
	}

	meta, ok := s.deps.Store.AssetMetadata(s.assetID)
	if !ok {
		return entity.ReceiveTarget{}, fmt.Errorf("asset %s metadata: %w", s.assetID, entity.ErrNotReady)
	}

	acc, ok := s.account(accountID)
	if !ok {
		return entity.ReceiveTarget{}, fmt.Errorf("account %d: %w", accountID, entity.ErrInvalidArgument)
	}

	return entity.ReceiveTarget{
		AssetID:   s.assetID,
		Principal: acc.Principal,
		Symbol:    meta.Symbol,
	}, nil
}

// recompute re-derives the amount from the request, the asset metadata, the invoice and the
// exchange rate. Missing inputs leave the amount undefined. Must be called with mu held.
func (s *Session) recompute() error {
	s.amount = nil

	if s.assetID == "" {
		return nil
	}

	meta, ok := s.deps.Store.AssetMetadata(s.assetID)
	if !ok {
		return nil
	}

	if d := s.intent.Direct; d != nil {
		amount := eds.New(d.Amount, meta.Decimals)
		s.amount = &amount

		return nil
	}

	inv, ok := s.deps.Store.Invoice(s.intent.Invoice.InvoiceID)
	if !ok {
		return nil
	}

	rate, ok := s.deps.Store.ExchangeRate(meta.Symbol)
	if !ok {
		return nil
	}

	amount, err := inv.QtyUSD.ToDecimals(meta.Decimals).Div(rate.ToDecimals(meta.Decimals))
	if err != nil {
		return fmt.Errorf("invoice %s in %s: %w", inv.ID, meta.Symbol, err)
	}

	s.amount = &amount

	return nil
}

func (s *Session) amountPlusFee() (eds.EDs, bool) {
	if s.amount == nil {
		return eds.EDs{}, false
	}

	meta, ok := s.deps.Store.AssetMetadata(s.assetID)
	if !ok {
		return eds.EDs{}, false
	}

	return s.amount.Add(meta.FeeEDs()), true
}

func (s *Session) canContinue(accountID int) bool {
	need, ok := s.amountPlusFee()
	if !ok {
		return false
	}

	acc, ok := s.account(accountID)
	if !ok || acc.Balance == nil {
		return false
	}

	return eds.New(acc.Balance, need.Decimals()).Ge(need)
}

func (s *Session) account(id int) (entity.WalletAccount, bool) {
	for _, acc := range s.accounts {
		if acc.ID == id {
			return acc, true
		}
	}

	return entity.WalletAccount{}, false
}

func (s *Session) nowNs() uint64 {
	return uint64(s.deps.Now().UnixNano())
}

func (s *Session) touch() {
	s.lastSeen.Store(s.deps.Now().UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func cloneAccounts(accounts []entity.WalletAccount) []entity.WalletAccount {
	res := make([]entity.WalletAccount, len(accounts))

	for i, acc := range accounts {
		res[i] = acc
		if acc.Balance != nil {
			res[i].Balance = new(big.Int).Set(acc.Balance)
		}
	}

	return res
}
