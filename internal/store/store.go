// Package store caches what the payment page needs from the MSQ Pay canister:
// invoices, shops, shop subaccounts, supported tokens, USD exchange rates and ledger metadata.
//
// Fetches are idempotent per key and at most one fetch per key is in flight.
// A failed fetch is logged and leaves the cache as it was, so callers only ever
// observe a value or its absence.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aviate-labs/agent-go/principal"
	"golang.org/x/sync/singleflight"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/pkg/eds"
	"github.com/fort-major/msq-pay/pkg/job"
	"github.com/fort-major/msq-pay/pkg/metrics"
)

//go:generate go run go.uber.org/mock/mockgen@latest -source=store.go -destination=../mocks/store.go -package=mocks -typed

type Canister interface {
	ExchangeRates(ctx context.Context) (map[string]eds.EDs, error)
	Invoice(ctx context.Context, id entity.InvoiceID) (entity.Invoice, error)
	SupportedTokens(ctx context.Context) ([]entity.Token, error)
	ShopByID(ctx context.Context, id uint64) (entity.Shop, error)
	ShopSubaccount(ctx context.Context, id uint64) ([]byte, error)
	AssetMetadata(ctx context.Context, ledger principal.Principal) (entity.AssetMetadata, error)
}

type Store struct {
	canister Canister
	rec      metrics.Recorder
	l        *slog.Logger

	mu          sync.RWMutex
	invoices    map[entity.InvoiceID]entity.Invoice
	shops       map[uint64]entity.Shop
	subaccounts map[uint64][]byte
	rates       map[string]eds.EDs
	tokens      map[string]entity.Token
	metadata    map[string]entity.AssetMetadata

	inflight singleflight.Group

	refreshOnce sync.Once
	jobs        *job.Service
}

func New(canister Canister, rec metrics.Recorder) *Store {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	return &Store{
		canister:    canister,
		rec:         rec,
		l:           slog.Default().With("component", "msq-pay-store"),
		invoices:    make(map[entity.InvoiceID]entity.Invoice),
		shops:       make(map[uint64]entity.Shop),
		subaccounts: make(map[uint64][]byte),
		rates:       make(map[string]eds.EDs),
		tokens:      make(map[string]entity.Token),
		metadata:    make(map[string]entity.AssetMetadata),
		jobs:        job.NewService(),
	}
}

func (s *Store) mustInit() {
	if s == nil || s.canister == nil {
		panic("msq pay store is uninitialized")
	}
}

// StartRefresh refreshes exchange rates and supported tokens right away and then every interval.
// Only the first call starts the refresh. It runs until ctx is done or Stop is called.
func (s *Store) StartRefresh(ctx context.Context, interval time.Duration) {
	s.mustInit()

	s.refreshOnce.Do(func() {
		s.jobs.
			RegisterJob("refresh msq pay exchange rates", interval, s.FetchMsqUsdExchangeRates).
			RegisterJob("refresh msq pay supported tokens", interval, s.FetchSupportedTokens).
			Start(ctx)
	})
}

func (s *Store) Stop() {
	s.jobs.Stop()
}

// FetchInvoice queries the canister only when the invoice is not cached yet.
func (s *Store) FetchInvoice(ctx context.Context, id entity.InvoiceID) {
	s.mustInit()

	if _, ok := s.Invoice(id); ok {
		return
	}

	s.RefreshInvoice(ctx, id)
}

// RefreshInvoice always queries the canister. A regression from Paid is dropped.
func (s *Store) RefreshInvoice(ctx context.Context, id entity.InvoiceID) {
	s.mustInit()

	s.fetch(ctx, "get_invoice", "invoice:"+id.String(), func(ctx context.Context) error {
		inv, err := s.canister.Invoice(ctx, id)
		if err != nil {
			return err
		}

		return s.putInvoice(id, inv)
	})
}

// putInvoice writes only under the requested id.
func (s *Store) putInvoice(id entity.InvoiceID, inv entity.Invoice) error {
	if inv.ID != id {
		return fmt.Errorf("invoice %s answered with %s: %w", id, inv.ID, entity.ErrInvalidArgument)
	}

	if inv.Status == nil {
		return fmt.Errorf("invoice %s has no status: %w", inv.ID, entity.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.invoices[inv.ID]
	if ok && !entity.CanReplace(cur.Status, inv.Status) {
		return fmt.Errorf("invoice %s from %s to %s: %w", inv.ID, cur.Status.Stage(), inv.Status.Stage(), entity.ErrStatusRegression)
	}

	s.invoices[inv.ID] = inv

	return nil
}

func (s *Store) FetchShopByID(ctx context.Context, id uint64) {
	s.mustInit()

	if _, ok := s.Shop(id); ok {
		return
	}

	s.fetch(ctx, "get_shop_by_id", "shop:"+strconv.FormatUint(id, 10), func(ctx context.Context) error {
		shop, err := s.canister.ShopByID(ctx, id)
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.shops[id] = shop
		s.mu.Unlock()

		return nil
	})
}

func (s *Store) FetchShopSubaccount(ctx context.Context, id uint64) {
	s.mustInit()

	if _, ok := s.ShopSubaccount(id); ok {
		return
	}

	s.fetch(ctx, "get_shop_subaccount", "subaccount:"+strconv.FormatUint(id, 10), func(ctx context.Context) error {
		sub, err := s.canister.ShopSubaccount(ctx, id)
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.subaccounts[id] = slices.Clone(sub)
		s.mu.Unlock()

		return nil
	})
}

// FetchAssetMetadata reads ledger metadata for any asset, supported by MSQ Pay or not.
func (s *Store) FetchAssetMetadata(ctx context.Context, ledger principal.Principal) {
	s.mustInit()

	key := ledger.String()

	if _, ok := s.AssetMetadata(key); ok {
		return
	}

	s.fetch(ctx, "icrc1_metadata", "metadata:"+key, func(ctx context.Context) error {
		m, err := s.canister.AssetMetadata(ctx, ledger)
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.metadata[key] = m
		s.mu.Unlock()

		return nil
	})
}

// FetchMsqUsdExchangeRates merges the current rates into the cache. Tickers missing from
// the response keep their previous rate.
func (s *Store) FetchMsqUsdExchangeRates(ctx context.Context) error {
	s.mustInit()

	return s.fetchBulk(ctx, "get_exchange_rates", func(ctx context.Context) error {
		rates, err := s.canister.ExchangeRates(ctx)
		if err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		for ticker, rate := range rates {
			s.rates[ticker] = rate
		}

		return nil
	})
}

func (s *Store) FetchSupportedTokens(ctx context.Context) error {
	s.mustInit()

	return s.fetchBulk(ctx, "get_supported_tokens", func(ctx context.Context) error {
		tokens, err := s.canister.SupportedTokens(ctx)
		if err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		for _, t := range tokens {
			s.tokens[t.ID.String()] = t
		}

		return nil
	})
}

func (s *Store) fetch(ctx context.Context, method, key string, fn func(ctx context.Context) error) {
	_, _, _ = s.inflight.Do(key, func() (any, error) {
		err := s.observe(ctx, method, fn)
		if err != nil {
			s.logFailure(ctx, method, key, err)
		}

		return nil, err
	})
}

func (s *Store) fetchBulk(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	err := s.observe(ctx, method, fn)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	return nil
}

func (s *Store) observe(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := fn(ctx)

	s.rec.ObserveLatency("fetch", time.Since(start), map[string]string{"method": method})

	outcome := "ok"

	switch {
	case errors.Is(err, entity.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, entity.ErrStatusRegression):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	}

	s.rec.IncCounter("fetch", map[string]string{"method": method, "outcome": outcome})

	return err
}

func (s *Store) logFailure(ctx context.Context, method, key string, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		s.l.WarnContext(ctx, "not found", "method", method, "key", key)
	case errors.Is(err, entity.ErrStatusRegression):
		s.l.ErrorContext(ctx, "stale invoice status dropped", "key", key, "error", err)
	default:
		s.l.ErrorContext(ctx, "fetch failed", "method", method, "key", key, "error", err)
	}
}

func (s *Store) Invoice(id entity.InvoiceID) (entity.Invoice, bool) {
	s.mustInit()

	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]

	return inv, ok
}

func (s *Store) Shop(id uint64) (entity.Shop, bool) {
	s.mustInit()

	s.mu.RLock()
	defer s.mu.RUnlock()

	shop, ok := s.shops[id]

	return shop, ok
}

func (s *Store) ShopSubaccount(id uint64) ([]byte, bool) {
	s.mustInit()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subaccounts[id]

	return slices.Clone(sub), ok
}

// ExchangeRate is the USD price of one unit of ticker, in E8s.
func (s *Store) ExchangeRate(ticker string) (eds.EDs, bool) {
	s.mustInit()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rate, ok := s.rates[ticker]

	return rate, ok
}

func (s *Store) SupportedToken(id string) (entity.Token, bool) {
	s.mustInit()

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[id]

	return t, ok
}

// SupportedTokens is ordered by ticker.
func (s *Store) SupportedTokens() []entity.Token {
	s.mustInit()

	s.mu.RLock()
	res := make([]entity.Token, 0, len(s.tokens))

	for _, t := range s.tokens {
		res = append(res, t)
	}
	s.mu.RUnlock()

	slices.SortFunc(res, func(a, b entity.Token) int {
		if a.Ticker == b.Ticker {
			return strings.Compare(a.ID.String(), b.ID.String())
		}

		return strings.Compare(a.Ticker, b.Ticker)
	})

	return res
}

func (s *Store) AssetMetadata(id string) (entity.AssetMetadata, bool) {
	s.mustInit()

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.metadata[id]

	return m, ok
}
