package flow_test

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/internal/flow"
	"github.com/fort-major/msq-pay/internal/mocks"
	"github.com/fort-major/msq-pay/internal/request"
	"github.com/fort-major/msq-pay/internal/store"
	"github.com/fort-major/msq-pay/pkg/eds"
)

var (
	payCanister = principal.MustDecode("prlga-2iaaa-aaaak-akp4a-cai")
	icpLedger   = principal.MustDecode("ryjl3-tyaaa-aaaaa-aaaba-cai")
	ckbtcLedger = principal.MustDecode("mxzaz-hqaaa-aaaar-qaada-cai")
	shopOwner   = principal.MustDecode("2vxsx-fae")

	invoiceID = entity.InvoiceID{0xaa, 0xbb}
	shopSub   = append([]byte{7}, make([]byte, entity.SubaccountLen-1)...)
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type fixture struct {
	store    *store.Store
	canister *mocks.MockCanister
	clock    *clock
	deps     flow.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	canister := mocks.NewMockCanister(gomock.NewController(t))
	c := &clock{now: time.Unix(1700000000, 0)}
	s := store.New(canister, nil)

	return &fixture{
		store:    s,
		canister: canister,
		clock:    c,
		deps: flow.Deps{
			Store:       s,
			Memo:        request.InvoiceMemo([]byte("memo")),
			PayCanister: payCanister,
			Now:         c.Now,
		},
	}
}

func (f *fixture) withInvoice(qtyUSD uint64) {
	f.canister.EXPECT().Invoice(gomock.Any(), invoiceID).Return(entity.Invoice{
		ID:     invoiceID,
		Status: entity.StatusCreated{TTL: 10},
		ShopID: 42,
		QtyUSD: eds.FromUint64(qtyUSD, 8),
	}, nil).AnyTimes()
	f.canister.EXPECT().ShopByID(gomock.Any(), uint64(42)).Return(entity.Shop{ID: 42, Name: "Shop"}, nil).AnyTimes()
	f.canister.EXPECT().ShopSubaccount(gomock.Any(), uint64(42)).Return(shopSub, nil).AnyTimes()
}

func (f *fixture) withICP(t *testing.T, rate uint64) {
	t.Helper()

	f.canister.EXPECT().AssetMetadata(gomock.Any(), icpLedger).
		Return(entity.AssetMetadata{Name: "Internet Computer", Symbol: "ICP", Decimals: 8, Fee: big.NewInt(10000)}, nil).
		AnyTimes()
	f.canister.EXPECT().SupportedTokens(gomock.Any()).
		Return([]entity.Token{{ID: icpLedger, Ticker: "ICP", Fee: eds.FromUint64(10000, 8)}}, nil)
	f.canister.EXPECT().ExchangeRates(gomock.Any()).
		Return(map[string]eds.EDs{"ICP": eds.FromUint64(rate, 8)}, nil)

	require.NoError(t, f.store.FetchSupportedTokens(context.Background()))
	require.NoError(t, f.store.FetchMsqUsdExchangeRates(context.Background()))
}

func accounts(balances ...int64) []entity.WalletAccount {
	res := make([]entity.WalletAccount, 0, len(balances))

	for i, b := range balances {
		res = append(res, entity.WalletAccount{
			ID:        i,
			Name:      "Account",
			Principal: shopOwner.String(),
			Balance:   big.NewInt(b),
		})
	}

	return res
}

func invoiceSession(f *fixture) *flow.Session {
	return flow.NewSession(
		[16]byte{1},
		entity.PaymentIntent{
			Mode:            entity.ModeURLInvoice,
			InitiatorOrigin: "https://shop.example",
			Invoice:         &entity.InvoiceRequest{InvoiceID: invoiceID},
		},
		f.deps,
	)
}

func directSession(f *fixture, createdAt *uint64) *flow.Session {
	return flow.NewSession(
		[16]byte{2},
		entity.PaymentIntent{
			Mode:            entity.ModeRPCDirect,
			InitiatorOrigin: "https://peer.example",
			Direct: &entity.DirectTransfer{
				CanisterID: icpLedger,
				To:         entity.Account{Owner: shopOwner, Subaccount: shopSub},
				Memo:       []byte{1, 2},
				Amount:     big.NewInt(150000000),
				CreatedAt:  createdAt,
			},
		},
		f.deps,
	)
}

func TestSession_InvoiceFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withInvoice(500000000)
	f.withICP(t, 1000000000)

	s := invoiceSession(f)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.ConnectWallet("msq", nil))

	v, err := s.View()
	require.NoError(t, err)
	require.Equal(t, flow.StateAssetSelect, v.State)
	require.Nil(t, v.Amount)
	require.NotNil(t, v.Shop)
	require.Equal(t, "Shop", v.Shop.Name)

	require.NoError(t, s.SelectAsset(ctx, icpLedger.String()))
	s.SetAccounts(accounts(50010000, 50009999))

	total, ok, err := s.AmountPlusFee()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0.5001", total.String())

	require.True(t, s.CanContinue(0))
	require.False(t, s.CanContinue(1))

	_, err = s.Continue(1)
	require.ErrorIs(t, err, entity.ErrInsufficientBalance)

	snap, err := s.Continue(0)
	require.NoError(t, err)
	require.Equal(t, entity.ModeURLInvoice, snap.Mode)
	require.Equal(t, "50000000", snap.Amount.String())
	require.Equal(t, "10000", snap.Fee.String())
	require.Equal(t, "ICP", snap.Symbol)
	require.Equal(t, uint8(8), snap.Decimals)
	require.Equal(t, payCanister.String(), snap.RecipientPrincipal)
	require.Equal(t, shopSub, snap.RecipientSubaccount)
	require.Equal(t, request.InvoiceMemo([]byte("memo"))(invoiceID), snap.Memo)
	require.Equal(t, uint64(f.clock.Now().UnixNano()), snap.CreatedAt)
	require.Equal(t, "https://shop.example", snap.PeerOrigin)
	require.Equal(t, "50010000", snap.AccountBalance.String())
	require.NotNil(t, snap.InvoiceID)
	require.Equal(t, invoiceID, *snap.InvoiceID)
	require.Equal(t, "0.5001", snap.AmountPlusFee().String())
}

func TestSession_DirectFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withICP(t, 1000000000)

	createdAt := uint64(123)
	s := directSession(f, &createdAt)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.ConnectWallet("msq", accounts(200000000)))

	v, err := s.View()
	require.NoError(t, err)
	require.Equal(t, flow.StateAccountSelect, v.State)
	require.Equal(t, icpLedger.String(), v.AssetID)
	require.Equal(t, "1.5", v.Amount.String())
	require.Equal(t, "1.5001", v.AmountPlusFee.String())
	require.Len(t, v.Accounts, 1)
	require.True(t, v.Accounts[0].CanContinue)

	snap, err := s.Continue(0)
	require.NoError(t, err)
	require.Equal(t, shopOwner.String(), snap.RecipientPrincipal)
	require.Equal(t, shopSub, snap.RecipientSubaccount)
	require.Equal(t, []byte{1, 2}, snap.Memo)
	require.Equal(t, uint64(123), snap.CreatedAt)
	require.Nil(t, snap.InvoiceID)
}

func TestSession_DirectWithoutCreatedAt(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withICP(t, 1000000000)

	s := directSession(f, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.ConnectWallet("msq", accounts(200000000)))

	snap, err := s.Continue(0)
	require.NoError(t, err)
	require.Equal(t, uint64(f.clock.Now().UnixNano()), snap.CreatedAt)
}

func TestSession_Back(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withICP(t, 1000000000)

	s := directSession(f, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.ConnectWallet("msq", accounts(1)))

	require.NoError(t, s.Back())

	v, err := s.View()
	require.NoError(t, err)
	require.Equal(t, flow.StateAssetSelect, v.State)
	require.Equal(t, icpLedger.String(), v.AssetID)

	require.NoError(t, s.Back())

	v, err = s.View()
	require.NoError(t, err)
	require.Equal(t, flow.StateWalletSelect, v.State)
	require.Empty(t, v.AssetID)
	require.Nil(t, v.Amount)

	require.ErrorIs(t, s.Back(), entity.ErrWindowClosed)

	// the asset was cleared, so the wallet now leads to asset selection
	require.NoError(t, s.ConnectWallet("msq", accounts(1)))

	v, err = s.View()
	require.NoError(t, err)
	require.Equal(t, flow.StateAssetSelect, v.State)
}

func TestSession_ContinuationGate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withICP(t, 1000000000)

	s := directSession(f, nil)

	require.NoError(t, s.Start(context.Background()))

	// amount plus fee is 150010000
	balances := []int64{0, 1, 150000000, 150009999, 150010000, 150010001, 1 << 40}
	want := []bool{false, false, false, false, true, true, true}

	require.NoError(t, s.ConnectWallet("msq", accounts(balances...)))

	for i := range balances {
		require.Equal(t, want[i], s.CanContinue(i), "balance %d", balances[i])
	}

	require.False(t, s.CanContinue(len(balances)))
}

func TestSession_NotReady(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withInvoice(500000000)

	f.canister.EXPECT().AssetMetadata(gomock.Any(), ckbtcLedger).
		Return(entity.AssetMetadata{Symbol: "ckBTC", Decimals: 8, Fee: big.NewInt(10)}, nil)
	f.canister.EXPECT().SupportedTokens(gomock.Any()).
		Return([]entity.Token{{ID: ckbtcLedger, Ticker: "ckBTC", Fee: eds.FromUint64(10, 8)}}, nil)
	require.NoError(t, f.store.FetchSupportedTokens(context.Background()))

	s := invoiceSession(f)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.ConnectWallet("msq", accounts(1<<50)))
	require.NoError(t, s.SelectAsset(ctx, ckbtcLedger.String()))

	_, ok, err := s.AmountPlusFee()
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, s.CanContinue(0))

	_, err = s.Continue(0)
	require.ErrorIs(t, err, entity.ErrNotReady)

	target, err := s.Receive(0)
	require.NoError(t, err)
	require.Equal(t, entity.ReceiveTarget{AssetID: ckbtcLedger.String(), Principal: shopOwner.String(), Symbol: "ckBTC"}, target)
}

func TestSession_ZeroRate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withInvoice(500000000)
	f.withICP(t, 0)

	s := invoiceSession(f)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.ConnectWallet("msq", accounts(1)))
	require.ErrorIs(t, s.SelectAsset(ctx, icpLedger.String()), eds.ErrDivisionByZero)
}

func TestSession_InvalidTransitions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withInvoice(500000000)
	f.withICP(t, 1000000000)

	s := invoiceSession(f)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))

	require.ErrorIs(t, s.SelectAsset(ctx, icpLedger.String()), entity.ErrInvalidTransition)

	_, err := s.Continue(0)
	require.ErrorIs(t, err, entity.ErrInvalidTransition)

	_, err = s.Receive(0)
	require.ErrorIs(t, err, entity.ErrNotReady)

	require.NoError(t, s.ConnectWallet("msq", accounts(1)))
	require.ErrorIs(t, s.ConnectWallet("msq", accounts(1)), entity.ErrInvalidTransition)

	require.ErrorIs(t, s.SelectAsset(ctx, "not_a_principal!"), entity.ErrInvalidArgument)
	require.ErrorIs(t, s.SelectAsset(ctx, ckbtcLedger.String()), entity.ErrInvalidArgument)

	require.NoError(t, s.SelectAsset(ctx, icpLedger.String()))

	_, err = s.Continue(5)
	require.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestSession_InvoiceNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.canister.EXPECT().Invoice(gomock.Any(), entity.InvoiceID{}).Return(entity.Invoice{}, entity.ErrNotFound)

	m := flow.NewManager(f.deps, time.Minute)

	q := "invoice-id=" + strings.Repeat("00", 32)

	urlReq, err := request.ParseURL(mustQuery(t, q))
	require.NoError(t, err)

	s, err := m.Create(context.Background(), request.Inputs{URL: urlReq, PageOrigin: "https://msq.example"})
	require.ErrorIs(t, err, entity.ErrInvoiceNotFound)
	require.Nil(t, s)
	require.Equal(t, 0, m.Len())
}

func TestSession_PaidInvoice(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.canister.EXPECT().Invoice(gomock.Any(), invoiceID).Return(entity.Invoice{
		ID:     invoiceID,
		Status: entity.StatusPaid{Qty: eds.FromUint64(50000000, 8), TokenID: icpLedger, Timestamp: 10},
		ShopID: 42,
		QtyUSD: eds.FromUint64(500000000, 8),
	}, nil)

	err := invoiceSession(f).Start(context.Background())
	require.ErrorIs(t, err, entity.ErrInvoicePaid)
}

func TestSession_PaidBeforeContinue(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withICP(t, 1000000000)

	created := entity.Invoice{ID: invoiceID, Status: entity.StatusCreated{TTL: 10}, ShopID: 42, QtyUSD: eds.FromUint64(500000000, 8)}
	paid := created
	paid.Status = entity.StatusPaid{Qty: eds.FromUint64(50000000, 8), TokenID: icpLedger, Timestamp: 10}

	gomock.InOrder(
		f.canister.EXPECT().Invoice(gomock.Any(), invoiceID).Return(created, nil),
		f.canister.EXPECT().Invoice(gomock.Any(), invoiceID).Return(paid, nil),
	)
	f.canister.EXPECT().ShopByID(gomock.Any(), uint64(42)).Return(entity.Shop{ID: 42, Name: "Shop"}, nil)
	f.canister.EXPECT().ShopSubaccount(gomock.Any(), uint64(42)).Return(shopSub, nil)

	s := invoiceSession(f)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.ConnectWallet("msq", nil))
	require.NoError(t, s.SelectAsset(ctx, icpLedger.String()))
	s.SetAccounts(accounts(50010000))
	require.True(t, s.CanContinue(0))

	f.store.RefreshInvoice(ctx, invoiceID)

	snap, err := s.Continue(0)
	require.ErrorIs(t, err, entity.ErrInvoicePaid)
	require.Nil(t, snap.Amount)
}
