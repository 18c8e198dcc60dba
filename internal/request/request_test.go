package request_test

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"testing"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/internal/request"
)

const (
	icpLedger = "ryjl3-tyaaa-aaaaa-aaaba-cai"
	shopOwner = "2vxsx-fae"
)

var zeroInvoice = strings.Repeat("00", 32)

func TestParseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		query       string
		wantDirect  bool
		wantInvoice bool
		wantErr     bool
	}{
		{
			name:  "empty",
			query: "",
		},
		{
			name:       "direct",
			query:      "canister-id=" + icpLedger + "&to-principal=" + shopOwner + "&amount=150000000",
			wantDirect: true,
		},
		{
			name: "direct with subaccount and memo",
			query: "canister-id=" + icpLedger + "&to-principal=" + shopOwner + "&amount=1" +
				"&to-subaccount=" + strings.Repeat("01", 32) + "&memo=cafe",
			wantDirect: true,
		},
		{
			name:  "direct without amount is ignored",
			query: "canister-id=" + icpLedger + "&to-principal=" + shopOwner,
		},
		{
			name:        "invoice",
			query:       "invoice-id=" + zeroInvoice,
			wantInvoice: true,
		},
		{
			name:        "both",
			query:       "invoice-id=" + zeroInvoice + "&canister-id=" + icpLedger + "&to-principal=" + shopOwner + "&amount=1",
			wantDirect:  true,
			wantInvoice: true,
		},
		{
			name:    "bad invoice id",
			query:   "invoice-id=zz",
			wantErr: true,
		},
		{
			name:    "short invoice id",
			query:   "invoice-id=0102",
			wantErr: true,
		},
		{
			name:    "bad amount",
			query:   "canister-id=" + icpLedger + "&to-principal=" + shopOwner + "&amount=1.5",
			wantErr: true,
		},
		{
			name:    "negative amount",
			query:   "canister-id=" + icpLedger + "&to-principal=" + shopOwner + "&amount=-1",
			wantErr: true,
		},
		{
			name:    "bad principal",
			query:   "canister-id=" + icpLedger + "&to-principal=not_a_principal!&amount=1",
			wantErr: true,
		},
		{
			name:    "bad subaccount",
			query:   "canister-id=" + icpLedger + "&to-principal=" + shopOwner + "&amount=1&to-subaccount=0101",
			wantErr: true,
		},
		{
			name:    "bad memo",
			query:   "canister-id=" + icpLedger + "&to-principal=" + shopOwner + "&amount=1&memo=xyz",
			wantErr: true,
		},
		{
			name:    "memo longer than 32 bytes",
			query:   "canister-id=" + icpLedger + "&to-principal=" + shopOwner + "&amount=1&memo=" + strings.Repeat("ab", 33),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := request.ParseURL(q)
			if tt.wantErr {
				require.ErrorIs(t, err, entity.ErrBadRequest)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantDirect, got.Direct != nil)
			require.Equal(t, tt.wantInvoice, got.Invoice != nil)
		})
	}
}

func TestParseURL_DirectFields(t *testing.T) {
	t.Parallel()

	q := url.Values{}
	q.Set("canister-id", icpLedger)
	q.Set("to-principal", shopOwner)
	q.Set("to-subaccount", strings.Repeat("0a", 32))
	q.Set("memo", "cafe")
	q.Set("amount", "150000000")

	got, err := request.ParseURL(q)
	require.NoError(t, err)
	require.NotNil(t, got.Direct)
	require.Equal(t, icpLedger, got.Direct.CanisterID.String())
	require.Equal(t, shopOwner, got.Direct.To.Owner.String())
	require.Len(t, got.Direct.To.Subaccount, 32)
	require.Equal(t, []byte{0xca, 0xfe}, got.Direct.Memo)
	require.Equal(t, "150000000", got.Direct.Amount.String())
	require.Nil(t, got.Direct.CreatedAt)
}

func TestParseRPC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		route       string
		payload     string
		wantDirect  bool
		wantInvoice bool
		wantErr     bool
	}{
		{
			name:  "login",
			route: request.RouteLogin,
		},
		{
			name:    "login null",
			route:   request.RouteLogin,
			payload: "null",
		},
		{
			name:    "login with payload",
			route:   request.RouteLogin,
			payload: `{"canisterId":"` + icpLedger + `"}`,
			wantErr: true,
		},
		{
			name:        "pay invoice",
			route:       request.RoutePay,
			payload:     `{"invoiceId":"` + zeroInvoice + `"}`,
			wantInvoice: true,
		},
		{
			name:       "pay transfer",
			route:      request.RoutePay,
			payload:    `{"canisterId":"` + icpLedger + `","to":{"owner":"` + shopOwner + `"},"amount":"10","createdAt":"1700000000000000000"}`,
			wantDirect: true,
		},
		{
			name:    "pay transfer without recipient",
			route:   request.RoutePay,
			payload: `{"canisterId":"` + icpLedger + `","amount":"10"}`,
			wantErr: true,
		},
		{
			name:    "pay transfer with fractional amount",
			route:   request.RoutePay,
			payload: `{"canisterId":"` + icpLedger + `","to":{"owner":"` + shopOwner + `"},"amount":"1.5"}`,
			wantErr: true,
		},
		{
			name:    "pay transfer with long memo",
			route:   request.RoutePay,
			payload: `{"canisterId":"` + icpLedger + `","to":{"owner":"` + shopOwner + `"},"amount":"1","memo":"` + strings.Repeat("ab", 33) + `"}`,
			wantErr: true,
		},
		{
			name:    "pay invoice with bad id",
			route:   request.RoutePay,
			payload: `{"invoiceId":"0102"}`,
			wantErr: true,
		},
		{
			name:    "pay empty",
			route:   request.RoutePay,
			wantErr: true,
		},
		{
			name:    "pay not an object",
			route:   request.RoutePay,
			payload: `[1,2]`,
			wantErr: true,
		},
		{
			name:    "unknown route",
			route:   "msq:sign",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := request.ParseRPC(tt.route, json.RawMessage(tt.payload), "https://shop.example")
			if tt.wantErr {
				require.ErrorIs(t, err, entity.ErrBadRequest)
				return
			}

			require.NoError(t, err)
			require.Equal(t, "https://shop.example", got.PeerOrigin)
			require.Equal(t, tt.wantDirect, got.Direct != nil)
			require.Equal(t, tt.wantInvoice, got.Invoice != nil)
		})
	}
}

func direct() *entity.DirectTransfer {
	return &entity.DirectTransfer{
		CanisterID: principal.MustDecode(icpLedger),
		To:         entity.Account{Owner: principal.MustDecode(shopOwner)},
		Amount:     big.NewInt(10),
	}
}

func invoice(b byte) *entity.InvoiceRequest {
	return &entity.InvoiceRequest{InvoiceID: entity.InvoiceID{b}}
}

func TestMode_TotalAndExclusive(t *testing.T) {
	t.Parallel()

	for mask := range 16 {
		t.Run(fmt.Sprintf("mask %04b", mask), func(t *testing.T) {
			t.Parallel()

			var in request.Inputs

			urlInvoice := mask&1 != 0
			urlDirect := mask&2 != 0
			rpcInvoice := mask&4 != 0
			rpcDirect := mask&8 != 0

			if urlInvoice {
				in.URL.Invoice = invoice(1)
			}

			if urlDirect {
				in.URL.Direct = direct()
			}

			if rpcInvoice || rpcDirect {
				in.RPC = &request.RPCRequest{Route: request.RoutePay, PeerOrigin: "https://peer.example"}
			}

			if rpcInvoice {
				in.RPC.Invoice = invoice(2)
			}

			if rpcDirect {
				in.RPC.Direct = direct()
			}

			mode, ok := request.Mode(in)
			intent, err := request.Normalize(in)

			if mask == 0 {
				require.False(t, ok)
				require.ErrorIs(t, err, entity.ErrBadRequest)

				return
			}

			require.True(t, ok)
			require.True(t, mode.IsValid())
			require.NoError(t, err)

			var want entity.Mode

			switch {
			case urlInvoice:
				want = entity.ModeURLInvoice
			case urlDirect:
				want = entity.ModeURLDirect
			case rpcInvoice:
				want = entity.ModeRPCInvoice
			default:
				want = entity.ModeRPCDirect
			}

			require.Equal(t, want, mode)

			// exactly one payload, of the kind the mode names
			require.True(t, (intent.Direct == nil) != (intent.Invoice == nil))
			require.Equal(t, mode.IsInvoice(), intent.Invoice != nil)
			require.Equal(t, mode.IsInvoice(), intent.Mode.IsInvoice())
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("rpc invoice beats url invoice", func(t *testing.T) {
		t.Parallel()

		intent, err := request.Normalize(request.Inputs{
			URL: request.URLRequests{Invoice: invoice(1)},
			RPC: &request.RPCRequest{Route: request.RoutePay, PeerOrigin: "https://peer.example", Invoice: invoice(2)},
		})
		require.NoError(t, err)
		require.Equal(t, entity.ModeRPCInvoice, intent.Mode)
		require.Equal(t, entity.InvoiceID{2}, intent.Invoice.InvoiceID)
		require.Equal(t, "https://peer.example", intent.InitiatorOrigin)
	})

	t.Run("url invoice beats rpc direct", func(t *testing.T) {
		t.Parallel()

		intent, err := request.Normalize(request.Inputs{
			URL:        request.URLRequests{Invoice: invoice(1)},
			RPC:        &request.RPCRequest{Route: request.RoutePay, PeerOrigin: "https://peer.example", Direct: direct()},
			Referrer:   "https://shop.example/cart?id=1",
			PageOrigin: "https://msq.example",
		})
		require.NoError(t, err)
		require.Equal(t, entity.ModeURLInvoice, intent.Mode)
		require.Nil(t, intent.Direct)
		require.Equal(t, "https://shop.example", intent.InitiatorOrigin)
	})

	t.Run("url origin falls back to page", func(t *testing.T) {
		t.Parallel()

		intent, err := request.Normalize(request.Inputs{
			URL:        request.URLRequests{Direct: direct()},
			PageOrigin: "https://msq.example",
		})
		require.NoError(t, err)
		require.Equal(t, entity.ModeURLDirect, intent.Mode)
		require.Equal(t, "https://msq.example", intent.InitiatorOrigin)
	})

	t.Run("login only is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := request.Normalize(request.Inputs{
			RPC: &request.RPCRequest{Route: request.RouteLogin, PeerOrigin: "https://peer.example"},
		})
		require.ErrorIs(t, err, entity.ErrBadRequest)
	})

	t.Run("direct without amount is invalid", func(t *testing.T) {
		t.Parallel()

		d := direct()
		d.Amount = nil

		_, err := request.Normalize(request.Inputs{URL: request.URLRequests{Direct: d}})
		require.ErrorIs(t, err, entity.ErrBadRequest)
	})
}

func TestInvoiceMemo(t *testing.T) {
	t.Parallel()

	id := entity.InvoiceID{1, 2, 3}
	memo := request.InvoiceMemo([]byte("msq-pay-memo"))

	got := memo(id)
	require.Len(t, got, 32)
	require.Equal(t, got, memo(id))

	want := blake3.Sum256(append([]byte("msq-pay-memo"), id[:]...))
	require.Equal(t, want[:], got)

	require.NotEqual(t, got, memo(entity.InvoiceID{1, 2, 4}))
	require.NotEqual(t, got, request.InvoiceMemo([]byte("other"))(id))
}
