package settlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/internal/mocks"
	"github.com/fort-major/msq-pay/internal/settlement"
	"github.com/fort-major/msq-pay/internal/store"
	"github.com/fort-major/msq-pay/pkg/eds"
)

var icpLedger = principal.MustDecode("ryjl3-tyaaa-aaaaa-aaaba-cai")

func TestClassify(t *testing.T) {
	t.Parallel()

	paid := entity.StatusPaid{
		Qty:          eds.FromUint64(50000000, 8),
		TokenID:      icpLedger,
		Timestamp:    99,
		ExchangeRate: eds.FromUint64(1000000000, 8),
	}

	tests := []struct {
		name   string
		status entity.InvoiceStatus
		want   settlement.Display
	}{
		{
			name:   "created",
			status: entity.StatusCreated{TTL: 10},
			want:   settlement.Display{Stage: entity.StageCreated, TTL: 10},
		},
		{
			name:   "created urgent",
			status: entity.StatusCreated{TTL: 2},
			want:   settlement.Display{Stage: entity.StageCreated, TTL: 2, Urgent: true},
		},
		{
			name:   "verify payment",
			status: entity.StatusVerifyPayment{},
			want:   settlement.Display{Stage: entity.StageVerifyPayment},
		},
		{
			name:   "paid",
			status: paid,
			want: settlement.Display{
				Stage: entity.StagePaid,
				Paid: &settlement.Settled{
					Token:        icpLedger,
					Qty:          paid.Qty,
					Timestamp:    99,
					ExchangeRate: paid.ExchangeRate,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id := entity.InvoiceID{1}
			tt.want.InvoiceID = id

			got, err := settlement.Classify(entity.Invoice{ID: id, Status: tt.status}, 2)
			require.NoError(t, err)
			require.Equal(t, tt.want.Stage, got.Stage)
			require.Equal(t, tt.want.TTL, got.TTL)
			require.Equal(t, tt.want.Urgent, got.Urgent)
			require.Equal(t, tt.want.Stage == entity.StagePaid, got.Final())

			if tt.want.Paid == nil {
				require.Nil(t, got.Paid)
				return
			}

			require.NotNil(t, got.Paid)
			require.Equal(t, icpLedger.String(), got.Paid.Token.String())
			require.Equal(t, "0.5", got.Paid.Qty.String())
			require.Equal(t, "10", got.Paid.ExchangeRate.String())
			require.Equal(t, uint64(99), got.Paid.Timestamp)
		})
	}

	_, err := settlement.Classify(entity.Invoice{}, 2)
	require.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestPoller_Watch(t *testing.T) {
	t.Parallel()

	canister := mocks.NewMockCanister(gomock.NewController(t))
	id := entity.InvoiceID{3}

	inv := func(st entity.InvoiceStatus) entity.Invoice {
		return entity.Invoice{ID: id, Status: st, QtyUSD: eds.FromUint64(1, 8)}
	}

	gomock.InOrder(
		canister.EXPECT().Invoice(gomock.Any(), id).Return(inv(entity.StatusCreated{TTL: 3}), nil),
		canister.EXPECT().Invoice(gomock.Any(), id).Return(inv(entity.StatusCreated{TTL: 3}), nil),
		canister.EXPECT().Invoice(gomock.Any(), id).Return(inv(entity.StatusVerifyPayment{}), nil),
		canister.EXPECT().Invoice(gomock.Any(), id).Return(inv(entity.StatusPaid{
			Qty:          eds.FromUint64(1, 8),
			TokenID:      icpLedger,
			ExchangeRate: eds.FromUint64(1, 8),
		}), nil),
	)

	p := settlement.NewPoller(store.New(canister, nil), 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var stages []entity.InvoiceStage

	for d := range p.Watch(ctx, id, time.Millisecond) {
		stages = append(stages, d.Stage)
	}

	require.Equal(t, []entity.InvoiceStage{entity.StageCreated, entity.StageVerifyPayment, entity.StagePaid}, stages)
}

func TestPoller_NotFound(t *testing.T) {
	t.Parallel()

	canister := mocks.NewMockCanister(gomock.NewController(t))
	canister.EXPECT().Invoice(gomock.Any(), gomock.Any()).Return(entity.Invoice{}, entity.ErrNotFound).AnyTimes()

	p := settlement.NewPoller(store.New(canister, nil), 2)

	_, err := p.Current(context.Background(), entity.InvoiceID{})
	require.ErrorIs(t, err, entity.ErrInvoiceNotFound)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	n := 0
	for range p.Watch(ctx, entity.InvoiceID{}, 5*time.Millisecond) {
		n++
	}

	require.Zero(t, n)
}
