package service_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/internal/mocks"
	"github.com/fort-major/msq-pay/internal/service"
)

func TestService_HideEmptyAssets(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)

	repo.EXPECT().Preference(gomock.Any(), "new", entity.PrefHideEmptyAssets).Return(false, entity.ErrNotFound)
	repo.EXPECT().Preference(gomock.Any(), "old", entity.PrefHideEmptyAssets).Return(true, nil)
	repo.EXPECT().Preference(gomock.Any(), "broken", entity.PrefHideEmptyAssets).Return(false, errors.New("conn closed"))
	repo.EXPECT().SetPreference(gomock.Any(), "new", entity.PrefHideEmptyAssets, true, gomock.Any()).Return(nil)

	s := service.New(repo, nil)
	ctx := context.Background()

	hide, err := s.HideEmptyAssets(ctx, "new")
	require.NoError(t, err)
	require.False(t, hide)

	hide, err = s.HideEmptyAssets(ctx, "old")
	require.NoError(t, err)
	require.True(t, hide)

	_, err = s.HideEmptyAssets(ctx, "broken")
	require.ErrorContains(t, err, "conn closed")

	_, err = s.HideEmptyAssets(ctx, "")
	require.ErrorIs(t, err, entity.ErrInvalidArgument)

	require.NoError(t, s.SetHideEmptyAssets(ctx, "new", true))
}

func TestFilterAssets(t *testing.T) {
	t.Parallel()

	assets := []entity.AssetBalance{
		{AssetID: "a", TotalBalance: big.NewInt(0)},
		{AssetID: "b", TotalBalance: big.NewInt(1)},
		{AssetID: "c"},
		{AssetID: "d", TotalBalance: big.NewInt(100)},
	}

	require.Len(t, service.FilterAssets(assets, false), 4)

	visible := service.FilterAssets(assets, true)
	require.Len(t, visible, 2)
	require.Equal(t, "b", visible[0].AssetID)
	require.Equal(t, "d", visible[1].AssetID)
}

func TestService_VisibleAssets(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().Preference(gomock.Any(), "device", entity.PrefHideEmptyAssets).Return(true, nil)

	got, err := service.New(repo, nil).VisibleAssets(context.Background(), "device", []entity.AssetBalance{
		{AssetID: "a", TotalBalance: big.NewInt(0)},
		{AssetID: "b", TotalBalance: big.NewInt(5)},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].AssetID)
}

func TestService_RecordCheckout(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	invoiceID := entity.InvoiceID{1}
	snap := entity.CheckoutSnapshot{
		SessionID:          uuid.Must(uuid.NewV4()),
		Mode:               entity.ModeRPCInvoice,
		AccountBalance:     big.NewInt(100),
		Fee:                big.NewInt(10),
		Amount:             big.NewInt(50),
		Memo:               []byte{0xca, 0xfe},
		RecipientPrincipal: "prlga-2iaaa-aaaak-akp4a-cai",
		CreatedAt:          42,
		InvoiceID:          &invoiceID,
	}

	var stored entity.CheckoutSnapshot

	repo.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c entity.CheckoutSnapshot) error {
			stored = c
			return nil
		})
	producer.EXPECT().Send(gomock.Any(), snap.SessionID.String(), gomock.Any()).
		Do(func(_ context.Context, _ string, event any) {
			e, ok := event.(service.CheckoutStartedEvent)
			require.True(t, ok)
			require.Equal(t, invoiceID.String(), e.InvoiceID)
			require.Equal(t, "50", e.Amount)
			require.Equal(t, "cafe", e.Memo)
			require.Equal(t, uint64(42), e.CreatedAt)
		})

	got, err := service.New(repo, producer).RecordCheckout(context.Background(), snap)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, got.ID)
	require.False(t, got.StoredAt.IsZero())
	require.Equal(t, got.ID, stored.ID)
}

func TestService_RecordCheckoutFails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	producer := mocks.NewMockProducer(ctrl)

	repo.EXPECT().CreateCheckout(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := service.New(repo, producer).RecordCheckout(context.Background(), entity.CheckoutSnapshot{
		Amount: big.NewInt(1),
		Fee:    big.NewInt(1),
	})
	require.ErrorContains(t, err, "disk full")
}
