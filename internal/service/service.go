package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fort-major/msq-pay/internal/entity"
)

//go:generate go run go.uber.org/mock/mockgen@latest -source=service.go -destination=../mocks/service.go -package=mocks -typed

type Repository interface {
	Preference(ctx context.Context, deviceID, key string) (bool, error)
	SetPreference(ctx context.Context, deviceID, key string, value bool, updatedAt time.Time) error
	CreateCheckout(ctx context.Context, c entity.CheckoutSnapshot) error
	Checkouts(ctx context.Context, f entity.CheckoutFilter) ([]entity.CheckoutSnapshot, error)
}

type Producer interface {
	Send(ctx context.Context, key string, event any)
}

type Service struct {
	repo     Repository
	producer Producer
}

func New(repo Repository, producer Producer) *Service {
	return &Service{
		repo:     repo,
		producer: producer,
	}
}

// HideEmptyAssets is false for devices that never toggled it.
func (s *Service) HideEmptyAssets(ctx context.Context, deviceID string) (bool, error) {
	if deviceID == "" {
		return false, fmt.Errorf("empty device id: %w", entity.ErrInvalidArgument)
	}

	v, err := s.repo.Preference(ctx, deviceID, entity.PrefHideEmptyAssets)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("get %s of %s: %w", entity.PrefHideEmptyAssets, deviceID, err)
	}

	return v, nil
}

func (s *Service) SetHideEmptyAssets(ctx context.Context, deviceID string, hide bool) error {
	if deviceID == "" {
		return fmt.Errorf("empty device id: %w", entity.ErrInvalidArgument)
	}

	err := s.repo.SetPreference(ctx, deviceID, entity.PrefHideEmptyAssets, hide, time.Now())
	if err != nil {
		return fmt.Errorf("set %s of %s: %w", entity.PrefHideEmptyAssets, deviceID, err)
	}

	return nil
}

// VisibleAssets drops assets with a zero total balance when the device hides empty assets.
func (s *Service) VisibleAssets(ctx context.Context, deviceID string, assets []entity.AssetBalance) ([]entity.AssetBalance, error) {
	hide, err := s.HideEmptyAssets(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	return FilterAssets(assets, hide), nil
}

func FilterAssets(assets []entity.AssetBalance, hideEmpty bool) []entity.AssetBalance {
	res := make([]entity.AssetBalance, 0, len(assets))

	for _, a := range assets {
		if hideEmpty && (a.TotalBalance == nil || a.TotalBalance.Sign() <= 0) {
			continue
		}

		res = append(res, a)
	}

	return res
}

type CheckoutStartedEvent struct {
	ID                  uuid.UUID `json:"id"`
	SessionID           uuid.UUID `json:"sessionId"`
	Mode                string    `json:"mode"`
	InvoiceID           string    `json:"invoiceId,omitempty"`
	AccountPrincipal    string    `json:"accountPrincipal"`
	AssetID             string    `json:"assetId"`
	Symbol              string    `json:"symbol"`
	Decimals            uint8     `json:"decimals"`
	Amount              string    `json:"amount"`
	Fee                 string    `json:"fee"`
	PeerOrigin          string    `json:"peerOrigin"`
	RecipientPrincipal  string    `json:"recipientPrincipal"`
	RecipientSubaccount string    `json:"recipientSubaccount,omitempty"`
	Memo                string    `json:"memo,omitempty"`
	CreatedAt           uint64    `json:"createdAt,string"`
}

// RecordCheckout stores the snapshot and publishes it for the initiator's callback routing.
func (s *Service) RecordCheckout(ctx context.Context, c entity.CheckoutSnapshot) (entity.CheckoutSnapshot, error) {
	c.ID = uuid.Must(uuid.NewV4())
	c.StoredAt = time.Now().UTC()

	err := s.repo.CreateCheckout(ctx, c)
	if err != nil {
		return entity.CheckoutSnapshot{}, fmt.Errorf("create checkout: %w", err)
	}

	event := CheckoutStartedEvent{
		ID:                  c.ID,
		SessionID:           c.SessionID,
		Mode:                string(c.Mode),
		AccountPrincipal:    c.AccountPrincipal,
		AssetID:             c.AssetID,
		Symbol:              c.Symbol,
		Decimals:            c.Decimals,
		Amount:              c.Amount.String(),
		Fee:                 c.Fee.String(),
		PeerOrigin:          c.PeerOrigin,
		RecipientPrincipal:  c.RecipientPrincipal,
		RecipientSubaccount: hex.EncodeToString(c.RecipientSubaccount),
		Memo:                hex.EncodeToString(c.Memo),
		CreatedAt:           c.CreatedAt,
	}

	if c.InvoiceID != nil {
		event.InvoiceID = c.InvoiceID.String()
	}

	s.producer.Send(ctx, c.SessionID.String(), event)

	slog.InfoContext(ctx, "checkout recorded", "checkout_id", c.ID, "mode", c.Mode, "peer_origin", c.PeerOrigin)

	return c, nil
}

func (s *Service) Checkouts(ctx context.Context, f entity.CheckoutFilter) ([]entity.CheckoutSnapshot, error) {
	res, err := s.repo.Checkouts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list checkouts: %w", err)
	}

	return res, nil
}
