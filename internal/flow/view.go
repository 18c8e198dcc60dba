package flow

import (
	"github.com/gofrs/uuid/v5"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/pkg/eds"
)

type AccountView struct {
	entity.WalletAccount
	CanContinue bool
}

// View is a read-only copy of the session for rendering.
type View struct {
	ID              uuid.UUID
	Mode            entity.Mode
	State           State
	InitiatorOrigin string
	WalletKind      string

	AssetID  string
	Symbol   string
	Decimals uint8

	// Amount and AmountPlusFee are nil while the amount cannot be derived yet.
	Amount        *eds.EDs
	AmountPlusFee *eds.EDs

	InvoiceID *entity.InvoiceID
	Shop      *entity.Shop

	Accounts []AccountView
}

func (s *Session) View() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.recompute(); err != nil {
		return View{}, err
	}

	v := View{
		ID:              s.id,
		Mode:            s.intent.Mode,
		State:           s.state,
		InitiatorOrigin: s.intent.InitiatorOrigin,
		WalletKind:      s.walletKind,
		AssetID:         s.assetID,
		Accounts:        make([]AccountView, 0, len(s.accounts)),
	}

	if meta, ok := s.deps.Store.AssetMetadata(s.assetID); ok {
		v.Symbol = meta.Symbol
		v.Decimals = meta.Decimals
	}

	if s.amount != nil {
		amount := *s.amount
		v.Amount = &amount
	}

	if total, ok := s.amountPlusFee(); ok {
		v.AmountPlusFee = &total
	}

	if s.intent.Invoice != nil {
		id := s.intent.Invoice.InvoiceID
		v.InvoiceID = &id

		if inv, ok := s.deps.Store.Invoice(id); ok {
			if shop, ok := s.deps.Store.Shop(inv.ShopID); ok {
				v.Shop = &shop
			}
		}
	}

	for _, acc := range cloneAccounts(s.accounts) {
		v.Accounts = append(v.Accounts, AccountView{
			WalletAccount: acc,
			CanContinue:   s.canContinue(acc.ID),
		})
	}

	return v, nil
}
