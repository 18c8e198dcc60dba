package entity

import (
	"math/big"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fort-major/msq-pay/pkg/eds"
)

// WalletAccount is one account of the connected wallet for the selected asset.
type WalletAccount struct {
	ID        int
	Name      string
	Principal string
	Balance   *big.Int
}

// CheckoutSnapshot is handed to the checkout page. Every field is resolved.
type CheckoutSnapshot struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Mode      Mode

	AccountID        int
	AccountName      string
	AccountBalance   *big.Int
	AccountPrincipal string

	AssetID  string
	Symbol   string
	Decimals uint8
	Fee      *big.Int

	PeerOrigin string

	Amount              *big.Int
	RecipientPrincipal  string
	RecipientSubaccount []byte
	Memo                []byte
	CreatedAt           uint64

	InvoiceID *InvoiceID
	StoredAt  time.Time
}

// AmountPlusFee is what leaves the paying account.
func (s CheckoutSnapshot) AmountPlusFee() eds.EDs {
	return eds.New(s.Amount, s.Decimals).Add(eds.New(s.Fee, s.Decimals))
}

// ReceiveTarget describes where to top up when the balance is too low.
type ReceiveTarget struct {
	AssetID   string
	Principal string
	Symbol    string
}

type CheckoutFilter struct {
	InvoiceID  *InvoiceID
	PeerOrigin string
	Limit      uint64
	Page       uint64
}

// PrefHideEmptyAssets is the preference key of the "hide empty assets" toggle.
const PrefHideEmptyAssets = "msq-assets-hide-empty"
