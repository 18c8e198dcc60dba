package entity

import (
	"math/big"

	"github.com/aviate-labs/agent-go/principal"

	"github.com/fort-major/msq-pay/pkg/eds"
)

// Token is an asset MSQ Pay accepts for invoices.
type Token struct {
	ID        principal.Principal
	Fee       eds.EDs
	Ticker    string
	LogoSrc   string
	XRCTicker string
}

func (t Token) Decimals() uint8 {
	return t.Fee.Decimals()
}

// AssetMetadata is what an ICRC-1 ledger reports about itself.
type AssetMetadata struct {
	Name     string
	Symbol   string
	Decimals uint8
	Fee      *big.Int
	Logo     string
}

func (m AssetMetadata) FeeEDs() eds.EDs {
	return eds.New(m.Fee, m.Decimals)
}

type Shop struct {
	ID          uint64
	IconBase64  string
	Name        string
	Description string
}

// AssetBalance is an asset with the sum of the balances of all of its accounts.
type AssetBalance struct {
	AssetID      string
	Symbol       string
	TotalBalance *big.Int
}
