package entity

import (
	"math/big"

	"github.com/aviate-labs/agent-go/principal"
)

// Mode tells which transport delivered the payment request and what kind of request it is.
type Mode string

const (
	ModeURLInvoice Mode = "msq-pay-url"
	ModeURLDirect  Mode = "icrc-1-url"
	ModeRPCInvoice Mode = "msq-pay-icrc-35"
	ModeRPCDirect  Mode = "icrc-1-icrc-35"
)

func (m Mode) IsInvoice() bool {
	return m == ModeURLInvoice || m == ModeRPCInvoice
}

func (m Mode) IsRPC() bool {
	return m == ModeRPCInvoice || m == ModeRPCDirect
}

func (m Mode) IsValid() bool {
	switch m {
	case ModeURLInvoice, ModeURLDirect, ModeRPCInvoice, ModeRPCDirect:
		return true
	}

	return false
}

// DirectTransfer is an ICRC-1 transfer fully described by the requester.
type DirectTransfer struct {
	CanisterID principal.Principal
	To         Account
	Memo       []byte
	Amount     *big.Int
	CreatedAt  *uint64
}

// InvoiceRequest carries only the invoice id. Recipient, amount and memo are derived later.
type InvoiceRequest struct {
	InvoiceID InvoiceID
}

// PaymentIntent holds exactly one of Direct or Invoice.
type PaymentIntent struct {
	Mode            Mode
	InitiatorOrigin string
	Direct          *DirectTransfer
	Invoice         *InvoiceRequest
}
