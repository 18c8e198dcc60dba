package entity

import (
	"encoding/hex"
	"fmt"

	"github.com/aviate-labs/agent-go/principal"

	"github.com/fort-major/msq-pay/pkg/eds"
)

const InvoiceIDLen = 32

// InvoiceID is keyed everywhere by its lower-case hex form.
type InvoiceID [InvoiceIDLen]byte

func ParseInvoiceID(s string) (InvoiceID, error) {
	var id InvoiceID

	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("decode invoice id: %w", ErrInvalidArgument)
	}

	return InvoiceIDFromBytes(b)
}

func InvoiceIDFromBytes(b []byte) (InvoiceID, error) {
	var id InvoiceID

	if len(b) != InvoiceIDLen {
		return id, fmt.Errorf("invoice id must be %d bytes, got %d: %w", InvoiceIDLen, len(b), ErrInvalidArgument)
	}

	copy(id[:], b)

	return id, nil
}

func (id InvoiceID) String() string {
	return hex.EncodeToString(id[:])
}

func (id InvoiceID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *InvoiceID) UnmarshalText(b []byte) error {
	parsed, err := ParseInvoiceID(string(b))
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}

type InvoiceStage uint8

const (
	StageCreated InvoiceStage = iota + 1
	StageVerifyPayment
	StagePaid
)

func (s InvoiceStage) String() string {
	switch s {
	case StageCreated:
		return "created"
	case StageVerifyPayment:
		return "verify-payment"
	case StagePaid:
		return "paid"
	}

	return fmt.Sprintf("stage(%d)", uint8(s))
}

// InvoiceStatus is one of StatusCreated, StatusVerifyPayment or StatusPaid.
type InvoiceStatus interface {
	Stage() InvoiceStage
	invoiceStatus()
}

type StatusCreated struct {
	TTL uint8
}

type StatusVerifyPayment struct{}

type StatusPaid struct {
	Qty          eds.EDs
	TokenID      principal.Principal
	Timestamp    uint64
	ExchangeRate eds.EDs
}

func (StatusCreated) Stage() InvoiceStage       { return StageCreated }
func (StatusVerifyPayment) Stage() InvoiceStage { return StageVerifyPayment }
func (StatusPaid) Stage() InvoiceStage          { return StagePaid }

func (StatusCreated) invoiceStatus()       {}
func (StatusVerifyPayment) invoiceStatus() {}
func (StatusPaid) invoiceStatus()          {}

type Invoice struct {
	ID                     InvoiceID
	Status                 InvoiceStatus
	Creator                principal.Principal
	ExchangeRatesTimestamp uint64
	CreatedAt              uint64
	ShopID                 uint64
	QtyUSD                 eds.EDs
}

func (i Invoice) IsPaid() bool {
	return i.Status != nil && i.Status.Stage() == StagePaid
}

// CanReplace reports whether next may overwrite the cached status cur.
// Paid is terminal. A failed verification on the canister puts VerifyPayment back to Created,
// so only a regression from Paid is rejected.
func CanReplace(cur, next InvoiceStatus) bool {
	if cur == nil {
		return true
	}

	if cur.Stage() == StagePaid {
		return next.Stage() == StagePaid
	}

	return true
}
