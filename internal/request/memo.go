package request

import (
	"github.com/zeebo/blake3"

	"github.com/fort-major/msq-pay/internal/entity"
)

// MemoFunc derives the transfer memo of an invoice payment. It must return the same bytes
// the payment canister expects when it verifies the transfer.
type MemoFunc func(id entity.InvoiceID) []byte

// InvoiceMemo hashes domain followed by the invoice id with BLAKE3.
func InvoiceMemo(domain []byte) MemoFunc {
	d := append([]byte(nil), domain...)

	return func(id entity.InvoiceID) []byte {
		h := blake3.New()
		_, _ = h.Write(d)
		_, _ = h.Write(id[:])

		return h.Sum(nil)
	}
}
