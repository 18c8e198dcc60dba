// Package settlement interprets invoice statuses for display and follows an invoice until it is paid.
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aviate-labs/agent-go/principal"

	"github.com/fort-major/msq-pay/internal/entity"
	"github.com/fort-major/msq-pay/pkg/eds"
)

// Display is exactly one of the three invoice display states.
type Display struct {
	InvoiceID entity.InvoiceID
	Stage     entity.InvoiceStage

	// Created
	TTL    uint8
	Urgent bool

	// Paid
	Paid *Settled
}

type Settled struct {
	Token        principal.Principal
	Qty          eds.EDs
	Timestamp    uint64
	ExchangeRate eds.EDs
}

// Final reports whether the invoice can no longer change.
func (d Display) Final() bool {
	return d.Stage == entity.StagePaid
}

func (d Display) same(other Display) bool {
	return d.Stage == other.Stage && d.TTL == other.TTL
}

// Classify maps an invoice status to its display state. A created invoice whose ttl is at or
// below urgentTTL is flagged as urgent.
func Classify(inv entity.Invoice, urgentTTL uint8) (Display, error) {
	d := Display{InvoiceID: inv.ID}

	switch st := inv.Status.(type) {
	case entity.StatusCreated:
		d.Stage = entity.StageCreated
		d.TTL = st.TTL
		d.Urgent = st.TTL <= urgentTTL
	case entity.StatusVerifyPayment:
		d.Stage = entity.StageVerifyPayment
	case entity.StatusPaid:
		d.Stage = entity.StagePaid
		d.Paid = &Settled{
			Token:        st.TokenID,
			Qty:          st.Qty,
			Timestamp:    st.Timestamp,
			ExchangeRate: st.ExchangeRate,
		}
	default:
		return Display{}, fmt.Errorf("invoice %s status %T: %w", inv.ID, inv.Status, entity.ErrInvalidArgument)
	}

	return d, nil
}

type Store interface {
	RefreshInvoice(ctx context.Context, id entity.InvoiceID)
	Invoice(id entity.InvoiceID) (entity.Invoice, bool)
}

type Poller struct {
	store     Store
	urgentTTL uint8
}

func NewPoller(store Store, urgentTTL uint8) *Poller {
	return &Poller{store: store, urgentTTL: urgentTTL}
}

// Current refreshes the invoice once and classifies it.
func (p *Poller) Current(ctx context.Context, id entity.InvoiceID) (Display, error) {
	p.store.RefreshInvoice(ctx, id)

	inv, ok := p.store.Invoice(id)
	if !ok {
		return Display{}, fmt.Errorf("invoice %s: %w", id, entity.ErrInvoiceNotFound)
	}

	return Classify(inv, p.urgentTTL)
}

// Watch refreshes the invoice every interval and sends each new display state. The channel is
// closed once the invoice is paid or ctx is done.
func (p *Poller) Watch(ctx context.Context, id entity.InvoiceID, interval time.Duration) <-chan Display {
	ch := make(chan Display)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var (
			last Display
			sent bool
		)

		for {
			d, err := p.Current(ctx, id)

			switch {
			case err != nil:
				slog.WarnContext(ctx, "invoice is not available", "invoice_id", id.String(), "error", err)
			case !sent || !d.same(last):
				select {
				case ch <- d:
				case <-ctx.Done():
					return
				}

				last, sent = d, true

				if d.Final() {
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return ch
}
