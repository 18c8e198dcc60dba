package repository

const (
	selectCheckout = `SELECT
		id,
		session_id,
		mode,
		invoice_id,
		account_id,
		account_name,
		account_principal,
		account_balance,
		asset_id,
		symbol,
		decimals,
		fee,
		peer_origin,
		amount,
		recipient_principal,
		recipient_subaccount,
		memo,
		created_at_ns,
		stored_at
	FROM checkouts`
)

var checkoutColumns = []string{
	"id",
	"session_id",
	"mode",
	"invoice_id",
	"account_id",
	"account_name",
	"account_principal",
	"account_balance",
	"asset_id",
	"symbol",
	"decimals",
	"fee",
	"peer_origin",
	"amount",
	"recipient_principal",
	"recipient_subaccount",
	"memo",
	"created_at_ns",
	"stored_at",
}
