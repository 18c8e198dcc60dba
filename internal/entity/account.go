package entity

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/aviate-labs/agent-go/principal"
)

const (
	SubaccountLen = 32
	// MaxMemoLen is the ICRC-1 memo limit in bytes.
	MaxMemoLen = 32
)

var defaultSubaccount = make([]byte, SubaccountLen)

// Account is an ICRC-1 account. A nil Subaccount is the default one.
type Account struct {
	Owner      principal.Principal
	Subaccount []byte
}

func IsDefaultSubaccount(sub []byte) bool {
	return len(sub) == 0 || bytes.Equal(sub, defaultSubaccount)
}

// TxnAccount is either a bare account id or a principal with an optional subaccount.
type TxnAccount struct {
	AccountID     string
	PrincipalID   string
	SubaccountHex string
}

// DecodeTxnAccount reads "principal:subaccount-hex" or a bare account id.
// The all-zero subaccount is reported as no subaccount.
func DecodeTxnAccount(s string) TxnAccount {
	prin, sub, ok := strings.Cut(s, ":")
	if !ok {
		return TxnAccount{AccountID: s}
	}

	// TODO: derive the default subaccount from the ledger instead of comparing with 32 zero bytes
	if sub == hex.EncodeToString(defaultSubaccount) {
		sub = ""
	}

	return TxnAccount{PrincipalID: prin, SubaccountHex: sub}
}

type TxnKind string

const (
	TxnKindMint     TxnKind = "Mint"
	TxnKindBurn     TxnKind = "Burn"
	TxnKindTransfer TxnKind = "Transfer"
	TxnKindApprove  TxnKind = "Approve"
)

// TxnExternal is a ledger transaction as the statistics canister reports it, numbers as decimal text.
type TxnExternal struct {
	ID            string  `json:"id"`
	Kind          TxnKind `json:"kind"`
	TimestampNano string  `json:"timestampNano"`
	Memo          string  `json:"memo"`
	Amount        string  `json:"amount,omitempty"`
	From          string  `json:"from,omitempty"`
	To            string  `json:"to,omitempty"`
	Fee           string  `json:"fee,omitempty"`
}

type Txn struct {
	ID          *big.Int
	Incoming    bool
	TimestampMs int64
	Amount      *big.Int
	Account     TxnAccount
	Memo        string
}

// ConvertTxns keeps transfers only, seen from accountID. Malformed entries are skipped.
func ConvertTxns(accountID string, txns []TxnExternal) []Txn {
	res := make([]Txn, 0, len(txns))

	for _, txn := range txns {
		if txn.Kind != TxnKindTransfer {
			continue
		}

		incoming := accountID != txn.From

		counterparty := txn.From
		if !incoming {
			counterparty = txn.To
		}

		id, ok := new(big.Int).SetString(txn.ID, 10)
		if !ok {
			continue
		}

		amount, ok := new(big.Int).SetString(txn.Amount, 10)
		if !ok {
			continue
		}

		ts, err := strconv.ParseInt(txn.TimestampNano, 10, 64)
		if err != nil {
			continue
		}

		res = append(res, Txn{
			ID:          id,
			Incoming:    incoming,
			TimestampMs: ts / 1_000_000,
			Amount:      amount,
			Account:     DecodeTxnAccount(counterparty),
			Memo:        txn.Memo,
		})
	}

	return res
}
