package handler

import (
	"context"

	"github.com/calehh/treasury-app/state"
	"github.com/calehh/treasury-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

// Result reports the outcome of a delivered transaction. Code 0 means
// applied; any other code carries the rejection reason in Log.
type Result struct {
	Code     uint32 `json:"code"`
	Log      string `json:"log,omitempty"`
	Proposal uint64 `json:"proposal,omitempty"`
}

type TxHandler interface {
	Apply(ctx context.Context, db *state.LedgerDB, btx *tx.TreasuryTx, sender common.Address) (res *Result, err error)
}
