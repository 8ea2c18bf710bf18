package handler

import (
	"context"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/state"
	"github.com/calehh/treasury-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

type CancelTxHandler struct {
	logger cosmoslog.Logger
}

func NewCancelTxHandler(logger cosmoslog.Logger) (h *CancelTxHandler) {
	logger = logger.With("module", "cancelTx")
	h = &CancelTxHandler{
		logger: logger,
	}
	return
}

func (h *CancelTxHandler) Apply(ctx context.Context, db *state.LedgerDB, btx *tx.TreasuryTx, sender common.Address) (res *Result, err error) {
	wtx := btx.Tx.(*tx.CancelTx)
	err = db.CancelProposal(sender, wtx.Proposal)
	if err != nil {
		h.logger.Info("cancel fail", "proposal", wtx.Proposal, "err", err)
		return nil, err
	}
	res = &Result{Proposal: wtx.Proposal}
	return
}
