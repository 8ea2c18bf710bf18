package handler

import (
	"context"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/state"
	"github.com/calehh/treasury-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

type ExecuteTxHandler struct {
	logger cosmoslog.Logger
}

func NewExecuteTxHandler(logger cosmoslog.Logger) (h *ExecuteTxHandler) {
	logger = logger.With("module", "executeTx")
	h = &ExecuteTxHandler{
		logger: logger,
	}
	return
}

func (h *ExecuteTxHandler) Apply(ctx context.Context, db *state.LedgerDB, btx *tx.TreasuryTx, sender common.Address) (res *Result, err error) {
	wtx := btx.Tx.(*tx.ExecuteTx)
	err = db.ExecuteProposal(sender, wtx.Proposal)
	if err != nil {
		h.logger.Info("execute fail", "proposal", wtx.Proposal, "err", err)
		return nil, err
	}
	res = &Result{Proposal: wtx.Proposal}
	return
}
