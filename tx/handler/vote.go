package handler

import (
	"context"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/state"
	"github.com/calehh/treasury-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

type VoteTxHandler struct {
	logger cosmoslog.Logger
}

func NewVoteTxHandler(logger cosmoslog.Logger) (h *VoteTxHandler) {
	logger = logger.With("module", "voteTx")
	h = &VoteTxHandler{
		logger: logger,
	}
	return
}

func (h *VoteTxHandler) Apply(ctx context.Context, db *state.LedgerDB, btx *tx.TreasuryTx, sender common.Address) (res *Result, err error) {
	wtx := btx.Tx.(*tx.VoteTx)
	err = db.Vote(sender, wtx.Proposal, wtx.Approve)
	if err != nil {
		h.logger.Info("vote fail", "proposal", wtx.Proposal, "err", err)
		return nil, err
	}
	res = &Result{Proposal: wtx.Proposal}
	return
}
