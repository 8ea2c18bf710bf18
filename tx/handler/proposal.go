package handler

import (
	"context"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/state"
	"github.com/calehh/treasury-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

type ProposalTxHandler struct {
	logger cosmoslog.Logger
}

func NewProposalTxHandler(logger cosmoslog.Logger) (h *ProposalTxHandler) {
	logger = logger.With("module", "proposalTx")
	h = &ProposalTxHandler{
		logger: logger,
	}
	return
}

func (h *ProposalTxHandler) Apply(ctx context.Context, db *state.LedgerDB, btx *tx.TreasuryTx, sender common.Address) (res *Result, err error) {
	wtx := btx.Tx.(*tx.ProposalTx)
	var id uint64
	switch wtx.Kind {
	case tx.ProposalKindSpend:
		id, err = db.CreateProposal(sender, common.HexToAddress(wtx.Target), wtx.Amount, wtx.Description)
	case tx.ProposalKindAddMember:
		id, err = db.ProposeAddMember(sender, common.HexToAddress(wtx.Member))
	case tx.ProposalKindRemoveMember:
		id, err = db.ProposeRemoveMember(sender, common.HexToAddress(wtx.Member))
	case tx.ProposalKindSetThreshold:
		id, err = db.ProposeThresholdChange(sender, wtx.Threshold)
	default:
		err = tx.ErrProposalKindInvalid
	}
	if err != nil {
		h.logger.Info("proposal tx fail", "kind", wtx.Kind, "err", err)
		return nil, err
	}
	res = &Result{Proposal: id}
	return
}
