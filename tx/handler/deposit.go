package handler

import (
	"context"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/state"
	"github.com/calehh/treasury-app/tx"
	"github.com/ethereum/go-ethereum/common"
)

type DepositTxHandler struct {
	logger cosmoslog.Logger
}

func NewDepositTxHandler(logger cosmoslog.Logger) (h *DepositTxHandler) {
	logger = logger.With("module", "depositTx")
	h = &DepositTxHandler{
		logger: logger,
	}
	return
}

func (h *DepositTxHandler) Apply(ctx context.Context, db *state.LedgerDB, btx *tx.TreasuryTx, sender common.Address) (res *Result, err error) {
	wtx := btx.Tx.(*tx.DepositTx)
	from := sender
	if wtx.From != "" {
		from = common.HexToAddress(wtx.From)
	}
	err = db.Deposit(from, wtx.Amount)
	if err != nil {
		h.logger.Info("deposit fail", "err", err)
		return nil, err
	}
	res = &Result{}
	return
}
