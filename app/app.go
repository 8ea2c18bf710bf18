package app

import (
	"context"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/config"
	"github.com/calehh/treasury-app/state"
	"github.com/calehh/treasury-app/tx"
	"github.com/calehh/treasury-app/tx/handler"
	"github.com/calehh/treasury-app/types"
	"github.com/ethereum/go-ethereum/common"
)

type TreasuryApp struct {
	cfg    *config.TreasuryAppConfig
	logger cosmoslog.Logger

	db       *state.LedgerDB
	txHdlrs  map[tx.TreasuryTxType]handler.TxHandler
	queriers map[string]Querier
}

func NewTreasuryApp(cfg *config.TreasuryAppConfig, logger cosmoslog.Logger) (app *TreasuryApp, err error) {
	logger = logger.With("module", "app")

	dir := cfg.Home + "/data"
	db, err := state.NewLedgerDB(dir, logger, nil)
	if err != nil {
		return nil, err
	}

	app = &TreasuryApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		txHdlrs:  make(map[tx.TreasuryTxType]handler.TxHandler),
		queriers: make(map[string]Querier),
	}
	app.registerTxHandler()
	app.registerQuerier()
	return
}

func (app *TreasuryApp) DB() *state.LedgerDB {
	return app.db
}

// InitGenesis seeds the ledger from the genesis document. It is a
// no-op when the data directory already holds an initialized ledger.
func (app *TreasuryApp) InitGenesis(gen *types.GenesisDoc) (err error) {
	if app.db.Initialized() {
		return nil
	}
	if err = gen.ValidateAndComplete(); err != nil {
		return
	}
	err = app.db.InitLedger(gen)
	if err != nil {
		app.logger.Error("init ledger fail", "err", err)
		return
	}
	app.logger.Info("ledger initialized", "treasury", gen.TreasuryID, "members", len(gen.Members), "threshold", gen.Threshold)
	return
}

func (app *TreasuryApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("treasury app stopped")
}

func (app *TreasuryApp) registerTxHandler() {
	app.txHdlrs = map[tx.TreasuryTxType]handler.TxHandler{
		tx.TreasuryTxTypeDeposit:  handler.NewDepositTxHandler(app.logger),
		tx.TreasuryTxTypeProposal: handler.NewProposalTxHandler(app.logger),
		tx.TreasuryTxTypeVote:     handler.NewVoteTxHandler(app.logger),
		tx.TreasuryTxTypeExecute:  handler.NewExecuteTxHandler(app.logger),
		tx.TreasuryTxTypeCancel:   handler.NewCancelTxHandler(app.logger),
	}
}

func (app *TreasuryApp) registerQuerier() {
	app.queriers["/proposals/"] = NewProposalQuerier(app.db, app.logger)
	app.queriers["/members/"] = NewMemberQuerier(app.db, app.logger)
	app.queriers["/treasury/"] = NewTreasuryQuerier(app.db, app.logger)
	app.queriers["/votes/"] = NewVoteQuerier(app.db, app.logger)
}

// DeliverTx decodes, authenticates and applies one transaction. The
// returned Result carries a non-zero code instead of an error for
// rejections so callers can report them uniformly.
func (app *TreasuryApp) DeliverTx(ctx context.Context, raw []byte) (res *handler.Result) {
	btx, err := tx.UnmarshalTreasuryTx(raw)
	if err != nil {
		return &handler.Result{Code: 1, Log: err.Error()}
	}
	var sender common.Address
	if btx.Type != tx.TreasuryTxTypeDeposit || len(btx.Sig) > 0 {
		sender, err = btx.Sender([]byte(app.db.Header().TreasuryID))
		if err != nil {
			app.logger.Info("tx sender recover fail", "type", btx.Type, "err", err)
			return &handler.Result{Code: 1, Log: err.Error()}
		}
	}
	hdlr, ok := app.txHdlrs[btx.Type]
	if !ok {
		return &handler.Result{Code: 1, Log: tx.ErrUnsupportedTxType.Error()}
	}
	res, err = hdlr.Apply(ctx, app.db, btx, sender)
	if err != nil {
		return &handler.Result{Code: 1, Log: err.Error()}
	}
	return res
}
