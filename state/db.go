package state

import (
	"errors"
	"sync"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/types"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"
)

const eventBufferSize = 256

// LedgerDB serializes every ledger operation: each mutating call applies
// atomically, commits one tree version and publishes its notifications to
// subscribers. It is the only entry point callers should use.
type LedgerDB struct {
	mtx sync.Mutex

	dir    string
	logger cosmoslog.Logger
	db     *iavl.MutableTree

	state *State
	subs  []chan types.Event
}

func NewLedgerDB(dir string, logger cosmoslog.Logger, transferer Transferer) (db *LedgerDB, err error) {
	logger = logger.With("module", "treasurydb")
	ldb, err := dbm.NewDB("treasury", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	tdb := iavl.NewMutableTree(ldb, 128, true, logger)
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	if transferer == nil {
		transferer = NopTransferer{}
	}
	st := newState(tdb, logger, transferer)
	err = st.load()
	if err != nil {
		logger.Error("from treasurydb load fail", "err", err)
		return nil, err
	}
	db = &LedgerDB{
		dir:    dir,
		logger: logger,
		db:     tdb,
		state:  st,
	}
	return
}

func (db *LedgerDB) Close() (err error) {
	err = db.db.Close()
	return
}

// Subscribe returns a channel receiving every notification emitted by
// committed operations. Slow consumers drop events rather than stall the
// ledger.
func (db *LedgerDB) Subscribe() <-chan types.Event {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	ch := make(chan types.Event, eventBufferSize)
	db.subs = append(db.subs, ch)
	return ch
}

func (db *LedgerDB) publish(events []types.Event) {
	for _, ev := range events {
		for _, sub := range db.subs {
			select {
			case sub <- ev:
			default:
				db.logger.Error("subscriber full, drop event", "type", ev.Type)
			}
		}
	}
}

// commit persists the operation's state changes and publishes its events.
// The executed-but-transfer-failed case still commits: the executed flag
// is part of the authoritative state even though the operation errors.
func (db *LedgerDB) commit(events []types.Event, opErr error) error {
	if opErr != nil && !errors.Is(opErr, ErrExecutionTransferFailed) {
		return opErr
	}
	if _, err := db.state.Update(); err != nil {
		db.logger.Error("state update fail", "err", err)
		return err
	}
	if _, err := db.state.save(); err != nil {
		db.logger.Error("state save fail", "err", err)
		return err
	}
	db.publish(events)
	return opErr
}

func (db *LedgerDB) Initialized() bool {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.initialized()
}

func (db *LedgerDB) InitLedger(gen *types.GenesisDoc) error {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	events, err := db.state.InitLedger(gen)
	return db.commit(events, err)
}

func (db *LedgerDB) Deposit(from common.Address, amount uint64) error {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	events, err := db.state.Deposit(from, amount)
	return db.commit(events, err)
}

func (db *LedgerDB) CreateProposal(proposer, target common.Address, amount uint64, description string) (id uint64, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	id, events, err := db.state.CreateProposal(proposer, target, amount, description)
	err = db.commit(events, err)
	return
}

func (db *LedgerDB) ProposeAddMember(proposer, member common.Address) (id uint64, err error) {
	return db.proposeGovAction(proposer, types.AddMemberAction(member))
}

func (db *LedgerDB) ProposeRemoveMember(proposer, member common.Address) (id uint64, err error) {
	return db.proposeGovAction(proposer, types.RemoveMemberAction(member))
}

func (db *LedgerDB) ProposeThresholdChange(proposer common.Address, threshold uint64) (id uint64, err error) {
	return db.proposeGovAction(proposer, types.SetThresholdAction(threshold))
}

func (db *LedgerDB) proposeGovAction(proposer common.Address, act types.GovAction) (id uint64, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	id, events, err := db.state.ProposeGovAction(proposer, act)
	err = db.commit(events, err)
	return
}

func (db *LedgerDB) Vote(voter common.Address, id uint64, approve bool) error {
	if db.state.execGuard.Load() {
		return ErrReentrancyRejected
	}
	db.mtx.Lock()
	defer db.mtx.Unlock()
	events, err := db.state.Vote(voter, id, approve)
	return db.commit(events, err)
}

// ExecuteProposal rejects immediately while another execution is in
// flight; the guard check precedes the mutex so a reentrant call from a
// Transferer fails fast instead of deadlocking.
func (db *LedgerDB) ExecuteProposal(caller common.Address, id uint64) error {
	if db.state.execGuard.Load() {
		return ErrReentrancyRejected
	}
	db.mtx.Lock()
	defer db.mtx.Unlock()
	events, err := db.state.ExecuteProposal(caller, id)
	return db.commit(events, err)
}

func (db *LedgerDB) CancelProposal(caller common.Address, id uint64) error {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	events, err := db.state.CancelProposal(caller, id)
	return db.commit(events, err)
}

func (db *LedgerDB) GetProposal(id uint64) (proposal *types.Proposal, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.GetProposal(id)
}

func (db *LedgerDB) GetVote(id uint64, member common.Address) (approve bool, hasVoted bool, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.GetVote(id, member)
}

func (db *LedgerDB) Members() []string {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.Members()
}

func (db *LedgerDB) Balance() uint64 {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.Balance()
}

func (db *LedgerDB) Threshold() uint64 {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.Threshold()
}

func (db *LedgerDB) ProposalCount() uint64 {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.ProposalCount()
}

func (db *LedgerDB) ActiveProposalCount() (uint64, error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.ActiveProposalCount()
}

func (db *LedgerDB) TreasuryAddress() common.Address {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.TreasuryAddress()
}

func (db *LedgerDB) Header() LedgerHeader {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	header := *db.state.header
	header.Members = db.state.Members()
	return header
}

func (db *LedgerDB) Version() int64 {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.dbVer
}

func (db *LedgerDB) Hash() common.Hash {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return db.state.Hash()
}
