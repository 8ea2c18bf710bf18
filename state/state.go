package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync/atomic"
	"time"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/types"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	KeyHeader        = "s"
	KeyProposalBody  = "p%v"
	KeyProposalIndex = "pi"
)

var (
	ErrNotMember                  = errors.New("not member")
	ErrProposalNotFound           = errors.New("proposal not found")
	ErrProposalAlreadyTerminal    = errors.New("proposal already terminal")
	ErrSelfVoteForbidden          = errors.New("self vote forbidden")
	ErrInsufficientApprovals      = errors.New("insufficient approvals")
	ErrInsufficientBalance        = errors.New("insufficient balance")
	ErrInvalidAmount              = errors.New("invalid amount")
	ErrInvalidDescription         = errors.New("invalid description")
	ErrInvalidMember              = errors.New("invalid member")
	ErrLastMemberRemovalForbidden = errors.New("last member removal forbidden")
	ErrThresholdOutOfRange        = errors.New("threshold out of range")
	ErrNotProposer                = errors.New("not proposer")
	ErrReentrancyRejected         = errors.New("reentrancy rejected")
	ErrExecutionTransferFailed    = errors.New("execution transfer failed")
	ErrAlreadyInitialized         = errors.New("ledger already initialized")
	ErrNotInitialized             = errors.New("ledger not initialized")
)

// Transferer performs the external fund transfer when a spending proposal
// executes. It is the single point where control leaves the ledger; an
// implementation must not call back into the ledger.
type Transferer interface {
	Transfer(to common.Address, amount uint64) error
}

// LedgerHeader is the authoritative treasury record: membership set in
// insertion order, approval threshold and fund balance.
type LedgerHeader struct {
	TreasuryID string   `json:"treasury_id"`
	Address    string   `json:"address"`
	Threshold  uint64   `json:"threshold"`
	Members    []string `json:"members"`
	Balance    uint64   `json:"balance"`
	RootHash   []byte   `json:"root_hash"`
	Hash       []byte   `json:"hash"`
}

type State struct {
	logger     cosmoslog.Logger
	db         *iavl.MutableTree
	dbVer      int64
	transferer Transferer

	header        *LedgerHeader
	proposalCount uint64
	execGuard     atomic.Bool

	proposals    map[uint64]*types.Proposal
	modProposals map[uint64]struct{}
	headerDirty  bool
	countDirty   bool
}

func newState(db *iavl.MutableTree, logger cosmoslog.Logger, transferer Transferer) *State {
	return &State{
		logger:       logger,
		db:           db,
		dbVer:        0,
		transferer:   transferer,
		header:       new(LedgerHeader),
		proposals:    make(map[uint64]*types.Proposal),
		modProposals: make(map[uint64]struct{}),
	}
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyProposalIndex))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return err
		}
	}
	s.proposalCount = new(big.Int).SetBytes(val).Uint64()
	val, err = s.db.Get([]byte(KeyHeader))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = json.Unmarshal(val, s.header)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) initialized() bool {
	return s.header.TreasuryID != ""
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		if s.header.RootHash == nil {
			s.header.RootHash = make([]byte, len(rootHash))
		}
		copy(s.header.RootHash, rootHash)
		if s.header.Hash == nil {
			s.header.Hash = make([]byte, len(h))
		}
		copy(s.header.Hash, h[:])
	}
	return
}

// Update flushes all pending in-memory changes into the working tree and
// returns the resulting state hash. Nothing is durable until save.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	var val []byte
	val, err = json.Marshal(s.header)
	if err != nil {
		return
	}
	_, err = s.db.Set([]byte(KeyHeader), val)
	if err != nil {
		return
	}

	if s.countDirty {
		_, err = s.db.Set([]byte(KeyProposalIndex), new(big.Int).SetUint64(s.proposalCount).Bytes())
		if err != nil {
			return
		}
	}

	n := len(s.modProposals)
	if n > 0 {
		idxs := make([]uint64, 0, n)
		for idx := range s.modProposals {
			idxs = append(idxs, idx)
		}
		sort.Slice(idxs, func(i, j int) bool {
			return idxs[i] < idxs[j]
		})
		for _, idx := range idxs {
			proposal := s.proposals[idx]
			key := fmt.Sprintf(KeyProposalBody, idx)
			val, err = json.Marshal(proposal)
			if err != nil {
				return
			}
			_, err = s.db.Set([]byte(key), val)
			if err != nil {
				return
			}
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.modProposals = make(map[uint64]struct{})
	s.headerDirty = false
	s.countDirty = false
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}

	s.dbVer = ver
	h = s.calcHash(hash, true)

	return
}

func (s *State) Header() *LedgerHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) TreasuryAddress() common.Address {
	return common.HexToAddress(s.header.Address)
}

func (s *State) isMember(addr common.Address) bool {
	hex := addr.Hex()
	for _, m := range s.header.Members {
		if m == hex {
			return true
		}
	}
	return false
}

func (s *State) memberCount() uint64 {
	return uint64(len(s.header.Members))
}

// InitLedger seeds the treasury from genesis. The creator is always added
// as the first member ahead of the genesis member list.
func (s *State) InitLedger(gen *types.GenesisDoc) (events []types.Event, err error) {
	if s.initialized() {
		return nil, ErrAlreadyInitialized
	}
	creator := common.HexToAddress(gen.Creator)
	if creator == (common.Address{}) {
		return nil, ErrInvalidMember
	}
	if len(gen.Members) == 0 {
		return nil, ErrInvalidMember
	}
	members := []string{creator.Hex()}
	for _, m := range gen.Members {
		addr := common.HexToAddress(m)
		if addr == (common.Address{}) || addr == creator {
			return nil, ErrInvalidMember
		}
		for _, existing := range members {
			if existing == addr.Hex() {
				return nil, ErrInvalidMember
			}
		}
		members = append(members, addr.Hex())
	}
	if gen.Threshold == 0 || gen.Threshold > uint64(len(members)) {
		return nil, ErrThresholdOutOfRange
	}

	s.header.TreasuryID = gen.TreasuryID
	s.header.Address = crypto.CreateAddress(creator, 0).Hex()
	s.header.Members = members
	s.header.Threshold = gen.Threshold
	s.header.Balance = 0
	s.headerDirty = true

	for i, m := range members {
		events = append(events, types.EncodeEventMemberAdded(&types.EventMemberAdded{
			Member:      m,
			MemberCount: uint64(i + 1),
		}))
	}
	events = append(events, types.EncodeEventThresholdChanged(&types.EventThresholdChanged{
		OldThreshold: 0,
		NewThreshold: gen.Threshold,
	}))
	return
}

// Deposit credits the fund. No membership required.
func (s *State) Deposit(from common.Address, amount uint64) (events []types.Event, err error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	s.header.Balance += amount
	s.headerDirty = true
	events = append(events, types.EncodeEventDeposit(&types.EventDeposit{
		From:    from.Hex(),
		Amount:  amount,
		Balance: s.header.Balance,
	}))
	return
}

func (s *State) addProposal(proposer, target common.Address, amount uint64, description string) (id uint64, events []types.Event) {
	id = s.proposalCount
	proposal := &types.Proposal{
		Index:       id,
		Proposer:    proposer.Hex(),
		Target:      target.Hex(),
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().Unix(),
		Votes:       make(map[string]bool),
	}
	s.proposalCount++
	s.countDirty = true
	s.proposals[id] = proposal
	s.modProposals[id] = struct{}{}

	events = append(events, types.EncodeEventProposalCreated(&types.EventProposalCreated{
		Proposal:    id,
		Proposer:    proposal.Proposer,
		Target:      proposal.Target,
		Amount:      amount,
		Description: description,
		CreatedAt:   proposal.CreatedAt,
	}))
	return
}

// CreateProposal registers a spending proposal in Open state.
func (s *State) CreateProposal(proposer, target common.Address, amount uint64, description string) (id uint64, events []types.Event, err error) {
	s.logger.Debug("create proposal", "proposer", proposer.Hex(), "amount", amount)
	if !s.isMember(proposer) {
		err = ErrNotMember
		return
	}
	if target == (common.Address{}) {
		err = ErrInvalidMember
		return
	}
	if amount == 0 {
		err = ErrInvalidAmount
		return
	}
	if amount > s.header.Balance {
		err = ErrInsufficientBalance
		return
	}
	if description == "" || len(description) > types.MaxDescriptionLen {
		err = ErrInvalidDescription
		return
	}
	id, events = s.addProposal(proposer, target, amount, description)
	return
}

// Governance proposals target the treasury itself and carry the intended
// action in the description. Legality of the action is checked only when
// the proposal executes, against the membership state at that time.
func (s *State) ProposeGovAction(proposer common.Address, act types.GovAction) (id uint64, events []types.Event, err error) {
	s.logger.Debug("propose governance action", "proposer", proposer.Hex(), "kind", act.Kind)
	if !s.isMember(proposer) {
		err = ErrNotMember
		return
	}
	id, events = s.addProposal(proposer, s.TreasuryAddress(), 0, act.Encode())
	return
}

// Vote records or changes a member's vote. When the approval tally reaches
// the threshold the proposal executes synchronously within the same call.
func (s *State) Vote(voter common.Address, id uint64, approve bool) (events []types.Event, err error) {
	s.logger.Debug("apply vote", "voter", voter.Hex(), "proposal", id, "approve", approve)
	if !s.isMember(voter) {
		err = ErrNotMember
		return
	}
	stored, err := s.getProposal(id)
	if err != nil {
		return
	}
	if stored.Terminal() {
		err = ErrProposalAlreadyTerminal
		return
	}
	if voter.Hex() == stored.Proposer {
		err = ErrSelfVoteForbidden
		return
	}

	// Work on a clone so a failed auto-execution leaves no vote behind.
	proposal := stored.Clone()
	hex := voter.Hex()
	prev, hasVoted := proposal.Votes[hex]
	if hasVoted && prev == approve {
		// Same choice again: nothing to re-count, nothing to announce.
		return nil, nil
	}
	proposal.Votes[hex] = approve
	if hasVoted {
		if approve {
			proposal.ApprovalCount++
			proposal.RejectionCount--
		} else {
			proposal.ApprovalCount--
			proposal.RejectionCount++
		}
		events = append(events, types.EncodeEventVoteChanged(&types.EventVoteChanged{
			Proposal:       id,
			Voter:          hex,
			OldApprove:     prev,
			NewApprove:     approve,
			ApprovalCount:  proposal.ApprovalCount,
			RejectionCount: proposal.RejectionCount,
		}))
	} else {
		if approve {
			proposal.ApprovalCount++
		} else {
			proposal.RejectionCount++
		}
		events = append(events, types.EncodeEventVoteCast(&types.EventVoteCast{
			Proposal:       id,
			Voter:          hex,
			Approve:        approve,
			ApprovalCount:  proposal.ApprovalCount,
			RejectionCount: proposal.RejectionCount,
		}))
	}

	if proposal.ApprovalCount >= s.header.Threshold && !proposal.Executed {
		execEvents, execErr := s.executeProposal(voter, proposal)
		if execErr != nil && !errors.Is(execErr, ErrExecutionTransferFailed) {
			// Fail-fast execution error: the whole vote operation fails
			// and the cloned tally is discarded.
			return nil, execErr
		}
		events = append(events, execEvents...)
		s.proposals[id] = proposal
		s.modProposals[id] = struct{}{}
		err = execErr
		return
	}

	s.proposals[id] = proposal
	s.modProposals[id] = struct{}{}
	return
}

// ExecuteProposal is the manual execution trigger. The reentrancy guard
// around execution lives in LedgerDB.
func (s *State) ExecuteProposal(caller common.Address, id uint64) (events []types.Event, err error) {
	s.logger.Debug("execute proposal", "caller", caller.Hex(), "proposal", id)
	if !s.isMember(caller) {
		err = ErrNotMember
		return
	}
	stored, err := s.getProposal(id)
	if err != nil {
		return
	}
	if stored.Terminal() {
		err = ErrProposalAlreadyTerminal
		return
	}
	if stored.ApprovalCount < s.header.Threshold {
		err = ErrInsufficientApprovals
		return
	}
	proposal := stored.Clone()
	events, err = s.executeProposal(caller, proposal)
	if err != nil && !errors.Is(err, ErrExecutionTransferFailed) {
		return nil, err
	}
	s.proposals[id] = proposal
	s.modProposals[id] = struct{}{}
	return
}

// executeProposal runs the execution algorithm on an already-validated
// open proposal with enough approvals. The executed flag is set before the
// external dispatch; if the dispatch fails the flag stays set and the
// proposal is permanently stuck in its executed-but-failed state.
func (s *State) executeProposal(executor common.Address, proposal *types.Proposal) (events []types.Event, err error) {
	if !s.execGuard.CompareAndSwap(false, true) {
		err = ErrReentrancyRejected
		return
	}
	defer s.execGuard.Store(false)
	if proposal.Executed {
		err = ErrProposalAlreadyTerminal
		return
	}
	if s.header.Balance < proposal.Amount {
		err = ErrInsufficientBalance
		return
	}
	proposal.Executed = true

	target := common.HexToAddress(proposal.Target)
	var dispatchErr error
	var dispatchEvents []types.Event
	if target == s.TreasuryAddress() {
		var act types.GovAction
		act, dispatchErr = types.DecodeGovAction(proposal.Description)
		if dispatchErr == nil {
			dispatchEvents, dispatchErr = s.applyGovAction(act)
		}
	} else {
		dispatchErr = s.transferer.Transfer(target, proposal.Amount)
		if dispatchErr == nil {
			s.header.Balance -= proposal.Amount
			s.headerDirty = true
		}
	}

	events = append(events, dispatchEvents...)
	events = append(events, types.EncodeEventProposalExecuted(&types.EventProposalExecuted{
		Proposal: proposal.Index,
		Executor: executor.Hex(),
		Target:   proposal.Target,
		Amount:   proposal.Amount,
		Success:  dispatchErr == nil,
	}))
	if dispatchErr != nil {
		s.logger.Error("proposal dispatch fail", "proposal", proposal.Index, "err", dispatchErr)
		err = errors.Join(ErrExecutionTransferFailed, dispatchErr)
		return
	}
	if target != s.TreasuryAddress() && proposal.Amount > 0 {
		events = append(events, types.EncodeEventWithdraw(&types.EventWithdraw{
			Proposal: proposal.Index,
			To:       proposal.Target,
			Amount:   proposal.Amount,
			Balance:  s.header.Balance,
		}))
	}
	return
}

// applyGovAction performs the privileged self-call of a governance
// proposal. Reachable only from executeProposal, never from callers.
func (s *State) applyGovAction(act types.GovAction) (events []types.Event, err error) {
	switch act.Kind {
	case types.GovActionAddMember:
		if act.Member == (common.Address{}) {
			err = ErrInvalidMember
			return
		}
		if s.isMember(act.Member) {
			err = ErrInvalidMember
			return
		}
		s.header.Members = append(s.header.Members, act.Member.Hex())
		s.headerDirty = true
		events = append(events, types.EncodeEventMemberAdded(&types.EventMemberAdded{
			Member:      act.Member.Hex(),
			MemberCount: s.memberCount(),
		}))
	case types.GovActionRemoveMember:
		if !s.isMember(act.Member) {
			err = ErrNotMember
			return
		}
		if s.memberCount() == 1 {
			err = ErrLastMemberRemovalForbidden
			return
		}
		hex := act.Member.Hex()
		for i, m := range s.header.Members {
			if m == hex {
				last := len(s.header.Members) - 1
				s.header.Members[i] = s.header.Members[last]
				s.header.Members = s.header.Members[:last]
				break
			}
		}
		s.headerDirty = true
		events = append(events, types.EncodeEventMemberRemoved(&types.EventMemberRemoved{
			Member:      hex,
			MemberCount: s.memberCount(),
		}))
		if s.header.Threshold > s.memberCount() {
			old := s.header.Threshold
			s.header.Threshold = s.memberCount()
			events = append(events, types.EncodeEventThresholdChanged(&types.EventThresholdChanged{
				OldThreshold: old,
				NewThreshold: s.header.Threshold,
			}))
		}
	case types.GovActionSetThreshold:
		if act.Threshold == 0 || act.Threshold > s.memberCount() {
			err = ErrThresholdOutOfRange
			return
		}
		old := s.header.Threshold
		s.header.Threshold = act.Threshold
		s.headerDirty = true
		events = append(events, types.EncodeEventThresholdChanged(&types.EventThresholdChanged{
			OldThreshold: old,
			NewThreshold: act.Threshold,
		}))
	default:
		err = types.ErrInvalidGovAction
	}
	return
}

// CancelProposal is the proposer's terminal exit for an Open proposal.
// Votes already recorded are kept untouched.
func (s *State) CancelProposal(caller common.Address, id uint64) (events []types.Event, err error) {
	stored, err := s.getProposal(id)
	if err != nil {
		return
	}
	if caller.Hex() != stored.Proposer {
		err = ErrNotProposer
		return
	}
	if stored.Terminal() {
		err = ErrProposalAlreadyTerminal
		return
	}
	proposal := stored.Clone()
	proposal.Cancelled = true
	s.proposals[id] = proposal
	s.modProposals[id] = struct{}{}
	events = append(events, types.EncodeEventProposalCancelled(&types.EventProposalCancelled{
		Proposal: id,
		Proposer: proposal.Proposer,
	}))
	return
}

func (s *State) getProposal(id uint64) (proposal *types.Proposal, err error) {
	if id >= s.proposalCount {
		err = ErrProposalNotFound
		return
	}
	if p, ok := s.proposals[id]; ok {
		return p, nil
	}
	key := fmt.Sprintf(KeyProposalBody, id)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrProposalNotFound
		return
	}
	proposal = new(types.Proposal)
	err = json.Unmarshal(val, proposal)
	if err != nil {
		proposal = nil
		return
	}
	if proposal.Votes == nil {
		proposal.Votes = make(map[string]bool)
	}
	s.proposals[id] = proposal
	return
}

func (s *State) GetProposal(id uint64) (proposal *types.Proposal, err error) {
	p, err := s.getProposal(id)
	if err != nil {
		return
	}
	proposal = p.Clone()
	return
}

func (s *State) GetVote(id uint64, member common.Address) (approve bool, hasVoted bool, err error) {
	p, err := s.getProposal(id)
	if err != nil {
		return
	}
	approve, hasVoted = p.Vote(member.Hex())
	return
}

func (s *State) Members() []string {
	members := make([]string, len(s.header.Members))
	copy(members, s.header.Members)
	return members
}

func (s *State) Balance() uint64 {
	return s.header.Balance
}

func (s *State) Threshold() uint64 {
	return s.header.Threshold
}

func (s *State) ProposalCount() uint64 {
	return s.proposalCount
}

func (s *State) ActiveProposalCount() (count uint64, err error) {
	for id := uint64(0); id < s.proposalCount; id++ {
		p, err := s.getProposal(id)
		if err != nil {
			return 0, err
		}
		if !p.Terminal() {
			count++
		}
	}
	return
}
