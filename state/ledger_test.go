package state

import (
	"errors"
	"testing"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(i byte) common.Address {
	return common.BytesToAddress([]byte{i})
}

// newTestLedger opens a fresh ledger with three members and threshold 2.
// The creator addr(1) is the first member.
func newTestLedger(t *testing.T, transferer Transferer) (*LedgerDB, []common.Address) {
	t.Helper()
	db, err := NewLedgerDB(t.TempDir(), cosmoslog.NewNopLogger(), transferer)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	gen := &types.GenesisDoc{
		TreasuryID: "treasury-test",
		Creator:    addr(1).Hex(),
		Members:    []string{addr(2).Hex(), addr(3).Hex()},
		Threshold:  2,
	}
	require.NoError(t, db.InitLedger(gen))
	return db, []common.Address{addr(1), addr(2), addr(3)}
}

func TestInitLedger(t *testing.T) {
	db, members := newTestLedger(t, nil)

	got := db.Members()
	require.Len(t, got, 3)
	assert.Equal(t, members[0].Hex(), got[0], "creator is the first member")
	assert.Equal(t, uint64(2), db.Threshold())
	assert.Equal(t, uint64(0), db.Balance())
	assert.NotEqual(t, common.Address{}, db.TreasuryAddress())

	err := db.InitLedger(&types.GenesisDoc{
		TreasuryID: "other",
		Creator:    addr(1).Hex(),
		Members:    []string{addr(2).Hex()},
		Threshold:  1,
	})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestInitLedgerValidation(t *testing.T) {
	cases := []struct {
		name string
		gen  types.GenesisDoc
		err  error
	}{
		{"zero creator", types.GenesisDoc{TreasuryID: "t", Creator: (common.Address{}).Hex(), Members: []string{addr(2).Hex()}, Threshold: 1}, ErrInvalidMember},
		{"no members", types.GenesisDoc{TreasuryID: "t", Creator: addr(1).Hex(), Members: nil, Threshold: 1}, ErrInvalidMember},
		{"duplicate member", types.GenesisDoc{TreasuryID: "t", Creator: addr(1).Hex(), Members: []string{addr(2).Hex(), addr(2).Hex()}, Threshold: 1}, ErrInvalidMember},
		{"creator listed again", types.GenesisDoc{TreasuryID: "t", Creator: addr(1).Hex(), Members: []string{addr(1).Hex()}, Threshold: 1}, ErrInvalidMember},
		{"zero threshold", types.GenesisDoc{TreasuryID: "t", Creator: addr(1).Hex(), Members: []string{addr(2).Hex()}, Threshold: 0}, ErrThresholdOutOfRange},
		{"threshold above member count", types.GenesisDoc{TreasuryID: "t", Creator: addr(1).Hex(), Members: []string{addr(2).Hex()}, Threshold: 3}, ErrThresholdOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, err := NewLedgerDB(t.TempDir(), cosmoslog.NewNopLogger(), nil)
			require.NoError(t, err)
			defer db.Close()
			assert.ErrorIs(t, db.InitLedger(&tc.gen), tc.err)
			assert.False(t, db.Initialized())
		})
	}
}

func TestDeposit(t *testing.T) {
	db, _ := newTestLedger(t, nil)

	assert.ErrorIs(t, db.Deposit(addr(9), 0), ErrInvalidAmount)
	require.NoError(t, db.Deposit(addr(9), 10))
	assert.Equal(t, uint64(10), db.Balance())
	require.NoError(t, db.Deposit(addr(2), 5))
	assert.Equal(t, uint64(15), db.Balance())
}

func TestCreateProposalValidation(t *testing.T) {
	db, members := newTestLedger(t, nil)
	require.NoError(t, db.Deposit(addr(9), 10))

	_, err := db.CreateProposal(addr(9), addr(8), 1, "pay")
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = db.CreateProposal(members[0], common.Address{}, 1, "pay")
	assert.ErrorIs(t, err, ErrInvalidMember)

	_, err = db.CreateProposal(members[0], addr(8), 0, "pay")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = db.CreateProposal(members[0], addr(8), 11, "pay")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = db.CreateProposal(members[0], addr(8), 1, "")
	assert.ErrorIs(t, err, ErrInvalidDescription)

	long := make([]byte, types.MaxDescriptionLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = db.CreateProposal(members[0], addr(8), 1, string(long))
	assert.ErrorIs(t, err, ErrInvalidDescription)

	assert.Equal(t, uint64(0), db.ProposalCount(), "rejected proposals must not consume indices")

	id, err := db.CreateProposal(members[0], addr(8), 3, "pay the bill")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)
	assert.Equal(t, uint64(1), db.ProposalCount())

	p, err := db.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, members[0].Hex(), p.Proposer)
	assert.Equal(t, addr(8).Hex(), p.Target)
	assert.Equal(t, uint64(3), p.Amount)
	assert.Equal(t, types.ProposalStatusOpen, p.Status())

	_, err = db.GetProposal(7)
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestVoteAndAutoExecute(t *testing.T) {
	var gotTo common.Address
	var gotAmount uint64
	calls := 0
	db, members := newTestLedger(t, TransferFunc(func(to common.Address, amount uint64) error {
		calls++
		gotTo = to
		gotAmount = amount
		return nil
	}))
	require.NoError(t, db.Deposit(addr(9), 10))
	id, err := db.CreateProposal(members[0], addr(8), 1, "pay the bill")
	require.NoError(t, err)

	require.NoError(t, db.Vote(members[1], id, true))
	p, err := db.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.ApprovalCount)
	assert.False(t, p.Executed)
	assert.Equal(t, 0, calls)

	require.NoError(t, db.Vote(members[2], id, true))
	p, err = db.GetProposal(id)
	require.NoError(t, err)
	assert.True(t, p.Executed)
	assert.Equal(t, uint64(2), p.ApprovalCount)
	assert.Equal(t, 1, calls, "transfer runs exactly once")
	assert.Equal(t, addr(8), gotTo)
	assert.Equal(t, uint64(1), gotAmount)
	assert.Equal(t, uint64(9), db.Balance())

	// Terminal proposals accept nothing further.
	assert.ErrorIs(t, db.Vote(members[1], id, false), ErrProposalAlreadyTerminal)
	assert.ErrorIs(t, db.ExecuteProposal(members[1], id), ErrProposalAlreadyTerminal)
}

func TestVoteRules(t *testing.T) {
	db, members := newTestLedger(t, nil)
	require.NoError(t, db.Deposit(addr(9), 10))
	id, err := db.CreateProposal(members[0], addr(8), 1, "pay the bill")
	require.NoError(t, err)

	assert.ErrorIs(t, db.Vote(addr(9), id, true), ErrNotMember)
	assert.ErrorIs(t, db.Vote(members[0], id, true), ErrSelfVoteForbidden)

	err = db.Vote(members[1], id, false)
	require.NoError(t, err)
	p, _ := db.GetProposal(id)
	assert.Equal(t, uint64(0), p.ApprovalCount)
	assert.Equal(t, uint64(1), p.RejectionCount)

	// Re-voting the same choice is a no-op.
	require.NoError(t, db.Vote(members[1], id, false))
	p, _ = db.GetProposal(id)
	assert.Equal(t, uint64(1), p.RejectionCount)

	// Changing the vote moves the tally both ways.
	require.NoError(t, db.Vote(members[1], id, true))
	p, _ = db.GetProposal(id)
	assert.Equal(t, uint64(1), p.ApprovalCount)
	assert.Equal(t, uint64(0), p.RejectionCount)
	assert.Equal(t, types.ProposalStatusOpen, p.Status())

	approve, hasVoted, err := db.GetVote(id, members[1])
	require.NoError(t, err)
	assert.True(t, hasVoted)
	assert.True(t, approve)

	_, hasVoted, err = db.GetVote(id, members[2])
	require.NoError(t, err)
	assert.False(t, hasVoted)
}

func TestManualExecute(t *testing.T) {
	calls := 0
	db, members := newTestLedger(t, TransferFunc(func(to common.Address, amount uint64) error {
		calls++
		return nil
	}))
	require.NoError(t, db.Deposit(addr(9), 10))

	// Drain the balance below the pending proposal's amount so the
	// threshold vote fails fast and leaves the proposal open.
	pending, err := db.CreateProposal(members[0], addr(8), 8, "large payout")
	require.NoError(t, err)
	drain, err := db.CreateProposal(members[0], addr(7), 5, "drain")
	require.NoError(t, err)
	require.NoError(t, db.Vote(members[1], drain, true))
	require.NoError(t, db.Vote(members[2], drain, true))
	require.Equal(t, uint64(5), db.Balance())

	require.NoError(t, db.Vote(members[1], pending, true))
	err = db.Vote(members[2], pending, true)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.NotErrorIs(t, err, ErrExecutionTransferFailed)

	// Fail-fast execution discards the triggering vote entirely.
	p, err := db.GetProposal(pending)
	require.NoError(t, err)
	assert.False(t, p.Executed)
	assert.Equal(t, uint64(1), p.ApprovalCount)
	_, hasVoted, err := db.GetVote(pending, members[2])
	require.NoError(t, err)
	assert.False(t, hasVoted)

	// Manual execution demands the threshold already met.
	assert.ErrorIs(t, db.ExecuteProposal(members[1], pending), ErrInsufficientApprovals)
	assert.ErrorIs(t, db.ExecuteProposal(addr(9), pending), ErrNotMember)

	// Refund and retry: the same member's vote now lands and executes.
	require.NoError(t, db.Deposit(addr(9), 5))
	require.NoError(t, db.Vote(members[2], pending, true))
	p, err = db.GetProposal(pending)
	require.NoError(t, err)
	assert.True(t, p.Executed)
	assert.Equal(t, uint64(2), db.Balance())
	assert.Equal(t, 2, calls)
}

func TestExecuteTransferFailed(t *testing.T) {
	db, members := newTestLedger(t, TransferFunc(func(to common.Address, amount uint64) error {
		return errors.New("rail unavailable")
	}))
	require.NoError(t, db.Deposit(addr(9), 10))
	id, err := db.CreateProposal(members[0], addr(8), 4, "pay the bill")
	require.NoError(t, err)

	require.NoError(t, db.Vote(members[1], id, true))
	err = db.Vote(members[2], id, true)
	assert.ErrorIs(t, err, ErrExecutionTransferFailed)

	// The executed flag and the triggering vote both survive the failed
	// transfer; the balance does not move.
	p, err := db.GetProposal(id)
	require.NoError(t, err)
	assert.True(t, p.Executed)
	assert.Equal(t, uint64(2), p.ApprovalCount)
	approve, hasVoted, err := db.GetVote(id, members[2])
	require.NoError(t, err)
	assert.True(t, hasVoted)
	assert.True(t, approve)
	assert.Equal(t, uint64(10), db.Balance())

	assert.ErrorIs(t, db.Vote(members[1], id, false), ErrProposalAlreadyTerminal)
	assert.ErrorIs(t, db.ExecuteProposal(members[1], id), ErrProposalAlreadyTerminal)
}

func TestReentrantTransferRejected(t *testing.T) {
	var db *LedgerDB
	var members []common.Address
	var innerErr error
	db, members = newTestLedger(t, TransferFunc(func(to common.Address, amount uint64) error {
		innerErr = db.ExecuteProposal(members[1], 0)
		return nil
	}))
	require.NoError(t, db.Deposit(addr(9), 10))
	id, err := db.CreateProposal(members[0], addr(8), 1, "pay the bill")
	require.NoError(t, err)

	require.NoError(t, db.Vote(members[1], id, true))
	require.NoError(t, db.Vote(members[2], id, true))
	assert.ErrorIs(t, innerErr, ErrReentrancyRejected)

	p, err := db.GetProposal(id)
	require.NoError(t, err)
	assert.True(t, p.Executed)
	assert.Equal(t, uint64(9), db.Balance())
}

func TestCancelProposal(t *testing.T) {
	db, members := newTestLedger(t, nil)
	require.NoError(t, db.Deposit(addr(9), 10))
	id, err := db.CreateProposal(members[0], addr(8), 1, "pay the bill")
	require.NoError(t, err)
	require.NoError(t, db.Vote(members[1], id, true))

	assert.ErrorIs(t, db.CancelProposal(members[1], id), ErrNotProposer)
	require.NoError(t, db.CancelProposal(members[0], id))

	p, err := db.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, types.ProposalStatusCancelled, p.Status())
	assert.Equal(t, uint64(1), p.ApprovalCount, "recorded votes stay untouched")

	assert.ErrorIs(t, db.CancelProposal(members[0], id), ErrProposalAlreadyTerminal)
	assert.ErrorIs(t, db.Vote(members[2], id, true), ErrProposalAlreadyTerminal)
	assert.ErrorIs(t, db.ExecuteProposal(members[1], id), ErrProposalAlreadyTerminal)
}

func TestGovAddMember(t *testing.T) {
	db, members := newTestLedger(t, nil)

	_, err := db.ProposeAddMember(addr(9), addr(4))
	assert.ErrorIs(t, err, ErrNotMember)

	id, err := db.ProposeAddMember(members[0], addr(4))
	require.NoError(t, err)
	p, err := db.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, db.TreasuryAddress().Hex(), p.Target)
	assert.Equal(t, uint64(0), p.Amount)

	require.NoError(t, db.Vote(members[1], id, true))
	require.NoError(t, db.Vote(members[2], id, true))

	got := db.Members()
	require.Len(t, got, 4)
	assert.Equal(t, addr(4).Hex(), got[3])
}

func TestGovSetThresholdOutOfRange(t *testing.T) {
	db, members := newTestLedger(t, nil)

	id, err := db.ProposeThresholdChange(members[0], 5)
	require.NoError(t, err)
	require.NoError(t, db.Vote(members[1], id, true))
	err = db.Vote(members[2], id, true)
	assert.ErrorIs(t, err, ErrExecutionTransferFailed)
	assert.ErrorIs(t, err, ErrThresholdOutOfRange)

	// Illegal at execution time: the proposal ends executed-but-failed
	// and the threshold stays put.
	p, err := db.GetProposal(id)
	require.NoError(t, err)
	assert.True(t, p.Executed)
	assert.Equal(t, uint64(2), db.Threshold())
}

func TestGovRemoveMemberAndClamp(t *testing.T) {
	db, _ := newTestLedger(t, nil)

	// White-box checks on the privileged self-call.
	_, err := db.state.applyGovAction(types.RemoveMemberAction(addr(9)))
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = db.state.applyGovAction(types.AddMemberAction(addr(2)))
	assert.ErrorIs(t, err, ErrInvalidMember, "duplicate add must fail")

	_, err = db.state.applyGovAction(types.RemoveMemberAction(addr(3)))
	require.NoError(t, err)
	assert.Len(t, db.state.Members(), 2)
	assert.Equal(t, uint64(2), db.state.Threshold(), "threshold 2 of 2 needs no clamp")

	events, err := db.state.applyGovAction(types.RemoveMemberAction(addr(2)))
	require.NoError(t, err)
	assert.Len(t, db.state.Members(), 1)
	assert.Equal(t, uint64(1), db.state.Threshold(), "threshold clamps to member count")
	require.Len(t, events, 2)
	assert.Equal(t, types.EventMemberRemovedType, events[0].Type)
	assert.Equal(t, types.EventThresholdChangedType, events[1].Type)

	_, err = db.state.applyGovAction(types.RemoveMemberAction(addr(1)))
	assert.ErrorIs(t, err, ErrLastMemberRemovalForbidden)
}

func TestActiveProposalCount(t *testing.T) {
	db, members := newTestLedger(t, nil)
	require.NoError(t, db.Deposit(addr(9), 10))

	p0, err := db.CreateProposal(members[0], addr(8), 1, "one")
	require.NoError(t, err)
	_, err = db.CreateProposal(members[0], addr(8), 1, "two")
	require.NoError(t, err)
	p2, err := db.CreateProposal(members[0], addr(8), 1, "three")
	require.NoError(t, err)

	require.NoError(t, db.CancelProposal(members[0], p0))
	require.NoError(t, db.Vote(members[1], p2, true))
	require.NoError(t, db.Vote(members[2], p2, true))

	count, err := db.ActiveProposalCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	assert.Equal(t, uint64(3), db.ProposalCount())
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	db, err := NewLedgerDB(dir, cosmoslog.NewNopLogger(), nil)
	require.NoError(t, err)
	gen := &types.GenesisDoc{
		TreasuryID: "treasury-test",
		Creator:    addr(1).Hex(),
		Members:    []string{addr(2).Hex(), addr(3).Hex()},
		Threshold:  2,
	}
	require.NoError(t, db.InitLedger(gen))
	require.NoError(t, db.Deposit(addr(9), 10))
	id, err := db.CreateProposal(addr(1), addr(8), 1, "pay the bill")
	require.NoError(t, err)
	require.NoError(t, db.Vote(addr(2), id, true))
	hash := db.Hash()
	require.NoError(t, db.Close())

	db, err = NewLedgerDB(dir, cosmoslog.NewNopLogger(), nil)
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.Initialized())
	assert.Equal(t, "treasury-test", db.Header().TreasuryID)
	assert.Equal(t, uint64(10), db.Balance())
	assert.Equal(t, uint64(1), db.ProposalCount())
	assert.Equal(t, hash, db.Hash())

	p, err := db.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.ApprovalCount)
	approve, hasVoted, err := db.GetVote(id, addr(2))
	require.NoError(t, err)
	assert.True(t, hasVoted)
	assert.True(t, approve)
}

func TestSubscribe(t *testing.T) {
	db, _ := newTestLedger(t, nil)
	ch := db.Subscribe()

	require.NoError(t, db.Deposit(addr(9), 10))
	ev := <-ch
	require.Equal(t, types.EventDepositType, ev.Type)
	dep := types.DecodeEventDeposit(ev)
	require.NotNil(t, dep)
	assert.Equal(t, addr(9).Hex(), dep.From)
	assert.Equal(t, uint64(10), dep.Amount)
	assert.Equal(t, uint64(10), dep.Balance)
}
