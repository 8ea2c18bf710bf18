package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventVoteCastRoundTrip(t *testing.T) {
	ev := &EventVoteCast{
		Proposal:       7,
		Voter:          "0x0000000000000000000000000000000000000002",
		Approve:        true,
		ApprovalCount:  2,
		RejectionCount: 1,
	}
	got := DecodeEventVoteCast(EncodeEventVoteCast(ev))
	require.NotNil(t, got)
	assert.Equal(t, ev, got)
}

func TestEventProposalExecutedRoundTrip(t *testing.T) {
	ev := &EventProposalExecuted{
		Proposal: 3,
		Executor: "0x0000000000000000000000000000000000000002",
		Target:   "0x0000000000000000000000000000000000000008",
		Amount:   5,
		Success:  false,
	}
	got := DecodeEventProposalExecuted(EncodeEventProposalExecuted(ev))
	require.NotNil(t, got)
	assert.Equal(t, ev, got)
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	ev := Event{
		Type: EventVoteCastType,
		Attributes: []EventAttribute{
			{Key: "proposal", Value: "not-a-number"},
		},
	}
	assert.Nil(t, DecodeEventVoteCast(ev))
}

func TestProposalStatus(t *testing.T) {
	p := &Proposal{Index: 1, Votes: map[string]bool{}}
	assert.Equal(t, ProposalStatusOpen, p.Status())
	assert.False(t, p.Terminal())

	p.Cancelled = true
	assert.Equal(t, ProposalStatusCancelled, p.Status())
	assert.True(t, p.Terminal())

	p.Cancelled = false
	p.Executed = true
	assert.Equal(t, ProposalStatusExecuted, p.Status())
	assert.True(t, p.Terminal())
}

func TestProposalClone(t *testing.T) {
	p := &Proposal{Index: 1, Votes: map[string]bool{"a": true}}
	c := p.Clone()
	c.Votes["b"] = false
	c.ApprovalCount = 9

	assert.Len(t, p.Votes, 1)
	assert.Equal(t, uint64(0), p.ApprovalCount)
}
