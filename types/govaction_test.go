package types

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGovActionRoundTrip(t *testing.T) {
	member := common.HexToAddress("0x0000000000000000000000000000000000000004")

	act, err := DecodeGovAction(AddMemberAction(member).Encode())
	require.NoError(t, err)
	assert.Equal(t, GovActionAddMember, act.Kind)
	assert.Equal(t, member, act.Member)

	act, err = DecodeGovAction(RemoveMemberAction(member).Encode())
	require.NoError(t, err)
	assert.Equal(t, GovActionRemoveMember, act.Kind)
	assert.Equal(t, member, act.Member)

	act, err = DecodeGovAction(SetThresholdAction(3).Encode())
	require.NoError(t, err)
	assert.Equal(t, GovActionSetThreshold, act.Kind)
	assert.Equal(t, uint64(3), act.Threshold)
}

func TestDecodeGovActionRejects(t *testing.T) {
	bad := []string{
		"",
		"pay the bill",
		"add_member",
		"add_member notanaddress",
		"set_threshold many",
		"promote 0x0000000000000000000000000000000000000004",
		"add_member 0x0000000000000000000000000000000000000004 extra",
	}
	for _, s := range bad {
		_, err := DecodeGovAction(s)
		assert.ErrorIs(t, err, ErrInvalidGovAction, "description %q", s)
	}
}
