package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Governance proposals carry their intended action in the proposal
// description, encoded as a short human-readable statement. The action is
// parsed and validated only when the proposal executes.

type GovActionKind string

const (
	GovActionAddMember    GovActionKind = "add_member"
	GovActionRemoveMember GovActionKind = "remove_member"
	GovActionSetThreshold GovActionKind = "set_threshold"
)

var ErrInvalidGovAction = errors.New("invalid governance action")

type GovAction struct {
	Kind      GovActionKind
	Member    common.Address
	Threshold uint64
}

func AddMemberAction(member common.Address) GovAction {
	return GovAction{Kind: GovActionAddMember, Member: member}
}

func RemoveMemberAction(member common.Address) GovAction {
	return GovAction{Kind: GovActionRemoveMember, Member: member}
}

func SetThresholdAction(threshold uint64) GovAction {
	return GovAction{Kind: GovActionSetThreshold, Threshold: threshold}
}

func (a GovAction) Encode() string {
	switch a.Kind {
	case GovActionSetThreshold:
		return fmt.Sprintf("%s %v", a.Kind, a.Threshold)
	default:
		return fmt.Sprintf("%s %s", a.Kind, a.Member.Hex())
	}
}

func DecodeGovAction(description string) (act GovAction, err error) {
	fields := strings.Fields(description)
	if len(fields) != 2 {
		err = ErrInvalidGovAction
		return
	}
	act.Kind = GovActionKind(fields[0])
	switch act.Kind {
	case GovActionAddMember, GovActionRemoveMember:
		if !common.IsHexAddress(fields[1]) {
			err = ErrInvalidGovAction
			return
		}
		act.Member = common.HexToAddress(fields[1])
	case GovActionSetThreshold:
		act.Threshold, err = strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			err = ErrInvalidGovAction
		}
	default:
		err = ErrInvalidGovAction
	}
	return
}
