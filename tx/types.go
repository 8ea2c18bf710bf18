package tx

import (
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

type TreasuryTxType uint8

const (
	TreasuryTxTypeUnknown  TreasuryTxType = 0
	TreasuryTxTypeDeposit  TreasuryTxType = 1
	TreasuryTxTypeProposal TreasuryTxType = 2
	TreasuryTxTypeVote     TreasuryTxType = 3
	TreasuryTxTypeExecute  TreasuryTxType = 4
	TreasuryTxTypeCancel   TreasuryTxType = 5
)

const (
	ProposalKindSpend        = "spend"
	ProposalKindAddMember    = "add_member"
	ProposalKindRemoveMember = "remove_member"
	ProposalKindSetThreshold = "set_threshold"
)

const (
	TreasuryTxVersion0 uint8 = 0
	TreasuryTxVersion1 uint8 = 1
)

const SigLen = crypto.SignatureLength

var (
	ErrInvalidTx         = errors.New("invalid tx")
	ErrUnsupportedTxType = errors.New("unsupported tx type")
	ErrUnmatchedTxType   = errors.New("unmatched tx type")

	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
	ErrSigMissing           = errors.New("signature missing")
	ErrSigInvalid           = errors.New("signature invalid")
	ErrProposalKindInvalid  = errors.New("proposal kind invalid")
)
