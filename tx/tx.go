package tx

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type TreasuryTx struct {
	Version uint8          `json:"version"`
	Type    TreasuryTxType `json:"type"`
	Tx      any            `json:"tx"`
	Sig     []byte         `json:"sig"`
}

// DepositTx carries no signature requirement: anyone may fund the
// treasury.
type DepositTx struct {
	From   string `json:"from"`
	Amount uint64 `json:"amount"`
}

type ProposalTx struct {
	Kind        string `json:"kind"`
	Target      string `json:"target"`
	Amount      uint64 `json:"amount"`
	Description string `json:"description"`
	Member      string `json:"member"`
	Threshold   uint64 `json:"threshold"`
}

type VoteTx struct {
	Proposal uint64 `json:"proposal"`
	Approve  bool   `json:"approve"`
}

type ExecuteTx struct {
	Proposal uint64 `json:"proposal"`
}

type CancelTx struct {
	Proposal uint64 `json:"proposal"`
}

type treasuryTxTmpl[Tx any] struct {
	Version uint8          `json:"version"`
	Type    TreasuryTxType `json:"type"`
	Tx      Tx             `json:"tx"`
	Sig     []byte         `json:"sig"`
}

// SigData returns the byte string a member signs: the tx with the
// signature slot replaced by ext, which binds the treasury id so a
// signature never replays across treasuries.
func (tx *TreasuryTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = ext
	dat, err = json.Marshal(ntx)
	return
}

// Sender recovers the signing address.
func (tx *TreasuryTx) Sender(ext []byte) (addr common.Address, err error) {
	if len(tx.Sig) != SigLen {
		err = ErrSigMissing
		return
	}
	dat, err := tx.SigData(ext)
	if err != nil {
		return
	}
	hash := crypto.Keccak256(dat)
	pub, err := crypto.SigToPub(hash, tx.Sig)
	if err != nil {
		err = ErrSigInvalid
		return
	}
	addr = crypto.PubkeyToAddress(*pub)
	return
}

func parseTreasuryTxType(dat []byte) TreasuryTxType {
	var tx struct {
		Type TreasuryTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return TreasuryTxTypeUnknown
	}
	return tx.Type
}

func unmarshalTreasuryTx[Tx any](dat []byte) (btx *TreasuryTx, err error) {
	var txt treasuryTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	btx = new(TreasuryTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalTreasuryTx(dat []byte) (btx *TreasuryTx, err error) {
	tp := parseTreasuryTxType(dat)
	switch tp {
	case TreasuryTxTypeDeposit:
		return unmarshalTreasuryTx[DepositTx](dat)
	case TreasuryTxTypeProposal:
		return unmarshalTreasuryTx[ProposalTx](dat)
	case TreasuryTxTypeVote:
		return unmarshalTreasuryTx[VoteTx](dat)
	case TreasuryTxTypeExecute:
		return unmarshalTreasuryTx[ExecuteTx](dat)
	case TreasuryTxTypeCancel:
		return unmarshalTreasuryTx[CancelTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalTreasuryTx(btx *TreasuryTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
