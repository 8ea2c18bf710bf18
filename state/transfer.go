package state

import "github.com/ethereum/go-ethereum/common"

// NopTransferer acknowledges every transfer. The actual payout rail is an
// external collaborator; the ledger only needs its success or failure.
type NopTransferer struct{}

func (NopTransferer) Transfer(to common.Address, amount uint64) error {
	return nil
}

// TransferFunc adapts a function to the Transferer interface.
type TransferFunc func(to common.Address, amount uint64) error

func (f TransferFunc) Transfer(to common.Address, amount uint64) error {
	return f(to, amount)
}
