package main

import (
	"github.com/calehh/treasury-app/tx"
	"github.com/spf13/cobra"
)

type cancelArguments struct {
	Url      string
	Skey     string
	Proposal uint64
}

var cancelArgs cancelArguments

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel an open proposal you created",
	Long:  ``,
	RunE:  cancelRun,
}

func init() {
	urlFlag(cancelCmd, &cancelArgs.Url)
	skeyFlag(cancelCmd, &cancelArgs.Skey)
	cancelCmd.Flags().Uint64VarP(&cancelArgs.Proposal, "proposal", "p", 0, "proposal index")
}

func cancelRun(cmd *cobra.Command, args []string) error {
	btx := &tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeCancel,
		Tx: &tx.CancelTx{
			Proposal: cancelArgs.Proposal,
		},
	}
	treasuryID, err := getTreasuryID(cancelArgs.Url)
	if err != nil {
		return err
	}
	if err := signTx(btx, cancelArgs.Skey, treasuryID); err != nil {
		return err
	}
	return sendTx(cancelArgs.Url, btx)
}
