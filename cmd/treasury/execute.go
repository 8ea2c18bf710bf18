package main

import (
	"github.com/calehh/treasury-app/tx"
	"github.com/spf13/cobra"
)

type executeArguments struct {
	Url      string
	Skey     string
	Proposal uint64
}

var executeArgs executeArguments

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute a proposal that reached the approval threshold",
	Long:  ``,
	RunE:  executeRun,
}

func init() {
	urlFlag(executeCmd, &executeArgs.Url)
	skeyFlag(executeCmd, &executeArgs.Skey)
	executeCmd.Flags().Uint64VarP(&executeArgs.Proposal, "proposal", "p", 0, "proposal index")
}

func executeRun(cmd *cobra.Command, args []string) error {
	btx := &tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeExecute,
		Tx: &tx.ExecuteTx{
			Proposal: executeArgs.Proposal,
		},
	}
	treasuryID, err := getTreasuryID(executeArgs.Url)
	if err != nil {
		return err
	}
	if err := signTx(btx, executeArgs.Skey, treasuryID); err != nil {
		return err
	}
	return sendTx(executeArgs.Url, btx)
}
