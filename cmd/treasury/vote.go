package main

import (
	"github.com/calehh/treasury-app/tx"
	"github.com/spf13/cobra"
)

type voteArguments struct {
	Url      string
	Skey     string
	Proposal uint64
	Reject   bool
}

var voteArgs voteArguments

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Vote on an open proposal",
	Long:  ``,
	RunE:  voteRun,
}

func init() {
	urlFlag(voteCmd, &voteArgs.Url)
	skeyFlag(voteCmd, &voteArgs.Skey)
	voteCmd.Flags().Uint64VarP(&voteArgs.Proposal, "proposal", "p", 0, "proposal index")
	voteCmd.Flags().BoolVarP(&voteArgs.Reject, "reject", "r", false, "vote to reject instead of approve")
}

func voteRun(cmd *cobra.Command, args []string) error {
	btx := &tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeVote,
		Tx: &tx.VoteTx{
			Proposal: voteArgs.Proposal,
			Approve:  !voteArgs.Reject,
		},
	}
	treasuryID, err := getTreasuryID(voteArgs.Url)
	if err != nil {
		return err
	}
	if err := signTx(btx, voteArgs.Skey, treasuryID); err != nil {
		return err
	}
	return sendTx(voteArgs.Url, btx)
}
