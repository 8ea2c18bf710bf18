package main

import (
	"encoding/hex"
	"fmt"

	"github.com/calehh/treasury-app/tx"
	"github.com/spf13/cobra"
)

type newProposalArguments struct {
	Url         string
	Skey        string
	Kind        string
	Target      string
	Amount      uint64
	Description string
	Member      string
	Threshold   uint64
	NoSend      bool
}

var newProposalArgs newProposalArguments

var newProposalCmd = &cobra.Command{
	Use:   "newproposal",
	Short: "Submit a spending or governance proposal",
	Long:  ``,
	RunE:  newProposalRun,
}

func init() {
	urlFlag(newProposalCmd, &newProposalArgs.Url)
	skeyFlag(newProposalCmd, &newProposalArgs.Skey)
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Kind, "kind", "k", tx.ProposalKindSpend, "spend, add_member, remove_member or set_threshold")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Target, "target", "t", "", "spend recipient address")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.Amount, "amount", "a", 0, "spend amount")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Description, "description", "d", "", "proposal description")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Member, "member", "m", "", "member address for governance proposals")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.Threshold, "threshold", "", 0, "new threshold for set_threshold proposals")
	newProposalCmd.Flags().BoolVarP(&newProposalArgs.NoSend, "nosend", "", false, "not send transaction but print it")
}

func newProposalRun(cmd *cobra.Command, args []string) error {
	btx := &tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeProposal,
		Tx: &tx.ProposalTx{
			Kind:        newProposalArgs.Kind,
			Target:      newProposalArgs.Target,
			Amount:      newProposalArgs.Amount,
			Description: newProposalArgs.Description,
			Member:      newProposalArgs.Member,
			Threshold:   newProposalArgs.Threshold,
		},
	}
	treasuryID, err := getTreasuryID(newProposalArgs.Url)
	if err != nil {
		return err
	}
	if err := signTx(btx, newProposalArgs.Skey, treasuryID); err != nil {
		return err
	}
	if newProposalArgs.NoSend {
		dat, err := tx.MarshalTreasuryTx(btx)
		if err != nil {
			return err
		}
		fmt.Println("tx:", hex.EncodeToString(dat))
		return nil
	}
	return sendTx(newProposalArgs.Url, btx)
}
