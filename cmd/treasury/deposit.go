package main

import (
	"encoding/hex"
	"fmt"

	"github.com/calehh/treasury-app/tx"
	"github.com/spf13/cobra"
)

type depositArguments struct {
	Url    string
	Skey   string
	From   string
	Amount uint64
	NoSend bool
}

var depositArgs depositArguments

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit funds into the treasury",
	Long:  ``,
	RunE:  depositRun,
}

func init() {
	urlFlag(depositCmd, &depositArgs.Url)
	depositCmd.Flags().StringVarP(&depositArgs.Skey, "skeyPath", "s", "", "private key path, deposits may go unsigned")
	depositCmd.Flags().StringVarP(&depositArgs.From, "from", "f", "", "depositor address, defaults to the signer")
	depositCmd.Flags().Uint64VarP(&depositArgs.Amount, "amount", "a", 0, "amount to deposit")
	depositCmd.Flags().BoolVarP(&depositArgs.NoSend, "nosend", "", false, "not send transaction but print it")
}

func depositRun(cmd *cobra.Command, args []string) error {
	btx := &tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeDeposit,
		Tx: &tx.DepositTx{
			From:   depositArgs.From,
			Amount: depositArgs.Amount,
		},
	}
	if depositArgs.Skey != "" {
		treasuryID, err := getTreasuryID(depositArgs.Url)
		if err != nil {
			return err
		}
		if err := signTx(btx, depositArgs.Skey, treasuryID); err != nil {
			return err
		}
	}
	if depositArgs.NoSend {
		dat, err := tx.MarshalTreasuryTx(btx)
		if err != nil {
			return err
		}
		fmt.Println("tx:", hex.EncodeToString(dat))
		return nil
	}
	return sendTx(depositArgs.Url, btx)
}
