package main

import (
	"fmt"

	"github.com/calehh/treasury-app/crypto"
	"github.com/spf13/cobra"
)

type keygenArguments struct {
	Out string
}

var keygenArgs keygenArguments

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a member private key file",
	Long:  ``,
	RunE:  keygenRun,
}

func init() {
	keygenCmd.Flags().StringVarP(&keygenArgs.Out, "out", "o", "./member_priv_key", "output key file path")
}

func keygenRun(cmd *cobra.Command, args []string) error {
	pv, err := crypto.GenerateFilePV(keygenArgs.Out)
	if err != nil {
		return err
	}
	fmt.Println("key file:", keygenArgs.Out)
	fmt.Println("address:", pv.Address())
	return nil
}
