package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	app_config "github.com/calehh/treasury-app/config"
	"github.com/calehh/treasury-app/types"
	"github.com/spf13/cobra"
)

type printInfo struct {
	TreasuryID string          `json:"treasury_id" yaml:"treasury_id"`
	Creator    string          `json:"creator" yaml:"creator"`
	GenFile    string          `json:"genesis_file" yaml:"genesis_file"`
	AppMessage json.RawMessage `json:"app_message" yaml:"app_message"`
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)

	return err
}

type initArguments struct {
	Home       string
	TreasuryID string
	Members    []string
	Threshold  uint64
	Overwrite  bool
}

var initArgs initArguments

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize owner key, genesis, and application configuration files",
	Long:  `Initialize the treasury's configuration files.`,
	Args:  cobra.ExactArgs(0),
	RunE:  initRun,
}

func init() {
	initCmd.Flags().BoolVarP(&initArgs.Overwrite, "overwrite", "o", false, "overwrite the genesis.json file")
	initCmd.Flags().StringVar(&initArgs.TreasuryID, "treasury-id", "", "genesis file treasury-id, if left blank will be randomly created")
	initCmd.Flags().StringVar(&initArgs.Home, "home", "", "config")
	initCmd.Flags().StringSliceVar(&initArgs.Members, "members", nil, "founding member addresses besides the creator")
	initCmd.Flags().Uint64Var(&initArgs.Threshold, "threshold", types.DefaultThreshold, "approvals required to execute a proposal")
}

func initRun(cmd *cobra.Command, args []string) error {
	home := initArgs.Home
	appConfig := app_config.DefaultConfig(home)

	treasuryID := initArgs.TreasuryID
	if treasuryID == "" {
		treasuryID = fmt.Sprintf("treasury-%v", rand.Uint64())
	}

	genFile := appConfig.GenesisFile()
	if !initArgs.Overwrite {
		if _, err := os.Stat(genFile); err == nil {
			return fmt.Errorf("genesis file already exists: %v", genFile)
		}
	}

	creator := app_config.InitializeOwner(appConfig.RootDir)
	if creator == "" {
		return fmt.Errorf("failed to initialize owner key")
	}

	appGenesis := &types.GenesisDoc{
		GenesisTime: time.Now(),
		TreasuryID:  treasuryID,
		Creator:     creator,
		Members:     initArgs.Members,
		Threshold:   initArgs.Threshold,
	}
	if err := types.ExportGenesisFile(appGenesis, genFile); err != nil {
		return fmt.Errorf("Failed to export genesis file %v", err)
	}
	app_config.WriteConfigFile(appConfig.ConfigFile(), appConfig)
	toPrint := printInfo{
		TreasuryID: treasuryID,
		Creator:    creator,
		GenFile:    genFile,
	}
	return displayInfo(toPrint)
}
