package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/app"
	app_config "github.com/calehh/treasury-app/config"
	"github.com/calehh/treasury-app/indexer"
	"github.com/calehh/treasury-app/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var homeDir string

var clCmd = &cobra.Command{
	Use:   "treasury-cl",
	Short: "Treasury is a threshold-governed shared fund",
	Long: `A shared treasury governed by member proposals and
threshold approval voting`,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	clCmd.Flags().StringVarP(&homeDir, "homedir", "d", "", "home directory")
}

func run(cmd *cobra.Command, args []string) {
	if homeDir == "" {
		homeDir = os.ExpandEnv("$HOME/.treasury")
	}

	appConfig := app_config.DefaultConfig(homeDir)
	viper.SetConfigFile(fmt.Sprintf("%s/%s", homeDir, "config/config.toml"))

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Reading config: %v", err)
	}
	if err := viper.Unmarshal(appConfig); err != nil {
		log.Fatalf("Decoding config: %v", err)
	}
	appConfig.RootDir = homeDir
	appConfig.App.Home = homeDir

	filter, err := cosmoslog.ParseLogLevel(appConfig.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to parse log level: %v", err)
	}
	logger := cosmoslog.NewLogger(os.Stdout, cosmoslog.FilterOption(filter))

	treasuryApp, err := app.NewTreasuryApp(appConfig.App, logger)
	if err != nil {
		log.Fatalf("new App err:%v", err)
	}

	gen, err := types.LoadGenesisDoc(appConfig.GenesisFile())
	if err != nil {
		log.Fatalf("load genesis err:%v", err)
	}
	if err := treasuryApp.InitGenesis(gen); err != nil {
		log.Fatalf("init genesis err:%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	dbPath := path.Join(appConfig.RootDir, appConfig.App.IndexerDB)
	idx, err := indexer.NewLedgerIndexer(logger, dbPath, treasuryApp.DB())
	if err != nil {
		log.Fatalf("new ledger indexer err %s", err.Error())
	}
	go idx.Start(ctx)

	service := indexer.NewService(appConfig.App.ListenAddr, idx, treasuryApp)
	go service.Start()

	defer func() {
		log.Println("shut done...")
		done := make(chan struct{})
		go func() {
			defer close(done)
			cancel()
			if err := idx.Close(); err != nil {
				log.Printf("close indexer err %s", err.Error())
			}
			treasuryApp.Stop()
		}()
		timer := time.NewTimer(time.Second * 10)
		select {
		case <-timer.C:
			os.Exit(1)
		case <-done:
			return
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
