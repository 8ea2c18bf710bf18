package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	eth_crypto "github.com/ethereum/go-ethereum/crypto"
)

type TreasuryAppConfig struct {
	Home       string `mapstructure:"-"`
	ListenAddr string `mapstructure:"listen_addr"`
	IndexerDB  string `mapstructure:"indexer_db"`
	LogLevel   string `mapstructure:"log_level"`
}

func DefaultTreasuryAppConfig(home string) *TreasuryAppConfig {
	return &TreasuryAppConfig{
		Home:       home,
		ListenAddr: "0.0.0.0:8547",
		IndexerDB:  "indexer.db",
		LogLevel:   "info",
	}
}

type Config struct {
	RootDir string `mapstructure:"-"`

	App *TreasuryAppConfig `mapstructure:"app"`
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.treasury")
	}
	config := &Config{
		RootDir: home,
		App:     DefaultTreasuryAppConfig(home),
	}
	_ = os.MkdirAll(home+"/config", 0755)
	return config
}

func (cfg *Config) ConfigFile() string {
	return filepath.Join(cfg.RootDir, "config", "config.toml")
}

func (cfg *Config) GenesisFile() string {
	return filepath.Join(cfg.RootDir, "config", "genesis.json")
}

func (cfg *Config) OwnerKeyFile() string {
	return filepath.Join(cfg.RootDir, "config", "owner_priv_key")
}

func InitializeOwner(home string) (owner string) {
	priv, _ := eth_crypto.GenerateKey()
	d := eth_crypto.FromECDSA(priv)
	key := hex.EncodeToString(d)

	err := os.WriteFile(home+"/config/owner_priv_key", []byte(key), 0644)
	if err != nil {
		fmt.Println("Error writing private key to file:", err)
		return
	}
	owner = eth_crypto.PubkeyToAddress(priv.PublicKey).Hex()
	return
}
