package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// GenesisDoc defines the initial conditions for a treasury ledger, in
// particular its creator, founding members and approval threshold.
type GenesisDoc struct {
	GenesisTime time.Time `json:"genesis_time"`
	TreasuryID  string    `json:"treasury_id"`
	Creator     string    `json:"creator"`
	Members     []string  `json:"members"`
	Threshold   uint64    `json:"threshold"`
}

// SaveAs is a utility method for saving GenesisDoc as a JSON file.
func (genDoc *GenesisDoc) SaveAs(file string) error {
	genDocBytes, err := json.MarshalIndent(genDoc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, genDocBytes, 0o600)
}

func LoadGenesisDoc(file string) (*GenesisDoc, error) {
	dat, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	genDoc := new(GenesisDoc)
	if err := json.Unmarshal(dat, genDoc); err != nil {
		return nil, err
	}
	if err := genDoc.ValidateAndComplete(); err != nil {
		return nil, err
	}
	return genDoc, nil
}

func (genDoc *GenesisDoc) ValidateAndComplete() error {
	if genDoc.TreasuryID == "" {
		return errors.New("genesis doc must include non-empty treasury_id")
	}

	if !common.IsHexAddress(genDoc.Creator) {
		return fmt.Errorf("genesis creator is not an address: %q", genDoc.Creator)
	}

	for _, m := range genDoc.Members {
		if !common.IsHexAddress(m) {
			return fmt.Errorf("genesis member is not an address: %q", m)
		}
	}

	if genDoc.GenesisTime.IsZero() {
		genDoc.GenesisTime = time.Now().Round(0).UTC()
	}

	return nil
}

func ExportGenesisFile(genesis *GenesisDoc, genFile string) error {
	if err := genesis.ValidateAndComplete(); err != nil {
		return err
	}
	return genesis.SaveAs(genFile)
}

const TreasuryModuleName = "treasury"
const DefaultThreshold = 2
