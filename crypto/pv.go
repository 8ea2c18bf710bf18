package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	eth_crypto "github.com/ethereum/go-ethereum/crypto"
)

// PV signs transactions with a member's secp256k1 key loaded from a
// hex keyfile.
type PV struct {
	privateKey *ecdsa.PrivateKey
}

func LoadFilePV(keyFilePath string) *PV {
	dat, err := os.ReadFile(keyFilePath)
	if err != nil {
		fmt.Printf("read key file fail: %v\n", err)
		os.Exit(1)
	}
	pv, err := NewPV(strings.TrimSpace(string(dat)))
	if err != nil {
		fmt.Printf("parse key file %v fail: %v\n", keyFilePath, err)
		os.Exit(1)
	}
	return pv
}

func NewPV(keyHex string) (*PV, error) {
	keyHex = strings.TrimPrefix(keyHex, "0x")
	priv, err := eth_crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, err
	}
	return &PV{privateKey: priv}, nil
}

func GenerateFilePV(keyFilePath string) (*PV, error) {
	priv, err := eth_crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	key := hex.EncodeToString(eth_crypto.FromECDSA(priv))
	if err := os.WriteFile(keyFilePath, []byte(key), 0600); err != nil {
		return nil, err
	}
	return &PV{privateKey: priv}, nil
}

func (k *PV) PublicKey() []byte {
	return eth_crypto.FromECDSAPub(&k.privateKey.PublicKey)
}

func (k *PV) Address() string {
	return eth_crypto.PubkeyToAddress(k.privateKey.PublicKey).Hex()
}

func (k *PV) Sign(data []byte) ([]byte, error) {
	hash := eth_crypto.Keccak256(data)
	return eth_crypto.Sign(hash, k.privateKey)
}
