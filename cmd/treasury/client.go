package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/calehh/treasury-app/crypto"
	"github.com/calehh/treasury-app/indexer"
	"github.com/calehh/treasury-app/tx"
	"github.com/calehh/treasury-app/tx/handler"
)

func postJSON(url string, path string, reqDat any, resDat any) error {
	dat, err := json.Marshal(reqDat)
	if err != nil {
		return err
	}
	res, err := http.Post(url+path, "application/json", bytes.NewReader(dat))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("request %v fail: %v %s", path, res.StatusCode, body)
	}
	if resDat == nil {
		return nil
	}
	return json.Unmarshal(body, resDat)
}

func getTreasuryID(url string) (string, error) {
	var res indexer.GetTreasuryResponse
	if err := postJSON(url, "/getTreasury", struct{}{}, &res); err != nil {
		return "", err
	}
	return res.TreasuryID, nil
}

func signTx(btx *tx.TreasuryTx, skeyPath string, treasuryID string) error {
	dat, err := btx.SigData([]byte(treasuryID))
	if err != nil {
		return err
	}
	pv := crypto.LoadFilePV(skeyPath)
	sig, err := pv.Sign(dat)
	if err != nil {
		return err
	}
	println("signer address:", pv.Address())
	btx.Sig = sig
	return nil
}

func sendTx(url string, btx *tx.TreasuryTx) error {
	raw, err := tx.MarshalTreasuryTx(btx)
	if err != nil {
		return err
	}
	var res handler.Result
	if err := postJSON(url, "/sendTx", indexer.SendTxReq{Tx: raw}, &res); err != nil {
		return err
	}
	out, _ := json.Marshal(res)
	fmt.Printf("%v\n", string(out))
	if res.Code != 0 {
		return fmt.Errorf("tx rejected: %v", res.Log)
	}
	return nil
}
