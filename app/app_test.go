package app

import (
	"context"
	"crypto/ecdsa"
	"testing"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/config"
	"github.com/calehh/treasury-app/tx"
	"github.com/calehh/treasury-app/types"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*TreasuryApp, []*ecdsa.PrivateKey) {
	t.Helper()
	keys := make([]*ecdsa.PrivateKey, 3)
	members := make([]string, 0, 2)
	for i := range keys {
		priv, err := eth_crypto.GenerateKey()
		require.NoError(t, err)
		keys[i] = priv
		if i > 0 {
			members = append(members, eth_crypto.PubkeyToAddress(priv.PublicKey).Hex())
		}
	}

	cfg := config.DefaultTreasuryAppConfig(t.TempDir())
	app, err := NewTreasuryApp(cfg, cosmoslog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(app.Stop)

	gen := &types.GenesisDoc{
		TreasuryID: "treasury-test",
		Creator:    eth_crypto.PubkeyToAddress(keys[0].PublicKey).Hex(),
		Members:    members,
		Threshold:  2,
	}
	require.NoError(t, app.InitGenesis(gen))
	return app, keys
}

func signedTx(t *testing.T, app *TreasuryApp, key *ecdsa.PrivateKey, btx *tx.TreasuryTx) []byte {
	t.Helper()
	dat, err := btx.SigData([]byte(app.db.Header().TreasuryID))
	require.NoError(t, err)
	sig, err := eth_crypto.Sign(eth_crypto.Keccak256(dat), key)
	require.NoError(t, err)
	btx.Sig = sig
	raw, err := tx.MarshalTreasuryTx(btx)
	require.NoError(t, err)
	return raw
}

func TestDeliverTxFlow(t *testing.T) {
	app, keys := newTestApp(t)
	ctx := context.Background()

	// Deposits need no signature.
	raw, err := tx.MarshalTreasuryTx(&tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeDeposit,
		Tx:      &tx.DepositTx{From: "0x0000000000000000000000000000000000000009", Amount: 10},
	})
	require.NoError(t, err)
	res := app.DeliverTx(ctx, raw)
	require.Equal(t, uint32(0), res.Code, res.Log)
	assert.Equal(t, uint64(10), app.db.Balance())

	raw = signedTx(t, app, keys[0], &tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeProposal,
		Tx: &tx.ProposalTx{
			Kind:        tx.ProposalKindSpend,
			Target:      "0x0000000000000000000000000000000000000008",
			Amount:      3,
			Description: "pay the bill",
		},
	})
	res = app.DeliverTx(ctx, raw)
	require.Equal(t, uint32(0), res.Code, res.Log)
	assert.Equal(t, uint64(0), res.Proposal)

	raw = signedTx(t, app, keys[1], &tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeVote,
		Tx:      &tx.VoteTx{Proposal: 0, Approve: true},
	})
	res = app.DeliverTx(ctx, raw)
	require.Equal(t, uint32(0), res.Code, res.Log)

	raw = signedTx(t, app, keys[2], &tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeVote,
		Tx:      &tx.VoteTx{Proposal: 0, Approve: true},
	})
	res = app.DeliverTx(ctx, raw)
	require.Equal(t, uint32(0), res.Code, res.Log)

	p, err := app.db.GetProposal(0)
	require.NoError(t, err)
	assert.True(t, p.Executed)
	assert.Equal(t, uint64(7), app.db.Balance())
}

func TestDeliverTxRejections(t *testing.T) {
	app, keys := newTestApp(t)
	ctx := context.Background()

	// Unsigned vote cannot name a sender.
	raw, err := tx.MarshalTreasuryTx(&tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeVote,
		Tx:      &tx.VoteTx{Proposal: 0, Approve: true},
	})
	require.NoError(t, err)
	res := app.DeliverTx(ctx, raw)
	assert.Equal(t, uint32(1), res.Code)

	// A signer outside the member set is rejected by the ledger.
	outsider, err := eth_crypto.GenerateKey()
	require.NoError(t, err)
	raw = signedTx(t, app, outsider, &tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeProposal,
		Tx: &tx.ProposalTx{
			Kind:        tx.ProposalKindSpend,
			Target:      "0x0000000000000000000000000000000000000008",
			Amount:      1,
			Description: "pay",
		},
	})
	res = app.DeliverTx(ctx, raw)
	assert.Equal(t, uint32(1), res.Code)

	// Unknown proposal kinds never reach the ledger.
	raw = signedTx(t, app, keys[0], &tx.TreasuryTx{
		Version: tx.TreasuryTxVersion1,
		Type:    tx.TreasuryTxTypeProposal,
		Tx:      &tx.ProposalTx{Kind: "upgrade"},
	})
	res = app.DeliverTx(ctx, raw)
	assert.Equal(t, uint32(1), res.Code)

	res = app.DeliverTx(ctx, []byte(`{"type":42}`))
	assert.Equal(t, uint32(1), res.Code)

	assert.Equal(t, uint64(0), app.db.ProposalCount())
}
