package app

import (
	"context"
	"encoding/json"
	"strings"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/state"
	"github.com/ethereum/go-ethereum/common"
)

type QueryRequest struct {
	Path string `json:"path"`
	Data []byte `json:"data"`
}

type QueryResponse struct {
	Code   uint32 `json:"code"`
	Value  []byte `json:"value,omitempty"`
	Height int64  `json:"height"`
}

type Querier interface {
	Query(ctx context.Context, req *QueryRequest) (res *QueryResponse, err error)
}

func (app *TreasuryApp) Query(ctx context.Context, req *QueryRequest) (res *QueryResponse, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &QueryResponse{}
		res.Code = 404
		return
	}
	res, err = q.Query(ctx, req)
	return
}

func decodeIndex(dat []byte) (idx uint64) {
	for _, v := range dat {
		idx <<= 8
		idx |= uint64(v)
	}
	return
}

type ProposalQuerier struct {
	db     *state.LedgerDB
	logger cosmoslog.Logger
}

func NewProposalQuerier(db *state.LedgerDB, logger cosmoslog.Logger) (q *ProposalQuerier) {
	q = &ProposalQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *ProposalQuerier) Query(ctx context.Context, req *QueryRequest) (res *QueryResponse, err error) {
	res = &QueryResponse{}
	if len(req.Data) > 8 {
		res.Code = 1
		return
	}
	p, err := q.db.GetProposal(decodeIndex(req.Data))
	if err != nil {
		res.Code = 1
		err = nil
		return
	}
	res.Value, _ = json.Marshal(p)
	res.Height = q.db.Version()
	return
}

type MemberQuerier struct {
	db     *state.LedgerDB
	logger cosmoslog.Logger
}

func NewMemberQuerier(db *state.LedgerDB, logger cosmoslog.Logger) (q *MemberQuerier) {
	q = &MemberQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *MemberQuerier) Query(ctx context.Context, req *QueryRequest) (res *QueryResponse, err error) {
	res = &QueryResponse{}
	res.Value, _ = json.Marshal(q.db.Members())
	res.Height = q.db.Version()
	return
}

type TreasurySummary struct {
	TreasuryID    string `json:"treasury_id"`
	Address       string `json:"address"`
	Balance       uint64 `json:"balance"`
	Threshold     uint64 `json:"threshold"`
	MemberCount   int    `json:"member_count"`
	ProposalCount uint64 `json:"proposal_count"`
	Hash          string `json:"hash"`
}

type TreasuryQuerier struct {
	db     *state.LedgerDB
	logger cosmoslog.Logger
}

func NewTreasuryQuerier(db *state.LedgerDB, logger cosmoslog.Logger) (q *TreasuryQuerier) {
	q = &TreasuryQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *TreasuryQuerier) Query(ctx context.Context, req *QueryRequest) (res *QueryResponse, err error) {
	res = &QueryResponse{}
	header := q.db.Header()
	summary := TreasurySummary{
		TreasuryID:    header.TreasuryID,
		Address:       header.Address,
		Balance:       header.Balance,
		Threshold:     header.Threshold,
		MemberCount:   len(header.Members),
		ProposalCount: q.db.ProposalCount(),
		Hash:          q.db.Hash().Hex(),
	}
	res.Value, _ = json.Marshal(summary)
	res.Height = q.db.Version()
	return
}

type VoteRecord struct {
	Member   string `json:"member"`
	Approve  bool   `json:"approve"`
	HasVoted bool   `json:"has_voted"`
}

type VoteQuerier struct {
	db     *state.LedgerDB
	logger cosmoslog.Logger
}

func NewVoteQuerier(db *state.LedgerDB, logger cosmoslog.Logger) (q *VoteQuerier) {
	q = &VoteQuerier{
		db:     db,
		logger: logger,
	}
	return
}

// Query expects a 20-byte member address followed by the big-endian
// proposal index.
func (q *VoteQuerier) Query(ctx context.Context, req *QueryRequest) (res *QueryResponse, err error) {
	res = &QueryResponse{}
	if len(req.Data) < common.AddressLength || len(req.Data) > common.AddressLength+8 {
		res.Code = 1
		return
	}
	member := common.BytesToAddress(req.Data[:common.AddressLength])
	id := decodeIndex(req.Data[common.AddressLength:])
	approve, hasVoted, err := q.db.GetVote(id, member)
	if err != nil {
		res.Code = 1
		err = nil
		return
	}
	rec := VoteRecord{
		Member:   member.Hex(),
		Approve:  approve,
		HasVoted: hasVoted,
	}
	res.Value, _ = json.Marshal(rec)
	res.Height = q.db.Version()
	return
}
