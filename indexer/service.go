package indexer

import (
	"encoding/json"
	"net/http"

	"github.com/calehh/treasury-app/app"
	"github.com/gin-gonic/gin"
)

type Service struct {
	engine     *gin.Engine
	indexer    *LedgerIndexer
	app        *app.TreasuryApp
	listenAddr string
}

func NewService(ListenAddr string, indexer *LedgerIndexer, treasuryApp *app.TreasuryApp) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		indexer:    indexer,
		app:        treasuryApp,
		listenAddr: ListenAddr,
	}
	s.engine.POST("/sendTx", s.handleSendTx)
	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getVotes", s.handleGetVotes)
	s.engine.POST("/getTreasury", s.handleGetTreasury)
	s.engine.POST("/getMembers", s.handleGetMembers)
	s.engine.POST("/getMemberChanges", s.handleGetMemberChanges)
	s.engine.POST("/getThresholdChanges", s.handleGetThresholdChanges)
	s.engine.POST("/getFundFlows", s.handleGetFundFlows)
	return s
}

func (s *Service) Start() {
	s.engine.Run(s.listenAddr)
}

type SendTxReq struct {
	Tx json.RawMessage `json:"tx"`
}

func (s *Service) handleSendTx(c *gin.Context) {
	var requestData SendTxReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res := s.app.DeliverTx(c.Request.Context(), requestData.Tx)
	c.JSON(http.StatusOK, res)
}

type GetProposalsReq struct {
	ProposalIndex   *uint64 `json:"proposalIndex"`
	ProposerAddress string  `json:"proposer"`
	Status          uint64  `json:"status"`
	Page            int     `json:"page"`
	PageSize        int     `json:"pageSize"`
}

type ProposalInfo struct {
	Proposal Proposal       `json:"proposal"`
	Votes    []ProposalVote `json:"votes"`
}

type GetProposalResponse struct {
	Proposals []ProposalInfo `json:"proposals"`
	Total     uint64         `json:"total"`
}

func (s *Service) handleGetProposals(c *gin.Context) {
	var response GetProposalResponse
	response.Proposals = make([]ProposalInfo, 0)
	var err error
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if requestData.ProposalIndex != nil {
		proposalInfo, err := s.getProposalInfoByIndex(*requestData.ProposalIndex)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposalInfo)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}
	proposalTotal := uint64(0)
	proposals := make([]Proposal, 0)
	if requestData.ProposerAddress != "" {
		proposals, proposalTotal, err = s.indexer.getProposalsByProposerAddr(requestData.ProposerAddress, requestData.Page, requestData.PageSize)
	} else if requestData.Status != 0 {
		proposals, proposalTotal, err = s.indexer.getProposalsByStatus(requestData.Status, requestData.Page, requestData.PageSize)
	} else {
		proposals, proposalTotal, err = s.indexer.getProposals(requestData.Page, requestData.PageSize)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response.Total = proposalTotal
	for _, proposal := range proposals {
		proposalInfo, err := s.getProposalInfoByIndex(proposal.ProposalIndex)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposalInfo)
	}
	c.JSON(http.StatusOK, response)
}

func (s *Service) getProposalInfoByIndex(index uint64) (ProposalInfo, error) {
	proposal, err := s.indexer.getProposalByIndex(index)
	if err != nil {
		return ProposalInfo{}, err
	}
	votes, err := s.indexer.getVotesByProposal(index, 0, 1000)
	if err != nil {
		return ProposalInfo{}, err
	}
	proposalInfo := ProposalInfo{
		Proposal: proposal,
		Votes:    votes,
	}
	return proposalInfo, nil
}

type GetVotesReq struct {
	ProposalIndex *uint64 `json:"proposalIndex"`
	VoterAddress  string  `json:"voter"`
	Page          int     `json:"page"`
	PageSize      int     `json:"pageSize"`
}

type GetVotesResponse struct {
	Votes []ProposalVote `json:"votes"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var response GetVotesResponse
	response.Votes = make([]ProposalVote, 0)
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.ProposalIndex != nil {
		votes, err := s.indexer.getVotesByProposal(*requestData.ProposalIndex, requestData.Page, requestData.PageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Votes = votes
		c.JSON(http.StatusOK, response)
		return
	}
	if requestData.VoterAddress != "" {
		votes, err := s.indexer.getVotesByVoter(requestData.VoterAddress, requestData.Page, requestData.PageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Votes = votes
		c.JSON(http.StatusOK, response)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "proposalIndex or voter is required"})
}

type GetTreasuryResponse struct {
	TreasuryID          string `json:"treasury_id"`
	Address             string `json:"address"`
	Balance             uint64 `json:"balance"`
	Threshold           uint64 `json:"threshold"`
	MemberCount         int    `json:"member_count"`
	ProposalCount       uint64 `json:"proposal_count"`
	ActiveProposalCount uint64 `json:"active_proposal_count"`
	Version             int64  `json:"version"`
	Hash                string `json:"hash"`
}

func (s *Service) handleGetTreasury(c *gin.Context) {
	db := s.app.DB()
	header := db.Header()
	active, err := db.ActiveProposalCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response := GetTreasuryResponse{
		TreasuryID:          header.TreasuryID,
		Address:             header.Address,
		Balance:             header.Balance,
		Threshold:           header.Threshold,
		MemberCount:         len(header.Members),
		ProposalCount:       db.ProposalCount(),
		ActiveProposalCount: active,
		Version:             db.Version(),
		Hash:                db.Hash().Hex(),
	}
	c.JSON(http.StatusOK, response)
}

type GetMembersResponse struct {
	Members   []string `json:"members"`
	Threshold uint64   `json:"threshold"`
}

func (s *Service) handleGetMembers(c *gin.Context) {
	db := s.app.DB()
	response := GetMembersResponse{
		Members:   db.Members(),
		Threshold: db.Threshold(),
	}
	c.JSON(http.StatusOK, response)
}

type PageReq struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type GetMemberChangesResponse struct {
	Changes []MemberChange `json:"changes"`
	Total   uint64         `json:"total"`
}

func (s *Service) handleGetMemberChanges(c *gin.Context) {
	var requestData PageReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	changes, total, err := s.indexer.getMemberChanges(requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response := GetMemberChangesResponse{
		Changes: changes,
		Total:   total,
	}
	c.JSON(http.StatusOK, response)
}

type GetThresholdChangesResponse struct {
	Changes []ThresholdChange `json:"changes"`
	Total   uint64            `json:"total"`
}

func (s *Service) handleGetThresholdChanges(c *gin.Context) {
	var requestData PageReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	changes, total, err := s.indexer.getThresholdChanges(requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response := GetThresholdChangesResponse{
		Changes: changes,
		Total:   total,
	}
	c.JSON(http.StatusOK, response)
}

type GetFundFlowsResponse struct {
	Flows []FundFlow `json:"flows"`
	Total uint64     `json:"total"`
}

func (s *Service) handleGetFundFlows(c *gin.Context) {
	var requestData PageReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flows, total, err := s.indexer.getFundFlows(requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response := GetFundFlowsResponse{
		Flows: flows,
		Total: total,
	}
	c.JSON(http.StatusOK, response)
}
