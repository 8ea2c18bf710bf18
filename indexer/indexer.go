package indexer

import (
	"context"
	"time"

	cosmoslog "cosmossdk.io/log"
	"github.com/calehh/treasury-app/state"
	treasury_types "github.com/calehh/treasury-app/types"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// LedgerIndexer mirrors ledger events into sqlite so the HTTP service
// can answer history queries without walking versioned state.
type LedgerIndexer struct {
	logger        cosmoslog.Logger
	db            *gorm.DB
	ledger        *state.LedgerDB
	eventHandlers map[string]eventHandler
}

func NewLedgerIndexer(logger cosmoslog.Logger, dbPath string, ledger *state.LedgerDB) (*LedgerIndexer, error) {
	logger.Info("NewLedgerIndexer", "dbPath", dbPath)
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Proposal{}, &ProposalVote{}, &MemberChange{}, &ThresholdChange{}, &FundFlow{}).Error; err != nil {
		return nil, err
	}

	c := LedgerIndexer{
		logger:        logger.With("module", "indexer"),
		db:            db,
		ledger:        ledger,
		eventHandlers: map[string]eventHandler{},
	}

	c.eventHandlers = map[string]eventHandler{
		treasury_types.EventDepositType:           c.handleEventDeposit,
		treasury_types.EventWithdrawType:          c.handleEventWithdraw,
		treasury_types.EventProposalCreatedType:   c.handleEventProposalCreated,
		treasury_types.EventVoteCastType:          c.handleEventVoteCast,
		treasury_types.EventVoteChangedType:       c.handleEventVoteChanged,
		treasury_types.EventProposalExecutedType:  c.handleEventProposalExecuted,
		treasury_types.EventProposalCancelledType: c.handleEventProposalCancelled,
		treasury_types.EventMemberAddedType:       c.handleEventMemberAdded,
		treasury_types.EventMemberRemovedType:     c.handleEventMemberRemoved,
		treasury_types.EventThresholdChangedType:  c.handleEventThresholdChanged,
	}
	return &c, nil
}

type eventHandler func(ctx context.Context, event treasury_types.Event)

func (c *LedgerIndexer) handleEvent(ctx context.Context, event treasury_types.Event) {
	if h, ok := c.eventHandlers[event.Type]; ok {
		h(ctx, event)
	}
}

// Start drains the ledger subscription until ctx is cancelled.
func (c *LedgerIndexer) Start(ctx context.Context) {
	ch := c.ledger.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.handleEvent(ctx, ev)
		}
	}
}

func (c *LedgerIndexer) Close() error {
	return c.db.Close()
}

func (c *LedgerIndexer) handleEventDeposit(ctx context.Context, event treasury_types.Event) {
	ev := treasury_types.DecodeEventDeposit(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	flow := FundFlow{
		Inbound:      true,
		Counterparty: ev.From,
		Amount:       ev.Amount,
		Balance:      ev.Balance,
		Timestamp:    time.Now().Unix(),
	}
	if err := c.db.Create(&flow).Error; err != nil {
		c.logger.Error("save fund flow fail", "err", err)
	}
}

func (c *LedgerIndexer) handleEventWithdraw(ctx context.Context, event treasury_types.Event) {
	ev := treasury_types.DecodeEventWithdraw(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	flow := FundFlow{
		Proposal:     ev.Proposal,
		Inbound:      false,
		Counterparty: ev.To,
		Amount:       ev.Amount,
		Balance:      ev.Balance,
		Timestamp:    time.Now().Unix(),
	}
	if err := c.db.Create(&flow).Error; err != nil {
		c.logger.Error("save fund flow fail", "err", err)
	}
}

func (c *LedgerIndexer) handleEventProposalCreated(ctx context.Context, event treasury_types.Event) {
	ev := treasury_types.DecodeEventProposalCreated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	proposal := Proposal{
		ProposalIndex:   ev.Proposal,
		ProposerAddress: ev.Proposer,
		TargetAddress:   ev.Target,
		Amount:          ev.Amount,
		Description:     ev.Description,
		Status:          uint64(treasury_types.ProposalStatusOpen),
		CreateTimestamp: ev.CreatedAt,
	}
	if err := c.db.Create(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *LedgerIndexer) handleEventVoteCast(ctx context.Context, event treasury_types.Event) {
	ev := treasury_types.DecodeEventVoteCast(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	vote := ProposalVote{
		Proposal:     ev.Proposal,
		VoterAddress: ev.Voter,
		Approve:      ev.Approve,
		Timestamp:    time.Now().Unix(),
	}
	if err := c.db.Create(&vote).Error; err != nil {
		c.logger.Error("save vote fail", "err", err)
	}
	c.updateTally(ev.Proposal, ev.ApprovalCount, ev.RejectionCount)
}

func (c *LedgerIndexer) handleEventVoteChanged(ctx context.Context, event treasury_types.Event) {
	ev := treasury_types.DecodeEventVoteChanged(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	vote := ProposalVote{
		Proposal:     ev.Proposal,
		VoterAddress: ev.Voter,
		Approve:      ev.NewApprove,
		Changed:      true,
		Timestamp:    time.Now().Unix(),
	}
	if err := c.db.Create(&vote).Error; err != nil {
		c.logger.Error("save vote fail", "err", err)
	}
	c.updateTally(ev.Proposal, ev.ApprovalCount, ev.RejectionCount)
}

func (c *LedgerIndexer) updateTally(index uint64, approvals uint64, rejections uint64) {
	var proposal Proposal
	if err := c.db.Where("proposal_index = ?", index).First(&proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "proposal", index, "err", err)
		return
	}
	proposal.Approvals = approvals
	proposal.Rejections = rejections
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *LedgerIndexer) handleEventProposalExecuted(ctx context.Context, event treasury_types.Event) {
	ev := treasury_types.DecodeEventProposalExecuted(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var proposal Proposal
	if err := c.db.Where("proposal_index = ?", ev.Proposal).First(&proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "proposal", ev.Proposal, "err", err)
		return
	}
	proposal.Status = uint64(treasury_types.ProposalStatusExecuted)
	proposal.ExecSuccess = ev.Success
	proposal.ExecutorAddress = ev.Executor
	proposal.SettleTimestamp = time.Now().Unix()
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *LedgerIndexer) handleEventProposalCancelled(ctx context.Context, event treasury_types.Event) {
	ev := treasury_types.DecodeEventProposalCancelled(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var proposal Proposal
	if err := c.db.Where("proposal_index = ?", ev.Proposal).First(&proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "proposal", ev.Proposal, "err", err)
		return
	}
	proposal.Status = uint64(treasury_types.ProposalStatusCancelled)
	proposal.SettleTimestamp = time.Now().Unix()
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *LedgerIndexer) handleEventMemberAdded(ctx context.Context, event treasury_types.Event) {
	ev := treasury_types.DecodeEventMemberAdded(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	change := MemberChange{
		Address:     ev.Member,
		Added:       true,
		MemberCount: ev.MemberCount,
		Timestamp:   time.Now().Unix(),
	}
	if err := c.db.Create(&change).Error; err != nil {
		c.logger.Error("save member change fail", "err", err)
	}
}

func (c *LedgerIndexer) handleEventMemberRemoved(ctx context.Context, event treasury_types.Event) {
	ev := treasury_types.DecodeEventMemberRemoved(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	change := MemberChange{
		Address:     ev.Member,
		Added:       false,
		MemberCount: ev.MemberCount,
		Timestamp:   time.Now().Unix(),
	}
	if err := c.db.Create(&change).Error; err != nil {
		c.logger.Error("save member change fail", "err", err)
	}
}

func (c *LedgerIndexer) handleEventThresholdChanged(ctx context.Context, event treasury_types.Event) {
	ev := treasury_types.DecodeEventThresholdChanged(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	change := ThresholdChange{
		OldThreshold: ev.OldThreshold,
		NewThreshold: ev.NewThreshold,
		Timestamp:    time.Now().Unix(),
	}
	if err := c.db.Create(&change).Error; err != nil {
		c.logger.Error("save threshold change fail", "err", err)
	}
}

func (c *LedgerIndexer) getProposals(page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Order("proposal_index desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *LedgerIndexer) getProposalsByStatus(status uint64, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Where("status = ?", status).Order("proposal_index desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Where("status = ?", status).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *LedgerIndexer) getProposalsByProposerAddr(proposerAddr string, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Where("proposer_address = ?", proposerAddr).Order("proposal_index desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Where("proposer_address = ?", proposerAddr).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *LedgerIndexer) getProposalByIndex(index uint64) (Proposal, error) {
	var proposal Proposal
	err := c.db.Where("proposal_index = ?", index).First(&proposal).Error
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

func (c *LedgerIndexer) getVotesByProposal(proposal uint64, page int, pageSize int) ([]ProposalVote, error) {
	var votes []ProposalVote
	err := c.db.Where("proposal = ?", proposal).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (c *LedgerIndexer) getVotesByVoter(voter string, page int, pageSize int) ([]ProposalVote, error) {
	var votes []ProposalVote
	err := c.db.Where("voter_address = ?", voter).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (c *LedgerIndexer) getMemberChanges(page int, pageSize int) ([]MemberChange, uint64, error) {
	var changes []MemberChange
	err := c.db.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&changes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&MemberChange{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return changes, total, nil
}

func (c *LedgerIndexer) getThresholdChanges(page int, pageSize int) ([]ThresholdChange, uint64, error) {
	var changes []ThresholdChange
	err := c.db.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&changes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&ThresholdChange{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return changes, total, nil
}

func (c *LedgerIndexer) getFundFlows(page int, pageSize int) ([]FundFlow, uint64, error) {
	var flows []FundFlow
	err := c.db.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&flows).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&FundFlow{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return flows, total, nil
}
