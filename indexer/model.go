package indexer

// sqlite models

type Proposal struct {
	Id              uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProposalIndex   uint64 `gorm:"unique_index" json:"proposal_index"`
	ProposerAddress string `json:"proposer_address"`
	TargetAddress   string `json:"target_address"`
	Amount          uint64 `json:"amount"`
	Description     string `json:"description"`
	Approvals       uint64 `json:"approvals"`
	Rejections      uint64 `json:"rejections"`
	Status          uint64 `json:"status"`
	ExecSuccess     bool   `json:"exec_success"`
	ExecutorAddress string `json:"executor_address"`
	CreateTimestamp int64  `json:"create_timestamp"`
	SettleTimestamp int64  `json:"settle_timestamp"`
}

type ProposalVote struct {
	Id           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Proposal     uint64 `json:"proposal"`
	VoterAddress string `json:"voter_address"`
	Approve      bool   `json:"approve"`
	Changed      bool   `json:"changed"`
	Timestamp    int64  `json:"timestamp"`
}

type MemberChange struct {
	Id          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Address     string `json:"address"`
	Added       bool   `json:"added"`
	MemberCount uint64 `json:"member_count"`
	Timestamp   int64  `json:"timestamp"`
}

type ThresholdChange struct {
	Id           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OldThreshold uint64 `json:"old_threshold"`
	NewThreshold uint64 `json:"new_threshold"`
	Timestamp    int64  `json:"timestamp"`
}

type FundFlow struct {
	Id           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Proposal     uint64 `json:"proposal"`
	Inbound      bool   `json:"inbound"`
	Counterparty string `json:"counterparty"`
	Amount       uint64 `json:"amount"`
	Balance      uint64 `json:"balance"`
	Timestamp    int64  `json:"timestamp"`
}
