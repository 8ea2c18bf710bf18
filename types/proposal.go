package types

type Proposal struct {
	Index          uint64          `json:"index"`
	Proposer       string          `json:"proposer"`
	Target         string          `json:"target"`
	Amount         uint64          `json:"amount"`
	Description    string          `json:"description"`
	ApprovalCount  uint64          `json:"approval_count"`
	RejectionCount uint64          `json:"rejection_count"`
	Executed       bool            `json:"executed"`
	Cancelled      bool            `json:"cancelled"`
	CreatedAt      int64           `json:"created_at"`
	Votes          map[string]bool `json:"votes"`
}

type ProposalStatus uint64

const (
	ProposalStatusOpen      ProposalStatus = 1
	ProposalStatusExecuted  ProposalStatus = 2
	ProposalStatusCancelled ProposalStatus = 3
)

// MaxDescriptionLen bounds proposal descriptions; the empty string is
// rejected separately.
const MaxDescriptionLen = 500

func (p *Proposal) Status() ProposalStatus {
	if p.Executed {
		return ProposalStatusExecuted
	}
	if p.Cancelled {
		return ProposalStatusCancelled
	}
	return ProposalStatusOpen
}

// Terminal reports whether the proposal reached a final state. A terminal
// proposal accepts no further votes, execution or cancellation.
func (p *Proposal) Terminal() bool {
	return p.Executed || p.Cancelled
}

func (p *Proposal) Clone() *Proposal {
	n := *p
	n.Votes = make(map[string]bool, len(p.Votes))
	for k, v := range p.Votes {
		n.Votes[k] = v
	}
	return &n
}

// Vote returns the recorded choice for voter and whether one exists.
func (p *Proposal) Vote(voter string) (approve bool, hasVoted bool) {
	approve, hasVoted = p.Votes[voter]
	return
}
