package types

import (
	"fmt"
	"strconv"
)

const (
	EventDepositType           = "funds_deposited"
	EventWithdrawType          = "funds_withdrawn"
	EventProposalCreatedType   = "proposal_created"
	EventVoteCastType          = "vote_cast"
	EventVoteChangedType       = "vote_changed"
	EventProposalExecutedType  = "proposal_executed"
	EventProposalCancelledType = "proposal_cancelled"
	EventMemberAddedType       = "member_added"
	EventMemberRemovedType     = "member_removed"
	EventThresholdChangedType  = "threshold_changed"
)

type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Index bool   `json:"index"`
}

type Event struct {
	Type       string           `json:"type"`
	Attributes []EventAttribute `json:"attributes"`
}

type EventDeposit struct {
	From    string `json:"from"`
	Amount  uint64 `json:"amount"`
	Balance uint64 `json:"balance"`
}

func EncodeEventDeposit(event *EventDeposit) Event {
	return Event{
		Type: EventDepositType,
		Attributes: []EventAttribute{
			{Key: "from", Value: event.From, Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "balance", Value: fmt.Sprintf("%v", event.Balance), Index: false},
		},
	}
}

func DecodeEventDeposit(originEvent Event) *EventDeposit {
	event := &EventDeposit{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "from":
			event.From = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		case "balance":
			balance, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Balance = balance
		}
	}
	return event
}

type EventWithdraw struct {
	Proposal uint64 `json:"proposal"`
	To       string `json:"to"`
	Amount   uint64 `json:"amount"`
	Balance  uint64 `json:"balance"`
}

func EncodeEventWithdraw(event *EventWithdraw) Event {
	return Event{
		Type: EventWithdrawType,
		Attributes: []EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "to", Value: event.To, Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "balance", Value: fmt.Sprintf("%v", event.Balance), Index: false},
		},
	}
}

func DecodeEventWithdraw(originEvent Event) *EventWithdraw {
	event := &EventWithdraw{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "to":
			event.To = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		case "balance":
			balance, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Balance = balance
		}
	}
	return event
}

type EventProposalCreated struct {
	Proposal    uint64 `json:"proposal"`
	Proposer    string `json:"proposer"`
	Target      string `json:"target"`
	Amount      uint64 `json:"amount"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"createdAt"`
}

func EncodeEventProposalCreated(event *EventProposalCreated) Event {
	return Event{
		Type: EventProposalCreatedType,
		Attributes: []EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "proposer", Value: event.Proposer, Index: true},
			{Key: "target", Value: event.Target, Index: false},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "description", Value: event.Description, Index: false},
			{Key: "createdAt", Value: fmt.Sprintf("%v", event.CreatedAt), Index: false},
		},
	}
}

func DecodeEventProposalCreated(originEvent Event) *EventProposalCreated {
	event := &EventProposalCreated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "proposer":
			event.Proposer = v.Value
		case "target":
			event.Target = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		case "description":
			event.Description = v.Value
		case "createdAt":
			createdAt, err := strconv.ParseInt(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.CreatedAt = createdAt
		}
	}
	return event
}

type EventVoteCast struct {
	Proposal       uint64 `json:"proposal"`
	Voter          string `json:"voter"`
	Approve        bool   `json:"approve"`
	ApprovalCount  uint64 `json:"approvalCount"`
	RejectionCount uint64 `json:"rejectionCount"`
}

func EncodeEventVoteCast(event *EventVoteCast) Event {
	return Event{
		Type: EventVoteCastType,
		Attributes: []EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "voter", Value: event.Voter, Index: true},
			{Key: "approve", Value: fmt.Sprintf("%v", event.Approve), Index: false},
			{Key: "approvals", Value: fmt.Sprintf("%v", event.ApprovalCount), Index: false},
			{Key: "rejections", Value: fmt.Sprintf("%v", event.RejectionCount), Index: false},
		},
	}
}

func DecodeEventVoteCast(originEvent Event) *EventVoteCast {
	event := &EventVoteCast{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "voter":
			event.Voter = v.Value
		case "approve":
			approve, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Approve = approve
		case "approvals":
			approvals, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ApprovalCount = approvals
		case "rejections":
			rejections, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.RejectionCount = rejections
		}
	}
	return event
}

type EventVoteChanged struct {
	Proposal       uint64 `json:"proposal"`
	Voter          string `json:"voter"`
	OldApprove     bool   `json:"oldApprove"`
	NewApprove     bool   `json:"newApprove"`
	ApprovalCount  uint64 `json:"approvalCount"`
	RejectionCount uint64 `json:"rejectionCount"`
}

func EncodeEventVoteChanged(event *EventVoteChanged) Event {
	return Event{
		Type: EventVoteChangedType,
		Attributes: []EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "voter", Value: event.Voter, Index: true},
			{Key: "oldApprove", Value: fmt.Sprintf("%v", event.OldApprove), Index: false},
			{Key: "newApprove", Value: fmt.Sprintf("%v", event.NewApprove), Index: false},
			{Key: "approvals", Value: fmt.Sprintf("%v", event.ApprovalCount), Index: false},
			{Key: "rejections", Value: fmt.Sprintf("%v", event.RejectionCount), Index: false},
		},
	}
}

func DecodeEventVoteChanged(originEvent Event) *EventVoteChanged {
	event := &EventVoteChanged{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "voter":
			event.Voter = v.Value
		case "oldApprove":
			old, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.OldApprove = old
		case "newApprove":
			next, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.NewApprove = next
		case "approvals":
			approvals, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ApprovalCount = approvals
		case "rejections":
			rejections, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.RejectionCount = rejections
		}
	}
	return event
}

type EventProposalExecuted struct {
	Proposal uint64 `json:"proposal"`
	Executor string `json:"executor"`
	Target   string `json:"target"`
	Amount   uint64 `json:"amount"`
	Success  bool   `json:"success"`
}

func EncodeEventProposalExecuted(event *EventProposalExecuted) Event {
	return Event{
		Type: EventProposalExecutedType,
		Attributes: []EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "executor", Value: event.Executor, Index: false},
			{Key: "target", Value: event.Target, Index: false},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "success", Value: fmt.Sprintf("%v", event.Success), Index: false},
		},
	}
}

func DecodeEventProposalExecuted(originEvent Event) *EventProposalExecuted {
	event := &EventProposalExecuted{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "executor":
			event.Executor = v.Value
		case "target":
			event.Target = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		case "success":
			success, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Success = success
		}
	}
	return event
}

type EventProposalCancelled struct {
	Proposal uint64 `json:"proposal"`
	Proposer string `json:"proposer"`
}

func EncodeEventProposalCancelled(event *EventProposalCancelled) Event {
	return Event{
		Type: EventProposalCancelledType,
		Attributes: []EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "proposer", Value: event.Proposer, Index: false},
		},
	}
}

func DecodeEventProposalCancelled(originEvent Event) *EventProposalCancelled {
	event := &EventProposalCancelled{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "proposer":
			event.Proposer = v.Value
		}
	}
	return event
}

type EventMemberAdded struct {
	Member      string `json:"member"`
	MemberCount uint64 `json:"memberCount"`
}

func EncodeEventMemberAdded(event *EventMemberAdded) Event {
	return Event{
		Type: EventMemberAddedType,
		Attributes: []EventAttribute{
			{Key: "member", Value: event.Member, Index: true},
			{Key: "memberCount", Value: fmt.Sprintf("%v", event.MemberCount), Index: false},
		},
	}
}

func DecodeEventMemberAdded(originEvent Event) *EventMemberAdded {
	event := &EventMemberAdded{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "member":
			event.Member = v.Value
		case "memberCount":
			count, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.MemberCount = count
		}
	}
	return event
}

type EventMemberRemoved struct {
	Member      string `json:"member"`
	MemberCount uint64 `json:"memberCount"`
}

func EncodeEventMemberRemoved(event *EventMemberRemoved) Event {
	return Event{
		Type: EventMemberRemovedType,
		Attributes: []EventAttribute{
			{Key: "member", Value: event.Member, Index: true},
			{Key: "memberCount", Value: fmt.Sprintf("%v", event.MemberCount), Index: false},
		},
	}
}

func DecodeEventMemberRemoved(originEvent Event) *EventMemberRemoved {
	event := &EventMemberRemoved{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "member":
			event.Member = v.Value
		case "memberCount":
			count, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.MemberCount = count
		}
	}
	return event
}

type EventThresholdChanged struct {
	OldThreshold uint64 `json:"oldThreshold"`
	NewThreshold uint64 `json:"newThreshold"`
}

func EncodeEventThresholdChanged(event *EventThresholdChanged) Event {
	return Event{
		Type: EventThresholdChangedType,
		Attributes: []EventAttribute{
			{Key: "oldThreshold", Value: fmt.Sprintf("%v", event.OldThreshold), Index: false},
			{Key: "newThreshold", Value: fmt.Sprintf("%v", event.NewThreshold), Index: false},
		},
	}
}

func DecodeEventThresholdChanged(originEvent Event) *EventThresholdChanged {
	event := &EventThresholdChanged{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "oldThreshold":
			old, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.OldThreshold = old
		case "newThreshold":
			next, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.NewThreshold = next
		}
	}
	return event
}
