package main

import (
	"encoding/json"
	"fmt"

	"github.com/calehh/treasury-app/indexer"
	"github.com/spf13/cobra"
)

type queryArguments struct {
	Url      string
	Proposal int64
	Page     int
	PageSize int
}

var queryArgs queryArguments

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query treasury state, proposals and votes",
	Long:  ``,
	RunE:  queryRun,
}

func init() {
	urlFlag(queryCmd, &queryArgs.Url)
	queryCmd.Flags().Int64VarP(&queryArgs.Proposal, "proposal", "p", -1, "proposal index, -1 lists the treasury summary")
	queryCmd.Flags().IntVarP(&queryArgs.Page, "page", "", 0, "page")
	queryCmd.Flags().IntVarP(&queryArgs.PageSize, "pageSize", "", 20, "page size")
}

func queryRun(cmd *cobra.Command, args []string) error {
	if queryArgs.Proposal >= 0 {
		idx := uint64(queryArgs.Proposal)
		var res indexer.GetProposalResponse
		req := indexer.GetProposalsReq{
			ProposalIndex: &idx,
			Page:          queryArgs.Page,
			PageSize:      queryArgs.PageSize,
		}
		if err := postJSON(queryArgs.Url, "/getProposals", req, &res); err != nil {
			return err
		}
		out, _ := json.MarshalIndent(res, "", " ")
		fmt.Printf("%s\n", out)
		return nil
	}
	var summary indexer.GetTreasuryResponse
	if err := postJSON(queryArgs.Url, "/getTreasury", struct{}{}, &summary); err != nil {
		return err
	}
	var members indexer.GetMembersResponse
	if err := postJSON(queryArgs.Url, "/getMembers", struct{}{}, &members); err != nil {
		return err
	}
	out, _ := json.MarshalIndent(summary, "", " ")
	fmt.Printf("%s\n", out)
	out, _ = json.MarshalIndent(members, "", " ")
	fmt.Printf("%s\n", out)
	return nil
}
