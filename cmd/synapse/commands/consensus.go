// Package commands provides CLI commands for synapse.
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aliasghar-rao/synapse-go/internal/application/consensus"
	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// ConsensusCmd is the root command for consensus operations.
var ConsensusCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Run consensus operations directly",
	Long: `Run consensus engine operations against ad-hoc input without a
running swarm: expertise-weighted votes over proposals and adaptive
strategy planning by task complexity.`,
}

// ============================================================================
// consensus vote
// ============================================================================

var voteTaskID string
var voteCulture string
var voteProposals []string

var consensusVoteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Run an expertise-weighted vote",
	Long: `Run an expertise-weighted vote over proposals given as
agentId=proposal:confidence triples, for example:

  synapse consensus vote --task t1 -p alice=approve:0.9 -p bob=reject:0.4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		proposals := make([]shared.Proposal, 0, len(voteProposals))
		for _, raw := range voteProposals {
			p, err := parseProposal(raw)
			if err != nil {
				return err
			}
			proposals = append(proposals, p)
		}

		engine := consensus.NewEngine()
		decision := engine.ExpertiseWeightedVoting(voteTaskID, proposals, voteCulture)

		printJSON(decision)
		return nil
	},
}

func parseProposal(raw string) (shared.Proposal, error) {
	agentID, rest, found := strings.Cut(raw, "=")
	if !found {
		return shared.Proposal{}, fmt.Errorf("invalid proposal %q: expected agentId=proposal:confidence", raw)
	}

	value := rest
	confidence := 1.0
	if proposal, conf, hasConf := strings.Cut(rest, ":"); hasConf {
		value = proposal
		if _, err := fmt.Sscanf(conf, "%f", &confidence); err != nil {
			return shared.Proposal{}, fmt.Errorf("invalid confidence in proposal %q", raw)
		}
	}

	return shared.Proposal{
		AgentID:    agentID,
		Proposal:   value,
		Confidence: confidence,
	}, nil
}

// ============================================================================
// consensus plan
// ============================================================================

var planComplexity string
var planCulture string
var planAgents []string

var consensusPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Select a consensus strategy for a task complexity",
	Long: `Select a consensus method, threshold and participant set for the
given task complexity (simple, moderate, complex) over the named agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := consensus.NewEngine()
		plan := engine.AdaptiveConsensus(shared.TaskComplexity(planComplexity), planAgents, planCulture)

		printJSON(plan)
		return nil
	},
}

func printJSON(v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(output))
}

func init() {
	consensusVoteCmd.Flags().StringVarP(&voteTaskID, "task", "t", "", "Task ID (required)")
	consensusVoteCmd.Flags().StringVar(&voteCulture, "cultural-context", "", "Cultural context key")
	consensusVoteCmd.Flags().StringSliceVarP(&voteProposals, "proposal", "p", []string{}, "Proposal as agentId=proposal:confidence")
	consensusVoteCmd.MarkFlagRequired("task")
	ConsensusCmd.AddCommand(consensusVoteCmd)

	consensusPlanCmd.Flags().StringVarP(&planComplexity, "complexity", "x", "moderate", "Task complexity (simple, moderate, complex)")
	consensusPlanCmd.Flags().StringVar(&planCulture, "cultural-context", "", "Cultural context key")
	consensusPlanCmd.Flags().StringSliceVarP(&planAgents, "agents", "a", []string{}, "Participating agent IDs")
	ConsensusCmd.AddCommand(consensusPlanCmd)
}
