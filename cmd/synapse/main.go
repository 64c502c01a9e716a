// Package main provides the CLI entry point for synapse-go.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aliasghar-rao/synapse-go/cmd/synapse/commands"
	"github.com/aliasghar-rao/synapse-go/internal/application/coordinator"
	"github.com/aliasghar-rao/synapse-go/internal/config"
	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

var (
	version = "0.3.0"
)

var configPath string
var debugMode bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "synapse",
	Short: "Synapse - swarm task coordination and consensus",
	Long: `Synapse coordinates a swarm of agents over individual, collaborative
and distributed tasks.

It provides:
  - Agent registry with capability-based eligibility
  - Five assignment strategies including auction-based allocation
  - Consensus engine with expertise-weighted voting and peer review
  - Learned expertise and cultural weighting tables
  - Swarm and consensus metrics`,
	Version: version,
}

func newCoordinator() (*coordinator.SwarmCoordinator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Debug = cfg.Debug || debugMode

	logger := zap.NewNop()
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	return coordinator.New(cfg, coordinator.WithLogger(logger))
}

func printJSON(v interface{}) {
	output, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(output))
}

// ============================================================================
// Agent Commands
// ============================================================================

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Agent management commands",
	Long:  `Commands for managing agents in the swarm.`,
}

var agentRegisterID string
var agentRegisterType string
var agentRegisterCaps []string
var agentRegisterTrust float64

var agentRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new agent",
	Long:  `Register a new agent in the swarm with the given type and capabilities.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCoordinator()
		if err != nil {
			return err
		}
		defer c.Shutdown()

		agent, err := c.RegisterAgent(shared.AgentConfig{
			ID:           agentRegisterID,
			Type:         agentRegisterType,
			Capabilities: agentRegisterCaps,
			TrustScore:   agentRegisterTrust,
		})
		if err != nil {
			return err
		}

		printJSON(agent)
		return nil
	},
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all agents",
	Long:  `List all agents currently registered in the swarm.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCoordinator()
		if err != nil {
			return err
		}
		defer c.Shutdown()

		agents := c.Agents()
		if len(agents) == 0 {
			fmt.Println("No agents in swarm")
			return nil
		}

		printJSON(agents)
		return nil
	},
}

// ============================================================================
// Task Commands
// ============================================================================

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Task management commands",
	Long:  `Commands for submitting and executing swarm tasks.`,
}

var taskRunType string
var taskRunPayload string
var taskRunCaps []string
var taskRunCulture string
var taskRunAgents int

var taskRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit and execute a task against echo agents",
	Long: `Submit a task, register echo agents to serve it, and execute the
task to a terminal state. Echo agents return the payload unchanged; the
command demonstrates the full assignment and execution path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCoordinator()
		if err != nil {
			return err
		}
		defer c.Shutdown()

		for i := 0; i < taskRunAgents; i++ {
			if _, err := c.RegisterAgent(shared.AgentConfig{
				ID:           fmt.Sprintf("echo-%d", i+1),
				Type:         "echo",
				Capabilities: taskRunCaps,
				TrustScore:   70,
			}); err != nil {
				return err
			}
		}

		taskID, err := c.SubmitTask(shared.TaskConfig{
			Type:                 shared.TaskType(taskRunType),
			RequiredCapabilities: taskRunCaps,
			Payload:              taskRunPayload,
			CulturalContext:      taskRunCulture,
		})
		if err != nil {
			return err
		}

		result, err := c.ExecuteTask(context.Background(), taskID)
		if err != nil {
			return err
		}

		printJSON(result)
		return nil
	},
}

// ============================================================================
// Status Command
// ============================================================================

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"metrics"},
	Short:   "Show swarm status",
	Long:    `Show the current swarm and consensus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCoordinator()
		if err != nil {
			return err
		}
		defer c.Shutdown()

		status := map[string]interface{}{
			"version":   version,
			"swarm":     c.Metrics(),
			"consensus": c.ConsensusMetrics(),
		}

		printJSON(status)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	// Agent commands
	agentRegisterCmd.Flags().StringVarP(&agentRegisterID, "id", "i", "", "Agent ID (required)")
	agentRegisterCmd.Flags().StringVarP(&agentRegisterType, "type", "t", "echo", "Agent type")
	agentRegisterCmd.Flags().StringSliceVarP(&agentRegisterCaps, "capabilities", "c", []string{}, "Agent capabilities")
	agentRegisterCmd.Flags().Float64Var(&agentRegisterTrust, "trust", 50, "Trust score (0-100)")
	agentRegisterCmd.MarkFlagRequired("id")
	agentCmd.AddCommand(agentRegisterCmd)
	agentCmd.AddCommand(agentListCmd)
	rootCmd.AddCommand(agentCmd)

	// Task commands
	taskRunCmd.Flags().StringVarP(&taskRunType, "type", "t", "individual", "Task type (individual, collaborative, distributed)")
	taskRunCmd.Flags().StringVarP(&taskRunPayload, "payload", "p", "", "Task payload")
	taskRunCmd.Flags().StringSliceVarP(&taskRunCaps, "capabilities", "c", []string{}, "Required capabilities")
	taskRunCmd.Flags().StringVar(&taskRunCulture, "cultural-context", "", "Cultural context key")
	taskRunCmd.Flags().IntVarP(&taskRunAgents, "agents", "n", 3, "Number of echo agents to register")
	taskCmd.AddCommand(taskRunCmd)
	rootCmd.AddCommand(taskCmd)

	// Status command
	rootCmd.AddCommand(statusCmd)

	// Consensus commands (from commands package)
	rootCmd.AddCommand(commands.ConsensusCmd)
}
