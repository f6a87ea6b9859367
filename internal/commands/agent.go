package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallied-dev/tallied/internal/agentlog"
	"github.com/tallied-dev/tallied/internal/sandbox"
)

func newAgentCommand() *cobra.Command {
	agentCmd := &cobra.Command{
		Use:   "agent",
		Short: "Agent operations",
	}
	agentCmd.AddCommand(newAgentRunCommand())
	agentCmd.AddCommand(newAgentLogCommand())
	return agentCmd
}

func newAgentRunCommand() *cobra.Command {
	var dryRun bool
	var repoDir string

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run an agent script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runAgent(absDir, args[0], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run without making changes")
	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")

	return cmd
}

func newAgentLogCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the agent audit trail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			entries, err := agentlog.Read(absDir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No agent activity recorded")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tAGENT\tACTION\tDETAILS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					e.Timestamp.Format("2006-01-02 15:04"), e.Agent, e.Action, e.Details)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")
	return cmd
}

func runAgent(repoRoot, name string, dryRun bool) error {
	scriptPath := filepath.Join(repoRoot, "agents", name+".py")
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("reading agent %s: %w", name, err)
	}

	bridge, err := sandbox.NewBridge()
	if err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer bridge.Shutdown()

	rt, err := sandbox.NewRuntime(repoRoot, name, dryRun)
	if err != nil {
		return fmt.Errorf("creating runtime: %w", err)
	}
	rt.Register(bridge)

	result, err := bridge.RunScript(string(script), bridge.PrimitiveNames())
	if err != nil {
		return fmt.Errorf("agent %s failed: %w", name, err)
	}
	if result != nil {
		fmt.Printf("%v\n", result)
	}

	if entries := rt.AgentLog(); len(entries) > 0 {
		if err := agentlog.Append(repoRoot, entries); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write agent log: %v\n", err)
		}
	}
	return nil
}
