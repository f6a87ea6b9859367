package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallied-dev/tallied/internal/accounts"
	"github.com/tallied-dev/tallied/internal/config"
	"github.com/tallied-dev/tallied/internal/gitops"
	"github.com/tallied-dev/tallied/internal/journal"
	"github.com/tallied-dev/tallied/internal/model"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the chart of accounts",
	}
	cmd.PersistentFlags().String("repo", ".", "repository directory")

	cmd.AddCommand(newAccountsListCommand())
	cmd.AddCommand(newAccountsAddCommand())
	cmd.AddCommand(newAccountsRenameCommand())
	cmd.AddCommand(newAccountsReparentCommand())
	cmd.AddCommand(newAccountsDeleteCommand())
	return cmd
}

func repoDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("repo")
	if err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}

func newAccountsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := repoDir(cmd)
			if err != nil {
				return err
			}
			svc, err := accounts.Load(dir)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tNAME")
			for _, t := range model.AccountTypes {
				for _, a := range svc.TopLevelByType(t) {
					printAccountTree(tw, svc, a, 0)
				}
			}
			return tw.Flush()
		},
	}
}

func printAccountTree(tw *tabwriter.Writer, svc *accounts.Service, a model.Account, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Fprintf(tw, "%d\t%s\t%s%s\n", a.ID, a.Type, indent, a.Name)
	for _, child := range svc.ChildrenOf(a.ID) {
		printAccountTree(tw, svc, child, depth+1)
	}
}

func newAccountsAddCommand() *cobra.Command {
	var accountType string
	var parentID int
	var description string

	cmd := &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid account ID %q", args[0])
			}
			return mutateAccounts(cmd, fmt.Sprintf("accounts: add %d %s", id, args[1]), func(svc *accounts.Service) error {
				return svc.Create(model.Account{
					ID:          id,
					Name:        args[1],
					Type:        model.AccountType(accountType),
					ParentID:    parentID,
					Description: description,
				})
			})
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "", "account type (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().IntVar(&parentID, "parent", 0, "parent account ID")
	cmd.Flags().StringVar(&description, "description", "", "account description")

	return cmd
}

func newAccountsRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid account ID %q", args[0])
			}
			return mutateAccounts(cmd, fmt.Sprintf("accounts: rename %d to %s", id, args[1]), func(svc *accounts.Service) error {
				return svc.Rename(id, args[1])
			})
		},
	}
}

func newAccountsReparentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reparent <id> <parent-id>",
		Short: "Move an account under a new parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid account ID %q", args[0])
			}
			parentID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid parent ID %q", args[1])
			}
			return mutateAccounts(cmd, fmt.Sprintf("accounts: reparent %d under %d", id, parentID), func(svc *accounts.Service) error {
				return svc.Reparent(id, parentID)
			})
		},
	}
}

func newAccountsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account without children or postings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid account ID %q", args[0])
			}
			dir, err := repoDir(cmd)
			if err != nil {
				return err
			}
			svc, err := accounts.Load(dir)
			if err != nil {
				return err
			}
			used, err := journal.NewService(dir, svc).HasPostings(id)
			if err != nil {
				return err
			}
			if used {
				return fmt.Errorf("account %d has postings", id)
			}
			return mutateAccounts(cmd, fmt.Sprintf("accounts: delete %d", id), func(svc *accounts.Service) error {
				return svc.Delete(id)
			})
		},
	}
}

// mutateAccounts loads the chart, applies fn, saves, and commits when
// auto-commit is on.
func mutateAccounts(cmd *cobra.Command, message string, fn func(*accounts.Service) error) error {
	dir, err := repoDir(cmd)
	if err != nil {
		return err
	}
	svc, err := accounts.Load(dir)
	if err != nil {
		return err
	}
	if err := fn(svc); err != nil {
		return err
	}
	if err := svc.Save(dir); err != nil {
		return err
	}
	return autoCommit(dir, message)
}

func autoCommit(dir, message string) error {
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Git.AutoCommit || !gitops.IsRepo(dir) {
		return nil
	}
	if _, err := gitops.CommitAll(dir, message, cfg.Git.AuthorName, cfg.Git.AuthorEmail); err != nil && !errors.Is(err, gitops.ErrNoChanges) {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
