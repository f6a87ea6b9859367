package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallied-dev/tallied/internal/accounts"
	"github.com/tallied-dev/tallied/internal/config"
	"github.com/tallied-dev/tallied/internal/importer"
	"github.com/tallied-dev/tallied/internal/journal"
	"github.com/tallied-dev/tallied/internal/model"
)

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Work with bank CSV exports in import/",
	}
	cmd.PersistentFlags().String("repo", ".", "repository directory")

	cmd.AddCommand(newImportListCommand())
	cmd.AddCommand(newImportShowCommand())
	cmd.AddCommand(newImportRunCommand())
	return cmd
}

func newImportListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unprocessed bank CSV files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := repoDir(cmd)
			if err != nil {
				return err
			}
			files, err := importer.Scan(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("No files waiting in import/")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE")
			for _, f := range files {
				fmt.Fprintf(tw, "%s\t%d\n", f.Name, f.Size)
			}
			return tw.Flush()
		},
	}
}

// openImportFile opens a bank CSV by path, falling back to the repo's
// import dir for bare names. inRepo reports whether the fallback was used,
// so run can move the file to processed/ afterwards.
func openImportFile(dir, name string) (f *os.File, inRepo bool, err error) {
	f, err = os.Open(name)
	if err == nil {
		return f, false, nil
	}
	f, ferr := os.Open(filepath.Join(dir, "import", name))
	if ferr != nil {
		return nil, false, err
	}
	return f, true, nil
}

func newImportShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Parse a bank CSV and show its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := repoDir(cmd)
			if err != nil {
				return err
			}

			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("no parser for format %s", format)
			}

			f, _, err := openImportFile(dir, args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			txns, err := parser.Parse(f)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tAMOUNT\tDESCRIPTION\tREFERENCE")
			for _, txn := range txns {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					txn.Date.Format("2006-01-02"), txn.Amount.StringFixed(2), txn.Description, txn.Reference)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&format, "format", "chase", "bank CSV format")
	return cmd
}

func newImportRunCommand() *cobra.Command {
	var format string
	var bankID int
	var offsetID int

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Post a bank CSV's transactions to the journal",
		Long: `Post every transaction in a bank CSV against a bank account.
Money in debits the bank account, money out credits it; the other side
goes to the offset account for later categorization. Entries are posted
with source "ledger" and status "pending-review".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := repoDir(cmd)
			if err != nil {
				return err
			}

			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("no parser for format %s", format)
			}

			cfg, err := config.Load(filepath.Join(dir, config.FileName))
			if err != nil {
				return err
			}
			if bankID == 0 {
				if len(cfg.BankAccounts) == 0 {
					return fmt.Errorf("no bank account configured; pass --bank or add bank_accounts to %s", config.FileName)
				}
				bankID = cfg.BankAccounts[0].AccountID
			}

			f, inRepo, err := openImportFile(dir, args[0])
			if err != nil {
				return err
			}
			txns, err := parser.Parse(f)
			f.Close()
			if err != nil {
				return err
			}

			accts, err := accounts.Load(dir)
			if err != nil {
				return err
			}
			svc := journal.NewService(dir, accts)

			for _, txn := range txns {
				amount := txn.Amount
				debit, credit := bankID, offsetID
				if amount.IsNegative() {
					debit, credit = offsetID, bankID
					amount = amount.Neg()
				}
				entryID, err := svc.AddDouble(journal.AddDoubleParams{
					Date:          txn.Date,
					Description:   txn.Description,
					DebitAccount:  debit,
					CreditAccount: credit,
					Amount:        amount,
					Reference:     txn.Reference,
					Source:        model.SourceLedger,
					Status:        model.StatusPendingReview,
				})
				if err != nil {
					return fmt.Errorf("posting %q: %w", txn.Description, err)
				}
				fmt.Printf("Recorded %s  %s\n", entryID, txn.Description)
			}

			if inRepo {
				if err := importer.MarkProcessed(dir, args[0]); err != nil {
					return err
				}
			}
			if err := autoCommit(dir, fmt.Sprintf("import: %s (%d entries)", filepath.Base(args[0]), len(txns))); err != nil {
				return err
			}
			fmt.Printf("Imported %d transactions from %s\n", len(txns), filepath.Base(args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "chase", "bank CSV format")
	cmd.Flags().IntVar(&bankID, "bank", 0, "bank account ID (default: first configured bank account)")
	cmd.Flags().IntVar(&offsetID, "offset", 0, "offset account ID for the non-bank side (required)")
	_ = cmd.MarkFlagRequired("offset")
	return cmd
}
