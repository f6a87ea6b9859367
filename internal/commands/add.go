package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallied-dev/tallied/internal/accounts"
	"github.com/tallied-dev/tallied/internal/journal"
	"github.com/tallied-dev/tallied/internal/model"
)

func newAddCommand() *cobra.Command {
	var (
		dateStr      string
		debit        int
		credit       int
		amountStr    string
		counterparty string
		reference    string
		tags         string
		notes        string
	)

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Record a double-entry journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := repoDir(cmd)
			if err != nil {
				return err
			}

			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", dateStr)
			}
			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return fmt.Errorf("invalid amount %q", amountStr)
			}

			accts, err := accounts.Load(dir)
			if err != nil {
				return err
			}

			entryID, err := journal.NewService(dir, accts).AddDouble(journal.AddDoubleParams{
				Date:          date,
				Description:   args[0],
				DebitAccount:  debit,
				CreditAccount: credit,
				Amount:        amount,
				Counterparty:  counterparty,
				Reference:     reference,
				Source:        model.SourceManual,
				Status:        model.StatusUserConfirmed,
				Tags:          tags,
				Notes:         notes,
			})
			if err != nil {
				return err
			}

			if err := autoCommit(dir, "journal: add "+entryID); err != nil {
				return err
			}
			fmt.Printf("Recorded %s\n", entryID)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", time.Now().Format("2006-01-02"), "entry date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&debit, "debit", 0, "debit account ID (required)")
	_ = cmd.MarkFlagRequired("debit")
	cmd.Flags().IntVar(&credit, "credit", 0, "credit account ID (required)")
	_ = cmd.MarkFlagRequired("credit")
	cmd.Flags().StringVar(&amountStr, "amount", "", "entry amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "who the entry is with")
	cmd.Flags().StringVar(&reference, "reference", "", "external reference")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().String("repo", ".", "repository directory")

	return cmd
}
