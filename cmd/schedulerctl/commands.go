package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/conf"
	"github.com/carokun/sachathescheduler/internal/data"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

type cli struct {
	dbPath string
}

// newRootCommand creates the schedulerctl command tree
func newRootCommand() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "schedulerctl",
		Short:         "Inspect and repair scheduler accounts",
		Long:          "schedulerctl reads the scheduler account store directly. Stop the bot before clearing pending actions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&c.dbPath, "db", "", "Account database path (default DB_PATH)")

	rootCmd.AddCommand(newAccountsCommand(c))
	rootCmd.AddCommand(newPendingCommand(c))
	rootCmd.AddCommand(newItemsCommand(c))
	return rootCmd
}

// withRepo opens the account store for the duration of fn
func (c *cli) withRepo(fn func(ctx context.Context, r repo.AccountRepo) error) error {
	path := c.dbPath
	if path == "" {
		path = conf.LoadFromEnv().Store.DBPath
	}
	r, err := data.NewAccountRepo(path)
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return fn(ctx, r)
}

func newAccountsCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(func(ctx context.Context, r repo.AccountRepo) error {
				accounts, err := r.ListAll(ctx)
				if err != nil {
					return err
				}
				printAccounts(cmd, accounts)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <account_id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(func(ctx context.Context, r repo.AccountRepo) error {
				account, err := mustGet(ctx, r, args[0])
				if err != nil {
					return err
				}
				printAccount(cmd, account)
				return nil
			})
		},
	})
	return cmd
}

func newPendingCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Pending action commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <account_id>",
		Short: "Show the action awaiting confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(func(ctx context.Context, r repo.AccountRepo) error {
				account, err := mustGet(ctx, r, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), describePending(account.Pending))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <account_id>",
		Short: "Drop the action awaiting confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(func(ctx context.Context, r repo.AccountRepo) error {
				account, err := mustGet(ctx, r, args[0])
				if err != nil {
					return err
				}
				if !account.HasPending() {
					fmt.Fprintln(cmd.OutOrStdout(), gray("Nothing pending"))
					return nil
				}
				if err := r.SetPending(ctx, account.ID, nil); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), green("Cleared: ")+account.Pending.Title())
				return nil
			})
		},
	})
	return cmd
}

func newItemsCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Scheduled item commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <account_id>",
		Short: "List confirmed reminders and meetings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRepo(func(ctx context.Context, r repo.AccountRepo) error {
				items, err := r.ListItems(ctx, args[0])
				if err != nil {
					return err
				}
				printItems(cmd, items)
				return nil
			})
		},
	})
	return cmd
}

func mustGet(ctx context.Context, r repo.AccountRepo, id string) (*domain.Account, error) {
	account, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	return account, nil
}

func printAccounts(cmd *cobra.Command, accounts []*domain.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), gray("No accounts"))
		return
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, bold("ID")+"\t"+bold("STATE")+"\t"+bold("PENDING")+"\t"+bold("UPDATED"))
	for _, a := range accounts {
		pending := "-"
		if a.HasPending() {
			pending = a.Pending.Title()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, stateLabel(a.State()), pending, a.UpdatedAt.Format(time.RFC3339))
	}
	w.Flush()
}

func printAccount(cmd *cobra.Command, a *domain.Account) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("Account:"), a.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("State:"), stateLabel(a.State()))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("DM channel:"), orDash(a.DMChannel))
	if a.Credentials != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("Calendar:"), orDash(a.Credentials.ProfileName))
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (version %d)\n", bold("Token expiry:"), a.Credentials.Expiry.Format(time.RFC3339), a.Credentials.Version)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("Pending:"), describePending(a.Pending))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("Created:"), a.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("Updated:"), a.UpdatedAt.Format(time.RFC3339))
}

func printItems(cmd *cobra.Command, items []*domain.ScheduledItem) {
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), gray("No items"))
		return
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, bold("DAY")+"\t"+bold("KIND")+"\t"+bold("SUBJECT")+"\t"+bold("CREATED"))
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.Day, it.Kind, it.Subject, it.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()
}

func describePending(p domain.PendingAction) string {
	switch v := p.(type) {
	case nil:
		return gray("none")
	case domain.RemindAdd:
		return fmt.Sprintf("%s %q on %s", v.Action(), v.Subject, v.Date)
	case domain.MeetingAdd:
		return fmt.Sprintf("%s %q on %s with %d participant(s)", v.Action(), v.Subject, v.Date, len(v.Participants))
	default:
		return p.Action()
	}
}

func stateLabel(s domain.AccountState) string {
	switch s {
	case domain.StateIdle:
		return green(string(s))
	case domain.StateAwaitingConfirmation:
		return yellow(string(s))
	default:
		return red(string(s))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
