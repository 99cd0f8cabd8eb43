package cmd

import (
	"fmt"

	"animalitos/config"
	"animalitos/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}

func newTransferCommand() *cobra.Command {
	var req entities.TransferRequest
	var amount string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move funds between two pots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseAmount(amount)
			if err != nil {
				return err
			}
			req.Amount = parsed

			a, err := newApp(cmd.Context(), config.Get(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			result, err := a.ledger.Transfer(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "idempotency id (generated when empty)")
	cmd.Flags().StringVar(&req.FromPot, "from", "", "source pot")
	cmd.Flags().StringVar(&req.ToPot, "to", "", "destination pot")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to move")
	cmd.Flags().StringVar(&req.CreatedBy, "by", "", "operator performing the transfer")
	for _, name := range []string{"from", "to", "amount", "by"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newWithdrawCommand() *cobra.Command {
	var req entities.WithdrawalRequest
	var amount string

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Take funds out of a pot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseAmount(amount)
			if err != nil {
				return err
			}
			req.Amount = parsed

			a, err := newApp(cmd.Context(), config.Get(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			result, err := a.ledger.Withdraw(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "idempotency id (generated when empty)")
	cmd.Flags().StringVar(&req.FromPot, "from", "", "source pot")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to withdraw")
	cmd.Flags().StringVar(&req.CreatedBy, "by", "", "operator performing the withdrawal")
	for _, name := range []string{"from", "amount", "by"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newReconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Compare pot balances with their history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), config.Get(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			report, err := a.ledger.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay locally applied entries against the authoritative store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), config.Get(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			report, err := a.ledger.Sync(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}
