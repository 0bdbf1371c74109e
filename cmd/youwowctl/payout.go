package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polkiloo/youwow/internal/server/http/handlers"
	"github.com/polkiloo/youwow/internal/usecase"
)

func payoutCmd(with runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payout",
		Short: "Settle partner conversions",
	}

	var (
		method string
		notes  string
	)
	create := &cobra.Command{
		Use:   "create [partner] [from] [to]",
		Short: "Pay out unpaid conversions of a period",
		Long: `Pay out every unpaid conversion of the partner converted within the
period. Bounds are RFC3339 timestamps or YYYY-MM-DD dates; a date-only
upper bound includes the whole day.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := handlers.ParsePeriodBound(args[1], false)
			if err != nil {
				return fmt.Errorf("invalid period start %q: %w", args[1], err)
			}
			end, err := handlers.ParsePeriodBound(args[2], true)
			if err != nil {
				return fmt.Errorf("invalid period end %q: %w", args[2], err)
			}

			return with(cmd, func(ctx context.Context, svc *services) error {
				payout, err := svc.Affiliate.CreatePayout(ctx, usecase.PayoutRequest{
					PartnerID:     args[0],
					PeriodStart:   start,
					PeriodEnd:     end,
					PaymentMethod: method,
					Notes:         notes,
				})
				if err != nil {
					return fmt.Errorf("create payout: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "payout %d: %d conversions, %.2f\n", payout.ID, payout.ConversionsCount, payout.Amount)
				return nil
			})
		},
	}
	create.Flags().StringVar(&method, "method", "", "Payment method used for the transfer")
	create.Flags().StringVar(&notes, "notes", "", "Free form notes")

	cmd.AddCommand(create)
	return cmd
}
