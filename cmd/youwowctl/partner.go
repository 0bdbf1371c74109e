package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/polkiloo/youwow/internal/domain/model"
)

func partnerCmd(with runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partner",
		Short: "Manage affiliate partners",
	}

	var (
		website    string
		commission float64
		notes      string
	)
	create := &cobra.Command{
		Use:   "create [id] [name]",
		Short: "Register an affiliate partner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			partner := model.Partner{
				ID:             args[0],
				Name:           args[1],
				CommissionRate: commission,
				Website:        optional(website),
				Notes:          optional(notes),
			}
			return with(cmd, func(ctx context.Context, svc *services) error {
				created, err := svc.Affiliate.CreatePartner(ctx, partner)
				if err != nil {
					return fmt.Errorf("create partner: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "partner %s created (%s)\n", created.ID, created.Status)
				return nil
			})
		},
	}
	create.Flags().StringVar(&website, "website", "", "Partner website")
	create.Flags().Float64Var(&commission, "commission", 0, "Flat commission per conversion")
	create.Flags().StringVar(&notes, "notes", "", "Free form notes")

	list := &cobra.Command{
		Use:   "list",
		Short: "List partners with their conversion totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(cmd, func(ctx context.Context, svc *services) error {
				partners, err := svc.Affiliate.Partners(ctx)
				if err != nil {
					return fmt.Errorf("list partners: %w", err)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCONVERSIONS\tPENDING")
				for _, p := range partners {
					stats, err := svc.Affiliate.Stats(ctx, p.ID)
					if err != nil {
						return fmt.Errorf("partner %s stats: %w", p.ID, err)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\n", p.ID, p.Name, p.Status, stats.Conversions, stats.PendingCommission)
				}
				return w.Flush()
			})
		},
	}

	status := func(use string, target model.PartnerStatus) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [id]",
			Short: "Mark a partner " + string(target),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return with(cmd, func(ctx context.Context, svc *services) error {
					partner, err := svc.Affiliate.SetPartnerStatus(ctx, args[0], target)
					if err != nil {
						return fmt.Errorf("%s partner: %w", use, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "partner %s is %s\n", partner.ID, partner.Status)
					return nil
				})
			},
		}
	}

	cmd.AddCommand(
		create,
		list,
		status("activate", model.PartnerStatusActive),
		status("deactivate", model.PartnerStatusInactive),
		status("archive", model.PartnerStatusArchived),
	)
	return cmd
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
