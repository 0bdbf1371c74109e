package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/polkiloo/youwow/internal/domain/model"
)

func serviceOptionCmd(with runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service-option",
		Aliases: []string{"option"},
		Short:   "Manage the service catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(cmd, func(ctx context.Context, svc *services) error {
				options, err := svc.Orders.ServiceOptions(ctx)
				if err != nil {
					return fmt.Errorf("list service options: %w", err)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TYPE\tTITLE\tPRICE\tACTIVE")
				for _, o := range options {
					fmt.Fprintf(w, "%s\t%s\t%.2f\t%t\n", o.ServiceType, o.Title, o.Price, o.IsActive)
				}
				return w.Flush()
			})
		},
	}

	var (
		title    string
		inactive bool
	)
	set := &cobra.Command{
		Use:   "set [type] [price]",
		Short: "Create or update a catalog entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid price %q", args[1])
			}
			option := model.ServiceOption{
				ServiceType: model.ServiceType(strings.ToLower(strings.TrimSpace(args[0]))),
				Title:       title,
				Price:       price,
				IsActive:    !inactive,
			}
			return with(cmd, func(ctx context.Context, svc *services) error {
				if err := svc.Orders.SetServiceOption(ctx, option); err != nil {
					return fmt.Errorf("set service option: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "service option %s saved\n", option.ServiceType)
				return nil
			})
		},
	}
	set.Flags().StringVar(&title, "title", "", "Display title")
	set.Flags().BoolVar(&inactive, "inactive", false, "Hide the entry from the public catalog")

	cmd.AddCommand(list, set)
	return cmd
}
