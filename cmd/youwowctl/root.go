package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/polkiloo/youwow/internal/config"
	"github.com/polkiloo/youwow/internal/di"
	"github.com/polkiloo/youwow/internal/usecase"
)

// services are the use cases administrative commands operate on.
type services struct {
	Auth      *usecase.AuthUseCase
	Affiliate *usecase.AffiliateUseCase
	Orders    *usecase.OrderUseCase
}

// opener connects to storage and returns the services with a release func.
type opener func(ctx context.Context, dsn string) (*services, func(), error)

func openCore(ctx context.Context, dsn string) (*services, func(), error) {
	cfg, err := config.LoadDatabase(dsn)
	if err != nil {
		return nil, nil, err
	}

	var svc services
	app := fx.New(
		fx.NopLogger,
		fx.Supply(ctx),
		fx.Supply(cfg),
		di.CoreModule(),
		fx.Populate(&svc.Auth, &svc.Affiliate, &svc.Orders),
	)
	if err := app.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("start: %w", err)
	}
	return &svc, func() { _ = app.Stop(context.Background()) }, nil
}

func newRootCmd(open opener) *cobra.Command {
	var dsn string

	root := &cobra.Command{
		Use:           "youwowctl",
		Short:         "Administrative commands for the YouWow order service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&dsn, "database", "d", "", "PostgreSQL DSN (defaults to DATABASE_URI)")

	with := func(cmd *cobra.Command, fn func(ctx context.Context, svc *services) error) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		svc, release, err := open(ctx, dsn)
		if err != nil {
			return err
		}
		defer release()
		return fn(ctx, svc)
	}

	root.AddCommand(
		adminCmd(with),
		partnerCmd(with),
		payoutCmd(with),
		serviceOptionCmd(with),
	)
	return root
}

type runner func(cmd *cobra.Command, fn func(ctx context.Context, svc *services) error) error
