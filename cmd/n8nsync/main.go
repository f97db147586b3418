package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	cliadapter "github.com/n8nsync/n8nsync/internal/adapter/driven/cli"
	restadapter "github.com/n8nsync/n8nsync/internal/adapter/driven/rest"
	sqliteadapter "github.com/n8nsync/n8nsync/internal/adapter/driven/sqlite"
	"github.com/n8nsync/n8nsync/internal/application"
	"github.com/n8nsync/n8nsync/internal/config"
	"github.com/n8nsync/n8nsync/internal/domain/model"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "n8nsync",
		Short:         "Bootstrap an n8n admin identity and sync artifact files with the instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newConfigureCommand())
	cmd.AddCommand(newExportCommand())
	return cmd
}

func newConfigureCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "configure",
		Aliases: []string{"import"}, // some deployments invoke the import spelling
		Short:   "Bootstrap the admin identity, then import credentials and workflows",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(cmd.Context())
		},
	}
}

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <workflow|credentials> [id...]",
		Short: "Export all artifacts of a type, or just the given ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseArtifactKind(args[0])
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), kind, args[1:])
		},
	}
}

func runConfigure(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := slog.Default()
	log.Info("config loaded",
		"service", cfg.BaseURL(),
		"data_dir", cfg.DataDir,
		"store_path", cfg.StorePath,
	)

	db, err := sqliteadapter.NewDB(cfg.StorePath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing store", "error", closeErr)
		}
	}()

	gateway := restadapter.NewGateway(restadapter.NewClient(cfg.BaseURL()), restadapter.DefaultPollInterval, log)
	bootstrap := application.NewBootstrapService(gateway, sqliteadapter.NewAPIKeyRepo(db), cfg, log)
	importer := application.NewImportService(cliadapter.NewRunner(cfg.ServiceBin), gateway, cfg.DataDir, log)

	if err := gateway.AwaitReady(ctx); err != nil {
		return err
	}
	log.Info("service is ready")

	owner, err := bootstrap.ResolveOwner(ctx)
	if err != nil {
		return err
	}
	token, err := bootstrap.ResolveOrCreateAPIKey(ctx, owner.ID)
	if err != nil {
		return err
	}

	// Credentials first: workflows typically reference them.
	if _, err := importer.Import(ctx, model.KindCredential, token); err != nil {
		return err
	}
	if _, err := importer.Import(ctx, model.KindWorkflow, token); err != nil {
		return err
	}
	return nil
}

func runExport(ctx context.Context, kind model.ArtifactKind, ids []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := slog.Default()

	exporter := application.NewExportService(cliadapter.NewRunner(cfg.ServiceBin), cfg.DataDir, log)
	return exporter.Export(ctx, kind, ids)
}
