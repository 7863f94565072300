package cli

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/custodia-io/vault-ledger/internal/api"
	"github.com/custodia-io/vault-ledger/internal/clients/pricefeed"
	"github.com/custodia-io/vault-ledger/internal/clients/tokenbank"
	"github.com/custodia-io/vault-ledger/internal/config"
	"github.com/custodia-io/vault-ledger/internal/db"
	dbmodel "github.com/custodia-io/vault-ledger/internal/db/model"
	"github.com/custodia-io/vault-ledger/internal/observability/metrics"
	"github.com/custodia-io/vault-ledger/internal/observability/tracing"
	"github.com/custodia-io/vault-ledger/internal/queue"
	"github.com/custodia-io/vault-ledger/internal/services"
	"github.com/custodia-io/vault-ledger/internal/vault"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the vault ledger server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up vault event store")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	metrics.Init(cfg.Metrics.Port)

	publisher, err := queue.NewPublisher(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating queue publisher")
	}
	defer publisher.Shutdown()

	var source pricefeed.Source = pricefeed.NewClient(&cfg.Oracle)
	source = pricefeed.NewSourceWithMetrics(source)

	depositCap, err := cfg.Vault.ParsedDepositCap()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid deposit cap")
	}
	withdrawLimit, err := cfg.Vault.ParsedNativeWithdrawLimit()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid native withdraw limit")
	}

	vlt, err := vault.New(vault.Params{
		Operator:            cfg.Vault.Operator,
		DepositCap:          depositCap,
		NativeWithdrawLimit: withdrawLimit,
		PriceSourceAddr:     cfg.Oracle.Endpoint,
		Source:              source,
		Bank:                tokenbank.NewMemoryBank(),
		Sink:                services.NewRecorder(dbClient, publisher),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating vault")
	}

	svc := services.NewService(cfg, vlt, dbClient)
	server := api.New(&cfg.Server, svc)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("api server stopped")
		}
	}()
	log.Info().
		Str("addr", cfg.Server.Addr()).
		Str("operator", cfg.Vault.Operator).
		Msg("vault ledger server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	return server.Shutdown(ctx)
}
