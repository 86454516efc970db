package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"

	"github.com/screwyprof/airdrop/pkg/cosmosgrpc"
	"github.com/screwyprof/airdrop/pkg/logger"
	"github.com/screwyprof/airdrop/pkg/metrics"
	"github.com/screwyprof/airdrop/pkg/pgxdb"
	"github.com/screwyprof/airdrop/snapshot"
	"github.com/screwyprof/airdrop/snapshot/config"
	"github.com/screwyprof/airdrop/snapshot/store/pgxstore"
)

// newApp builds the CLI. Environment configuration provides the flag defaults.
func newApp(cfg config.Config, stdout, stderr io.Writer) *cli.App {
	var (
		opts     runOptions
		grpcURL  string
		forceTLS bool
		dbURL    string
		logLevel string
	)

	return &cli.App{
		Name:      "snapshot",
		Usage:     "snapshot account sequence and staked amount for every airdrop allocation",
		Version:   version + " (" + date + ")",
		Writer:    stdout,
		ErrWriter: stderr,
		// main maps errors to exit codes
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "JSON file with address and amount allocations",
				Value:       cfg.InputPath,
				Destination: &opts.input,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "JSON file the snapshot records are written to",
				Value:       cfg.OutputPath,
				Destination: &opts.output,
			},
			&cli.StringFlag{
				Name:        "grpc-url",
				Usage:       "Cosmos SDK gRPC endpoint; an https:// URL implies TLS",
				Value:       cfg.GRPCURL,
				Destination: &grpcURL,
			},
			&cli.BoolFlag{
				Name:        "tls",
				Usage:       "force TLS regardless of the endpoint scheme",
				Value:       cfg.TLS,
				Destination: &forceTLS,
			},
			&cli.StringFlag{
				Name:        "prefix",
				Usage:       "bech32 prefix addresses are normalized to; empty keeps them as given",
				Value:       cfg.Prefix,
				Destination: &opts.prefix,
			},
			&cli.IntFlag{
				Name:        "max-batch-size",
				Usage:       "process at most this many allocations; 0 disables the cap",
				Value:       cfg.MaxBatchSize,
				Destination: &opts.maxBatchSize,
			},
			&cli.StringFlag{
				Name:        "join",
				Usage:       "failure policy; values: 'collect-all' (default), 'fail-fast'",
				Value:       cfg.JoinPolicy,
				Destination: &opts.joinPolicy,
			},
			&cli.DurationFlag{
				Name:        "call-timeout",
				Usage:       "deadline for each remote call; 0 disables it",
				Value:       cfg.CallTimeout,
				Destination: &opts.callTimeout,
			},
			&cli.StringFlag{
				Name:        "database-url",
				Usage:       "also upsert the records into this PostgreSQL database",
				Value:       cfg.DatabaseURL,
				Destination: &dbURL,
			},
			&cli.StringFlag{
				Name:        "metrics-file",
				Usage:       "write Prometheus metrics to this textfile after the run",
				Value:       cfg.MetricsFile,
				Destination: &opts.metricsFile,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "debug, info, warn or error",
				Value:       cfg.LogLevel,
				Destination: &logLevel,
			},
		},
		Action: func(c *cli.Context) error {
			log := logger.NewFromConfig(logger.Config{
				LogLevel:         logLevel,
				LogHumanFriendly: cfg.LogHumanFriendly,
				Output:           stderr,
			})
			slog.SetDefault(log)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := metrics.New()
			dialOpts := []cosmosgrpc.Option{
				cosmosgrpc.WithTLS(forceTLS),
				cosmosgrpc.WithDialOptions(grpc.WithChainUnaryInterceptor(reg.UnaryClientInterceptor())),
			}

			r := &runner{
				dial: func(context.Context) (snapshot.Client, error) {
					return cosmosgrpc.Dial(grpcURL, dialOpts...)
				},
				stdout:  stdout,
				log:     log,
				metrics: reg,
			}

			if dbURL != "" {
				pool, err := pgxdb.NewConnection(ctx, dbURL, pgxdb.WithMaxConns(2))
				if err != nil {
					return cli.Exit(err, exitFatal)
				}
				store, closeStore := pgxstore.New(pool)
				defer closeStore()
				r.store = store
			}

			log.InfoContext(ctx, "Airdrop snapshot starting",
				slog.String("version", version),
				slog.String("grpc_url", grpcURL),
				slog.String("input", opts.input),
			)

			return r.run(ctx, opts)
		},
	}
}
