package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	kcs "github.com/soufianesys/mlsys/pkg/configs/server"
	"github.com/soufianesys/mlsys/pkg/domain"
	"github.com/soufianesys/mlsys/pkg/domain/mlsys"
	"github.com/soufianesys/mlsys/pkg/domain/scanner"
	"github.com/soufianesys/mlsys/pkg/utils/pointer"
	"github.com/soufianesys/mlsys/pkg/utils/try"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Config      string `flag:"config" help:"The path to the server config file."`
	Environment string `flag:"environment" help:"The environment to scan. dev|staging|prod"`
	Object      string `flag:"object" help:"Register this single object key instead of scanning the whole bucket."`
}

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt, os.Kill,
	)
	defer cancel()

	cmd := try.To(flarc.NewCommand(
		"scan a model bucket and register its artifacts",
		Flag{
			Config:      os.Getenv("MLSYS_CONFIG"),
			Environment: os.Getenv("MLSYS_ENVIRONMENT"),
		},
		flarc.Args{},
		func(ctx context.Context, c flarc.Commandline[Flag], a []any) error {
			flags := c.Flags()

			env, err := domain.ParseEnvironment(flags.Environment)
			if err != nil {
				return err
			}

			conf, err := kcs.LoadServerConfig(flags.Config)
			if err != nil {
				return fmt.Errorf("can not read configration: %w", err)
			}

			m, err := mlsys.Default(ctx, conf)
			if err != nil {
				return err
			}
			defer m.Close()

			s := m.Scanner(scanner.WithLogger(logger))

			if flags.Object != "" {
				rec, err := s.RegisterObject(ctx, env, flags.Object)
				if err != nil {
					return err
				}
				if rec == nil {
					logger.Printf("skipped: %s is not a registerable artifact", flags.Object)
					return nil
				}
				logger.Printf(
					"registered: %s/v%d as %s (uploader %s)",
					rec.ModelName, rec.ModelVersion, rec.RecordId,
					pointer.SafeDeref(rec.Uploader),
				)
				return nil
			}

			records, err := s.ScanAndRegister(ctx, env)
			if err != nil {
				return err
			}
			logger.Printf("registered %d records in %s", len(records), env)
			return nil
		},
	)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd))
}
