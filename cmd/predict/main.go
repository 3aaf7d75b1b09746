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
	"github.com/soufianesys/mlsys/pkg/domain/predict"
	"github.com/soufianesys/mlsys/pkg/utils/try"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Config      string `flag:"config" help:"The path to the server config file."`
	Environment string `flag:"environment" help:"The environment to predict in. dev|staging|prod"`

	InputTable   string `flag:"input-table" help:"The table to read feature rows from, as DATASET.TABLE."`
	OutputTable  string `flag:"output-table" help:"The table to append scored rows to, as DATASET.TABLE."`
	ModelName    string `flag:"model-name" help:"The name of the model to score with."`
	ModelVersion string `flag:"model-version" help:"The version of the model, as v{N}."`
}

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt, os.Kill,
	)
	defer cancel()

	cmd := try.To(flarc.NewCommand(
		"score a table with a registered model",
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
			input, err := domain.ParseTableRef(flags.InputTable)
			if err != nil {
				return err
			}
			output, err := domain.ParseTableRef(flags.OutputTable)
			if err != nil {
				return err
			}
			if flags.ModelName == "" {
				return fmt.Errorf("--model-name is required")
			}
			if !domain.ValidModelVersion(flags.ModelVersion) {
				return fmt.Errorf("bad model version: %q", flags.ModelVersion)
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

			written, err := m.Runner(predict.WithLogger(logger)).RunPredictions(
				ctx,
				domain.PredictionRequest{
					Environment:  env,
					InputTable:   input,
					OutputTable:  output,
					ModelName:    flags.ModelName,
					ModelVersion: flags.ModelVersion,
				},
			)
			if err != nil {
				return err
			}
			logger.Printf("wrote %d rows to %s", written, output)
			return nil
		},
	)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd))
}
