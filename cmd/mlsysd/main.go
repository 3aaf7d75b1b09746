package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	kcs "github.com/soufianesys/mlsys/pkg/configs/server"
	"github.com/soufianesys/mlsys/pkg/domain/mlsys"
	"github.com/soufianesys/mlsys/pkg/domain/predict"
	"github.com/soufianesys/mlsys/pkg/domain/scanner"
	"github.com/soufianesys/mlsys/pkg/utils/echoutil"
	"github.com/soufianesys/mlsys/pkg/utils/filewatch"

	"github.com/soufianesys/mlsys/cmd/mlsysd/handlers"
)

func main() {

	configPath := flag.String("config-path", "", "server config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	e := echo.New()
	e.Pre(middleware.AddTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	// read configfile
	conf, err := kcs.LoadServerConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configration: %s", err)
	}

	ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), *configPath)
	if err != nil {
		log.Fatalf("can not watch configration: %s", err)
	}
	defer cancel()
	context.AfterFunc(ctx, func() {
		log.Println("config file is updated. quit to restart server.")
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			log.Printf("error on shutdown by config update: %s", err)
		}
	})

	m, err := mlsys.Default(ctx, conf)
	if err != nil {
		log.Fatalf("can not connect to database: %s", err)
	}
	defer m.Close()

	// handlers
	{
		e.GET("/api/health/", handlers.HealthHandler(m))
		e.GET("/api/model-registry/", handlers.ModelRegistryHandler(
			m.Scanner(scanner.WithLogger(log.Default())),
		))
		e.GET("/api/predict/", handlers.PredictHandler(
			m.Runner(predict.WithLogger(log.Default())),
		))
	}

	log.Println("registred routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		e.Logger.Fatal(e.StartTLS(":"+conf.ServerPort, cert, key))
	} else {
		e.Logger.Fatal(e.Start(":" + conf.ServerPort))
	}
}
