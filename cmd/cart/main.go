package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	cartapp "github.com/dwikikusuma/shoping-cart/internal/cart/app"
	cartadapter "github.com/dwikikusuma/shoping-cart/internal/cart/infra/adapter"
	catalogapp "github.com/dwikikusuma/shoping-cart/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/shoping-cart/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/shoping-cart/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/shoping-cart/internal/gateway"
	"github.com/dwikikusuma/shoping-cart/internal/pricing"
	"github.com/dwikikusuma/shoping-cart/pkg/config"
	"github.com/dwikikusuma/shoping-cart/pkg/logger"
	"github.com/dwikikusuma/shoping-cart/pkg/metrics"
	"github.com/dwikikusuma/shoping-cart/pkg/shutdown"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "cart"

func main() {
	app := &cli.App{
		Name:  serviceName,
		Usage: "shopping cart and checkout service",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP and gRPC servers and the outbox relay",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "apply migrations before serving"},
					&cli.StringFlag{Name: "seed", Usage: "JSON file of catalog choices to upsert on start"},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations",
				Action: runMigrate,
			},
			{
				Name:      "seed",
				Usage:     "upsert catalog choices from a JSON file",
				ArgsUsage: "<file>",
				Action:    runSeed,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(logger.Options{
		Service:   serviceName,
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})
	return cfg, log, nil
}

func runMigrate(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := migrate(c.Context, cfg); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("migrations applied")
	return nil
}

func runSeed(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("seed expects exactly one fixtures file", 2)
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	st, err := openStorage(c.Context, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	n, err := seed(c.Context, st, c.Args().First())
	if err != nil {
		return err
	}
	log.Info("catalog seeded", slog.Int("choices", n))
	return nil
}

func seed(ctx context.Context, st *storage, path string) (int, error) {
	choices, err := loadFixtures(path)
	if err != nil {
		return 0, err
	}
	if err := st.seed(ctx, choices...); err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	return len(choices), nil
}

func serve(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := shutdown.WithSignals(c.Context)
	defer cancel()

	policy, err := pricing.ParseMissingPolicy(cfg.PricingMissingPolicy)
	if err != nil {
		return err
	}

	if c.Bool("migrate") {
		if err := migrate(ctx, cfg); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	if path := c.String("seed"); path != "" {
		n, err := seed(ctx, st, path)
		if err != nil {
			return err
		}
		log.Info("catalog seeded", slog.Int("choices", n))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Catalog
	catalogSvc := catalogapp.NewService(st.choices)
	engine := pricing.NewEngine(catalogSvc, policy, log)

	// Cart
	cartSvc := cartapp.NewService(st.carts, engine, cartadapter.NewCatalogServiceReader(catalogSvc),
		cartapp.WithMaxRetries(cfg.MutationMaxRetries),
	)

	// Checkout (adapters)
	checkoutSvc := checkoutapp.NewService(
		checkoutadapter.NewCartServiceReader(cartSvc),
		checkoutadapter.NewCatalogServiceReader(catalogSvc),
		st.uow,
		engine,
		checkoutapp.WithTimeout(cfg.CheckoutTimeout),
		checkoutapp.WithMetrics(metrics.NewCheckoutMetrics(reg, serviceName)),
		checkoutapp.WithLogger(log),
	)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gateway.NewRouter(gateway.RouterConfig{
		Handler:  gateway.NewHandler(cartSvc, checkoutSvc),
		Log:      log,
		Metrics:  metrics.NewServerMetrics(reg, serviceName),
		Gatherer: reg,
		Ready:    st.ready,
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// nothing is listening yet, so a broken publisher fails fast
	relay, closeRelay, err := newRelay(cfg, st.outbox, log)
	if err != nil {
		return err
	}
	defer closeRelay()

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	if relay != nil {
		g.Go(func() error {
			log.Info("outbox relay starting", slog.String("topic", cfg.KafkaTopic))
			return relay.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		healthSrv.Shutdown()

		shutdown.Graceful(10*time.Second, func(ctx context.Context) {
			if err := httpServer.Shutdown(ctx); err != nil {
				log.Error("http shutdown error", slog.Any("err", err))
			}
		}, func() { _ = httpServer.Close() })
		if !shutdown.Graceful(10*time.Second, func(context.Context) { grpcServer.GracefulStop() }, grpcServer.Stop) {
			log.Warn("grpc graceful stop timed out")
		}
		return nil
	})

	err = g.Wait()
	log.Info("bye")
	return err
}
