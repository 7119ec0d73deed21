package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"tradebot/internal/pkg/bootstrap"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob() *cli.Command {
	return &cli.Command{
		Name: "cron",
		Action: func(c *cli.Context) error {
			cfg, err := bootstrap.ConfigFromEnv()
			if err != nil {
				return err
			}
			bootstrap.SetupLogging("tradebot-cron", cfg)

			injector, cleanup, err := bootstrap.NewContainer(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			spec := os.Getenv("CRONJOB_TIME_EXPIRE_SESSIONS")
			if spec == "" {
				spec = DEFAULT_EXPIRE_SESSIONS_SPEC
			}

			cronRunner := cron.New()
			job := NewExpireSessionsJob(bootstrap.MustAdapter(injector))
			if err := job.Start(cronRunner, spec); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errWg, errCtx := errgroup.WithContext(ctx)

			errWg.Go(func() error {
				logx.Infow("start cronjob", logx.Field("expire_sessions", spec))
				cronRunner.Start()
				return nil
			})

			errWg.Go(func() error {
				<-errCtx.Done()
				<-cronRunner.Stop().Done()
				logx.Info("cronjob stopped")
				return nil
			})

			return errWg.Wait()
		},
	}
}
