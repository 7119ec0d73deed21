package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
	"github.com/zeromicro/go-zero/core/logx"

	"tradebot/internal/datastore"
	"tradebot/internal/pkg/bootstrap"
	"tradebot/internal/services"
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
		Name:  "migrate",
		Usage: "manage the tradebot database",
		Commands: []*cli.Command{
			commandMigration(),
			commandStatus(),
			commandImportTokens(),
			commandSearchTokens(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withContainer runs action against a container built from the environment.
func withContainer(action func(ctx context.Context, injector *do.Injector) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := bootstrap.ConfigFromEnv()
		if err != nil {
			return err
		}
		bootstrap.SetupLogging("tradebot-migrate", cfg)

		injector, cleanup, err := bootstrap.NewContainer(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		return action(c.Context, injector)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create missing tables and indexes",
		Action: withContainer(func(ctx context.Context, injector *do.Injector) error {
			db := bootstrap.MustAdapter(injector)
			if err := datastore.Migrate(ctx, db); err != nil {
				return err
			}

			logx.WithContext(ctx).Infow("migration success", logx.Field("dialect", db.Dialect().String()))
			fmt.Println("Migration success")
			return nil
		}),
	}
}

func commandStatus() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "print the row count of every table",
		Action: withContainer(func(ctx context.Context, injector *do.Injector) error {
			db := bootstrap.MustAdapter(injector)
			for _, table := range datastore.Tables() {
				n, err := datastore.CountRows(ctx, db, table)
				if err != nil {
					return fmt.Errorf("%s: %w", table, err)
				}
				fmt.Printf("%-22s %d\n", table, n)
			}
			return nil
		}),
	}
}

func commandImportTokens() *cli.Command {
	var file, url string
	return &cli.Command{
		Name:  "import-tokens",
		Usage: "load a JSON token list into the registry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Value:       "./tokens.json",
				Usage:       "path of the token list",
				Destination: &file,
			},
			&cli.StringFlag{
				Name:        "url",
				Usage:       "fetch the token list over HTTP instead of reading --file",
				Destination: &url,
			},
		},
		Action: withContainer(func(ctx context.Context, injector *do.Injector) error {
			data, err := readTokenList(ctx, file, url)
			if err != nil {
				return err
			}

			serviceToken := do.MustInvoke[*services.ServiceToken](injector)
			n, err := serviceToken.Import(ctx, data)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d tokens\n", n)
			return nil
		}),
	}
}

func commandSearchTokens() *cli.Command {
	var query string
	return &cli.Command{
		Name:  "search-tokens",
		Usage: "search the registry the way the bot does",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "query",
				Required:    true,
				Destination: &query,
			},
		},
		Action: withContainer(func(ctx context.Context, injector *do.Injector) error {
			serviceToken := do.MustInvoke[*services.ServiceToken](injector)
			tokens, err := serviceToken.Search(ctx, query)
			if err != nil {
				return err
			}

			for _, token := range tokens {
				fmt.Printf("%-10s %-30s %s %s\n", token.Symbol, token.Name, token.Chain, token.Address)
			}
			return nil
		}),
	}
}
