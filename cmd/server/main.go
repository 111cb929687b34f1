package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mint-server/internal/infrastructure/config"
	"mint-server/internal/infrastructure/persistence/mysql"
	"mint-server/internal/presentation/rest"
	"mint-server/internal/presentation/scheduler"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "mint-server",
		Usage: "gems to token minting and distribution",
		Commands: []*cli.Command{
			commandServe(),
			commandMigrate(),
			commandMint(),
			commandGems(),
		},
	}
}

// commandServe REST API とスケジューラを起動する
func commandServe() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the admin API and the scheduler",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "scheduler",
				Usage: "run scheduled jobs in this process (defaults to SCHEDULER_ENABLED)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app, err := newApplication(cfg)
			if err != nil {
				return err
			}
			defer app.close()

			router, err := rest.NewRouter(cfg, app.logger, app.metrics, app.db, app.mintService, app.gemsService)
			if err != nil {
				return fmt.Errorf("failed to create router: %w", err)
			}

			runScheduler := cfg.Scheduler.Enabled
			if c.IsSet("scheduler") {
				runScheduler = c.Bool("scheduler")
			}

			var sched *scheduler.Scheduler
			if runScheduler {
				sched = scheduler.NewScheduler(&cfg.Scheduler, app.system, app.newLocker(), app.mintService, app.gemsService, app.logger)
				if err := sched.Register(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errWg, errCtx := errgroup.WithContext(ctx)

			errWg.Go(func() error {
				log.Printf("REST API server starting on %s", router.Address())
				return router.Start(router.Address())
			})

			if sched != nil {
				sched.Start()
				errWg.Go(func() error {
					<-errCtx.Done()
					// 実行中のジョブの完了を待つ
					<-sched.Stop().Done()
					return nil
				})
			}

			errWg.Go(func() error {
				<-errCtx.Done()
				log.Println("Shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return router.Shutdown(shutdownCtx)
			})

			return errWg.Wait()
		},
	}
}

// errDirtySchema 途中で失敗したマイグレーションが残っている
var errDirtySchema = errors.New("schema is dirty, fix the failed migration and force the version before retrying")

// versioner スキーマバージョンを返すもの
type versioner interface {
	Version() (uint, bool, error)
}

// schemaVersion 現在のバージョンを返す。dirty な場合はエラー
func schemaVersion(m versioner) (uint, error) {
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("%w: version %d", errDirtySchema, version)
	}
	return version, nil
}

// commandMigrate スキーマのマイグレーション
func commandMigrate() *cli.Command {
	run := func(fn func(m *mysql.Migrator) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			m, err := mysql.NewMigrator(&cfg.Database)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := fn(m); err != nil {
				return err
			}
			version, err := schemaVersion(m)
			if err != nil {
				return err
			}
			log.Printf("Schema version: %d", version)
			return nil
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Action: run(func(m *mysql.Migrator) error { return m.Up() }),
			},
			{
				Name:   "down",
				Usage:  "roll back the latest migration",
				Action: run(func(m *mysql.Migrator) error { return m.Down() }),
			},
		},
	}
}

// commandMint 期間を指定して一度だけミントする
func commandMint() *cli.Command {
	return &cli.Command{
		Name:  "mint",
		Usage: "distribute the token budget for one day period",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "period",
				Value: "D1",
				Usage: "period code (D0..D7)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app, err := newApplication(cfg)
			if err != nil {
				return err
			}
			defer app.close()

			summary, err := app.mintService.DistributeTokensFromGems(c.Context, app.system, c.String("period"))
			if err != nil {
				return err
			}
			return printJSON(c, summary)
		},
	}
}

// commandGems ジェム関連の操作
func commandGems() *cli.Command {
	return &cli.Command{
		Name:  "gems",
		Usage: "gems operations",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "generate gems from uncollected interactions",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					app, err := newApplication(cfg)
					if err != nil {
						return err
					}
					defer app.close()

					result, err := app.gemsService.GenerateGemsFromActions(c.Context, app.system)
					if err != nil {
						return err
					}
					return printJSON(c, result)
				},
			},
			{
				Name:  "stats",
				Usage: "show uncollected gems per period",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					app, err := newApplication(cfg)
					if err != nil {
						return err
					}
					defer app.close()

					stats, err := app.gemsService.GemsStats(c.Context, app.system)
					if err != nil {
						return err
					}
					return printJSON(c, stats)
				},
			},
		},
	}
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
