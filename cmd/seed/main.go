package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"alttabwell/internal/db"
	"alttabwell/internal/store"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "seed",
		Usage: "create the schema and load sample departments, users and steps",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "PostgreSQL connection string",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "drop every table before migrating",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "number of days of step history per sample user",
				Value: 7,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at debug level",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := zap.Must(zap.NewProduction())
	if c.Bool("verbose") {
		logger = zap.Must(zap.NewDevelopment())
	}
	defer logger.Sync()

	ctx := c.Context
	dbConn, err := sqlx.Open("pgx", c.String("database-url"))
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer dbConn.Close()
	if err := dbConn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	if c.Bool("reset") {
		if err := db.DropAll(ctx, dbConn); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		logger.Info("existing tables dropped")
	}
	if err := db.RunMigrations(ctx, dbConn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema ready", zap.Strings("departments", db.DefaultDepartments))

	now := time.Now()
	s := &seeder{
		store:  store.New(dbConn),
		rng:    rand.New(rand.NewPCG(uint64(now.UnixNano()), 0)),
		logger: logger,
	}
	return s.seed(ctx, store.Day(now), c.Int("days"))
}
