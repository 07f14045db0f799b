package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"wonders/internal/cards"
	"wonders/internal/engine"
	"wonders/internal/engine/effects"
	"wonders/internal/protocol"
	"wonders/internal/server"
	"wonders/internal/store"
)

func main() {
	app := &cli.App{
		Name:  "wonders",
		Usage: "Card affordability engine for seven-player trading games",
		Commands: []*cli.Command{
			serveCmd,
			evalCmd,
			cardsCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var engineFlags = []cli.Flag{
	&cli.IntFlag{
		Name:    "raw-rate",
		Value:   engine.DefaultConfig().RawRate,
		EnvVars: []string{"WONDERS_RAW_RATE"},
		Usage:   "price of one raw material from a neighbor",
	},
	&cli.IntFlag{
		Name:    "goods-rate",
		Value:   engine.DefaultConfig().GoodsRate,
		EnvVars: []string{"WONDERS_GOODS_RATE"},
		Usage:   "price of one manufactured good from a neighbor",
	},
	&cli.IntFlag{
		Name:    "discount-rate",
		Value:   engine.DefaultConfig().DiscountRate,
		EnvVars: []string{"WONDERS_DISCOUNT_RATE"},
		Usage:   "price once a trading discount applies",
	},
	&cli.IntFlag{
		Name:    "workers",
		Value:   engine.DefaultConfig().Workers,
		EnvVars: []string{"WONDERS_WORKERS"},
		Usage:   "cards of one hand evaluated concurrently",
	},
}

func newEvaluator(ctx *cli.Context) *engine.Evaluator {
	return engine.NewEvaluator(engine.Config{
		RawRate:      ctx.Int("raw-rate"),
		GoodsRate:    ctx.Int("goods-rate"),
		DiscountRate: ctx.Int("discount-rate"),
		Workers:      ctx.Int("workers"),
	}, effects.Default())
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

var serveCmd = &cli.Command{
	Name:    "serve",
	Usage:   "Run the HTTP and WebSocket server",
	Aliases: []string{"s"},
	Flags: append([]cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			EnvVars: []string{"WONDERS_PORT"},
			Usage:   "server port",
		},
		&cli.StringFlag{
			Name:    "store",
			Value:   "memory",
			EnvVars: []string{"WONDERS_STORE"},
			Usage:   "snapshot store: memory, redis or sqlite",
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Value:   "localhost:6379",
			EnvVars: []string{"WONDERS_REDIS_ADDR"},
			Usage:   "redis address for the redis store",
		},
		&cli.IntFlag{
			Name:    "redis-db",
			EnvVars: []string{"WONDERS_REDIS_DB"},
			Usage:   "redis database number",
		},
		&cli.StringFlag{
			Name:    "sqlite-path",
			Value:   "wonders.db",
			EnvVars: []string{"WONDERS_SQLITE_PATH"},
			Usage:   "database file for the sqlite store",
		},
		&cli.StringFlag{
			Name:    "public-url",
			EnvVars: []string{"WONDERS_PUBLIC_URL"},
			Usage:   "base URL used in join links and QR codes",
		},
		&cli.DurationFlag{
			Name:    "idle-timeout",
			Value:   server.DefaultIdleTimeout,
			EnvVars: []string{"WONDERS_IDLE_TIMEOUT"},
			Usage:   "drop tables with no connection for this long",
		},
		&cli.BoolFlag{
			Name:    "dev",
			EnvVars: []string{"WONDERS_DEV"},
			Usage:   "development logging",
		},
	}, engineFlags...),
	Action: func(ctx *cli.Context) error {
		log, err := newLogger(ctx.Bool("dev"))
		if err != nil {
			return err
		}
		defer log.Sync()

		runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		provider, err := store.Open(runCtx, store.Config{
			Driver:     ctx.String("store"),
			RedisAddr:  ctx.String("redis-addr"),
			RedisDB:    ctx.Int("redis-db"),
			SQLitePath: ctx.String("sqlite-path"),
		}, log)
		if err != nil {
			return err
		}
		defer provider.Close()

		srv := server.New(server.Config{
			Port:        ctx.Int("port"),
			PublicURL:   ctx.String("public-url"),
			IdleTimeout: ctx.Duration("idle-timeout"),
		}, provider, newEvaluator(ctx), log)
		return srv.Run(runCtx)
	},
}

var evalCmd = &cli.Command{
	Name:      "eval",
	Usage:     "Evaluate one card against a snapshot file",
	ArgsUsage: " ",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "snapshot",
			Required: true,
			Usage:    "specify the snapshot JSON file",
		},
		&cli.StringFlag{
			Name:     "player",
			Required: true,
			Usage:    "specify the acting player",
		},
		&cli.StringFlag{
			Name:  "card",
			Usage: "catalogue card name",
		},
		&cli.StringFlag{
			Name:  "cost",
			Usage: "ad-hoc cost such as OOG or W/C",
		},
		&cli.BoolFlag{
			Name:  "legacy",
			Usage: "the file holds players info with neighbor links",
		},
		&cli.Uint64Flag{
			Name:  "epoch",
			Usage: "epoch for a legacy snapshot",
		},
	}, engineFlags...),
	Action: func(ctx *cli.Context) error {
		snap, err := readSnapshot(ctx.String("snapshot"), ctx.Bool("legacy"), ctx.Uint64("epoch"))
		if err != nil {
			return err
		}

		var card engine.Card
		switch {
		case ctx.String("card") != "":
			var ok bool
			if card, ok = cards.Lookup(ctx.String("card")); !ok {
				return fmt.Errorf("unknown card %q (try: %v)", ctx.String("card"), cards.Suggest(ctx.String("card"), 3))
			}
		case ctx.IsSet("cost"):
			card = engine.Card{Name: "custom", Cost: engine.ParseCost(ctx.String("cost"))}
		default:
			return errors.New("either --card or --cost is required")
		}

		ev := newEvaluator(ctx)
		res, err := ev.Affordability(card, snap, ctx.String("player"))
		if err != nil {
			return err
		}
		p, err := snap.Player(ctx.String("player"))
		if err != nil {
			return err
		}
		rates, _ := ev.Rates(p)

		enc := json.NewEncoder(ctx.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Result engine.Result             `json:"result"`
			Rates  map[string]map[string]int `json:"rates"`
		}{res, rates.Table()})
	},
}

func readSnapshot(path string, legacy bool, epoch uint64) (*engine.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var msg protocol.SnapshotMsg
	if legacy {
		msg.Epoch = epoch
		err = json.Unmarshal(data, &msg.PlayersInfo)
	} else {
		msg.Snapshot = new(engine.Snapshot)
		err = json.Unmarshal(data, msg.Snapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return msg.Resolve()
}

var cardsCmd = &cli.Command{
	Name:      "cards",
	Usage:     "List the catalogue or suggest card names",
	ArgsUsage: "[QUERY]",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "age",
			Usage: "only cards of this age (1-3)",
		},
	},
	Action: func(ctx *cli.Context) error {
		if q := ctx.Args().First(); q != "" {
			for _, name := range cards.Suggest(q, 5) {
				fmt.Fprintln(ctx.App.Writer, name)
			}
			return nil
		}
		entries := cards.All()
		if age := ctx.Int("age"); age != 0 {
			entries = cards.Age(age)
		}
		w := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "AGE\tNAME\tCOLOR\tCOST\tPRODUCES")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.Age, e.Name, e.Color, e.Cost, e.Produces)
		}
		return w.Flush()
	},
}
