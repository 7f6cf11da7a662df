// Command synth-match writes reproducible synthetic matches as JSON lines,
// ready to feed to the ppda command.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/okian/ppda/internal/adapters/source"
	"github.com/okian/ppda/internal/domain/model"
	"github.com/okian/ppda/internal/synth"
	"github.com/okian/ppda/pkg/logger"
)

// Default generator settings.
const (
	defaultEvents  = 1600
	defaultMatches = 1
	defaultSeed    = 42
	defaultHome    = 1
	defaultAway    = 2
)

type options struct {
	events  int
	matches int
	seed    int64
	home    int
	away    int
	prefix  string
}

func main() {
	var opts options
	output := flag.String("output", "", "Output file (default: stdout)")
	flag.IntVar(&opts.events, "events", defaultEvents, "Number of events per match")
	flag.IntVar(&opts.matches, "matches", defaultMatches, "Number of matches to generate")
	flag.Int64Var(&opts.seed, "seed", defaultSeed, "Seed of the first match; later matches use seed+i")
	flag.IntVar(&opts.home, "home", defaultHome, "Home team id")
	flag.IntVar(&opts.away, "away", defaultAway, "Away team id")
	flag.StringVar(&opts.prefix, "prefix", "synth", "Match id prefix")
	flag.Parse()

	ctx := context.Background()
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	w := io.Writer(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Error(ctx, "cannot create output", logger.String("path", *output), logger.Error(err))
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	n, err := write(w, opts)
	if err != nil {
		log.Error(ctx, "write events", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "synthetic matches written",
		logger.Int("matches", opts.matches),
		logger.Int("events", n),
	)
}

// write generates the matches and encodes them to w, returning the event count.
func write(w io.Writer, opts options) (int, error) {
	if opts.events <= 0 || opts.matches <= 0 {
		return 0, fmt.Errorf("events and matches must be positive, got %d and %d", opts.events, opts.matches)
	}
	if opts.home == opts.away {
		return 0, fmt.Errorf("home and away must differ, both are %d", opts.home)
	}

	var events []model.Event
	for i := 0; i < opts.matches; i++ {
		seed := opts.seed + int64(i)
		m := synth.Generate(
			synth.WithSeed(seed),
			synth.WithEvents(opts.events),
			synth.WithTeams(opts.home, opts.away),
			synth.WithMatchID(fmt.Sprintf("%s-%d", opts.prefix, seed)),
		)
		events = append(events, m.Events...)
	}
	if err := source.WriteJSONLines(w, events); err != nil {
		return 0, err
	}
	return len(events), nil
}
