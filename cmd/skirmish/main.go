package main

/*

Skirmish runner

Plays a game of the grid skirmish between the planner (side 0) and random play (side 1),
printing the board after every tick, or with the 'arena' argument runs a series of
planner vs random games on multiple workers. Settings come from MICRORTS_* variables.

*/

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/IlikeChooros/go-mcts-rts/internal/config"
	"github.com/IlikeChooros/go-mcts-rts/internal/logger"
	"github.com/IlikeChooros/go-mcts-rts/pkg/bench"
	"github.com/IlikeChooros/go-mcts-rts/pkg/mcts"
	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
	"github.com/IlikeChooros/go-mcts-rts/pkg/skirmish"
)

type (
	command = skirmish.Command
	world   = *skirmish.World
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	log := logger.Init(cfg.LogLevel, cfg.LogPretty)

	if cfg.Seed != 0 {
		seed := cfg.Seed
		mcts.SetSeedGeneratorFn(func() int64 { return seed })
	}
	mcts.SetExplorationParam(cfg.Exploration)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mode := "play"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "play":
		err = play(ctx, cfg, log)
	case "arena":
		err = arena(ctx, cfg, log)
	default:
		err = fmt.Errorf("unknown mode %q, use 'play' or 'arena'", mode)
	}
	if err != nil {
		log.Error().Err(err).Msg("skirmish failed")
		os.Exit(1)
	}
}

func newPlanner(cfg config.Config) *mcts.Planner[command, world] {
	planner := mcts.NewPlanner[command, world](skirmish.Score)
	planner.SetRolloutTicks(cfg.RolloutTicks)
	planner.SetLogger(logger.For("planner"))
	return planner
}

// Single game, planner on side 0 against random play
func play(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	out := termenv.NewOutput(os.Stdout)
	w := skirmish.NewStandard(cfg.Skirmish())
	planner := newPlanner(cfg)
	opponent := bench.NewRandomPlayer[command, world](mcts.SeedGeneratorFn())

	for !w.IsOver() {
		if err := ctx.Err(); err != nil {
			return err
		}

		acted := false
		if mcts.CanAct[command](0, w) {
			action, err := planner.Decide(0, w, cfg.Limits())
			if err != nil {
				return err
			}
			log.Debug().Int("time", w.Time()).Stringer("action", action).Msg("planner decided")
			acted = w.Apply(action) || acted
		}
		if mcts.CanAct[command](1, w) {
			action, err := opponent.Decide(1, w)
			if err != nil {
				return err
			}
			acted = w.Apply(action) || acted
		}

		if !acted {
			w.Cycle()
			render(out, w)
		}
	}

	winner, ok := w.Winner()
	result := out.String("draw").Faint()
	if ok {
		result = out.String(fmt.Sprintf("side %d wins", winner)).Bold().Foreground(sideColor(out, winner))
	}
	fmt.Fprintf(out, "%s after %d ticks (hp %d:%d)\n", result, w.Time(), w.HP(0), w.HP(1))
	return nil
}

func arena(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	planner := bench.NewPlannerPlayer("planner", cfg.Limits(), func() *mcts.Planner[command, world] {
		return newPlanner(cfg)
	})
	random := bench.NewRandomPlayer[command, world](mcts.SeedGeneratorFn())

	va := bench.NewVersusArena(func() world { return skirmish.NewStandard(cfg.Skirmish()) },
		bench.Player[command, world](planner), bench.Player[command, world](random),
	).Setup(cfg.ArenaGames, cfg.ArenaWorkers).SetLogger(logger.For("arena"))

	listener := bench.NewArenaListener(
		bench.NewTerminalListener(os.Stdout),
		bench.NewLogListener(log),
	)
	_, err := va.Run(ctx, listener)
	return err
}

func sideColor(out *termenv.Output, side rts.Side) termenv.Color {
	if side == 0 {
		return out.Color("4")
	}
	return out.Color("1")
}

// Print the board with side colours
func render(out *termenv.Output, w *skirmish.World) {
	cfg := w.Config()
	var sb strings.Builder
	fmt.Fprintf(&sb, "tick %d  hp %d:%d  resources %d:%d\n", w.Time(), w.HP(0), w.HP(1), w.Resources(0), w.Resources(1))

	for y := range cfg.Height {
		for x := range cfg.Width {
			glyph := w.Glyph(x, y)
			cell := out.String(string(glyph))
			switch {
			case glyph == '.':
				cell = cell.Faint()
			case glyph >= 'a':
				cell = cell.Foreground(sideColor(out, 1))
			default:
				cell = cell.Foreground(sideColor(out, 0)).Bold()
			}
			sb.WriteString(cell.String())
		}
		sb.WriteByte('\n')
	}
	fmt.Fprint(out, sb.String())
}
