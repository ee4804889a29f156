package bench

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/IlikeChooros/go-mcts-rts/pkg/mcts"
	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
)

/*
Arena benchmark subpackage, plays a series of games between two players
(for example planners with different settings, or a planner against random play).

Games are split equally between the workers, player 1 takes side 0 in even games
and side 1 in odd ones. Both sides decide on the same snapshot before any of the
joint actions is applied, the clock moves only when nobody could act.
*/

// Safety net against a world that never ends, in decision rounds per game
const DefaultMaxRounds = 100000

type VersusArena[T mcts.MoveLike, W rts.World[T, W]] struct {
	VersusArenaStats
	Player1   Player[T, W]
	Player2   Player[T, W]
	NGames    int
	NWorkers  int
	MaxRounds int
	// Builds the starting position of every game
	NewWorld func() W
	logger   zerolog.Logger
	finished atomic.Int32
}

func NewVersusArena[T mcts.MoveLike, W rts.World[T, W]](newWorld func() W, player1, player2 Player[T, W]) *VersusArena[T, W] {
	return &VersusArena[T, W]{
		Player1:   player1,
		Player2:   player2,
		NGames:    10,
		NWorkers:  2,
		MaxRounds: DefaultMaxRounds,
		NewWorld:  newWorld,
		logger:    zerolog.Nop(),
	}
}

func (va *VersusArena[T, W]) Setup(nGames, nWorkers int) *VersusArena[T, W] {
	va.NGames = max(0, nGames)
	va.NWorkers = max(1, nWorkers)
	return va
}

func (va *VersusArena[T, W]) SetLogger(logger zerolog.Logger) *VersusArena[T, W] {
	va.logger = logger
	return va
}

// Play every game and return the final tallies. Stops at the first player error,
// or when the context is cancelled (between decisions), reporting what was played so far.
func (va *VersusArena[T, W]) Run(ctx context.Context, listener ListenerLike) (VersusSummaryInfo, error) {
	if listener == nil {
		listener = NopListener{}
	}
	va.VersusArenaStats = VersusArenaStats{}
	va.finished.Store(0)

	group, ctx := errgroup.WithContext(ctx)
	nWorkers := max(1, min(va.NWorkers, va.NGames))
	nGames := va.NGames / nWorkers
	rest := va.NGames % nWorkers
	first := 0

	for i := range nWorkers {
		count := nGames
		if rest > 0 {
			count++
			rest--
		}

		// Always use a clone, players are not safe for concurrent use
		p1, p2 := va.Player1.Clone(), va.Player2.Clone()
		id, start := i, first
		group.Go(func() error {
			return va.worker(ctx, id, start, count, listener, p1, p2)
		})
		first += count
	}

	err := group.Wait()
	summary := VersusSummaryInfo{
		TotalGames:     va.Total(),
		P1Wins:         va.P1Wins(),
		P2Wins:         va.P2Wins(),
		FirstSideWins:  va.FirstSideWins(),
		SecondSideWins: va.SecondSideWins(),
		Draws:          va.Draws(),
		Workers:        nWorkers,
		P1Name:         va.Player1.Name(),
		P2Name:         va.Player2.Name(),
	}
	listener.Summary(summary)

	va.logger.Info().
		Int("games", summary.TotalGames).
		Int("p1_wins", summary.P1Wins).
		Int("p2_wins", summary.P2Wins).
		Int("draws", summary.Draws).
		Err(err).
		Msg("arena finished")
	return summary, err
}

func (va *VersusArena[T, W]) worker(ctx context.Context, id, first, nGames int, listener ListenerLike, p1, p2 Player[T, W]) error {
	local := VersusArenaStats{}
	logger := va.logger.With().Int("worker", id).Logger()

	for i := range nGames {
		p1Side := rts.Side((first + i) % 2)
		record, err := va.playGame(ctx, p1, p2, p1Side)
		if err != nil {
			logger.Error().Err(err).Int("game", first+i).Msg("game aborted")
			return fmt.Errorf("worker %d, game %d: %w", id, first+i, err)
		}

		result := toPlayerResult(record.outcome, p1Side)
		va.record(record.outcome, result)
		local.record(record.outcome, result)

		listener.OnFinishedGame(VersusWorkerInfo{
			WorkerID:      id,
			NGames:        va.NGames,
			FinishedGames: int(va.finished.Add(1)),
			Ticks:         record.ticks,
			Decisions:     record.decisions,
			Result:        result,
			P1Wins:        local.P1Wins(),
			P2Wins:        local.P2Wins(),
			Draws:         local.Draws(),
			P1Name:        p1.Name(),
			P2Name:        p2.Name(),
		})
	}

	listener.OnFinishedWork(VersusWorkerInfo{
		WorkerID:      id,
		NGames:        nGames,
		FinishedGames: local.Total(),
		P1Wins:        local.P1Wins(),
		P2Wins:        local.P2Wins(),
		Draws:         local.Draws(),
		P1Name:        p1.Name(),
		P2Name:        p2.Name(),
	})
	return nil
}

type gameRecord struct {
	outcome   GameOutcome
	ticks     int
	decisions int
}

// Play a single game to the end, player 1 controls 'p1Side'
func (va *VersusArena[T, W]) playGame(ctx context.Context, p1, p2 Player[T, W], p1Side rts.Side) (gameRecord, error) {
	world := va.NewWorld()
	players := [2]Player[T, W]{p2, p2}
	players[p1Side] = p1
	record := gameRecord{}

	for round := 0; !world.IsOver(); round++ {
		if err := ctx.Err(); err != nil {
			return record, err
		}
		if round >= va.MaxRounds {
			return record, fmt.Errorf("game did not end after %d rounds (time %d)", round, world.Time())
		}

		actions := [2]rts.JointAction[T]{}
		for side, player := range players {
			if !mcts.CanAct[T](rts.Side(side), world) {
				continue
			}
			action, err := player.Decide(rts.Side(side), world)
			if err != nil {
				return record, fmt.Errorf("%s (side %d): %w", player.Name(), side, err)
			}
			actions[side] = action
			record.decisions++
		}

		applied := false
		for side := range actions {
			if actions[side].IsEmpty() {
				continue
			}
			if world.Apply(actions[side]) {
				applied = true
			} else {
				va.logger.Debug().Int("side", side).Stringer("action", actions[side]).Msg("joint action rejected")
			}
		}

		if !applied {
			world.Cycle()
		}
	}

	record.outcome = outcomeOf[T](world)
	record.ticks = world.Time()
	return record, nil
}
