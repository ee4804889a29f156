package bench

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

// Receives arena progress, methods may be called concurrently by the workers
type ListenerLike interface {
	OnFinishedGame(info VersusWorkerInfo)
	OnFinishedWork(info VersusWorkerInfo)
	// Called once, after every worker finished
	Summary(info VersusSummaryInfo)
}

type NopListener struct{}

func (NopListener) OnFinishedGame(VersusWorkerInfo) {}
func (NopListener) OnFinishedWork(VersusWorkerInfo) {}
func (NopListener) Summary(VersusSummaryInfo) {}

// Prints one line per finished game and a coloured summary
type TerminalListener struct {
	mu     sync.Mutex
	output *termenv.Output
	// Print every finished game, not only the summary
	Verbose bool
}

func NewTerminalListener(w io.Writer, opts ...termenv.OutputOption) *TerminalListener {
	return &TerminalListener{output: termenv.NewOutput(w, opts...), Verbose: true}
}

func (l *TerminalListener) resultStyle(result VersusMatchResult) termenv.Style {
	style := l.output.String(result.String())
	switch result {
	case VersusPl1Win:
		return style.Foreground(l.output.Color("2")).Bold()
	case VersusPl2Win:
		return style.Foreground(l.output.Color("1")).Bold()
	}
	return style.Faint()
}

func (l *TerminalListener) OnFinishedGame(info VersusWorkerInfo) {
	if !l.Verbose {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.output, "[worker %d] game %d/%d: %s (ticks=%d, decisions=%d)\n",
		info.WorkerID, info.FinishedGames, info.NGames, l.resultStyle(info.Result),
		info.Ticks, info.Decisions)
}

func (l *TerminalListener) OnFinishedWork(info VersusWorkerInfo) {
	if !l.Verbose {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.output, "[worker %d] done: %s %d, %s %d, draws %d\n",
		info.WorkerID, info.P1Name, info.P1Wins, info.P2Name, info.P2Wins, info.Draws)
}

func (l *TerminalListener) Summary(info VersusSummaryInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	title := l.output.String(fmt.Sprintf("%s vs %s", info.P1Name, info.P2Name)).Bold().Underline()
	fmt.Fprintf(l.output, "%s\n", title)
	fmt.Fprintf(l.output, "games: %d (workers: %d)\n", info.TotalGames, info.Workers)
	fmt.Fprintf(l.output, "%s wins: %s\n", info.P1Name,
		l.output.String(fmt.Sprint(info.P1Wins)).Foreground(l.output.Color("2")))
	fmt.Fprintf(l.output, "%s wins: %s\n", info.P2Name,
		l.output.String(fmt.Sprint(info.P2Wins)).Foreground(l.output.Color("1")))
	fmt.Fprintf(l.output, "draws: %d\n", info.Draws)
	fmt.Fprintf(l.output, "side 0 wins: %d, side 1 wins: %d\n", info.FirstSideWins, info.SecondSideWins)
}

// Writes the arena events as structured log lines
type LogListener struct {
	logger zerolog.Logger
}

func NewLogListener(logger zerolog.Logger) *LogListener {
	return &LogListener{logger: logger.With().Str("component", "arena").Logger()}
}

func (l *LogListener) OnFinishedGame(info VersusWorkerInfo) {
	l.logger.Debug().
		Int("worker", info.WorkerID).
		Int("finished", info.FinishedGames).
		Stringer("result", info.Result).
		Int("ticks", info.Ticks).
		Int("decisions", info.Decisions).
		Msg("game finished")
}

func (l *LogListener) OnFinishedWork(info VersusWorkerInfo) {
	l.logger.Debug().
		Int("worker", info.WorkerID).
		Int("games", info.NGames).
		Msg("worker finished")
}

func (l *LogListener) Summary(info VersusSummaryInfo) {
	l.logger.Info().
		Int("games", info.TotalGames).
		Str("p1", info.P1Name).
		Int("p1_wins", info.P1Wins).
		Str("p2", info.P2Name).
		Int("p2_wins", info.P2Wins).
		Int("draws", info.Draws).
		Msg("arena finished")
}
