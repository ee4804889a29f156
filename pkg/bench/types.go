package bench

import (
	"sync/atomic"

	"github.com/IlikeChooros/go-mcts-rts/pkg/rts"
)

type VersusMatchResult int

const (
	VersusPl1Win VersusMatchResult = 1
	VersusPl2Win VersusMatchResult = -1
	VersusDraw   VersusMatchResult = 0
)

func (r VersusMatchResult) String() string {
	switch r {
	case VersusPl1Win:
		return "player 1"
	case VersusPl2Win:
		return "player 2"
	}
	return "draw"
}

// Shared tallies, updated by every worker
type VersusArenaStats struct {
	p1Wins         uint32
	p2Wins         uint32
	draws          uint32
	firstSideWins  uint32
	secondSideWins uint32
}

func (vas *VersusArenaStats) Total() int {
	return vas.P1Wins() + vas.P2Wins() + vas.Draws()
}

func (vas *VersusArenaStats) P1Wins() int {
	return int(atomic.LoadUint32(&vas.p1Wins))
}

func (vas *VersusArenaStats) P2Wins() int {
	return int(atomic.LoadUint32(&vas.p2Wins))
}

func (vas *VersusArenaStats) Draws() int {
	return int(atomic.LoadUint32(&vas.draws))
}

// Games won by whoever played side 0
func (vas *VersusArenaStats) FirstSideWins() int {
	return int(atomic.LoadUint32(&vas.firstSideWins))
}

// Games won by whoever played side 1
func (vas *VersusArenaStats) SecondSideWins() int {
	return int(atomic.LoadUint32(&vas.secondSideWins))
}

func (vas *VersusArenaStats) record(outcome GameOutcome, result VersusMatchResult) {
	switch result {
	case VersusDraw:
		atomic.AddUint32(&vas.draws, 1)
		return
	case VersusPl1Win:
		atomic.AddUint32(&vas.p1Wins, 1)
	case VersusPl2Win:
		atomic.AddUint32(&vas.p2Wins, 1)
	}

	if outcome.Winner == 0 {
		atomic.AddUint32(&vas.firstSideWins, 1)
	} else {
		atomic.AddUint32(&vas.secondSideWins, 1)
	}
}

type VersusWorkerInfo struct {
	WorkerID      int
	NGames        int
	FinishedGames int
	// Simulated ticks and decisions of the last game
	Ticks     int
	Decisions int
	Result    VersusMatchResult
	P1Wins    int
	P2Wins    int
	Draws     int
	P1Name    string
	P2Name    string
}

type VersusSummaryInfo struct {
	TotalGames     int    `json:"total_games"`
	P1Wins         int    `json:"player1_wins"`
	P2Wins         int    `json:"player2_wins"`
	FirstSideWins  int    `json:"first_side_wins"`
	SecondSideWins int    `json:"second_side_wins"`
	Draws          int    `json:"draws"`
	Workers        int    `json:"workers"`
	P1Name         string `json:"player1_name"`
	P2Name         string `json:"player2_name"`
}

// Result of a single game, by side
type GameOutcome struct {
	Winner rts.Side
	IsDraw bool
}

// Read the outcome of a finished game
func outcomeOf[T comparable, W rts.World[T, W]](world W) GameOutcome {
	if !world.IsOver() {
		panic("outcomeOf: game is not over")
	}

	winner, ok := world.Winner()
	if !ok {
		return GameOutcome{Winner: rts.NeutralSide, IsDraw: true}
	}
	return GameOutcome{Winner: winner}
}

// Maps a game outcome to which player won, given which side player 1 played
func toPlayerResult(outcome GameOutcome, p1Side rts.Side) VersusMatchResult {
	if outcome.IsDraw {
		return VersusDraw
	}
	if outcome.Winner == p1Side {
		return VersusPl1Win
	}
	return VersusPl2Win
}
