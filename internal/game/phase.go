package game

// Phase is a step of the round state machine
type Phase int

const (
	PhaseBetting Phase = iota
	PhaseDealing
	PhaseInsurance
	PhasePlayerTurn
	PhaseDealerTurn
	PhasePayout
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseBetting:
		return "BETTING"
	case PhaseDealing:
		return "DEALING"
	case PhaseInsurance:
		return "INSURANCE"
	case PhasePlayerTurn:
		return "PLAYER_TURN"
	case PhaseDealerTurn:
		return "DEALER_TURN"
	case PhasePayout:
		return "PAYOUT"
	case PhaseGameOver:
		return "GAME_OVER"
	default:
		return "UNKNOWN"
	}
}

// Result is how one player hand finished
type Result int

const (
	ResultWin Result = iota
	ResultLose
	ResultPush
	ResultBlackjack
	ResultSurrender
)

func (r Result) String() string {
	switch r {
	case ResultWin:
		return "WIN"
	case ResultLose:
		return "LOSE"
	case ResultPush:
		return "PUSH"
	case ResultBlackjack:
		return "BLACKJACK"
	case ResultSurrender:
		return "SURRENDER"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the overall sign of a round
type Outcome int

const (
	OutcomePush Outcome = iota
	OutcomeWin
	OutcomeLose
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "WIN"
	case OutcomeLose:
		return "LOSE"
	default:
		return "PUSH"
	}
}

// outcomeOf classifies a signed round net
func outcomeOf(net float64) Outcome {
	switch {
	case net > 0:
		return OutcomeWin
	case net < 0:
		return OutcomeLose
	default:
		return OutcomePush
	}
}
