package game

// Statistics are the player's lifetime figures. They survive NewRound and
// are only cleared by ResetStatistics.
type Statistics struct {
	RoundsPlayed     int     `json:"roundsPlayed"`
	HandsPlayed      int     `json:"handsPlayed"`
	HandsWon         int     `json:"handsWon"`
	HandsLost        int     `json:"handsLost"`
	HandsPushed      int     `json:"handsPushed"`
	Blackjacks       int     `json:"blackjacks"`
	Doubles          int     `json:"doubles"`
	Splits           int     `json:"splits"`
	Surrenders       int     `json:"surrenders"`
	Busts            int     `json:"busts"`
	InsuranceTaken   int     `json:"insuranceTaken"`
	TotalWagered     float64 `json:"totalWagered"`
	NetProfit        float64 `json:"netProfit"`
	BiggestWin       float64 `json:"biggestWin"`
	BiggestLoss      float64 `json:"biggestLoss"`
	CurrentStreak    int     `json:"currentStreak"`
	LongestWinStreak int     `json:"longestWinStreak"`
}

// WinRate is won hands over decided hands, 0 when nothing was decided
func (s Statistics) WinRate() float64 {
	decided := s.HandsWon + s.HandsLost
	if decided == 0 {
		return 0
	}
	return float64(s.HandsWon) / float64(decided)
}

// recordHand tallies one resolved hand
func (s *Statistics) recordHand(r Result) {
	s.HandsPlayed++
	switch r {
	case ResultWin, ResultBlackjack:
		s.HandsWon++
		if r == ResultBlackjack {
			s.Blackjacks++
		}
	case ResultLose, ResultSurrender:
		s.HandsLost++
		if r == ResultSurrender {
			s.Surrenders++
		}
	case ResultPush:
		s.HandsPushed++
	}
}

// recordRound folds a finished round's net into the totals
func (s *Statistics) recordRound(net float64) {
	s.RoundsPlayed++
	s.NetProfit += net
	switch outcomeOf(net) {
	case OutcomeWin:
		if net > s.BiggestWin {
			s.BiggestWin = net
		}
		if s.CurrentStreak < 0 {
			s.CurrentStreak = 0
		}
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestWinStreak {
			s.LongestWinStreak = s.CurrentStreak
		}
	case OutcomeLose:
		if -net > s.BiggestLoss {
			s.BiggestLoss = -net
		}
		if s.CurrentStreak > 0 {
			s.CurrentStreak = 0
		}
		s.CurrentStreak--
	}
}
