package betting

// Options describes which actions are currently legal for the acting user
// and what each would cost
type Options struct {
	CanCheck      bool `json:"canCheck"`
	CanCall       bool `json:"canCall"`
	CanRaise      bool `json:"canRaise"`
	CallAmount    int  `json:"callAmount"`
	QuarterAmount int  `json:"quarterAmount"`
	HalfAmount    int  `json:"halfAmount"`
	FullAmount    int  `json:"fullAmount"`
	IsFirst       bool `json:"isFirst"`
}

// ComputeOptions computes the legal actions for the user about to act. It is
// a pure function of the state: callable repeatedly without side effects.
//
// funds is the user's available balance as reported by the economy
// collaborator; the engine treats it as a queried precondition.
func ComputeOptions(s *State, p Policy, userID string, funds int) (Options, error) {
	if s.CurrentUser == "" || s.CurrentUser != userID {
		return Options{}, ErrNotYourTurn
	}

	call := s.UserCallChips[userID]

	return Options{
		// a user with nothing outstanding against them may always check,
		// regardless of earlier checks in the round
		CanCheck:      call == 0,
		CanCall:       call > 0 && funds >= call,
		CanRaise:      s.RemainingTableMoney > 0 && s.RaiseCounts[userID] < p.RaiseCap,
		CallAmount:    call,
		QuarterAmount: clampRaise(s.InitialTableChips/4, s.RemainingTableMoney),
		HalfAmount:    clampRaise(s.InitialTableChips/2, s.RemainingTableMoney),
		FullAmount:    clampRaise(s.InitialTableChips, s.RemainingTableMoney),
		IsFirst:       len(s.Bets) == 0,
	}, nil
}

// raise previews are based on the initial table chips so the fractions do not
// grow as the round progresses, clamped to the remaining table money
func clampRaise(amount, remaining int) int {
	if amount > remaining {
		return remaining
	}

	return amount
}
