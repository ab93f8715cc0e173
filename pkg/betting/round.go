package betting

import (
	"errors"
	"fmt"
)

// Status is the lifecycle status of a betting round
type Status int

// round statuses
const (
	StatusInProgress Status = iota
	StatusComplete
)

// Round owns the state of one betting round. All mutation flows through
// Apply; a rejected action never changes state.
type Round struct {
	policy Policy
	state  *State
	status Status
}

// Result describes the outcome of a successfully applied action
type Result struct {
	// UserID and Type identify the action taken
	UserID string `json:"userId"`
	Type   Type   `json:"bettingType"`
	// Amount is how many chips the action committed to the table
	Amount     int `json:"bettingAmount"`
	TableChips int `json:"tableChips"`
	// NextUser is the new current actor, empty once the round completed
	NextUser string `json:"nextUser,omitempty"`
	// NextCallChips is what NextUser owes to match the outstanding bet
	NextCallChips int  `json:"callChips"`
	Complete      bool `json:"isBettingComplete"`
	// LastUser is set when folding reduced the order to a single user
	LastUser string `json:"lastUser,omitempty"`
	// FinalOrder is the surviving order, set on completion
	FinalOrder []string `json:"finalOrder,omitempty"`
}

// NewRound starts a betting round for the given users in acting order.
// carryOver seeds the table with chips accumulated by a prior phase and is
// the basis for the fractional raise amounts.
func NewRound(policy Policy, order []string, carryOver int) (*Round, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}

	if len(order) < 2 {
		return nil, errors.New("a betting round requires at least two users")
	}

	seen := make(map[string]bool, len(order))
	for _, userID := range order {
		if userID == "" {
			return nil, errors.New("betting order contains an empty user id")
		}

		if seen[userID] {
			return nil, fmt.Errorf("user %s appears twice in the betting order", userID)
		}

		seen[userID] = true
	}

	if carryOver < 0 {
		return nil, errors.New("carry-over chips cannot be negative")
	}

	return &Round{
		policy: policy,
		state:  newState(order, carryOver, policy.TableLimit),
		status: StatusInProgress,
	}, nil
}

// Resume reconstructs an in-progress round from a persisted state snapshot
func Resume(policy Policy, state *State) (*Round, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}

	if state == nil || len(state.Order) == 0 {
		return nil, errors.New("snapshot has no betting order")
	}

	if state.indexOf(state.CurrentUser) < 0 {
		return nil, fmt.Errorf("current user %s is not in the betting order", state.CurrentUser)
	}

	if state.TableChips < state.InitialTableChips {
		return nil, errors.New("snapshot table chips fell below the initial chips")
	}

	return &Round{
		policy: policy,
		state:  state.Clone(),
		status: StatusInProgress,
	}, nil
}

// Snapshot returns a deep copy of the round state, suitable for persistence
// and for building client-facing views
func (r *Round) Snapshot() *State {
	return r.state.Clone()
}

// CurrentUser returns the user whose turn it is, or empty if the round is over
func (r *Round) CurrentUser() string {
	return r.state.CurrentUser
}

// TableChips returns the chips accumulated on the table this round
func (r *Round) TableChips() int {
	return r.state.TableChips
}

// Complete returns true once the round reached its terminal status
func (r *Round) Complete() bool {
	return r.status == StatusComplete
}

// HasUser returns true if the user is still in the betting order
func (r *Round) HasUser(userID string) bool {
	return r.state.indexOf(userID) >= 0
}

// Options returns the legal actions for the user, given their available funds
func (r *Round) Options(userID string, funds int) (Options, error) {
	if r.status == StatusComplete {
		return Options{}, ErrRoundOver
	}

	return ComputeOptions(r.state, r.policy, userID, funds)
}

// Apply validates and applies a single action. It is the only state-mutating
// entry point; on error the state is untouched.
func (r *Round) Apply(userID string, t Type, funds int) (*Result, error) {
	if r.status == StatusComplete {
		return nil, ErrRoundOver
	}

	if !t.IsValid() {
		return nil, newIllegalAction(t, "unknown betting type")
	}

	opts, err := ComputeOptions(r.state, r.policy, userID, funds)
	if err != nil {
		return nil, err
	}

	// validate fully before any mutation
	commit, raiseBy, err := r.validate(t, opts, funds)
	if err != nil {
		return nil, err
	}

	s := r.state
	actorIndex := s.indexOf(userID)

	switch t {
	case Check:
		s.CheckUsed = true
		s.Completed[userID] = true
		s.Bets[userID] = Info{Type: t}
	case Call:
		s.TableChips += commit
		s.UserCallChips[userID] = 0
		s.Completed[userID] = true
		s.Bets[userID] = Info{Type: t, Amount: commit}
	case Bbing:
		s.TableChips += commit
		s.reopen(userID, raiseBy)
		s.RemainingTableMoney -= raiseBy
		s.Bets[userID] = Info{Type: t, Amount: commit}
	case Ddadang, Quarter, Half, Full:
		s.TableChips += commit
		s.reopen(userID, raiseBy)
		s.RaiseCounts[userID]++
		s.RemainingTableMoney -= raiseBy
		s.Bets[userID] = Info{Type: t, Amount: commit}
	case Fold:
		s.Order = append(s.Order[:actorIndex], s.Order[actorIndex+1:]...)
		delete(s.Bets, userID)
		delete(s.UserCallChips, userID)
		delete(s.RaiseCounts, userID)
		delete(s.Completed, userID)
	}

	next := actorIndex + 1
	if t == Fold {
		// the element at actorIndex already is the next user
		next = actorIndex
	}
	r.finishTurn(next)

	result := &Result{
		UserID:     userID,
		Type:       t,
		Amount:     commit,
		TableChips: s.TableChips,
		Complete:   r.status == StatusComplete,
	}

	if r.status == StatusComplete {
		result.FinalOrder = make([]string, len(s.Order))
		copy(result.FinalOrder, s.Order)

		if len(s.Order) == 1 {
			result.LastUser = s.Order[0]
		}
	} else {
		result.NextUser = s.CurrentUser
		result.NextCallChips = s.UserCallChips[s.CurrentUser]
	}

	return result, nil
}

// validate determines the chips the action commits and by how much it lifts
// the outstanding bet level. No mutation happens here.
func (r *Round) validate(t Type, opts Options, funds int) (commit, raiseBy int, err error) {
	switch t {
	case Check:
		if !opts.CanCheck {
			return 0, 0, newIllegalAction(t, "a bet is outstanding against you")
		}

	case Bbing:
		if !opts.IsFirst {
			return 0, 0, newIllegalAction(t, "only legal as the opening action")
		}

		raiseBy = r.policy.MinBet
		if raiseBy > r.state.RemainingTableMoney {
			return 0, 0, newIllegalAction(t, "table limit reached")
		}

		commit = raiseBy
		if funds < commit {
			return 0, 0, ErrInsufficientFunds
		}

	case Call:
		if opts.CallAmount == 0 {
			return 0, 0, newIllegalAction(t, "nothing to call")
		}

		commit = opts.CallAmount
		if funds < commit {
			return 0, 0, ErrInsufficientFunds
		}

	case Ddadang:
		if !opts.CanRaise {
			return 0, 0, newIllegalAction(t, "raising is not allowed")
		}

		if opts.CallAmount == 0 {
			return 0, 0, newIllegalAction(t, "no outstanding bet to double")
		}

		raiseBy = opts.CallAmount
		if raiseBy > r.state.RemainingTableMoney {
			return 0, 0, newIllegalAction(t, "raise exceeds the remaining table money")
		}

		commit = opts.CallAmount + raiseBy
		if funds < commit {
			return 0, 0, ErrInsufficientFunds
		}

	case Quarter, Half, Full:
		if !opts.CanRaise {
			return 0, 0, newIllegalAction(t, "raising is not allowed")
		}

		switch t {
		case Quarter:
			raiseBy = opts.QuarterAmount
		case Half:
			raiseBy = opts.HalfAmount
		case Full:
			raiseBy = opts.FullAmount
		}

		if raiseBy == 0 {
			return 0, 0, newIllegalAction(t, "raise amount is zero")
		}

		commit = opts.CallAmount + raiseBy
		if funds < commit {
			return 0, 0, ErrInsufficientFunds
		}

	case Fold:
		// always legal on your turn
	}

	return commit, raiseBy, nil
}

// reopen raises the outstanding bet level by raiseBy: every other active user
// owes the increase on top of anything they already owed, and the completed
// set collapses to just the actor
func (s *State) reopen(actor string, raiseBy int) {
	for _, userID := range s.Order {
		if userID == actor {
			continue
		}

		s.UserCallChips[userID] += raiseBy
	}

	s.UserCallChips[actor] = 0
	s.Completed = map[string]bool{actor: true}
}

// finishTurn detects completion or advances the current user. from is the
// order index to start scanning at.
func (r *Round) finishTurn(from int) {
	s := r.state

	if len(s.Order) == 1 || s.allCompleted() {
		r.status = StatusComplete
		s.CurrentUser = ""
		return
	}

	n := len(s.Order)
	for i := 0; i < n; i++ {
		userID := s.Order[(from+i)%n]
		if !s.Completed[userID] {
			s.CurrentUser = userID
			return
		}
	}

	// unreachable: allCompleted was false
	panic("no eligible user to act")
}
