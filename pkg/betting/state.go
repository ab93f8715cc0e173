package betting

// Info records the type and amount of a user's most recent action this round
type Info struct {
	Type   Type `json:"type"`
	Amount int  `json:"amount"`
}

// State is the mutable record of one betting round's progress.
// It is owned exclusively by the room's controller for the round's lifetime
// and mutated only through Round.Apply.
type State struct {
	CurrentUser       string   `json:"currentUser"`
	TableChips        int      `json:"tableChips"`
	InitialTableChips int      `json:"initialTableChips"`
	Order             []string `json:"order"`
	Completed         map[string]bool `json:"completed"`
	Bets              map[string]Info `json:"bets"`
	RaiseCounts       map[string]int  `json:"raiseCounts"`
	CheckUsed         bool            `json:"checkUsed"`
	// RemainingTableMoney is the ceiling on additional chips that may still be
	// raised this round
	RemainingTableMoney int            `json:"remainingTableMoney"`
	UserCallChips       map[string]int `json:"userCallChips"`
}

func newState(order []string, carryOver, tableLimit int) *State {
	orderCopy := make([]string, len(order))
	copy(orderCopy, order)

	remaining := tableLimit - carryOver
	if remaining < 0 {
		remaining = 0
	}

	callChips := make(map[string]int, len(order))
	for _, userID := range order {
		callChips[userID] = 0
	}

	return &State{
		CurrentUser:         orderCopy[0],
		TableChips:          carryOver,
		InitialTableChips:   carryOver,
		Order:               orderCopy,
		Completed:           make(map[string]bool),
		Bets:                make(map[string]Info),
		RaiseCounts:         make(map[string]int),
		RemainingTableMoney: remaining,
		UserCallChips:       callChips,
	}
}

// Clone returns a deep copy of the state
func (s *State) Clone() *State {
	clone := &State{
		CurrentUser:         s.CurrentUser,
		TableChips:          s.TableChips,
		InitialTableChips:   s.InitialTableChips,
		Order:               make([]string, len(s.Order)),
		Completed:           make(map[string]bool, len(s.Completed)),
		Bets:                make(map[string]Info, len(s.Bets)),
		RaiseCounts:         make(map[string]int, len(s.RaiseCounts)),
		CheckUsed:           s.CheckUsed,
		RemainingTableMoney: s.RemainingTableMoney,
		UserCallChips:       make(map[string]int, len(s.UserCallChips)),
	}

	copy(clone.Order, s.Order)
	for k, v := range s.Completed {
		clone.Completed[k] = v
	}
	for k, v := range s.Bets {
		clone.Bets[k] = v
	}
	for k, v := range s.RaiseCounts {
		clone.RaiseCounts[k] = v
	}
	for k, v := range s.UserCallChips {
		clone.UserCallChips[k] = v
	}

	return clone
}

// indexOf returns the user's position in the betting order, or -1
func (s *State) indexOf(userID string) int {
	for i, id := range s.Order {
		if id == userID {
			return i
		}
	}

	return -1
}

// allCompleted returns true if every remaining user in the order has settled
// against the current bet level
func (s *State) allCompleted() bool {
	for _, userID := range s.Order {
		if !s.Completed[userID] {
			return false
		}
	}

	return true
}
