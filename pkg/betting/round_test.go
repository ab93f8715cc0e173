package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPolicy() Policy {
	return Policy{MinBet: 10, RaiseCap: 3, TableLimit: 1000}
}

func TestNewRound_validation(t *testing.T) {
	a := assert.New(t)

	_, err := NewRound(testPolicy(), []string{"a"}, 0)
	a.EqualError(err, "a betting round requires at least two users")

	_, err = NewRound(testPolicy(), []string{"a", "a"}, 0)
	a.EqualError(err, "user a appears twice in the betting order")

	_, err = NewRound(testPolicy(), []string{"a", ""}, 0)
	a.EqualError(err, "betting order contains an empty user id")

	_, err = NewRound(testPolicy(), []string{"a", "b"}, -1)
	a.EqualError(err, "carry-over chips cannot be negative")

	_, err = NewRound(Policy{MinBet: 0, RaiseCap: 3, TableLimit: 100}, []string{"a", "b"}, 0)
	a.EqualError(err, "minimum bet must be greater than zero")

	_, err = NewRound(Policy{MinBet: 10, RaiseCap: 0, TableLimit: 100}, []string{"a", "b"}, 0)
	a.EqualError(err, "raise cap must be greater than zero")

	_, err = NewRound(Policy{MinBet: 10, RaiseCap: 3, TableLimit: 5}, []string{"a", "b"}, 0)
	a.EqualError(err, "table limit must cover at least the minimum bet")

	round, err := NewRound(testPolicy(), []string{"a", "b"}, 0)
	a.NoError(err)
	a.Equal("a", round.CurrentUser())
	a.False(round.Complete())
}

// scenario: A opens, B calls, C folds, leaving everyone settled
func TestRound_openCallFold(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b", "c"}, 0)
	a.NoError(err)

	result, err := round.Apply("a", Bbing, 100)
	a.NoError(err)
	a.Equal(10, result.Amount)
	a.Equal(10, result.TableChips)
	a.Equal("b", result.NextUser)
	a.Equal(10, result.NextCallChips)
	a.False(result.Complete)

	state := round.Snapshot()
	a.Equal(map[string]int{"a": 0, "b": 10, "c": 10}, state.UserCallChips)
	a.Equal(map[string]bool{"a": true}, state.Completed)

	result, err = round.Apply("b", Call, 100)
	a.NoError(err)
	a.Equal(10, result.Amount)
	a.Equal(20, result.TableChips)
	a.Equal("c", result.NextUser)
	a.False(result.Complete)

	state = round.Snapshot()
	a.Equal(0, state.UserCallChips["b"])
	a.Equal(map[string]bool{"a": true, "b": true}, state.Completed)

	result, err = round.Apply("c", Fold, 100)
	a.NoError(err)
	a.Equal(0, result.Amount)
	a.Equal(20, result.TableChips)
	a.True(result.Complete)
	a.Equal([]string{"a", "b"}, result.FinalOrder)
	a.Empty(result.LastUser)

	a.True(round.Complete())
	a.Empty(round.CurrentUser())
}

// scenario: a raise on top of an outstanding call reopens the round
func TestRound_halfRaiseReopens(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b", "c"}, 10)
	a.NoError(err)

	_, err = round.Apply("a", Bbing, 100)
	a.NoError(err)
	a.Equal(20, round.TableChips())

	// half of the initial 10 is 5, added on top of the 10 call
	result, err := round.Apply("b", Half, 100)
	a.NoError(err)
	a.Equal(15, result.Amount)
	a.Equal(35, result.TableChips)
	a.Equal("c", result.NextUser)
	a.Equal(15, result.NextCallChips)

	state := round.Snapshot()
	a.Equal(map[string]bool{"b": true}, state.Completed)
	a.Equal(1, state.RaiseCounts["b"])
	a.Equal(15, state.UserCallChips["c"])
	a.Equal(5, state.UserCallChips["a"])
	a.Equal(0, state.UserCallChips["b"])
}

func TestRound_ddadangDoublesTheCall(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b", "c"}, 0)
	a.NoError(err)

	_, err = round.Apply("a", Bbing, 100)
	a.NoError(err)

	// b owes 10; doubling commits 20 and lifts the level by 10
	result, err := round.Apply("b", Ddadang, 100)
	a.NoError(err)
	a.Equal(20, result.Amount)
	a.Equal(30, result.TableChips)

	state := round.Snapshot()
	a.Equal(10, state.UserCallChips["a"])
	a.Equal(20, state.UserCallChips["c"])
	a.Equal(1, state.RaiseCounts["b"])
	a.Equal(map[string]bool{"b": true}, state.Completed)
}

func TestRound_ddadangRequiresOutstandingBet(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b"}, 100)
	a.NoError(err)

	_, err = round.Apply("a", Ddadang, 1000)
	a.EqualError(err, "cannot DDADANG: no outstanding bet to double")
}

func TestRound_raiseCapEnforced(t *testing.T) {
	a := assert.New(t)

	policy := Policy{MinBet: 10, RaiseCap: 1, TableLimit: 1000}
	round, err := NewRound(policy, []string{"a", "b", "c"}, 0)
	a.NoError(err)

	_, err = round.Apply("a", Bbing, 1000)
	a.NoError(err)
	_, err = round.Apply("b", Ddadang, 1000)
	a.NoError(err)
	_, err = round.Apply("c", Call, 1000)
	a.NoError(err)
	_, err = round.Apply("a", Ddadang, 1000)
	a.NoError(err)

	// b already raised once and the cap is one
	before := round.Snapshot()
	_, err = round.Apply("b", Quarter, 1000)
	a.Error(err)
	a.True(IsIllegalAction(err))
	a.Equal(before, round.Snapshot())
}

func TestRound_rejectionNeverMutates(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b", "c"}, 40)
	a.NoError(err)

	_, err = round.Apply("a", Bbing, 100)
	a.NoError(err)

	before := round.Snapshot()

	// not your turn
	_, err = round.Apply("c", Call, 100)
	a.Equal(ErrNotYourTurn, err)
	a.Equal(before, round.Snapshot())

	// check with a bet outstanding
	_, err = round.Apply("b", Check, 100)
	a.True(IsIllegalAction(err))
	a.Equal(before, round.Snapshot())

	// opening bet after the round opened
	_, err = round.Apply("b", Bbing, 100)
	a.True(IsIllegalAction(err))
	a.Equal(before, round.Snapshot())

	// call without the funds to cover it
	_, err = round.Apply("b", Call, 5)
	a.Equal(ErrInsufficientFunds, err)
	a.Equal(before, round.Snapshot())

	// raise without the funds to cover the call plus the raise
	_, err = round.Apply("b", Quarter, 10)
	a.Equal(ErrInsufficientFunds, err)
	a.Equal(before, round.Snapshot())

	// malformed type
	_, err = round.Apply("b", Type("ALL_IN"), 100)
	a.True(IsIllegalAction(err))
	a.Equal(before, round.Snapshot())
}

func TestRound_allCheckCompletes(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b", "c"}, 50)
	a.NoError(err)

	result, err := round.Apply("a", Check, 0)
	a.NoError(err)
	a.False(result.Complete)
	a.True(round.Snapshot().CheckUsed)

	// a second check remains legal while nothing is outstanding
	result, err = round.Apply("b", Check, 0)
	a.NoError(err)
	a.False(result.Complete)

	result, err = round.Apply("c", Check, 0)
	a.NoError(err)
	a.True(result.Complete)
	a.Equal([]string{"a", "b", "c"}, result.FinalOrder)
	a.Equal(50, result.TableChips)
}

func TestRound_checkThenRaiseReopensForChecker(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b", "c"}, 40)
	a.NoError(err)

	_, err = round.Apply("a", Check, 0)
	a.NoError(err)

	// b raises a quarter of the initial 40
	result, err := round.Apply("b", Quarter, 100)
	a.NoError(err)
	a.Equal(10, result.Amount)

	state := round.Snapshot()
	a.Equal(map[string]bool{"b": true}, state.Completed)
	a.Equal(10, state.UserCallChips["a"])
	a.Equal(10, state.UserCallChips["c"])

	// a checked earlier but now owes chips again
	_, err = round.Apply("c", Call, 100)
	a.NoError(err)
	a.Equal("a", round.CurrentUser())

	_, err = round.Apply("a", Check, 0)
	a.True(IsIllegalAction(err))

	result, err = round.Apply("a", Call, 100)
	a.NoError(err)
	a.True(result.Complete)
}

func TestRound_foldToLastUserStanding(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b", "c"}, 0)
	a.NoError(err)

	_, err = round.Apply("a", Bbing, 100)
	a.NoError(err)

	result, err := round.Apply("b", Fold, 0)
	a.NoError(err)
	a.False(result.Complete)
	a.Equal("c", result.NextUser)

	state := round.Snapshot()
	a.Equal([]string{"a", "c"}, state.Order)
	a.NotContains(state.UserCallChips, "b")
	a.NotContains(state.Bets, "b")

	result, err = round.Apply("c", Fold, 0)
	a.NoError(err)
	a.True(result.Complete)
	a.Equal("a", result.LastUser)
	a.Equal([]string{"a"}, result.FinalOrder)
	a.Equal(10, result.TableChips)
}

func TestRound_turnIntegrityAndChipConservation(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b", "c", "d"}, 20)
	a.NoError(err)

	committed := 0
	script := []struct {
		userID  string
		betType Type
	}{
		{"a", Bbing},
		{"b", Call},
		{"c", Ddadang},
		{"d", Fold},
		{"a", Call},
		{"b", Half},
		{"c", Call},
		{"a", Call},
	}

	for i, step := range script {
		a.Equal(step.userID, round.CurrentUser(), "step %d", i)

		result, err := round.Apply(step.userID, step.betType, 10000)
		a.NoError(err, "step %d", i)

		committed += result.Amount
		a.Equal(20+committed, round.TableChips(), "step %d", i)

		state := round.Snapshot()
		if !result.Complete {
			a.Contains(state.Order, state.CurrentUser, "step %d", i)
		}
	}

	a.True(round.Complete())
}

func TestRound_remainingTableMoney(t *testing.T) {
	a := assert.New(t)

	// 20 carried over against a 60 limit leaves 40 raisable
	round, err := NewRound(Policy{MinBet: 10, RaiseCap: 3, TableLimit: 60}, []string{"a", "b", "c"}, 20)
	a.NoError(err)
	a.Equal(40, round.Snapshot().RemainingTableMoney)

	_, err = round.Apply("a", Bbing, 1000)
	a.NoError(err)
	a.Equal(30, round.Snapshot().RemainingTableMoney)

	// full raise preview is the initial 20, within the remaining 30
	result, err := round.Apply("b", Full, 1000)
	a.NoError(err)
	a.Equal(30, result.Amount)
	a.Equal(10, round.Snapshot().RemainingTableMoney)

	// c owes 30; doubling would raise by 30, more than the remaining 10
	_, err = round.Apply("c", Ddadang, 1000)
	a.True(IsIllegalAction(err))

	// quarter preview (5) still fits
	opts, err := round.Options("c", 1000)
	a.NoError(err)
	a.Equal(5, opts.QuarterAmount)
	a.Equal(10, opts.HalfAmount)
	a.Equal(10, opts.FullAmount)

	result, err = round.Apply("c", Quarter, 1000)
	a.NoError(err)
	a.Equal(35, result.Amount)
	a.Equal(5, round.Snapshot().RemainingTableMoney)
}

func TestRound_zeroRaisePreviewIsIllegal(t *testing.T) {
	a := assert.New(t)

	// nothing carried over, so fractional raises preview to zero
	round, err := NewRound(testPolicy(), []string{"a", "b"}, 0)
	a.NoError(err)

	_, err = round.Apply("a", Quarter, 1000)
	a.EqualError(err, "cannot QUARTER: raise amount is zero")
}

func TestRound_applyAfterComplete(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b"}, 0)
	a.NoError(err)

	_, err = round.Apply("a", Bbing, 100)
	a.NoError(err)
	result, err := round.Apply("b", Fold, 0)
	a.NoError(err)
	a.True(result.Complete)

	_, err = round.Apply("a", Check, 0)
	a.Equal(ErrRoundOver, err)

	_, err = round.Options("a", 100)
	a.Equal(ErrRoundOver, err)
}

func TestResume(t *testing.T) {
	a := assert.New(t)

	round, err := NewRound(testPolicy(), []string{"a", "b", "c"}, 0)
	a.NoError(err)

	_, err = round.Apply("a", Bbing, 100)
	a.NoError(err)

	resumed, err := Resume(testPolicy(), round.Snapshot())
	a.NoError(err)
	a.Equal("b", resumed.CurrentUser())
	a.Equal(round.Snapshot(), resumed.Snapshot())

	// the resumed round plays out normally
	_, err = resumed.Apply("b", Call, 100)
	a.NoError(err)
	result, err := resumed.Apply("c", Call, 100)
	a.NoError(err)
	a.True(result.Complete)
}

func TestResume_validation(t *testing.T) {
	a := assert.New(t)

	_, err := Resume(testPolicy(), nil)
	a.EqualError(err, "snapshot has no betting order")

	round, _ := NewRound(testPolicy(), []string{"a", "b"}, 0)
	state := round.Snapshot()
	state.CurrentUser = "z"
	_, err = Resume(testPolicy(), state)
	a.EqualError(err, "current user z is not in the betting order")

	state = round.Snapshot()
	state.TableChips = state.InitialTableChips - 1
	_, err = Resume(testPolicy(), state)
	a.EqualError(err, "snapshot table chips fell below the initial chips")
}
