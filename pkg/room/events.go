package room

import (
	"cardroom-server/pkg/betting"
)

// PayloadIn is the format expected from a connected client
type PayloadIn struct {
	// Action is one of "bet", "options", "startRound"
	Action      string `json:"action"`
	BettingType string `json:"bettingType,omitempty"`
	// CarryOver seeds a new round with chips from a prior phase (startRound only)
	CarryOver int `json:"carryOver,omitempty"`
	// Context will be passed back on any outgoing message
	Context string `json:"context,omitempty"`
}

// OfferEvent is the legal-action offer sent to the user about to act
type OfferEvent struct {
	Key             string `json:"key"`
	CurrentUserID   string `json:"currentUserId"`
	TableChips      int    `json:"tableChips"`
	CallChips       int    `json:"callChips"`
	betting.Options
}

func newOfferEvent(userID string, tableChips int, opts betting.Options) *OfferEvent {
	return &OfferEvent{
		Key:           "bettingOffer",
		CurrentUserID: userID,
		TableChips:    tableChips,
		CallChips:     opts.CallAmount,
		Options:       opts,
	}
}

// ResultEvent is broadcast to all participants after an applied action
type ResultEvent struct {
	Key           string       `json:"key"`
	UserID        string       `json:"userId"`
	BettingType   betting.Type `json:"bettingType"`
	BettingAmount int          `json:"bettingAmount"`
	TableChips    int          `json:"tableChips"`
	// CallChips is what the next actor owes to match the outstanding bet
	CallChips           int  `json:"callChips"`
	IsBettingComplete   bool `json:"isBettingComplete"`
	CurrentBettingRound int  `json:"currentBettingRound"`
}

func newResultEvent(result *betting.Result, bettingRound int) *ResultEvent {
	return &ResultEvent{
		Key:                 "bettingResult",
		UserID:              result.UserID,
		BettingType:         result.Type,
		BettingAmount:       result.Amount,
		TableChips:          result.TableChips,
		CallChips:           result.NextCallChips,
		IsBettingComplete:   result.Complete,
		CurrentBettingRound: bettingRound,
	}
}

// StartedEvent is broadcast when a new betting round begins
type StartedEvent struct {
	Key                 string   `json:"key"`
	Order               []string `json:"order"`
	TableChips          int      `json:"tableChips"`
	CurrentBettingRound int      `json:"currentBettingRound"`
}

// StateEvent carries the public round state, sent to (re)connecting clients
type StateEvent struct {
	Key                 string         `json:"key"`
	State               *betting.State `json:"state"`
	CurrentBettingRound int            `json:"currentBettingRound"`
}

// ErrorEvent is sent only to the requesting client; rejections are never broadcast
type ErrorEvent struct {
	Key     string `json:"key"`
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

func newErrorEvent(ctx string, err error) *ErrorEvent {
	return &ErrorEvent{
		Key:     "error",
		Message: err.Error(),
		Context: ctx,
	}
}

// AckEvent is a generic success response
type AckEvent struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Context string `json:"context,omitempty"`
}

func okEvent(ctx string) *AckEvent {
	return &AckEvent{
		Key:     "status",
		Value:   "OK",
		Context: ctx,
	}
}

// RoundCompleted is handed to the room orchestrator and published for the
// game-history collaborator when a betting round completes
type RoundCompleted struct {
	RoomID     string   `json:"roomId"`
	TableChips int      `json:"tableChips"`
	Order      []string `json:"order"`
	// LastUser is set when folds reduced the order to a single user
	LastUser     string `json:"lastUser,omitempty"`
	BettingRound int    `json:"bettingRound"`
	TsUnixMs     int64  `json:"tsUnixMs"`
}
