package betting

import "errors"

// Policy carries the configured betting constants. The engine never guesses
// these values; they are injected at round start and read-only afterwards.
type Policy struct {
	// MinBet is the amount committed by the opening BBING bet
	MinBet int
	// RaiseCap is the maximum number of raises a single user may make per round
	RaiseCap int
	// TableLimit is the most chips a betting round may accumulate
	TableLimit int
}

func (p Policy) validate() error {
	if p.MinBet <= 0 {
		return errors.New("minimum bet must be greater than zero")
	}

	if p.RaiseCap <= 0 {
		return errors.New("raise cap must be greater than zero")
	}

	if p.TableLimit < p.MinBet {
		return errors.New("table limit must cover at least the minimum bet")
	}

	return nil
}
