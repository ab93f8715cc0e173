package betting

import (
	"fmt"
)

// Type represents a betting action a player can take
type Type string

// betting type constants
const (
	Check   Type = "CHECK"
	Bbing   Type = "BBING"
	Call    Type = "CALL"
	Ddadang Type = "DDADANG"
	Quarter Type = "QUARTER"
	Half    Type = "HALF"
	Full    Type = "FULL"
	Fold    Type = "FOLD"
)

var allowedTypes = map[Type]bool{
	Check:   true,
	Bbing:   true,
	Call:    true,
	Ddadang: true,
	Quarter: true,
	Half:    true,
	Full:    true,
	Fold:    true,
}

// FromString returns a betting type for the given string
func FromString(s string) (Type, error) {
	if _, ok := allowedTypes[Type(s)]; ok {
		return Type(s), nil
	}

	return "", fmt.Errorf("unknown betting type for identifier: %s", s)
}

// IsValid returns true if the betting type is permitted
func (t Type) IsValid() bool {
	_, ok := allowedTypes[t]
	return ok
}

// IsRaise returns true if the action increases the outstanding bet beyond a call
func (t Type) IsRaise() bool {
	switch t {
	case Ddadang, Quarter, Half, Full:
		return true
	}

	return false
}

// LogMessage returns a message formatted for the room log
func (t Type) LogMessage(amount int) string {
	switch t {
	case Check:
		return "checked"
	case Bbing:
		return fmt.Sprintf("opened for ${%d}", amount)
	case Call:
		return fmt.Sprintf("called ${%d}", amount)
	case Ddadang:
		return fmt.Sprintf("doubled to ${%d}", amount)
	case Quarter:
		return fmt.Sprintf("raised a quarter for ${%d}", amount)
	case Half:
		return fmt.Sprintf("raised a half for ${%d}", amount)
	case Full:
		return fmt.Sprintf("raised full for ${%d}", amount)
	case Fold:
		return "folded"
	}

	return ""
}
