package exchange

import (
	"fmt"
	"strings"
)

// Method is the payment channel for one leg of an exchange
type Method int

const (
	MethodUnknown Method = iota
	MethodCard
	MethodCash
	MethodCrypto
)

// String returns the wire name used in callback data and logs
func (m Method) String() string {
	switch m {
	case MethodCard:
		return "card"
	case MethodCash:
		return "cash"
	case MethodCrypto:
		return "crypto"
	default:
		return "unknown"
	}
}

// ParseMethod converts a wire name back into a Method
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "card":
		return MethodCard, nil
	case "cash":
		return MethodCash, nil
	case "crypto":
		return MethodCrypto, nil
	}
	return MethodUnknown, fmt.Errorf("unknown payment method %q", s)
}

// Methods lists the selectable methods in picker order
func Methods() []Method {
	return []Method{MethodCard, MethodCash, MethodCrypto}
}

// Leg identifies which side of the exchange a method choice belongs to
type Leg string

const (
	LegGive Leg = "give"
	LegGet  Leg = "get"
)
