package enum

// SignalAction hold, buy, sell
type SignalAction uint8

const (
	SignalHold SignalAction = iota
	SignalBuy
	SignalSell
)

func (a SignalAction) String() string {
	switch a {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}
