package domain

// Side identifies the direction of a trade against a pool.
// Buying X means Y is the input token; selling X means X is the input token.
type Side uint8

// Side constants. The values double as the wire encoding of the `side` byte
// in the post-trade payload.
const (
	SideBuyX  Side = 0
	SideSellX Side = 1
)

// String returns the side name used in logs and validation reports.
func (s Side) String() string {
	if s == SideBuyX {
		return "buy_x"
	}
	return "sell_x"
}
