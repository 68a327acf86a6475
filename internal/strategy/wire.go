package strategy

import (
	"encoding/binary"
	"fmt"
	"math"

	"prop-amm-lab/internal/domain"
)

// Payload tag bytes. Tags identify the call across the artifact boundary
// and must never be renumbered: compiled strategies dispatch on them.
const (
	TagSwapBuy       = 0 // quote, Y in / X out
	TagSwapSell      = 1 // quote, X in / Y out
	TagAfterSwap     = 2
	TagEpochBoundary = 5
)

// Wire sizes. Headers are fixed little-endian layouts followed by the
// 1024-byte storage region.
const (
	QuotePayloadSize     = 1 + 8 + 8 + 8 + domain.StorageSize
	AfterSwapHeaderSize  = 92
	AfterSwapPayloadSize = AfterSwapHeaderSize + domain.StorageSize
	EpochHeaderSize      = 41
	EpochPayloadSize     = EpochHeaderSize + domain.StorageSize
)

// AfterSwapPayload is the enriched post-trade notification.
//
// Wire layout (little-endian byte offsets):
//
//	 0  tag             u8  (= TagAfterSwap)
//	 1  side            u8  (0 = buy X, 1 = sell X)
//	 2  input_amount    u64
//	10  output_amount   u64
//	18  reserve_x       u64 (post-trade)
//	26  reserve_y       u64
//	34  sim_step        u64
//	42  epoch_step      u32
//	46  epoch_number    u32
//	50  n_strategies    u8
//	51  strategy_index  u8
//	52  flow_captured   f32 (0 for arbitrage-originated trades)
//	56  capital_weight  f32
//	60  competing_spot_prices f32[8] (NaN-padded)
//	92  storage         [1024]u8
type AfterSwapPayload struct {
	Side                domain.Side
	InputAmount         uint64
	OutputAmount        uint64
	ReserveX            uint64
	ReserveY            uint64
	SimStep             uint64
	EpochStep           uint32
	EpochNumber         uint32
	NStrategies         uint8
	StrategyIndex       uint8
	FlowCaptured        float32
	CapitalWeight       float32
	CompetingSpotPrices [domain.CompetitorSlots]float32
}

// EpochBoundaryPayload notifies a strategy of its new capital allocation.
//
// Wire layout (little-endian byte offsets):
//
//	 0  tag             u8  (= TagEpochBoundary)
//	 1  epoch_number    u32
//	 5  new_reserve_x   u64
//	13  new_reserve_y   u64
//	21  epoch_edge      f64
//	29  cumulative_edge f64
//	37  capital_weight  f32
//	41  storage         [1024]u8
type EpochBoundaryPayload struct {
	EpochNumber    uint32
	NewReserveX    uint64
	NewReserveY    uint64
	EpochEdge      float64
	CumulativeEdge float64
	CapitalWeight  float32
}

// EncodeQuote builds the quote wire payload:
// tag | input u64 | reserve_x u64 | reserve_y u64 | storage.
func EncodeQuote(side domain.Side, input, reserveX, reserveY uint64, storage *domain.Storage) []byte {
	buf := make([]byte, QuotePayloadSize)
	buf[0] = TagSwapBuy
	if side == domain.SideSellX {
		buf[0] = TagSwapSell
	}
	binary.LittleEndian.PutUint64(buf[1:9], input)
	binary.LittleEndian.PutUint64(buf[9:17], reserveX)
	binary.LittleEndian.PutUint64(buf[17:25], reserveY)
	copy(buf[25:], storage[:])
	return buf
}

// Encode serializes the post-trade payload followed by the storage region.
func (p *AfterSwapPayload) Encode(storage *domain.Storage) []byte {
	buf := make([]byte, AfterSwapPayloadSize)
	buf[0] = TagAfterSwap
	buf[1] = byte(p.Side)
	binary.LittleEndian.PutUint64(buf[2:10], p.InputAmount)
	binary.LittleEndian.PutUint64(buf[10:18], p.OutputAmount)
	binary.LittleEndian.PutUint64(buf[18:26], p.ReserveX)
	binary.LittleEndian.PutUint64(buf[26:34], p.ReserveY)
	binary.LittleEndian.PutUint64(buf[34:42], p.SimStep)
	binary.LittleEndian.PutUint32(buf[42:46], p.EpochStep)
	binary.LittleEndian.PutUint32(buf[46:50], p.EpochNumber)
	buf[50] = p.NStrategies
	buf[51] = p.StrategyIndex
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(p.FlowCaptured))
	binary.LittleEndian.PutUint32(buf[56:60], math.Float32bits(p.CapitalWeight))
	for i, sp := range p.CompetingSpotPrices {
		binary.LittleEndian.PutUint32(buf[60+4*i:64+4*i], math.Float32bits(sp))
	}
	copy(buf[AfterSwapHeaderSize:], storage[:])
	return buf
}

// DecodeAfterSwap parses a post-trade wire payload. The returned storage is
// a copy of the payload's storage region.
func DecodeAfterSwap(buf []byte) (*AfterSwapPayload, *domain.Storage, error) {
	if len(buf) != AfterSwapPayloadSize {
		return nil, nil, fmt.Errorf("after-swap payload: want %d bytes, got %d", AfterSwapPayloadSize, len(buf))
	}
	if buf[0] != TagAfterSwap {
		return nil, nil, fmt.Errorf("after-swap payload: unexpected tag %d", buf[0])
	}

	p := &AfterSwapPayload{
		Side:          domain.Side(buf[1]),
		InputAmount:   binary.LittleEndian.Uint64(buf[2:10]),
		OutputAmount:  binary.LittleEndian.Uint64(buf[10:18]),
		ReserveX:      binary.LittleEndian.Uint64(buf[18:26]),
		ReserveY:      binary.LittleEndian.Uint64(buf[26:34]),
		SimStep:       binary.LittleEndian.Uint64(buf[34:42]),
		EpochStep:     binary.LittleEndian.Uint32(buf[42:46]),
		EpochNumber:   binary.LittleEndian.Uint32(buf[46:50]),
		NStrategies:   buf[50],
		StrategyIndex: buf[51],
		FlowCaptured:  math.Float32frombits(binary.LittleEndian.Uint32(buf[52:56])),
		CapitalWeight: math.Float32frombits(binary.LittleEndian.Uint32(buf[56:60])),
	}
	for i := range p.CompetingSpotPrices {
		p.CompetingSpotPrices[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[60+4*i : 64+4*i]))
	}

	var storage domain.Storage
	copy(storage[:], buf[AfterSwapHeaderSize:])
	return p, &storage, nil
}

// Encode serializes the epoch-boundary payload followed by the storage
// region.
func (p *EpochBoundaryPayload) Encode(storage *domain.Storage) []byte {
	buf := make([]byte, EpochPayloadSize)
	buf[0] = TagEpochBoundary
	binary.LittleEndian.PutUint32(buf[1:5], p.EpochNumber)
	binary.LittleEndian.PutUint64(buf[5:13], p.NewReserveX)
	binary.LittleEndian.PutUint64(buf[13:21], p.NewReserveY)
	binary.LittleEndian.PutUint64(buf[21:29], math.Float64bits(p.EpochEdge))
	binary.LittleEndian.PutUint64(buf[29:37], math.Float64bits(p.CumulativeEdge))
	binary.LittleEndian.PutUint32(buf[37:41], math.Float32bits(p.CapitalWeight))
	copy(buf[EpochHeaderSize:], storage[:])
	return buf
}

// DecodeEpochBoundary parses an epoch-boundary wire payload.
func DecodeEpochBoundary(buf []byte) (*EpochBoundaryPayload, *domain.Storage, error) {
	if len(buf) != EpochPayloadSize {
		return nil, nil, fmt.Errorf("epoch payload: want %d bytes, got %d", EpochPayloadSize, len(buf))
	}
	if buf[0] != TagEpochBoundary {
		return nil, nil, fmt.Errorf("epoch payload: unexpected tag %d", buf[0])
	}

	p := &EpochBoundaryPayload{
		EpochNumber:    binary.LittleEndian.Uint32(buf[1:5]),
		NewReserveX:    binary.LittleEndian.Uint64(buf[5:13]),
		NewReserveY:    binary.LittleEndian.Uint64(buf[13:21]),
		EpochEdge:      math.Float64frombits(binary.LittleEndian.Uint64(buf[21:29])),
		CumulativeEdge: math.Float64frombits(binary.LittleEndian.Uint64(buf[29:37])),
		CapitalWeight:  math.Float32frombits(binary.LittleEndian.Uint32(buf[37:41])),
	}

	var storage domain.Storage
	copy(storage[:], buf[EpochHeaderSize:])
	return p, &storage, nil
}
