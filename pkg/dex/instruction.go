// Package dex decodes the head of raw venue instruction payloads: a version
// byte followed by a little-endian u32 discriminant, followed by the
// instruction body. Only the six instruction kinds the gateway proxies get a
// typed decode; everything else is passed through as Unrecognized.
package dex

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Tag identifies one venue instruction kind. Values are the venue's wire
// discriminants and must not be renumbered.
type Tag uint32

const (
	TagSettleFunds           Tag = 5
	TagNewOrderV3            Tag = 10
	TagCancelOrderV2         Tag = 11
	TagCancelOrderByClientID Tag = 12
	TagCloseOpenOrders       Tag = 14
	TagInitOpenOrders        Tag = 15

	// TagUnrecognized marks payloads that are not venue instructions the
	// gateway understands. They are routed to the fallback hooks only.
	TagUnrecognized Tag = 0xffffffff
)

func (t Tag) String() string {
	switch t {
	case TagSettleFunds:
		return "settle_funds"
	case TagNewOrderV3:
		return "new_order_v3"
	case TagCancelOrderV2:
		return "cancel_order_v2"
	case TagCancelOrderByClientID:
		return "cancel_order_by_client_id"
	case TagCloseOpenOrders:
		return "close_open_orders"
	case TagInitOpenOrders:
		return "init_open_orders"
	default:
		return "unrecognized"
	}
}

// Side is the order side.
type Side uint32

const (
	Bid Side = 0
	Ask Side = 1
)

func (s Side) String() string {
	if s == Ask {
		return "ask"
	}
	return "bid"
}

// OrderType is the venue order type.
type OrderType uint32

const (
	Limit             OrderType = 0
	ImmediateOrCancel OrderType = 1
	PostOnly          OrderType = 2
)

func (o OrderType) String() string {
	switch o {
	case ImmediateOrCancel:
		return "ioc"
	case PostOnly:
		return "post_only"
	default:
		return "limit"
	}
}

// SelfTradeBehavior controls what the venue does when an order would cross
// another order from the same open-orders account.
type SelfTradeBehavior uint32

const (
	DecrementTake    SelfTradeBehavior = 0
	CancelProvide    SelfTradeBehavior = 1
	AbortTransaction SelfTradeBehavior = 2
)

// OrderID is the venue's 128-bit order identifier, stored little-endian as
// on the wire.
type OrderID [16]byte

func (id OrderID) String() string {
	// Print big-endian hex, matching how the venue displays order ids.
	var s string
	for i := 15; i >= 0; i-- {
		s += fmt.Sprintf("%02x", id[i])
	}
	return s
}

// NewOrderV3 is the decoded body of a new-order instruction.
type NewOrderV3 struct {
	Side              Side
	LimitPrice        uint64
	MaxCoinQty        uint64
	MaxNativePcQty    uint64 // quote quantity, fees included
	SelfTradeBehavior SelfTradeBehavior
	OrderType         OrderType
	ClientOrderID     uint64
	Limit             uint16

	// MaxTS is an optional order expiry (unix seconds) appended by newer
	// venue versions. HasMaxTS reports whether it was present on the wire.
	MaxTS    int64
	HasMaxTS bool
}

// CancelOrderV2 is the decoded body of a cancel-order instruction.
type CancelOrderV2 struct {
	Side    Side
	OrderID OrderID
}

// Instruction is the tagged result of decoding a payload head.
type Instruction struct {
	Tag Tag

	// Exactly one of the following is populated, per Tag. Instructions with
	// no body (settle funds, init/close open orders) populate none.
	NewOrder       *NewOrderV3
	Cancel         *CancelOrderV2
	CancelClientID uint64
}

// ErrCannotUnpack reports a recognized instruction whose body does not
// decode. Unrecognized heads are not errors; they decode to TagUnrecognized.
var ErrCannotUnpack = errors.New("could not unpack the instruction")

const headLen = 5 // version byte + u32 discriminant

// Decode parses the instruction head and, for recognized kinds, the typed
// body. It returns the instruction and the body bytes remaining after the
// head. The input is never modified; forwarding always uses the original
// payload.
func Decode(data []byte) (*Instruction, []byte, error) {
	if len(data) < headLen || data[0] != 0 {
		return &Instruction{Tag: TagUnrecognized}, data, nil
	}
	tag := Tag(binary.LittleEndian.Uint32(data[1:headLen]))
	body := data[headLen:]

	switch tag {
	case TagSettleFunds, TagInitOpenOrders, TagCloseOpenOrders:
		return &Instruction{Tag: tag}, body, nil

	case TagNewOrderV3:
		order, err := decodeNewOrderV3(body)
		if err != nil {
			return nil, nil, err
		}
		return &Instruction{Tag: tag, NewOrder: order}, body, nil

	case TagCancelOrderV2:
		if len(body) < 20 {
			return nil, nil, fmt.Errorf("%w: cancel order body is %d bytes, want 20", ErrCannotUnpack, len(body))
		}
		cancel := &CancelOrderV2{Side: Side(binary.LittleEndian.Uint32(body[0:4]))}
		copy(cancel.OrderID[:], body[4:20])
		return &Instruction{Tag: tag, Cancel: cancel}, body, nil

	case TagCancelOrderByClientID:
		if len(body) < 8 {
			return nil, nil, fmt.Errorf("%w: cancel by client id body is %d bytes, want 8", ErrCannotUnpack, len(body))
		}
		return &Instruction{Tag: tag, CancelClientID: binary.LittleEndian.Uint64(body[0:8])}, body, nil

	default:
		return &Instruction{Tag: TagUnrecognized}, data, nil
	}
}

func decodeNewOrderV3(body []byte) (*NewOrderV3, error) {
	// 46-byte base layout; 54 bytes when the optional max_ts is present.
	if len(body) < 46 {
		return nil, fmt.Errorf("%w: new order body is %d bytes, want at least 46", ErrCannotUnpack, len(body))
	}
	order := &NewOrderV3{
		Side:              Side(binary.LittleEndian.Uint32(body[0:4])),
		LimitPrice:        binary.LittleEndian.Uint64(body[4:12]),
		MaxCoinQty:        binary.LittleEndian.Uint64(body[12:20]),
		MaxNativePcQty:    binary.LittleEndian.Uint64(body[20:28]),
		SelfTradeBehavior: SelfTradeBehavior(binary.LittleEndian.Uint32(body[28:32])),
		OrderType:         OrderType(binary.LittleEndian.Uint32(body[32:36])),
		ClientOrderID:     binary.LittleEndian.Uint64(body[36:44]),
		Limit:             binary.LittleEndian.Uint16(body[44:46]),
	}
	if len(body) >= 54 {
		order.MaxTS = int64(binary.LittleEndian.Uint64(body[46:54]))
		order.HasMaxTS = true
	}
	return order, nil
}
