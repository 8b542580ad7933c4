package models

import "encoding/json"

// TrendlineKind is the kind of extrema a trendline connects.
type TrendlineKind string

const (
	PhToPh TrendlineKind = "PH_to_PH"
	PlToPl TrendlineKind = "PL_to_PL"
)

// ExtremumKind returns the kind of extrema the trendline is drawn through.
func (k TrendlineKind) ExtremumKind() ExtremumKind {
	if k == PhToPh {
		return ExtremumHigh
	}
	return ExtremumLow
}

// OrderType returns the side of the synthetic order the trendline implies.
func (k TrendlineKind) OrderType() OrderType {
	if k == PhToPh {
		return OrderLong
	}
	return OrderShort
}

// TrendlineKindFor maps an extremum kind to its trendline kind.
func TrendlineKindFor(k ExtremumKind) TrendlineKind {
	if k == ExtremumHigh {
		return PhToPh
	}
	return PlToPl
}

// Trendline links a sender extremum to a newer, more extreme receiver.
type Trendline struct {
	Kind     TrendlineKind
	Sender   ParentExtremum
	Receiver ParentExtremum
}

// TrendlineKey identifies a trendline for de-duplication.
type TrendlineKey struct {
	Kind             TrendlineKind
	SenderPosition   int
	ReceiverPosition int
}

// Key returns the de-duplication key.
func (t Trendline) Key() TrendlineKey {
	return TrendlineKey{
		Kind:             t.Kind,
		SenderPosition:   t.Sender.PositionNumber(),
		ReceiverPosition: t.Receiver.PositionNumber(),
	}
}

// OrderType represents the side of a synthetic order.
type OrderType string

const (
	OrderLong  OrderType = "LONG"
	OrderShort OrderType = "SHORT"
)

// OrderStatus represents whether the synthetic order already traded.
type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderExecuted OrderStatus = "EXECUTED"
	OrderInvalid  OrderStatus = "INVALID"
)

// BreakoutResolution carries the breakout and order-parent levels of one
// trendline receiver. Nil fields are invalid.
type BreakoutResolution struct {
	Breakout          *ParentExtremum
	OrderParent       *ParentExtremum
	ActualOrderParent *ParentExtremum
	Reassigned        bool
}

// Box is the order-parent bounding box in pixel coordinates.
type Box struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Contract is the terminal artifact of the pipeline.
type Contract struct {
	Trendline
	BreakoutResolution
	OrderType   OrderType
	OrderStatus OrderStatus
	Box         *Box
}

// IsValidPending reports whether the contract belongs to the pending export.
func (c Contract) IsValidPending() bool {
	return c.OrderStatus == OrderPending && c.Breakout != nil && c.OrderParent != nil
}

// SenderView is the exported sender shape.
type SenderView struct {
	Color          Color `json:"color"`
	PositionNumber int   `json:"position_number"`
	ArrowNumber    int   `json:"arrow_number"`
}

// ReceiverView is the exported receiver shape.
type ReceiverView struct {
	Color                 Color       `json:"color"`
	PositionNumber        int         `json:"position_number"`
	OrderType             OrderType   `json:"order_type"`
	OrderStatus           OrderStatus `json:"order_status"`
	BreakoutParent        string      `json:"breakout_parent"`
	OrderParent           string      `json:"order_parent"`
	ActualOrderParent     string      `json:"actual_order_parent"`
	ReassignedOrderParent bool        `json:"reassigned_order_parent"`
	ArrowNumber           int         `json:"arrow_number"`
}

// ContractView is the JSON contract consumed by pricing/order modules.
type ContractView struct {
	Type     TrendlineKind `json:"type"`
	Sender   SenderView    `json:"sender"`
	Receiver ReceiverView  `json:"receiver"`
	Box      *Box          `json:"box,omitempty"`
}

// View flattens the contract into its exported shape.
func (c Contract) View() ContractView {
	return ContractView{
		Type: c.Kind,
		Sender: SenderView{
			Color:          c.Sender.Candle.Color,
			PositionNumber: c.Sender.PositionNumber(),
			ArrowNumber:    c.Sender.ArrowNumber(),
		},
		Receiver: ReceiverView{
			Color:                 c.Receiver.Candle.Color,
			PositionNumber:        c.Receiver.PositionNumber(),
			OrderType:             c.OrderType,
			OrderStatus:           c.OrderStatus,
			BreakoutParent:        LabelOf(c.Breakout),
			OrderParent:           LabelOf(c.OrderParent),
			ActualOrderParent:     LabelOf(c.ActualOrderParent),
			ReassignedOrderParent: c.Reassigned,
			ArrowNumber:           c.Receiver.ArrowNumber(),
		},
		Box: c.Box,
	}
}

// MarshalJSON implements json.Marshaler.
func (c Contract) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.View())
}
