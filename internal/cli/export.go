package cli

import (
	"io"

	"github.com/gocarina/gocsv"

	"chartline-trader/internal/models"
)

// PendingRow is one CSV line of the pending-contract export.
type PendingRow struct {
	Type              string `csv:"type"`
	OrderType         string `csv:"order_type"`
	SenderArrow       int    `csv:"sender_arrow"`
	SenderPosition    int    `csv:"sender_position"`
	ReceiverArrow     int    `csv:"receiver_arrow"`
	ReceiverPosition  int    `csv:"receiver_position"`
	BreakoutParent    string `csv:"breakout_parent"`
	OrderParent       string `csv:"order_parent"`
	ActualOrderParent string `csv:"actual_order_parent"`
	Reassigned        bool   `csv:"reassigned"`
	BoxLeft           int    `csv:"box_left"`
	BoxRight          int    `csv:"box_right"`
	BoxTop            int    `csv:"box_top"`
	BoxBottom         int    `csv:"box_bottom"`
}

// PendingRowOf flattens a contract view into a CSV row.
func PendingRowOf(v models.ContractView) *PendingRow {
	row := &PendingRow{
		Type:              string(v.Type),
		OrderType:         string(v.Receiver.OrderType),
		SenderArrow:       v.Sender.ArrowNumber,
		SenderPosition:    v.Sender.PositionNumber,
		ReceiverArrow:     v.Receiver.ArrowNumber,
		ReceiverPosition:  v.Receiver.PositionNumber,
		BreakoutParent:    v.Receiver.BreakoutParent,
		OrderParent:       v.Receiver.OrderParent,
		ActualOrderParent: v.Receiver.ActualOrderParent,
		Reassigned:        v.Receiver.ReassignedOrderParent,
	}
	if v.Box != nil {
		row.BoxLeft = v.Box.Left
		row.BoxRight = v.Box.Right
		row.BoxTop = v.Box.Top
		row.BoxBottom = v.Box.Bottom
	}
	return row
}

// WritePendingCSV writes contract views as CSV with a header line.
func WritePendingCSV(w io.Writer, views []models.ContractView) error {
	rows := make([]*PendingRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, PendingRowOf(v))
	}
	return gocsv.Marshal(&rows, w)
}
