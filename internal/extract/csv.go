package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"chartline-trader/internal/models"
)

// CandleRow is one line of a candle CSV: x,top_y,bottom_y,color.
type CandleRow struct {
	X       int    `csv:"x"`
	TopY    int    `csv:"top_y"`
	BottomY int    `csv:"bottom_y"`
	Color   string `csv:"color"`
}

// ReadCandlesCSV reads an extracted candle list. The rightmost row is the
// incomplete candle, exactly as with images. An empty file is an empty
// chart, like a blank image.
func ReadCandlesCSV(r io.Reader, startNumber int) (models.Chart, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Chart{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Chart{}, nil
	}

	var rows []*CandleRow
	if err := gocsv.Unmarshal(bytes.NewReader(data), &rows); err != nil {
		return models.Chart{}, err
	}

	candles := make([]models.Candle, 0, len(rows))
	for i, row := range rows {
		c, err := models.ParseColor(row.Color)
		if err != nil {
			return models.Chart{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		if row.TopY > row.BottomY {
			return models.Chart{}, fmt.Errorf("row %d: top_y %d below bottom_y %d", i+1, row.TopY, row.BottomY)
		}
		candles = append(candles, models.Candle{
			X:       row.X,
			TopY:    row.TopY,
			BottomY: row.BottomY,
			Color:   c,
			Area:    row.BottomY - row.TopY + 1,
		})
	}
	return BuildChart(candles, startNumber), nil
}

// WriteCandlesCSV writes candles in the format ReadCandlesCSV accepts.
func WriteCandlesCSV(w io.Writer, chart models.Chart) error {
	rows := make([]*CandleRow, 0, len(chart.Candles)+1)
	for _, c := range chart.Candles {
		rows = append(rows, rowOf(c.Candle))
	}
	if chart.Current != nil {
		rows = append(rows, rowOf(*chart.Current))
	}
	return gocsv.Marshal(&rows, w)
}

func rowOf(c models.Candle) *CandleRow {
	return &CandleRow{X: c.X, TopY: c.TopY, BottomY: c.BottomY, Color: string(c.Color)}
}
