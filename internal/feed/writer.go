// Package feed serializes the generated event log into the flat CSV
// schema consumed by the downstream replay engine's L3 feed parser.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"l3gen/internal/domain"
)

// Header is the fixed column order of the L3 feed schema.
var Header = []string{"timestamp", "event_type", "order_id", "side", "price", "quantity"}

// Write streams the ordered event list as CSV: a header row, then one row
// per event. Prices render with exactly two fraction digits; order_id is
// empty for TRADE rows and side is empty for CANCEL rows.
func Write(w io.Writer, events []domain.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, 6)
	for i := range events {
		ev := &events[i]

		record[0] = strconv.FormatInt(ev.Timestamp, 10)
		record[1] = ev.Type
		if ev.HasOrderID() {
			record[2] = strconv.FormatInt(ev.OrderID, 10)
		} else {
			record[2] = ""
		}
		if ev.HasSide() {
			record[3] = ev.Side
		} else {
			record[3] = ""
		}
		record[4] = ev.Price.StringFixed(2)
		record[5] = strconv.Itoa(ev.Quantity)

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the event log to path, creating parent directories as
// needed. A write failure is an unrecoverable run failure for the caller.
func WriteFile(path string, events []domain.Event) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if err := Write(f, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
