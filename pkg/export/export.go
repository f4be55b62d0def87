// Package export serializes verification results for external consumption.
// The writers take an io.Writer; file handling belongs to the caller.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Angki/bandcamp-codes-verificator/pkg/verify"
)

// csvHeader is the stable column set consumed by downstream spreadsheets.
var csvHeader = []string{"no", "code", "http_status", "delay_sec", "elapsed_ms", "response", "success"}

// WriteCSV writes one row per result, in order, after a header row.
func WriteCSV(w io.Writer, results []verify.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Seq),
			r.Code,
			strconv.Itoa(r.Status),
			strconv.FormatFloat(r.Delay.Seconds(), 'f', -1, 64),
			strconv.FormatFloat(float64(r.Elapsed.Milliseconds()), 'f', -1, 64),
			r.Body.String(),
			strconv.FormatBool(r.OK),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.Seq, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// report is the JSON export envelope.
type report struct {
	Total   int             `json:"total"`
	Results []verify.Result `json:"results"`
}

// WriteJSON writes the full result list as an indented JSON document.
func WriteJSON(w io.Writer, results []verify.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report{Total: len(results), Results: results}); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}
