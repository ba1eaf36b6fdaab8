// package formatter renders sequence elements as CSV or aligned plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/desertthunder/seqx/internal/models"
)

var headers = []string{"Sequence", "ElementID", "Version", "ID"}

func record(e *models.SequenceElement) []string {
	return []string{
		strconv.Itoa(e.SequenceNumber),
		strconv.Itoa(e.ElementID),
		strconv.Itoa(e.VersionNumber),
		e.ID,
	}
}

// ToCSV converts elements to CSV with columns: Sequence, ElementID, Version, ID
func ToCSV(elements []*models.SequenceElement) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range elements {
		if err := writer.Write(record(e)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToText renders elements as a column-aligned table headed by the element type.
func ToText(elementType string, elements []*models.SequenceElement) []byte {
	var buf bytes.Buffer

	if len(elements) == 0 {
		fmt.Fprintf(&buf, "No %s elements\n", elementType)
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "%s (%d)\n\n", elementType, len(elements))

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, row := range append([][]string{headers}, rows(elements)...) {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	w.Flush()

	return buf.Bytes()
}

func rows(elements []*models.SequenceElement) [][]string {
	out := make([][]string, 0, len(elements))
	for _, e := range elements {
		out = append(out, record(e))
	}
	return out
}
