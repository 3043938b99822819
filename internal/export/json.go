// Package export renders a blueprint into its interchange forms: a JSON
// document and a two-view specification spreadsheet.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mtapang/tosforge/internal/model"
)

// WriteJSON writes the blueprint export as indented JSON.
func WriteJSON(w io.Writer, data *model.BlueprintExport) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, err = fmt.Fprintln(w)
	return err
}
