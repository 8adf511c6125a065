// Package export writes table histories as JSON or YAML.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/model"
	"github.com/sup9097/table-dice-app/internal/table"
)

// Formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for formats other than json and yaml.
var ErrUnknownFormat = errors.New("unknown export format")

// Build collects the non-empty histories in allow-list order.
func Build(histories map[table.Name][]dice.Roll, now time.Time) model.Export {
	out := model.Export{ExportedAt: now.UTC().Format(time.RFC3339)}
	for _, name := range table.All {
		h := histories[name]
		if len(h) == 0 {
			continue
		}
		rolls := make([][3]int, len(h))
		for i, r := range h {
			rolls[i] = r
		}
		out.Tables = append(out.Tables, model.TableExport{
			Table: string(name),
			Kind:  name.Kind().String(),
			Rows:  len(h),
			Rolls: rolls,
		})
	}
	return out
}

// Write encodes exp to w in the given format.
func Write(w io.Writer, exp model.Export, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(exp); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(exp); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
