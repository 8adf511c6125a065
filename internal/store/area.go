// Package store persists per-day table shards.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/table"
)

// DayLayout formats the day component of a shard key.
const DayLayout = "2006-01-02"

// Ref identifies one stored shard.
type Ref struct {
	Day     string
	Table   table.Name
	Name    string
	Size    int64
	SavedAt time.Time
}

// Area is a durable shard area keyed by (day, table).
type Area interface {
	// List returns the shards of t ordered by day.
	List(ctx context.Context, t table.Name) ([]Ref, error)
	// ListAll returns every shard ordered by table then day.
	ListAll(ctx context.Context) ([]Ref, error)
	Read(ctx context.Context, ref Ref) ([]dice.Roll, error)
	// Write stores rolls as the shard for (day, t), replacing any previous one.
	Write(ctx context.Context, day string, t table.Name, rolls []dice.Roll) (Ref, error)
	Remove(ctx context.Context, ref Ref) error
	Close() error
}

func encodeRolls(rolls []dice.Roll) ([]byte, error) {
	if rolls == nil {
		rolls = []dice.Roll{}
	}
	return json.Marshal(rolls)
}

func decodeRolls(data []byte) ([]dice.Roll, error) {
	var raw [][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode shard: %w", err)
	}
	rolls := make([]dice.Roll, 0, len(raw))
	for i, row := range raw {
		if len(row) != 3 {
			return nil, fmt.Errorf("decode shard: row %d has %d values", i, len(row))
		}
		rolls = append(rolls, dice.Roll{row[0], row[1], row[2]})
	}
	return rolls, nil
}

func sortRefs(refs []Ref) {
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Table != refs[j].Table {
			return refs[i].Table < refs[j].Table
		}
		if refs[i].Day != refs[j].Day {
			return refs[i].Day < refs[j].Day
		}
		return refs[i].Name < refs[j].Name
	})
}

func filterTable(refs []Ref, t table.Name) []Ref {
	out := refs[:0:0]
	for _, ref := range refs {
		if ref.Table == t {
			out = append(out, ref)
		}
	}
	return out
}
