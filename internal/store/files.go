package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/table"
)

const shardSuffix = "_history.json"

// FileArea stores each shard as <day>_<table>_history.json in one directory.
type FileArea struct {
	dir string
}

// OpenFiles opens or creates a shard directory.
func OpenFiles(dir string) (*FileArea, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileArea{dir: dir}, nil
}

// Dir returns the backing directory.
func (a *FileArea) Dir() string {
	return a.dir
}

// ShardFileName returns the file name for the (day, t) shard.
func ShardFileName(day string, t table.Name) string {
	if day == "" {
		return string(t) + shardSuffix
	}
	return day + "_" + string(t) + shardSuffix
}

// parseShardName splits a shard file name into day and table. Undated
// files (<table>_history.json) have an empty day.
func parseShardName(name string) (string, table.Name, bool) {
	if !strings.HasSuffix(name, shardSuffix) {
		return "", "", false
	}
	stem := strings.TrimSuffix(name, shardSuffix)
	day, tbl, found := strings.Cut(stem, "_")
	if !found {
		day, tbl = "", stem
	}
	t := table.Name(tbl)
	if !t.Valid() {
		return "", "", false
	}
	return day, t, true
}

// List implements Area.
func (a *FileArea) List(ctx context.Context, t table.Name) ([]Ref, error) {
	refs, err := a.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterTable(refs, t), nil
}

// ListAll implements Area.
func (a *FileArea) ListAll(ctx context.Context) ([]Ref, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}
	refs := make([]Ref, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		day, t, ok := parseShardName(entry.Name())
		if !ok {
			continue
		}
		ref := Ref{Day: day, Table: t, Name: entry.Name()}
		if info, err := entry.Info(); err == nil {
			ref.Size = info.Size()
			ref.SavedAt = info.ModTime()
		}
		refs = append(refs, ref)
	}
	sortRefs(refs)
	return refs, nil
}

// Read implements Area.
func (a *FileArea) Read(ctx context.Context, ref Ref) ([]dice.Roll, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(a.dir, ref.Name))
	if err != nil {
		return nil, err
	}
	return decodeRolls(data)
}

// Write implements Area. The file is replaced atomically.
func (a *FileArea) Write(ctx context.Context, day string, t table.Name, rolls []dice.Roll) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}
	data, err := encodeRolls(rolls)
	if err != nil {
		return Ref{}, err
	}
	name := ShardFileName(day, t)
	tmpFile, err := os.CreateTemp(a.dir, "shard-*.tmp")
	if err != nil {
		return Ref{}, fmt.Errorf("failed to create temp shard: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return Ref{}, fmt.Errorf("failed to write shard: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Ref{}, fmt.Errorf("failed to close shard: %w", err)
	}
	path := filepath.Join(a.dir, name)
	if err := os.Rename(tmpPath, path); err != nil {
		return Ref{}, fmt.Errorf("failed to write shard: %w", err)
	}
	ref := Ref{Day: day, Table: t, Name: name, Size: int64(len(data))}
	if info, err := os.Stat(path); err == nil {
		ref.SavedAt = info.ModTime()
	}
	return ref, nil
}

// Remove implements Area. A missing file is not an error.
func (a *FileArea) Remove(ctx context.Context, ref Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(a.dir, ref.Name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Close implements Area.
func (a *FileArea) Close() error {
	return nil
}

var _ Area = (*FileArea)(nil)
