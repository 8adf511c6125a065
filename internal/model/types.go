// Package model defines shared data structures.
package model

// Storage backends for shards.
const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

// Settings are the resolved runtime settings.
type Settings struct {
	DataDir    string
	Backend    string
	Table      string
	Top        int
	Estimators int
	Seed       int64
	SimCount   int
	Verbose    bool
}

// TableExport is one table in a history export.
type TableExport struct {
	Table string   `json:"table" yaml:"table"`
	Kind  string   `json:"kind" yaml:"kind"`
	Rows  int      `json:"rows" yaml:"rows"`
	Rolls [][3]int `json:"rolls" yaml:"rolls,flow"`
}

// Export is a full history export.
type Export struct {
	ExportedAt string        `json:"exported_at" yaml:"exported_at"`
	Tables     []TableExport `json:"tables" yaml:"tables"`
}
