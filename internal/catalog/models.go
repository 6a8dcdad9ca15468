package catalog

import (
	"time"

	"github.com/google/uuid"
)

// RootBinID is the id of the bin seeded by the initial migration.
const RootBinID = "root"

// DefaultFrameRate is stamped on imported clips when the project has no
// frame rate setting.
const DefaultFrameRate = 24.0

// DateCreatedLayout formats the Date Created property.
const DateCreatedLayout = "2006-01-02 15:04:05"

type Bin struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Clip struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BinID     string    `json:"bin_id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RunOpStamp    = "stamp"
	RunOpRestore  = "restore"
	RunOpOrganize = "organize"
	RunOpAnalyze  = "analyze"
	RunOpImport   = "import"

	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run records one batch operation and its outcome.
type Run struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"`
	DryRun    bool      `json:"dry_run"`
	Stats     string    `json:"stats,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImportResult tallies an Import.
type ImportResult struct {
	Added    int `json:"added"`
	Existing int `json:"existing"`
	Failed   int `json:"failed"`
}

func NewID() string {
	return uuid.NewString()
}

// AuthTokenKey is the config key holding the API bearer token.
const AuthTokenKey = "auth_token"

// Project setting keys live in the config table under this prefix.
const projectKeyPrefix = "project."
