package store

// Invocation statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Invocation is one recorded schematic run.
type Invocation struct {
	ID         string         `json:"id"`
	Seq        int64          `json:"seq"`
	Collection string         `json:"collection"`
	Schematic  string         `json:"schematic"`
	Options    map[string]any `json:"options"`
	Strategy   string         `json:"strategy"`
	Debug      bool           `json:"debug"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	// Files lists the paths of the resulting tree, sorted. Empty for
	// failed runs.
	Files []string `json:"files"`
}
