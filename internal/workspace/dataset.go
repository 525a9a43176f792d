package workspace

import (
	"time"

	"github.com/KaramelBytes/tickerloom-cli/internal/dashboard"
	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
)

// Dataset holds metadata, stats and the preview of one ingested file.
type Dataset struct {
	ID            string           `json:"id"`
	Path          string           `json:"path"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Points        int              `json:"points"`
	Dropped       int              `json:"dropped"`
	Coerced       int              `json:"coerced"`
	DateRange     string           `json:"date_range"`
	CurrentPrice  dashboard.Number `json:"current_price"`
	Change        dashboard.Number `json:"change"`
	ChangePercent dashboard.Number `json:"change_percent"`
	Preview       ingest.Preview   `json:"preview"`
	AddedAt       time.Time        `json:"added_at"`
}
