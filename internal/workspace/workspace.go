// Package workspace groups ingested datasets under a named directory with a
// workspace.json manifest.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/tickerloom-cli/internal/dashboard"
	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/KaramelBytes/tickerloom-cli/internal/source"
	"github.com/KaramelBytes/tickerloom-cli/internal/utils"
)

// FileName is the manifest stored in every workspace directory.
const FileName = "workspace.json"

// Workspace is a set of datasets persisted on disk.
type Workspace struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Datasets    map[string]*Dataset `json:"datasets"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	rootDir string
}

// New constructs an in-memory workspace. Call Save() to persist.
func New(name, description, rootDir string) *Workspace {
	return &Workspace{
		Name:        name,
		Description: description,
		Datasets:    make(map[string]*Dataset),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// Load reads workspace.json from dir.
func Load(dir string) (*Workspace, error) {
	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workspace not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	var w Workspace
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}
	w.rootDir = dir
	return &w, nil
}

// RootDir returns the on-disk workspace directory.
func (w *Workspace) RootDir() string { return w.rootDir }

// Save writes workspace.json atomically.
func (w *Workspace) Save() error {
	if w.rootDir == "" {
		return errors.New("workspace root directory not set")
	}
	if err := utils.EnsureDir(w.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	w.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(w)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(w.rootDir, FileName), data)
}

// AddDataset ingests the file at path and records it under a new id.
func (w *Workspace) AddDataset(path, description string, sopt source.Options, iopt ingest.Options) (*Dataset, error) {
	text, err := source.LoadFile(path, sopt)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	res, err := ingest.Parse(text, iopt)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	d := &Dataset{
		ID:            uuid.NewString(),
		Path:          path,
		Name:          filepath.Base(path),
		Description:   description,
		Points:        res.Series.Len(),
		Dropped:       res.Series.Dropped,
		Coerced:       res.Series.Coerced,
		DateRange:     res.Stats.DateRange,
		CurrentPrice:  dashboard.Number(res.Stats.CurrentPrice),
		Change:        dashboard.Number(res.Stats.Change),
		ChangePercent: dashboard.Number(res.Stats.ChangePercent),
		Preview:       res.Preview,
		AddedAt:       info.ModTime(),
	}
	if w.Datasets == nil {
		w.Datasets = make(map[string]*Dataset)
	}
	w.Datasets[d.ID] = d
	w.UpdatedAt = time.Now()
	return d, nil
}

// Sorted returns datasets ordered by name, then id.
func (w *Workspace) Sorted() []*Dataset {
	out := make([]*Dataset, 0, len(w.Datasets))
	for _, d := range w.Datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Summary renders one block per dataset.
func (w *Workspace) Summary() (string, error) {
	if w == nil {
		return "", errors.New("workspace is nil")
	}
	if len(w.Datasets) == 0 {
		return "", errors.New("no datasets added to workspace")
	}
	var sb strings.Builder
	sb.WriteString("[WORKSPACE]\n")
	sb.WriteString(w.Name)
	if w.Description != "" {
		sb.WriteString(" (" + w.Description + ")")
	}
	sb.WriteString("\n\n[DATASETS]\n")
	for _, d := range w.Sorted() {
		sb.WriteString("--- Dataset: ")
		sb.WriteString(d.Name)
		if d.Description != "" {
			sb.WriteString(" (" + d.Description + ")")
		}
		sb.WriteString(" ---\n")
		fmt.Fprintf(&sb, "range: %s, points: %d", d.DateRange, d.Points)
		if len(d.Preview.Symbols) > 0 {
			fmt.Fprintf(&sb, ", symbols: %s", strings.Join(d.Preview.Symbols, ", "))
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "current: %.2f, change: %s\n\n", float64(d.CurrentPrice), formatPct(float64(d.ChangePercent)))
	}
	return sb.String(), nil
}

func formatPct(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", f)
}
