package transfer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"cloudpull/internal/models"
	"cloudpull/internal/remote"
)

type Mode string

const (
	ModeSingleFile      Mode = "single_file"
	ModeSingleFolder    Mode = "single_folder"
	ModeMultipleFiles   Mode = "multiple_files"
	ModeMultipleFolders Mode = "multiple_folders"
	ModeEverything      Mode = "everything"
)

// Selection is the already-validated input tuple: the chosen mode, the raw
// remote paths (full URLs, empty for Everything) and optional name filters.
type Selection struct {
	Mode    Mode
	Paths   []string
	Include []string
	Exclude []string
}

// PlanningError is fatal: the batch never starts when planning fails.
type PlanningError struct {
	Path   string
	Reason string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed: %s: %s", e.Path, e.Reason)
}

// Planner expands a selection into a BatchPlan. Recursive expansion of
// folders is NOT done here; a folder becomes a single folder-kind task and
// the transfer mechanism walks it.
type Planner struct {
	Lister          remote.Lister
	Root            string // bucket URL, e.g. gs://my-bucket
	DestinationRoot string
	Threads         int
}

func (p *Planner) Plan(ctx context.Context, sel Selection) (models.BatchPlan, error) {
	plan := models.BatchPlan{
		BatchID:         uuid.NewString(),
		DestinationRoot: p.DestinationRoot,
		Tasks:           []models.TransferTask{},
	}

	switch sel.Mode {
	case ModeEverything:
		entries, err := p.Lister.List(ctx, p.Root)
		if err != nil {
			return plan, fmt.Errorf("listing %s: %w", p.Root, err)
		}
		for _, entry := range entries {
			match, err := matchFilters(entry.Name, sel.Include, sel.Exclude)
			if err != nil {
				return plan, err
			}
			if !match {
				continue
			}
			task, err := p.newTask(entry.Path, entry.Kind)
			if err != nil {
				return plan, err
			}
			plan.Tasks = append(plan.Tasks, task)
		}

	case ModeSingleFile, ModeSingleFolder:
		if len(sel.Paths) != 1 {
			return plan, &PlanningError{Path: p.Root, Reason: fmt.Sprintf("mode %s needs exactly one path, got %d", sel.Mode, len(sel.Paths))}
		}
		fallthrough

	case ModeMultipleFiles, ModeMultipleFolders:
		kind := sel.Mode.kind()
		listings := make(map[string][]remote.Entry)
		for _, path := range sel.Paths {
			if sel.Mode == ModeMultipleFiles || sel.Mode == ModeMultipleFolders {
				match, err := matchFilters(remote.BaseName(path), sel.Include, sel.Exclude)
				if err != nil {
					return plan, err
				}
				if !match {
					continue
				}
			}
			if err := p.verify(ctx, listings, path, kind); err != nil {
				return plan, err
			}
			task, err := p.newTask(path, kind)
			if err != nil {
				return plan, err
			}
			plan.Tasks = append(plan.Tasks, task)
		}

	default:
		return plan, &PlanningError{Path: p.Root, Reason: fmt.Sprintf("unknown selection mode %q", sel.Mode)}
	}

	if err := checkDestinations(plan.Tasks); err != nil {
		return plan, err
	}
	return plan, nil
}

func (m Mode) kind() remote.Kind {
	if m == ModeSingleFolder || m == ModeMultipleFolders {
		return remote.KindFolder
	}
	return remote.KindFile
}

func (p *Planner) newTask(source string, kind remote.Kind) (models.TransferTask, error) {
	u, err := remote.ParseURL(source)
	if err != nil {
		return models.TransferTask{}, &PlanningError{Path: source, Reason: err.Error()}
	}
	rel := strings.TrimSuffix(u.Path, "/")
	if rel == "" {
		return models.TransferTask{}, &PlanningError{Path: source, Reason: "refers to the bucket root, not an object"}
	}
	return models.TransferTask{
		SourcePath:      source,
		DestinationPath: filepath.Join(p.DestinationRoot, filepath.FromSlash(rel)),
		Kind:            kind,
		ThreadHint:      p.Threads,
	}, nil
}

// verify checks a selected path against the listing of its parent, caching
// listings so multi-selections from one folder cost one round trip.
func (p *Planner) verify(ctx context.Context, listings map[string][]remote.Entry, path string, kind remote.Kind) error {
	parent := parentOf(path)
	entries, ok := listings[parent]
	if !ok {
		var err error
		entries, err = p.Lister.List(ctx, parent)
		if err != nil {
			return fmt.Errorf("listing %s: %w", parent, err)
		}
		listings[parent] = entries
	}

	want := strings.TrimSuffix(path, "/")
	for _, entry := range entries {
		if strings.TrimSuffix(entry.Path, "/") != want {
			continue
		}
		if entry.Kind != kind {
			return &PlanningError{Path: path, Reason: fmt.Sprintf("is a %s, selection expects a %s", entry.Kind, kind)}
		}
		return nil
	}
	return &PlanningError{Path: path, Reason: "not found in remote listing"}
}

// parentOf returns the containing folder of a remote path, falling back to
// the bucket root for top-level entries.
func parentOf(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	u, err := remote.ParseURL(trimmed)
	if err != nil || u.Path == "" {
		return trimmed
	}
	if i := strings.LastIndex(u.Path, "/"); i >= 0 {
		u.Path = u.Path[:i]
	} else {
		u.Path = ""
	}
	return u.String()
}

func matchFilters(name string, include, exclude []string) (bool, error) {
	for _, pattern := range exclude {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, &PlanningError{Path: pattern, Reason: "invalid exclude pattern"}
		}
		if ok {
			return false, nil
		}
	}
	if len(include) == 0 {
		return true, nil
	}
	for _, pattern := range include {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, &PlanningError{Path: pattern, Reason: "invalid include pattern"}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// checkDestinations enforces unique destinations per task. Uniqueness is
// case-insensitive: macOS and Windows default filesystems would otherwise
// silently merge gs://b/Readme and gs://b/README into one local file.
func checkDestinations(tasks []models.TransferTask) error {
	seen := make(map[string]string, len(tasks))
	for _, task := range tasks {
		key := strings.ToLower(task.DestinationPath)
		if prev, ok := seen[key]; ok {
			return &PlanningError{Path: task.SourcePath, Reason: "destination collides with " + prev}
		}
		seen[key] = task.SourcePath
	}
	return nil
}
