package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/heimdex/reeldate/internal/host"
)

// readOnlyProperties are maintained by Import and rejected by WriteProperty.
var readOnlyProperties = map[string]bool{
	host.PropFilePath:    true,
	host.PropUsage:       true,
	host.PropFPS:         true,
	host.PropDateCreated: true,
}

// Host exposes a Repository as a host.Catalog.
type Host struct {
	repo Repository
}

var (
	_ host.Catalog = (*Host)(nil)
	_ host.Project = (*Host)(nil)
)

func NewHost(repo Repository) *Host {
	return &Host{repo: repo}
}

// ListClips walks the bin tree depth first from the root: a bin's clips by
// name, then its child bins by name.
func (h *Host) ListClips(ctx context.Context) ([]host.Clip, error) {
	bins, err := h.repo.ListBins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	clips, err := h.repo.ListClips(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}

	children := make(map[string][]string)
	for _, b := range bins {
		if b.ParentID != "" {
			children[b.ParentID] = append(children[b.ParentID], b.ID)
		}
	}
	byBin := make(map[string][]host.Clip)
	for _, c := range clips {
		byBin[c.BinID] = append(byBin[c.BinID], toHostClip(c))
	}

	out := make([]host.Clip, 0, len(clips))
	var walk func(id string)
	walk = func(id string) {
		out = append(out, byBin[id]...)
		for _, child := range children[id] {
			walk(child)
		}
	}
	walk(RootBinID)
	return out, nil
}

func (h *Host) ReadProperty(ctx context.Context, clipID, name string) (string, error) {
	if err := h.requireClip(ctx, clipID); err != nil {
		return "", err
	}
	return h.repo.GetProperty(ctx, clipID, name)
}

func (h *Host) WriteProperty(ctx context.Context, clipID, name, value string) error {
	if readOnlyProperties[name] {
		return fmt.Errorf("%w: %s is read-only", host.ErrPropertyWriteFailed, name)
	}
	if err := h.requireClip(ctx, clipID); err != nil {
		return fmt.Errorf("%w: %w", host.ErrPropertyWriteFailed, err)
	}
	if err := h.repo.SetProperty(ctx, clipID, name, value); err != nil {
		return fmt.Errorf("%w: %s: %v", host.ErrPropertyWriteFailed, name, err)
	}
	return nil
}

func (h *Host) Move(ctx context.Context, clipIDs []string, binID string) error {
	bin, err := h.repo.GetBin(ctx, binID)
	if err != nil {
		return err
	}
	if bin == nil {
		return host.ErrBinNotFound
	}
	for _, id := range clipIDs {
		if err := h.requireClip(ctx, id); err != nil {
			return err
		}
	}
	return h.repo.MoveClips(ctx, clipIDs, binID)
}

func (h *Host) RootBin(ctx context.Context) (host.Bin, error) {
	b, err := h.repo.GetBin(ctx, RootBinID)
	if err != nil {
		return host.Bin{}, err
	}
	if b == nil {
		return host.Bin{}, host.ErrBinNotFound
	}
	return toHostBin(b), nil
}

func (h *Host) GetOrCreateBin(ctx context.Context, parentID, name string) (host.Bin, error) {
	parent, err := h.repo.GetBin(ctx, parentID)
	if err != nil {
		return host.Bin{}, err
	}
	if parent == nil {
		return host.Bin{}, host.ErrBinNotFound
	}

	existing, err := h.repo.FindBin(ctx, parentID, name)
	if err != nil {
		return host.Bin{}, err
	}
	if existing != nil {
		return toHostBin(existing), nil
	}

	b := &Bin{ID: NewID(), Name: name, ParentID: parentID, CreatedAt: time.Now()}
	if err := h.repo.CreateBin(ctx, b); err != nil {
		return host.Bin{}, fmt.Errorf("create bin %q: %w", name, err)
	}
	return toHostBin(b), nil
}

// ProjectSetting reads a project-wide setting; unset keys read as "".
func (h *Host) ProjectSetting(ctx context.Context, key string) (string, error) {
	return h.repo.GetConfig(ctx, projectKeyPrefix+key)
}

// BinPath returns the bin names from below the root down to binID.
func (h *Host) BinPath(ctx context.Context, binID string) ([]string, error) {
	var path []string
	for binID != "" && binID != RootBinID {
		b, err := h.repo.GetBin(ctx, binID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, host.ErrBinNotFound
		}
		path = append(path, b.Name)
		binID = b.ParentID
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Tree returns every bin with its full path, sorted by path.
func (h *Host) Tree(ctx context.Context) ([]BinEntry, error) {
	bins, err := h.repo.ListBins(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Bin, len(bins))
	for _, b := range bins {
		byID[b.ID] = b
	}

	entries := make([]BinEntry, 0, len(bins))
	for _, b := range bins {
		var names []string
		for cur := b; cur != nil && cur.ID != RootBinID; cur = byID[cur.ParentID] {
			names = append([]string{cur.Name}, names...)
		}
		entries = append(entries, BinEntry{Bin: *b, Path: names})
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.Join(entries[i].Path, "/") < strings.Join(entries[j].Path, "/")
	})
	return entries, nil
}

// BinEntry is a bin with the names leading to it from the root.
type BinEntry struct {
	Bin
	Path []string `json:"path"`
}

func (h *Host) requireClip(ctx context.Context, id string) error {
	c, err := h.repo.GetClip(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: %s", host.ErrClipNotFound, id)
	}
	return nil
}

func toHostClip(c *Clip) host.Clip {
	return host.Clip{ID: c.ID, Name: c.Name, BinID: c.BinID}
}

func toHostBin(b *Bin) host.Bin {
	return host.Bin{ID: b.ID, Name: b.Name, ParentID: b.ParentID}
}
