package host

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// Memory is an in-process Catalog. The zero value is not usable; call
// NewMemory.
type Memory struct {
	mu       sync.Mutex
	bins     map[string]Bin
	clips    map[string]Clip
	props    map[string]map[string]string
	settings map[string]string
	order    []string
	nextID   int

	// FailWrites names properties whose writes are rejected.
	FailWrites map[string]bool
	// FailReads names properties whose reads return an error.
	FailReads map[string]bool
}

const memoryRootID = "root"

func NewMemory() *Memory {
	return &Memory{
		bins:       map[string]Bin{memoryRootID: {ID: memoryRootID, Name: "Master"}},
		clips:      map[string]Clip{},
		props:      map[string]map[string]string{},
		settings:   map[string]string{},
		FailWrites: map[string]bool{},
		FailReads:  map[string]bool{},
	}
}

// AddClip registers a clip in the root bin with the given properties.
func (m *Memory) AddClip(name string, props map[string]string) Clip {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	c := Clip{ID: "clip-" + strconv.Itoa(m.nextID), Name: name, BinID: memoryRootID}
	m.clips[c.ID] = c
	m.order = append(m.order, c.ID)
	p := make(map[string]string, len(props))
	for k, v := range props {
		p[k] = v
	}
	m.props[c.ID] = p
	return c
}

// SetSetting stores a project setting.
func (m *Memory) SetSetting(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
}

// Property returns a stored property without failure injection.
func (m *Memory) Property(clipID, name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.props[clipID][name]
}

// Clip returns the current state of a clip.
func (m *Memory) Clip(id string) (Clip, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clips[id]
	return c, ok
}

// BinPath returns the bin names from the root down to id.
func (m *Memory) BinPath(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var path []string
	for id != "" && id != memoryRootID {
		b, ok := m.bins[id]
		if !ok {
			return nil
		}
		path = append([]string{b.Name}, path...)
		id = b.ParentID
	}
	return path
}

func (m *Memory) ListClips(ctx context.Context) ([]Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Clip, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.clips[id])
	}
	return out, nil
}

func (m *Memory) ReadProperty(ctx context.Context, clipID, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.props[clipID]
	if !ok {
		return "", ErrClipNotFound
	}
	if m.FailReads[name] {
		return "", fmt.Errorf("read %q: unavailable", name)
	}
	return p[name], nil
}

func (m *Memory) WriteProperty(ctx context.Context, clipID, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.props[clipID]
	if !ok {
		return ErrClipNotFound
	}
	if m.FailWrites[name] {
		return fmt.Errorf("%w: %s", ErrPropertyWriteFailed, name)
	}
	p[name] = value
	return nil
}

func (m *Memory) Move(ctx context.Context, clipIDs []string, binID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bins[binID]; !ok {
		return ErrBinNotFound
	}
	for _, id := range clipIDs {
		c, ok := m.clips[id]
		if !ok {
			return ErrClipNotFound
		}
		c.BinID = binID
		m.clips[id] = c
	}
	return nil
}

func (m *Memory) RootBin(ctx context.Context) (Bin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bins[memoryRootID], nil
}

func (m *Memory) GetOrCreateBin(ctx context.Context, parentID, name string) (Bin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bins[parentID]; !ok {
		return Bin{}, ErrBinNotFound
	}
	for _, b := range m.sortedBins() {
		if b.ParentID == parentID && b.Name == name {
			return b, nil
		}
	}
	m.nextID++
	b := Bin{ID: "bin-" + strconv.Itoa(m.nextID), Name: name, ParentID: parentID}
	m.bins[b.ID] = b
	return b, nil
}

func (m *Memory) ProjectSetting(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings[key], nil
}

func (m *Memory) sortedBins() []Bin {
	out := make([]Bin, 0, len(m.bins))
	for _, b := range m.bins {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
