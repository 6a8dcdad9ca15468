// Package host describes the asset catalog the date tools operate on: bins
// of clips whose string properties are read and written by name.
package host

import (
	"context"
	"errors"
	"strings"
)

// Clip property names.
const (
	PropStartTC     = "Start TC"
	PropSlateTC     = "Slate TC"
	PropScene       = "Scene"
	PropUsage       = "Usage"
	PropFilePath    = "File Path"
	PropFPS         = "FPS"
	PropDateCreated = "Date Created"
)

// Project setting keys.
const (
	SettingFrameRate = "timelineFrameRate"
	SettingDropFrame = "timelineDropFrameTimecode"
)

var (
	ErrPropertyWriteFailed = errors.New("property write failed")
	ErrClipNotFound        = errors.New("clip not found")
	ErrBinNotFound         = errors.New("bin not found")
)

var (
	emptyTimecodes = []string{"00:00:00:00", "00:00:00;00"}
	emptyScenes    = []string{"0000-00-00 00:00:00"}
)

type Clip struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	BinID string `json:"bin_id"`
}

type Bin struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// Catalog is the host collaborator. ListClips walks every bin under the
// root. WriteProperty reports a rejected write as ErrPropertyWriteFailed.
type Catalog interface {
	ListClips(ctx context.Context) ([]Clip, error)
	ReadProperty(ctx context.Context, clipID, name string) (string, error)
	WriteProperty(ctx context.Context, clipID, name, value string) error
	Move(ctx context.Context, clipIDs []string, binID string) error
	RootBin(ctx context.Context) (Bin, error)
	GetOrCreateBin(ctx context.Context, parentID, name string) (Bin, error)
}

// Project is implemented by catalogs that expose project-wide settings.
type Project interface {
	ProjectSetting(ctx context.Context, key string) (string, error)
}

// IsEmptyTimecode reports whether v is blank or a zero timecode.
func IsEmptyTimecode(v string) bool {
	return isEmpty(v, emptyTimecodes)
}

// IsEmptyScene reports whether v is blank or a zeroed date.
func IsEmptyScene(v string) bool {
	return isEmpty(v, emptyScenes)
}

func isEmpty(v string, empties []string) bool {
	if strings.TrimSpace(v) == "" {
		return true
	}
	for _, e := range empties {
		if v == e {
			return true
		}
	}
	return false
}
