// Package media holds the per-file record the date pipeline works on.
package media

import (
	"path/filepath"
	"strings"
	"time"
)

// Record is one clip as seen by the date pipeline. Created and Modified are
// raw filesystem instants; a zero value means the source is unavailable.
type Record struct {
	ClipID   string
	Name     string
	Path     string
	Created  time.Time
	Modified time.Time
}

// FileName is the name the filename parser should look at: the base of the
// file path when known, the clip name otherwise.
func (r Record) FileName() string {
	if r.Path != "" {
		return filepath.Base(r.Path)
	}
	return r.Name
}

// HasCreated reports whether a creation instant is available.
func (r Record) HasCreated() bool { return !r.Created.IsZero() }

// HasModified reports whether a modification instant is available.
func (r Record) HasModified() bool { return !r.Modified.IsZero() }

// Kind classifies a media file by extension.
type Kind int

const (
	KindOther Kind = iota
	KindVideo
	KindImage
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	default:
		return "other"
	}
}

// VideoExtensions includes the sidecar and companion formats that travel
// with camera footage (DJI .lrf/.srt, lavalier .wav) so they bin together.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mxf":  true,
	".mts":  true,
	".mkv":  true,
	".webm": true,
	".wav":  true,
	".lrf":  true,
	".srt":  true,
}

var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".gif":  true,
}

var AudioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
}

// KindOf classifies filename by its extension, case-insensitively.
func KindOf(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == "":
		return KindOther
	case VideoExtensions[ext]:
		return KindVideo
	case ImageExtensions[ext]:
		return KindImage
	case AudioExtensions[ext]:
		return KindAudio
	default:
		return KindOther
	}
}

// IsMediaFile reports whether filename is any kind the catalog tracks.
func IsMediaFile(filename string) bool {
	return KindOf(filename) != KindOther
}
