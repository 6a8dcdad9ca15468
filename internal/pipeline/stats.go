package pipeline

import (
	"fmt"
	"strings"

	"github.com/heimdex/reeldate/internal/resolve"
)

// SourceCounts tallies updates by the source their date came from.
type SourceCounts struct {
	Filename     int `json:"filename"`
	Creation     int `json:"creation"`
	Modification int `json:"modification"`
}

func (c *SourceCounts) add(s resolve.Source) {
	switch s {
	case resolve.SourceFilename:
		c.Filename++
	case resolve.SourceCreation:
		c.Creation++
	case resolve.SourceModification:
		c.Modification++
	}
}

// Change is one property write, or one that a dry run would have made.
type Change struct {
	ClipID   string `json:"clip_id"`
	Name     string `json:"name"`
	Property string `json:"property"`
	Old      string `json:"old,omitempty"`
	New      string `json:"new"`
	Source   string `json:"source,omitempty"`
}

// Stats counts the outcome of a Stamp or Restore run.
type Stats struct {
	DryRun       bool `json:"dry_run"`
	TotalScanned int  `json:"total_scanned"`
	FilteredOut  int  `json:"filtered_out"`

	SkippedInTimeline  int `json:"skipped_in_timeline"`
	ErrorsGettingUsage int `json:"errors_getting_usage"`
	FailedNoPath       int `json:"failed_no_path"`
	FailedOther        int `json:"failed_other"`
	FailedFrameRate    int `json:"failed_frame_rate"`

	FilenameAttempts     int `json:"filename_attempts"`
	FilenameSuccess      int `json:"filename_success"`
	FilenameFailed       int `json:"filename_failed"`
	CreationAttempts     int `json:"creation_attempts"`
	CreationSuccess      int `json:"creation_success"`
	ModificationAttempts int `json:"modification_attempts"`
	ModificationSuccess  int `json:"modification_success"`
	EarliestResolved     int `json:"earliest_resolved"`

	StartTCUpdated    int          `json:"start_tc_updated"`
	StartTCFrom       SourceCounts `json:"start_tc_from"`
	SkippedStartTCSet int          `json:"skipped_start_tc_set"`
	FailedSetStartTC  int          `json:"failed_set_start_tc"`
	TCBackupSuccess   int          `json:"tc_backup_success"`
	TCBackupFailed    int          `json:"tc_backup_failed"`

	SceneUpdated    int          `json:"scene_updated"`
	SceneFrom       SourceCounts `json:"scene_from"`
	SkippedSceneSet int          `json:"skipped_scene_set"`
	FailedSetScene  int          `json:"failed_set_scene"`

	TCRestored               int `json:"tc_restored"`
	RestoreSkippedNoSlateTC  int `json:"restore_skipped_no_slate_tc"`
	RestoreSkippedTCNotEmpty int `json:"restore_skipped_tc_not_empty"`
	FailedTCRestore          int `json:"failed_tc_restore"`

	Changes []Change `json:"changes,omitempty"`
}

// Updated is the number of property writes made (or planned, in a dry run).
func (s *Stats) Updated() int {
	return s.StartTCUpdated + s.SceneUpdated + s.TCRestored
}

// StampSummary renders the stamp counters as the lines a run log ends with.
func (s *Stats) StampSummary() string {
	lines := []string{fmt.Sprintf("Total clips scanned: %d", s.TotalScanned)}
	if s.StartTCUpdated > 0 {
		lines = append(lines, fmt.Sprintf("Start TC updated: %d (%s)", s.StartTCUpdated, s.StartTCFrom))
	}
	if s.SceneUpdated > 0 {
		lines = append(lines, fmt.Sprintf("Scene updated: %d (%s)", s.SceneUpdated, s.SceneFrom))
	}
	if s.TCBackupSuccess+s.TCBackupFailed > 0 {
		lines = append(lines, fmt.Sprintf("Start TC backups to 'Slate TC': %d (Failed: %d)", s.TCBackupSuccess, s.TCBackupFailed))
	}
	if s.FilenameAttempts > 0 {
		lines = append(lines, fmt.Sprintf("Filename parsing: %d attempts, %d succeeded, %d used fallback.",
			s.FilenameAttempts, s.FilenameSuccess, s.FilenameFailed))
	}
	lines = append(lines,
		fmt.Sprintf("Skipped (in timeline): %d", s.SkippedInTimeline),
		fmt.Sprintf("Skipped (Start TC already set): %d", s.SkippedStartTCSet),
		fmt.Sprintf("Skipped (Scene already set): %d", s.SkippedSceneSet),
		fmt.Sprintf("Failed (no path): %d", s.FailedNoPath),
		fmt.Sprintf("Failed (frame rate): %d", s.FailedFrameRate),
		fmt.Sprintf("Failed (set Start TC): %d", s.FailedSetStartTC),
		fmt.Sprintf("Failed (set Scene): %d", s.FailedSetScene),
		fmt.Sprintf("Failed (other errors): %d", s.FailedOther),
	)
	return s.finish(lines)
}

// RestoreSummary renders the restore counters.
func (s *Stats) RestoreSummary() string {
	lines := []string{
		fmt.Sprintf("Total clips scanned: %d", s.TotalScanned),
		fmt.Sprintf("Start TC restored from 'Slate TC': %d", s.TCRestored),
	}
	if s.RestoreSkippedNoSlateTC > 0 {
		lines = append(lines, fmt.Sprintf("  Skipped (no/invalid Slate TC): %d", s.RestoreSkippedNoSlateTC))
	}
	if s.RestoreSkippedTCNotEmpty > 0 {
		lines = append(lines, fmt.Sprintf("  Skipped (Start TC not empty): %d", s.RestoreSkippedTCNotEmpty))
	}
	lines = append(lines,
		fmt.Sprintf("Skipped (in timeline): %d", s.SkippedInTimeline),
		fmt.Sprintf("Failed (restore TC): %d", s.FailedTCRestore),
	)
	return s.finish(lines)
}

func (s *Stats) finish(lines []string) string {
	if s.ErrorsGettingUsage > 0 {
		lines = append(lines, fmt.Sprintf("Timeline usage check issues: %d", s.ErrorsGettingUsage))
	}
	if s.DryRun {
		lines = append(lines, "Dry run: no properties were written.")
	}
	return strings.Join(lines, "\n")
}

func (c SourceCounts) String() string {
	return fmt.Sprintf("File: %d, Create: %d, Modify: %d", c.Filename, c.Creation, c.Modification)
}

// BinMove records clips filed into one bin.
type BinMove struct {
	Path  []string `json:"path"`
	Clips int      `json:"clips"`
}

// OrganizeStats counts the outcome of an Organize run.
type OrganizeStats struct {
	DryRun       bool `json:"dry_run"`
	TotalScanned int  `json:"total_scanned"`
	FilteredOut  int  `json:"filtered_out"`

	Videos   int `json:"videos"`
	Pictures int `json:"pictures"`
	Music    int `json:"music"`
	Other    int `json:"other"`

	NoPath     int `json:"no_path"`
	NoDate     int `json:"no_date"`
	MoveFailed int `json:"move_failed"`

	Bins []BinMove `json:"bins,omitempty"`
}

// Summary renders the organize counters.
func (s *OrganizeStats) Summary() string {
	lines := []string{
		fmt.Sprintf("Total clips scanned: %d", s.TotalScanned),
		fmt.Sprintf("Videos filed by day: %d", s.Videos),
		fmt.Sprintf("Pictures: %d", s.Pictures),
		fmt.Sprintf("Music: %d", s.Music),
		fmt.Sprintf("Left in place: %d", s.Other),
	}
	for _, b := range s.Bins {
		lines = append(lines, fmt.Sprintf("  %s: %d", strings.Join(b.Path, "/"), b.Clips))
	}
	lines = append(lines,
		fmt.Sprintf("Skipped (no path): %d", s.NoPath),
		fmt.Sprintf("Skipped (no date): %d", s.NoDate),
		fmt.Sprintf("Failed (move): %d", s.MoveFailed),
	)
	if s.DryRun {
		lines = append(lines, "Dry run: no clips were moved.")
	}
	return strings.Join(lines, "\n")
}
