package catalog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/heimdex/reeldate/internal/fsmeta"
	"github.com/heimdex/reeldate/internal/host"
	"github.com/heimdex/reeldate/internal/logging"
	"github.com/heimdex/reeldate/internal/media"
)

type CatalogService interface {
	Import(ctx context.Context, dir string) (ImportResult, error)
	ListClips(ctx context.Context) ([]ClipDetail, error)
	CountClips(ctx context.Context) (int, error)
	Bins(ctx context.Context) ([]BinEntry, error)
	ProjectSettings(ctx context.Context) (ProjectSettings, error)
	SetProjectSettings(ctx context.Context, s ProjectSettings) error
	StartRun(ctx context.Context, operation string, dryRun bool) (*Run, error)
	FinishRun(ctx context.Context, run *Run, stats any, runErr error) error
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	Track(ctx context.Context, operation string, dryRun bool, fn func(ctx context.Context) (any, error)) (*Run, error)
	EnsureAuthToken(ctx context.Context) (string, error)
}

// ClipDetail is a clip with its properties and bin path.
type ClipDetail struct {
	Clip
	BinPath    []string          `json:"bin_path"`
	Properties map[string]string `json:"properties"`
}

// ProjectSettings are the project-wide timeline settings.
type ProjectSettings struct {
	FrameRate float64 `json:"frame_rate"`
	DropFrame bool    `json:"drop_frame"`
}

type Service struct {
	repo   Repository
	host   *Host
	stater fsmeta.Stater
	logger *slog.Logger
}

func NewService(repo Repository, stater fsmeta.Stater, logger *slog.Logger) *Service {
	if stater == nil {
		stater = fsmeta.OS{}
	}
	return &Service{
		repo:   repo,
		host:   NewHost(repo),
		stater: stater,
		logger: logging.OrDiscard(logger),
	}
}

// Host returns the catalog as a host.Catalog.
func (s *Service) Host() *Host {
	return s.host
}

// Import registers every media file under dir in the root bin. Hidden
// directories are skipped and files already in the catalog are left alone.
func (s *Service) Import(ctx context.Context, dir string) (ImportResult, error) {
	var result ImportResult

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return result, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return result, fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("path is not a directory")
	}

	settings, err := s.ProjectSettings(ctx)
	if err != nil {
		return result, err
	}

	s.logger.Info("starting import", "path", logging.SanitizePath(absPath))

	var files []string
	err = filepath.WalkDir(absPath, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && p != absPath && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && media.IsMediaFile(d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		added, err := s.importFile(ctx, path, settings.FrameRate)
		switch {
		case err != nil:
			result.Failed++
			s.logger.Warn("failed to import file", "path", logging.SanitizePath(path), "error", err)
		case added:
			result.Added++
		default:
			result.Existing++
		}
	}

	s.logger.Info("import completed",
		"added", result.Added,
		"existing", result.Existing,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *Service) importFile(ctx context.Context, path string, frameRate float64) (bool, error) {
	existing, err := s.repo.GetClipByPath(ctx, path)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	clip := &Clip{
		ID:        NewID(),
		Name:      filepath.Base(path),
		BinID:     RootBinID,
		Path:      path,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateClip(ctx, clip); err != nil {
		return false, err
	}

	props := map[string]string{
		host.PropFilePath: path,
		host.PropFPS:      strconv.FormatFloat(frameRate, 'f', -1, 64),
		host.PropUsage:    "0",
	}
	if times, err := s.stater.FileTimes(path); err == nil && !times.Created.IsZero() {
		props[host.PropDateCreated] = times.Created.Local().Format(DateCreatedLayout)
	}
	for name, value := range props {
		if err := s.repo.SetProperty(ctx, clip.ID, name, value); err != nil {
			return false, fmt.Errorf("set %s: %w", name, err)
		}
	}
	return true, nil
}

// ListClips returns every clip in host order with its properties.
func (s *Service) ListClips(ctx context.Context) ([]ClipDetail, error) {
	clips, err := s.host.ListClips(ctx)
	if err != nil {
		return nil, err
	}

	paths := make(map[string][]string)
	out := make([]ClipDetail, 0, len(clips))
	for _, hc := range clips {
		c, err := s.repo.GetClip(ctx, hc.ID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		props, err := s.repo.ListProperties(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		binPath, ok := paths[c.BinID]
		if !ok {
			if binPath, err = s.host.BinPath(ctx, c.BinID); err != nil {
				return nil, err
			}
			paths[c.BinID] = binPath
		}
		out = append(out, ClipDetail{Clip: *c, BinPath: binPath, Properties: props})
	}
	return out, nil
}

func (s *Service) CountClips(ctx context.Context) (int, error) {
	return s.repo.CountClips(ctx)
}

func (s *Service) Bins(ctx context.Context) ([]BinEntry, error) {
	return s.host.Tree(ctx)
}

// ProjectSettings returns the stored settings, defaulting the frame rate to
// DefaultFrameRate.
func (s *Service) ProjectSettings(ctx context.Context) (ProjectSettings, error) {
	settings := ProjectSettings{FrameRate: DefaultFrameRate}

	rate, err := s.host.ProjectSetting(ctx, host.SettingFrameRate)
	if err != nil {
		return settings, err
	}
	if rate != "" {
		v, err := strconv.ParseFloat(rate, 64)
		if err != nil || v <= 0 {
			return settings, fmt.Errorf("stored frame rate %q is invalid", rate)
		}
		settings.FrameRate = v
	}

	drop, err := s.host.ProjectSetting(ctx, host.SettingDropFrame)
	if err != nil {
		return settings, err
	}
	settings.DropFrame = drop == "1"
	return settings, nil
}

func (s *Service) SetProjectSettings(ctx context.Context, settings ProjectSettings) error {
	if settings.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive")
	}
	if err := s.repo.SetConfig(ctx, projectKeyPrefix+host.SettingFrameRate,
		strconv.FormatFloat(settings.FrameRate, 'f', -1, 64)); err != nil {
		return err
	}
	drop := "0"
	if settings.DropFrame {
		drop = "1"
	}
	return s.repo.SetConfig(ctx, projectKeyPrefix+host.SettingDropFrame, drop)
}

// StartRun records a running operation.
func (s *Service) StartRun(ctx context.Context, operation string, dryRun bool) (*Run, error) {
	now := time.Now()
	run := &Run{
		ID:        NewID(),
		Operation: operation,
		Status:    RunStatusRunning,
		DryRun:    dryRun,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	logging.WithRun(s.logger, run.ID, operation).Info("run started", "dry_run", dryRun)
	return run, nil
}

// FinishRun stores stats as JSON and marks run completed, or failed when
// runErr is set.
func (s *Service) FinishRun(ctx context.Context, run *Run, stats any, runErr error) error {
	if stats != nil {
		data, err := json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("encode run stats: %w", err)
		}
		run.Stats = string(data)
	}
	run.Status = RunStatusCompleted
	if runErr != nil {
		run.Status = RunStatusFailed
		run.Error = runErr.Error()
	}
	run.UpdatedAt = time.Now()

	if err := s.repo.UpdateRun(ctx, run); err != nil {
		return err
	}
	logging.WithRun(s.logger, run.ID, run.Operation).Info("run finished", "status", run.Status)
	return nil
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	return s.repo.ListRuns(ctx, limit)
}

func (s *Service) GetRun(ctx context.Context, id string) (*Run, error) {
	return s.repo.GetRun(ctx, id)
}

// Track records fn as one run of operation. The value fn returns is stored
// as the run's stats and its error marks the run failed. The run is closed
// even when ctx was cancelled.
func (s *Service) Track(ctx context.Context, operation string, dryRun bool, fn func(ctx context.Context) (any, error)) (*Run, error) {
	run, err := s.StartRun(ctx, operation, dryRun)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	stats, runErr := fn(ctx)
	if err := s.FinishRun(context.WithoutCancel(ctx), run, stats, runErr); err != nil {
		logging.WithRun(s.logger, run.ID, operation).Error("failed to record run result", "error", err)
	}
	return run, runErr
}

// EnsureAuthToken returns the API token, generating one on first use.
func (s *Service) EnsureAuthToken(ctx context.Context) (string, error) {
	existing, err := s.repo.GetConfig(ctx, AuthTokenKey)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := s.repo.SetConfig(ctx, AuthTokenKey, token); err != nil {
		return "", err
	}
	return token, nil
}
