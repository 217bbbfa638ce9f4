package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"mydienst/internal/config"

	"github.com/rs/zerolog"
)

// BackupService writes periodic online snapshots of the SQLite file.
// VACUUM INTO gives a consistent copy without blocking writers for
// long; a plain file copy is the fallback.
type BackupService struct {
	db     *DB
	dbPath string
	cfg    config.BackupConfig
	logger zerolog.Logger
}

func NewBackupService(db *DB, dbPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		db:     db,
		dbPath: dbPath,
		cfg:    cfg,
		logger: logger.With().Str("component", "backup").Logger(),
	}
}

// Start runs the backup loop until ctx is done. The schedule is a
// duration string ("24h", "30m"); blank means daily.
func (s *BackupService) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info().Msg("backups disabled")
		return
	}

	interval := 24 * time.Hour
	if s.cfg.Schedule != "" {
		if d, err := time.ParseDuration(s.cfg.Schedule); err == nil {
			interval = d
		} else {
			s.logger.Warn().Err(err).Str("schedule", s.cfg.Schedule).Msg("bad backup schedule, using 24h")
		}
	}

	s.logger.Info().Dur("interval", interval).Str("path", s.cfg.StoragePath).Msg("backup loop started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Run(ctx); err != nil {
				s.logger.Error().Err(err).Msg("backup failed")
			}
			s.cleanup()
		}
	}
}

// Run performs one backup.
func (s *BackupService) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.StoragePath, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("backup_%s.db", time.Now().Format("20060102_150405"))
	target := filepath.Join(s.cfg.StoragePath, name)

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", target)); err != nil {
		s.logger.Warn().Err(err).Msg("VACUUM INTO failed, falling back to file copy")
		return s.copyFile(target)
	}

	s.logger.Info().Str("target", target).Msg("backup written")
	return nil
}

func (s *BackupService) copyFile(target string) error {
	src, err := os.Open(s.dbPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func (s *BackupService) cleanup() {
	if s.cfg.RetentionDays <= 0 {
		return
	}

	entries, err := os.ReadDir(s.cfg.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("read backup directory")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", entry.Name()).Msg("removing expired backup")
			os.Remove(filepath.Join(s.cfg.StoragePath, entry.Name()))
		}
	}
}
