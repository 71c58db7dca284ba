package service

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"forex_bot/internal/helper"
	"forex_bot/pkg/logger"
)

// maybeBackup: после удачной записи, не чаще раза в BackupInterval,
// снимаем полную копию канонического файла. Вызывается под writeMu.
func (s *Store) maybeBackup() {
	if s.cfg.BackupDir == "" {
		return
	}
	now := time.Now()
	if now.Sub(s.lastBackup) <= s.cfg.BackupInterval {
		return
	}
	s.lastBackup = now

	name := "state_" + helper.BackupTimestamp(now) + ".json"
	dst := filepath.Join(s.cfg.BackupDir, name)
	if err := copyFile(s.cfg.File, dst); err != nil {
		logger.Error("state backup failed: %v", err)
		return
	}
	s.trimBackups()
}

// trimBackups ретирует самые старые копии сверх MaxBackups.
// Имена содержат сортируемый таймстемп, так что порядок — по имени.
func (s *Store) trimBackups() {
	entries, err := os.ReadDir(s.cfg.BackupDir)
	if err != nil {
		logger.Error("failed to list backups: %v", err)
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for len(names) > s.cfg.MaxBackups {
		old := names[0]
		names = names[1:]
		if err := os.Remove(filepath.Join(s.cfg.BackupDir, old)); err != nil {
			logger.Error("failed to delete old backup %s: %v", old, err)
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
