// Package backup genera copias de seguridad del libro de inventario en XLSX,
// las sube opcionalmente a almacenamiento de objetos y aplica la retención.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const (
	filePrefix      = "inventory_backup_"
	fileExt         = ".xlsx"
	fileTimeLayout  = "20060102_150405"
	infoFile        = "backup-info.json"
	remotePrefix    = "backups/"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Uploader destino remoto opcional de las copias.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// Options directorio local y retención en días.
type Options struct {
	Dir           string
	RetentionDays int
}

// BackupUseCase copia, consulta y limpieza de copias de seguridad.
type BackupUseCase struct {
	snapshots repository.SnapshotRepository
	opts      Options
	uploader  Uploader
	metrics   ports.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewBackupUseCase construye el caso de uso. uploader nil = solo copia local.
func NewBackupUseCase(snapshots repository.SnapshotRepository, opts Options, uploader Uploader, metrics ports.Metrics, log *logger.Logger) *BackupUseCase {
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = 30
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BackupUseCase{
		snapshots: snapshots,
		opts:      opts,
		uploader:  uploader,
		metrics:   metrics,
		log:       log.Component("backup"),
		now:       time.Now,
	}
}

// Run lee el libro completo, escribe inventory_backup_<ts>.xlsx y backup-info.json
// y, si hay almacenamiento remoto, sube la copia. Un fallo de subida no invalida la copia local.
func (uc *BackupUseCase) Run(ctx context.Context) (*dto.BackupInfo, error) {
	info, err := uc.run(ctx)
	if err != nil {
		uc.metrics.BackupFinished(false, 0)
		uc.log.Error().Err(err).Msg("copia de seguridad fallida")
		return nil, err
	}
	uc.metrics.BackupFinished(true, info.Size)
	uc.log.Info().
		Str("file", info.File).
		Int64("size", info.Size).
		Str("remote_key", info.RemoteKey).
		Msg("copia de seguridad creada")
	return info, nil
}

func (uc *BackupUseCase) run(ctx context.Context) (*dto.BackupInfo, error) {
	snap, err := uc.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	data, err := writeWorkbook(snap)
	if err != nil {
		return nil, fmt.Errorf("backup: generar xlsx: %w", err)
	}
	if err := os.MkdirAll(uc.opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: crear directorio: %w", err)
	}

	now := uc.now()
	name := filePrefix + now.Format(fileTimeLayout) + fileExt
	path := filepath.Join(uc.opts.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("backup: escribir %s: %w", name, err)
	}

	info := &dto.BackupInfo{
		LastBackup: now,
		File:       name,
		Size:       int64(len(data)),
		Products:   len(snap.Products),
		Movements:  len(snap.Movements),
	}
	if uc.uploader != nil {
		key := remotePrefix + name
		if err := uc.uploader.Upload(ctx, key, bytes.NewReader(data), info.Size, xlsxContentType); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo subir la copia; queda solo en disco")
		} else {
			info.RemoteKey = key
		}
	}

	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(uc.opts.Dir, infoFile), raw, 0o644); err != nil {
		return nil, fmt.Errorf("backup: escribir %s: %w", infoFile, err)
	}
	return info, nil
}

// Info datos de la última copia. Sin copias -> ErrNotFound.
func (uc *BackupUseCase) Info(_ context.Context) (*dto.BackupInfo, error) {
	raw, err := os.ReadFile(filepath.Join(uc.opts.Dir, infoFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no hay copias de seguridad", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("backup: leer %s: %w", infoFile, err)
	}
	var info dto.BackupInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("backup: %s corrupto: %w", infoFile, err)
	}
	return &info, nil
}

// Cleanup borra las copias más antiguas que la retención. La fecha sale del nombre del fichero
// o, si no se puede leer, de la fecha de modificación.
func (uc *BackupUseCase) Cleanup(_ context.Context) (*dto.BackupCleanupResponse, error) {
	resp := &dto.BackupCleanupResponse{Removed: []string{}}
	entries, err := os.ReadDir(uc.opts.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return resp, nil
		}
		return nil, fmt.Errorf("backup: leer directorio: %w", err)
	}
	cutoff := uc.now().AddDate(0, 0, -uc.opts.RetentionDays)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		created, ok := backupTime(name)
		if !ok {
			fi, err := e.Info()
			if err != nil {
				continue
			}
			created = fi.ModTime()
		}
		if !created.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(uc.opts.Dir, name)); err != nil {
			uc.log.Warn().Err(err).Str("file", name).Msg("no se pudo borrar la copia")
			continue
		}
		uc.log.Debug().Str("file", name).Time("created", created).Msg("copia caducada eliminada")
		resp.Removed = append(resp.Removed, name)
	}
	if len(resp.Removed) > 0 {
		uc.log.Info().Int("removed", len(resp.Removed)).Int("retention_days", uc.opts.RetentionDays).Msg("limpieza de copias")
	}
	return resp, nil
}

func backupTime(name string) (time.Time, bool) {
	ts := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
	t, err := time.ParseInLocation(fileTimeLayout, ts, time.Local)
	return t, err == nil
}
