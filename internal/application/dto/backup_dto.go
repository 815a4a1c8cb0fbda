package dto

import "time"

// BackupInfo contenido de backup-info.json y respuesta de la última copia.
type BackupInfo struct {
	LastBackup time.Time `json:"last_backup"`
	File       string    `json:"file"`
	Size       int64     `json:"size"`
	Products   int       `json:"products"`
	Movements  int       `json:"movements"`
	RemoteKey  string    `json:"remote_key,omitempty"`
}

// BackupCleanupResponse copias borradas por antigüedad.
type BackupCleanupResponse struct {
	Removed []string `json:"removed"`
}
