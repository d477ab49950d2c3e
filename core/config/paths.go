package config

import (
	"os"
	"path/filepath"
)

const AppName = "shopledger"

func AppDir() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, AppName)
}

func LedgerFile(dataDir string) string {
	return filepath.Join(dataDir, "blockchain.json")
}

func BackupDir(dataDir string) string {
	return filepath.Join(dataDir, "chain_backup")
}

func CatalogFile(dataDir string) string {
	return filepath.Join(dataDir, "backups.db")
}
