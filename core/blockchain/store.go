package blockchain

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shu8h0-null/shopledger/core/logger"
)

const (
	DefaultRetention = 20

	backupPrefix = "ledger_backup_"
	backupSuffix = ".json"
	backupLayout = "20060102_150405.000000000"

	// Backups written by the original Python cleaner.
	legacyBackupPrefix = "blockchain_backup_"
	legacyBackupLayout = "20060102_150405"
)

type StoreOptions struct {
	LedgerPath  string
	BackupDir   string
	CatalogPath string
	Retention   int
}

type LoadStatus int

const (
	LoadOK LoadStatus = iota
	LoadNotFound
	LoadCorrupt
	LoadUnreadable
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadNotFound:
		return "not-found"
	case LoadCorrupt:
		return "corrupt"
	case LoadUnreadable:
		return "unreadable"
	}
	return "unknown"
}

// LoadResult is what Store.Load found on disk. Blocks is set for LoadOK,
// Corruption for LoadCorrupt and ReadErr for LoadUnreadable.
type LoadResult struct {
	Status     LoadStatus
	Blocks     []Block
	Corruption *CorruptionError
	ReadErr    *PersistenceError
}

func (r LoadResult) Err() error {
	switch r.Status {
	case LoadNotFound:
		return ErrNotFound
	case LoadCorrupt:
		return r.Corruption
	case LoadUnreadable:
		return r.ReadErr
	}
	return nil
}

// Store persists the chain to a primary JSON file and keeps timestamped
// backups next to it. Every write goes to a temp file first and is renamed
// into place, so readers see either the old or the new content.
type Store struct {
	ledgerPath string
	backupDir  string
	retention  int
	signer     *Signer
	catalog    *Catalog
	log        *logger.Logger
	now        func() time.Time

	// beforeRename runs between the temp write and the rename. Tests use it
	// to simulate a crash at that point.
	beforeRename func(tmp, dst string) error
}

// NewStore prepares the ledger and backup directories and opens the backup
// catalog. A catalog that cannot be opened is logged and skipped; backups
// are then found by scanning the directory.
func NewStore(opts StoreOptions, signer *Signer, log *logger.Logger) (*Store, error) {
	if signer == nil {
		return nil, errors.New("Signer cannot be nil")
	}
	if opts.LedgerPath == "" || opts.BackupDir == "" {
		return nil, errors.New("ledger path and backup directory are required")
	}
	if log == nil {
		log = logger.Default()
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}

	if err := os.MkdirAll(filepath.Dir(opts.LedgerPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	if err := os.MkdirAll(opts.BackupDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	store := &Store{
		ledgerPath: opts.LedgerPath,
		backupDir:  opts.BackupDir,
		retention:  retention,
		signer:     signer,
		log:        log.WithField("component", "store"),
		now:        time.Now,
	}

	if opts.CatalogPath != "" {
		catalog, err := OpenCatalog(opts.CatalogPath)
		if err != nil {
			log.Warnf("Backup catalog unavailable, falling back to directory scans: %v", err)
		} else {
			store.catalog = catalog
		}
	}

	return store, nil
}

func (s *Store) LedgerPath() string {
	return s.ledgerPath
}

func (s *Store) BackupDir() string {
	return s.backupDir
}

// Save atomically overwrites the primary file with blocks, then writes a
// timestamped backup and prunes old ones. Failures are logged and returned as
// *PersistenceError; the caller's in-memory chain stays authoritative.
func (s *Store) Save(blocks []Block) error {
	data, err := MarshalChain(blocks)
	if err != nil {
		perr := &PersistenceError{Op: "encode", Path: s.ledgerPath, Err: err}
		s.log.Errorf("Failed to save ledger: %v", perr)
		return perr
	}

	if err := s.writeAtomic(s.ledgerPath, data); err != nil {
		s.log.Errorf("Failed to save ledger: %v", err)
		return err
	}

	if err := s.writeBackup(blocks, data); err != nil {
		s.log.Errorf("Ledger saved but backup failed: %v", err)
		return err
	}

	s.prune()
	return nil
}

// WritePrimary atomically replaces the primary file without taking a backup.
func (s *Store) WritePrimary(blocks []Block) error {
	data, err := MarshalChain(blocks)
	if err != nil {
		return &PersistenceError{Op: "encode", Path: s.ledgerPath, Err: err}
	}
	return s.writeAtomic(s.ledgerPath, data)
}

// Load reads and fully validates the primary file. A file that exists but
// cannot be read is LoadUnreadable, not corrupt: its content is unknown and
// must not be replaced by a backup.
func (s *Store) Load() LoadResult {
	data, err := os.ReadFile(s.ledgerPath)
	if errors.Is(err, fs.ErrNotExist) {
		return LoadResult{Status: LoadNotFound}
	}
	if err != nil {
		return LoadResult{Status: LoadUnreadable, ReadErr: &PersistenceError{Op: "read", Path: s.ledgerPath, Err: err}}
	}

	blocks, err := s.Validate(data)
	if err != nil {
		return LoadResult{Status: LoadCorrupt, Corruption: asCorruption(err)}
	}
	return LoadResult{Status: LoadOK, Blocks: blocks}
}

// Validate parses data and checks it block by block against the store's
// signer. Load, import and restore all go through here.
func (s *Store) Validate(data []byte) ([]Block, error) {
	blocks, err := ParseChain(data)
	if err != nil {
		return nil, err
	}
	if err := ValidateChain(blocks, s.signer); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Recover walks the backups newest first and takes the first one that parses
// as a chain, including backups in the original app's format. Backups are
// snapshots this store wrote earlier, so a chain that fails signature checks
// is still taken and only reported. The recovered chain is written back to
// the primary file.
func (s *Store) Recover() ([]Block, bool) {
	backups, err := s.ListBackups()
	if err != nil {
		s.log.Errorf("Cannot list backups for recovery: %v", err)
		return nil, false
	}

	for _, b := range backups {
		path := filepath.Join(s.backupDir, b.Name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warnf("Skipping unreadable backup %s: %v", b.Name, err)
			continue
		}
		blocks, err := ParseLenientChain(data)
		if err != nil {
			s.log.Warnf("Skipping unusable backup %s: %v", b.Name, err)
			continue
		}
		if err := ValidateChain(blocks, s.signer); err != nil {
			s.log.Warnf("Backup %s does not verify under the current key (%v); run ledgerctl repair on the ledger file to re-sign it", b.Name, err)
		}

		if err := s.WritePrimary(blocks); err != nil {
			s.log.Errorf("Recovered from %s but could not rewrite the ledger file: %v", b.Name, err)
		}
		s.log.Warnf("Ledger recovered from backup %s (%d blocks)", b.Name, len(blocks))
		return blocks, true
	}

	s.log.Warn("No usable backup found")
	return nil, false
}

// RemoveLedger deletes the primary file. A missing file is not an error.
func (s *Store) RemoveLedger() error {
	if err := os.Remove(s.ledgerPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &PersistenceError{Op: "remove", Path: s.ledgerPath, Err: err}
	}
	return nil
}

// ListBackups returns the backups on disk, newest first, enriched with
// catalog metadata where the catalog has it. Ordering comes from the
// timestamp in each name, never from directory listing order. It never
// writes to the catalog.
func (s *Store) ListBackups() ([]BackupInfo, error) {
	backups, _, err := s.scanBackups()
	return backups, err
}

// scanBackups lists the backup directory and also reports catalog entries
// whose file is gone. The catalog is read first, so an entry added while the
// directory is read is never reported as stale.
func (s *Store) scanBackups() (backups []BackupInfo, stale []string, err error) {
	catalogued := make(map[string]BackupInfo)
	if s.catalog != nil {
		infos, err := s.catalog.List()
		if err != nil {
			s.log.Warnf("Backup catalog unreadable: %v", err)
		}
		for _, info := range infos {
			catalogued[info.Name] = info
		}
	}

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		created, ok := parseBackupTime(e.Name())
		if !ok {
			continue
		}

		info, known := catalogued[e.Name()]
		delete(catalogued, e.Name())
		if !known {
			info = BackupInfo{Name: e.Name()}
		}
		info.CreatedAt = created
		if fi, err := e.Info(); err == nil {
			info.Size = fi.Size()
		}
		backups = append(backups, info)
	}

	for name := range catalogued {
		stale = append(stale, name)
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.After(backups[j].CreatedAt)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, stale, nil
}

// ResolveBackup maps an externally supplied backup name to a path inside the
// backup directory, rejecting anything that would escape it.
func (s *Store) ResolveBackup(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", &ValidationError{Field: "backup", Reason: fmt.Sprintf("illegal backup name %q", name)}
	}

	base, err := filepath.Abs(s.backupDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve backup directory: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(base, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve backup path: %w", err)
	}
	if !within(base, path) {
		return "", &ValidationError{Field: "backup", Reason: fmt.Sprintf("backup %q escapes the backup directory", name)}
	}

	// A symlink planted in the backup directory must not lead outside it.
	if real, err := filepath.EvalSymlinks(path); err == nil {
		realBase, err := filepath.EvalSymlinks(base)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup directory: %w", err)
		}
		if !within(realBase, real) {
			return "", &ValidationError{Field: "backup", Reason: fmt.Sprintf("backup %q escapes the backup directory", name)}
		}
	}

	return path, nil
}

// ReadBackup returns the raw content of a backup for download or restore.
func (s *Store) ReadBackup(name string) ([]byte, error) {
	path, err := s.ResolveBackup(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %s: %w", name, err)
	}
	return data, nil
}

func (s *Store) Close() error {
	if s.catalog == nil {
		return nil
	}
	if err := s.catalog.Close(); err != nil {
		return fmt.Errorf("error closing backup catalog: %w", err)
	}
	return nil
}

func (s *Store) writeBackup(blocks []Block, data []byte) error {
	created := s.now().UTC()
	name := backupName(created)
	// Clocks can be coarse; never overwrite an existing snapshot.
	for {
		if _, err := os.Stat(filepath.Join(s.backupDir, name)); errors.Is(err, fs.ErrNotExist) {
			break
		}
		created = created.Add(time.Nanosecond)
		name = backupName(created)
	}

	if err := s.writeAtomic(filepath.Join(s.backupDir, name), data); err != nil {
		return err
	}

	if s.catalog != nil {
		info := BackupInfo{
			Name:      name,
			CreatedAt: created,
			Blocks:    len(blocks),
			Size:      int64(len(data)),
		}
		if len(blocks) > 0 {
			info.TipSignature = blocks[len(blocks)-1].Signature
		}
		if err := s.catalog.Put(info); err != nil {
			s.log.Warnf("Failed to catalog backup %s: %v", name, err)
		}
	}

	s.log.Debugf("Backup written: %s", name)
	return nil
}

// prune deletes every backup beyond the retention count, oldest first, and
// drops catalog entries whose file is gone. It only runs from Save, which
// callers serialize.
func (s *Store) prune() {
	backups, stale, err := s.scanBackups()
	if err != nil {
		s.log.Warnf("Backup pruning skipped: %v", err)
		return
	}
	for _, name := range stale {
		if err := s.catalog.Delete(name); err != nil {
			s.log.Warnf("Failed to drop stale catalog entry %s: %v", name, err)
		}
	}
	if len(backups) <= s.retention {
		return
	}

	for _, b := range backups[s.retention:] {
		if err := os.Remove(filepath.Join(s.backupDir, b.Name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Warnf("Failed to prune backup %s: %v", b.Name, err)
			continue
		}
		if s.catalog != nil {
			if err := s.catalog.Delete(b.Name); err != nil {
				s.log.Warnf("Failed to drop catalog entry %s: %v", b.Name, err)
			}
		}
	}
}

func (s *Store) writeAtomic(path string, data []byte) error {
	return writeFileAtomic(path, data, s.beforeRename)
}

// WriteFileAtomic replaces path with data through a synced temp file in the
// same directory, so path never holds a partial write.
func WriteFileAtomic(path string, data []byte) error {
	return writeFileAtomic(path, data, nil)
}

func writeFileAtomic(path string, data []byte, beforeRename func(tmp, dst string) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &PersistenceError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return &PersistenceError{Op: "write", Path: tmpName, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return &PersistenceError{Op: "sync", Path: tmpName, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &PersistenceError{Op: "close", Path: tmpName, Err: err}
	}

	if beforeRename != nil {
		if err = beforeRename(tmpName, path); err != nil {
			return &PersistenceError{Op: "rename", Path: path, Err: err}
		}
	}

	if err = os.Rename(tmpName, path); err != nil {
		return &PersistenceError{Op: "rename", Path: path, Err: err}
	}
	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry after a rename. Not every platform
// supports it, so errors are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}

func backupName(t time.Time) string {
	return backupPrefix + t.UTC().Format(backupLayout) + backupSuffix
}

func parseBackupTime(name string) (time.Time, bool) {
	if !strings.HasSuffix(name, backupSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(name, backupSuffix)

	switch {
	case strings.HasPrefix(stamp, backupPrefix):
		t, err := time.Parse(backupLayout, strings.TrimPrefix(stamp, backupPrefix))
		return t, err == nil
	case strings.HasPrefix(stamp, legacyBackupPrefix):
		t, err := time.ParseInLocation(legacyBackupLayout, strings.TrimPrefix(stamp, legacyBackupPrefix), time.Local)
		return t, err == nil
	}
	return time.Time{}, false
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func asCorruption(err error) *CorruptionError {
	var cerr *CorruptionError
	if errors.As(err, &cerr) {
		return cerr
	}
	return &CorruptionError{Reason: err.Error()}
}
