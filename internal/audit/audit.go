package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/breeze-rmm/amd-driver-manager/internal/logging"
)

var log = logging.L("audit")

// FileName is the audit trail's name inside the data directory.
const FileName = "audit.jsonl"

const genesisHash = "genesis"

// Event types for audit logging.
const (
	EventRunStarted         = "run_started"
	EventDriverResolved     = "driver_resolved"
	EventUninstallConfirmed = "uninstall_confirmed"
	EventUninstallDeclined  = "uninstall_declined"
	EventDriversRemoved     = "drivers_removed"
	EventPowerAction        = "power_action"
	EventDispatchFailed     = "dispatch_failed"
	EventLogRotated         = "log_rotated"

	// EventDiagnosticLogRotated marks a rollover of the diagnostic log file,
	// not of the audit trail itself.
	EventDiagnosticLogRotated = "diagnostic_log_rotated"
)

// Destructive steps are synced to disk before the next step runs, since a
// power action may follow immediately.
var criticalEvents = map[string]bool{
	EventUninstallConfirmed: true,
	EventDriversRemoved:     true,
	EventPowerAction:        true,
	EventDispatchFailed:     true,
}

// Entry is a single audit log record.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	EventType string         `json:"eventType"`
	RunID     string         `json:"runId,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	PrevHash  string         `json:"prevHash"`
	EntryHash string         `json:"entryHash"`
}

// Logger appends hash-chained JSONL entries. Each entry's prevHash is the
// previous entry's entryHash; after rotation the new file opens with an
// EventLogRotated sentinel linking back to the old file.
type Logger struct {
	mu         sync.Mutex
	file       *os.File
	filePath   string
	maxSize    int64
	maxBackups int
	written    int64
	prevHash   string
	dropped    atomic.Int64
}

// NewLogger opens {dataDir}/audit.jsonl for appending. The chain continues
// from the last entry already in the file.
func NewLogger(dataDir string, maxSizeMB, maxBackups int) (*Logger, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create audit data dir: %w", err)
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxBackups <= 0 {
		maxBackups = 3
	}

	l := &Logger{
		filePath:   filepath.Join(dataDir, FileName),
		maxSize:    int64(maxSizeMB) * 1024 * 1024,
		maxBackups: maxBackups,
		prevHash:   genesisHash,
	}

	if last, err := lastEntryHash(l.filePath); err == nil && last != "" {
		l.prevHash = last
	}

	if err := l.openFile(); err != nil {
		return nil, err
	}

	log.Debug("audit logger started", "path", l.filePath)
	return l, nil
}

// Path returns the active audit file.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Log writes one entry. The chain only advances after a successful write, so
// a failed write leaves the next entry linked to the same prevHash.
// Safe to call on a nil receiver.
func (l *Logger) Log(eventType string, runID string, details map[string]any) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		EventType: eventType,
		RunID:     runID,
		Details:   details,
		PrevHash:  l.prevHash,
	}

	data, err := seal(&entry)
	if err != nil {
		log.Error("failed to encode audit entry", logging.KeyError, err, "eventType", eventType)
		l.dropped.Add(1)
		return
	}

	if l.written+int64(len(data)) > l.maxSize {
		if err := l.rotate(); err != nil {
			log.Error("audit log rotation failed", logging.KeyError, err)
			l.dropped.Add(1)
			return
		}
		entry.PrevHash = l.prevHash
		if data, err = seal(&entry); err != nil {
			l.dropped.Add(1)
			return
		}
	}

	n, err := l.file.Write(data)
	if err != nil {
		log.Error("failed to write audit entry", logging.KeyError, err, "eventType", eventType)
		l.dropped.Add(1)
		return
	}
	l.written += int64(n)
	l.prevHash = entry.EntryHash

	if criticalEvents[eventType] {
		if err := l.file.Sync(); err != nil {
			log.Error("failed to fsync audit entry", logging.KeyError, err, "eventType", eventType)
		}
	}
}

// Close closes the audit file. Safe to call on a nil receiver.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// DroppedCount returns the number of entries that failed to write, or -1 on
// a nil logger.
func (l *Logger) DroppedCount() int64 {
	if l == nil {
		return -1
	}
	return l.dropped.Load()
}

// seal computes the entry hash and returns the encoded line.
func seal(entry *Entry) ([]byte, error) {
	hash, err := computeHash(*entry)
	if err != nil {
		return nil, err
	}
	entry.EntryHash = hash
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal audit entry: %w", err)
	}
	return append(data, '\n'), nil
}

// computeHash length-prefixes each field so no field can absorb a delimiter
// from its neighbour.
func computeHash(entry Entry) (string, error) {
	h := sha256.New()
	for _, field := range []string{entry.Timestamp, entry.EventType, entry.RunID, entry.PrevHash} {
		fmt.Fprintf(h, "%d:%s", len(field), field)
	}
	if entry.Details != nil {
		detailBytes, err := json.Marshal(entry.Details)
		if err != nil {
			return "", fmt.Errorf("marshal details for hash: %w", err)
		}
		fmt.Fprintf(h, "%d:", len(detailBytes))
		h.Write(detailBytes)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (l *Logger) openFile() error {
	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat audit log: %w", err)
	}

	l.file = f
	l.written = info.Size()
	return nil
}

func (l *Logger) rotate() error {
	linkHash := l.prevHash

	if l.file != nil {
		l.file.Close()
	}

	for i := l.maxBackups; i >= 2; i-- {
		src := l.backupName(i - 1)
		dst := l.backupName(i)
		if i == l.maxBackups {
			if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
				log.Warn("audit rotation: failed to remove oldest backup", "path", dst, logging.KeyError, err)
			}
		}
		if err := os.Rename(src, dst); err != nil && !os.IsNotExist(err) {
			log.Warn("audit rotation: failed to rename backup", "src", src, "dst", dst, logging.KeyError, err)
		}
	}

	if err := os.Rename(l.filePath, l.backupName(1)); err != nil && !os.IsNotExist(err) {
		log.Warn("audit rotation: failed to rename current log", logging.KeyError, err)
	}

	if err := l.openFile(); err != nil {
		return err
	}

	sentinel := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		EventType: EventLogRotated,
		PrevHash:  linkHash,
		Details:   map[string]any{"previousFile": l.backupName(1)},
	}
	data, err := seal(&sentinel)
	if err == nil {
		var n int
		n, err = l.file.Write(data)
		l.written += int64(n)
	}
	if err != nil {
		// The rotation itself succeeded; only the cross-file link is lost.
		log.Error("audit rotation sentinel failed, hash chain broken", logging.KeyError, err)
		l.dropped.Add(1)
		l.prevHash = "chain-broken"
		return nil
	}
	l.prevHash = sentinel.EntryHash
	return nil
}

func (l *Logger) backupName(index int) string {
	if index == 0 {
		return l.filePath
	}
	return fmt.Sprintf("%s.%d", l.filePath, index)
}

func lastEntryHash(path string) (string, error) {
	entries, err := ReadEntries(path)
	if err != nil || len(entries) == 0 {
		return "", err
	}
	return entries[len(entries)-1].EntryHash, nil
}

// ReadEntries decodes every line of an audit file.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return entries, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

// Verify recomputes every hash in the audit file and checks that each entry
// links to its predecessor. It returns the number of entries checked; on a
// broken link the error names the first bad line.
func Verify(path string) (int, error) {
	entries, err := ReadEntries(path)
	if err != nil {
		return len(entries), err
	}
	for i, e := range entries {
		want, err := computeHash(e)
		if err != nil {
			return i, err
		}
		if e.EntryHash != want {
			return i, fmt.Errorf("line %d: entry hash mismatch", i+1)
		}
		if i > 0 && e.PrevHash != entries[i-1].EntryHash {
			return i, fmt.Errorf("line %d: prevHash does not link to line %d", i+1, i)
		}
	}
	return len(entries), nil
}
