package history

import (
	"compress/gzip"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/magefree/hearthstone-go/internal/game/rules"
	"go.uber.org/zap"
)

const journalVersion = 1

// Journal keeps the dispatched events of one game in memory and can be
// stepped through like a replay.
type Journal struct {
	GameID  string
	Entries []rules.Entry
	Cursor  int

	logger    *zap.Logger
	directory string
	mu        sync.RWMutex
}

// NewJournal creates an empty journal. When directory is set, Close saves
// the journal there.
func NewJournal(gameID, directory string, logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{
		GameID:    gameID,
		Entries:   make([]rules.Entry, 0, 64),
		logger:    logger,
		directory: directory,
	}
}

// Record appends an entry.
func (j *Journal) Record(entry rules.Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.Entries = append(j.Entries, entry)
}

// Reset drops every entry and rewinds the cursor.
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.Entries = j.Entries[:0]
	j.Cursor = 0
}

// Size returns the number of recorded entries.
func (j *Journal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return len(j.Entries)
}

// Snapshot returns a copy of the recorded entries.
func (j *Journal) Snapshot() []rules.Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]rules.Entry, len(j.Entries))
	copy(out, j.Entries)
	return out
}

// Kinds returns the kind of every recorded entry in order.
func (j *Journal) Kinds() []rules.Kind {
	j.mu.RLock()
	defer j.mu.RUnlock()

	kinds := make([]rules.Kind, len(j.Entries))
	for i, e := range j.Entries {
		kinds[i] = e.Kind
	}
	return kinds
}

// Rewind moves the cursor back to the first entry.
func (j *Journal) Rewind() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.Cursor = 0
}

// Next returns the entry under the cursor and advances it.
func (j *Journal) Next() (rules.Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.Cursor < len(j.Entries) {
		e := j.Entries[j.Cursor]
		j.Cursor++
		return e, true
	}
	return rules.Entry{}, false
}

// Previous steps the cursor back and returns that entry.
func (j *Journal) Previous() (rules.Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.Cursor > 0 {
		j.Cursor--
		return j.Entries[j.Cursor], true
	}
	return rules.Entry{}, false
}

// At returns the entry at index.
func (j *Journal) At(index int) (rules.Entry, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if index >= 0 && index < len(j.Entries) {
		return j.Entries[index], true
	}
	return rules.Entry{}, false
}

// Close saves the journal when a directory was configured.
func (j *Journal) Close(context.Context) error {
	if j.directory == "" {
		return nil
	}
	if err := j.SaveToFile(j.directory); err != nil {
		return err
	}
	j.logger.Info("journal saved",
		zap.String("game_id", j.GameID),
		zap.Int("entries", j.Size()),
		zap.String("directory", j.directory),
	)
	return nil
}

// journalMetadata heads a saved journal file.
type journalMetadata struct {
	GameID     string
	Timestamp  time.Time
	Version    int
	EntryCount int
}

func journalPath(directory, gameID string) string {
	return filepath.Join(directory, fmt.Sprintf("%s.journal", gameID))
}

// SaveToFile writes the journal as a gzipped gob stream.
func (j *Journal) SaveToFile(directory string) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(journalPath(directory, j.GameID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gzipWriter)

	metadata := journalMetadata{
		GameID:     j.GameID,
		Timestamp:  time.Now(),
		Version:    journalVersion,
		EntryCount: len(j.Entries),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i := range j.Entries {
		if err := encoder.Encode(&j.Entries[i]); err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}
	return nil
}

// LoadJournalFromFile reads a journal saved by SaveToFile.
func LoadJournalFromFile(directory, gameID string) (*Journal, error) {
	file, err := os.Open(journalPath(directory, gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata journalMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != journalVersion {
		return nil, fmt.Errorf("unsupported journal version: %d", metadata.Version)
	}

	j := NewJournal(metadata.GameID, "", nil)
	for i := 0; i < metadata.EntryCount; i++ {
		var entry rules.Entry
		if err := decoder.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode entry %d: %w", i, err)
		}
		j.Entries = append(j.Entries, entry)
	}
	return j, nil
}
