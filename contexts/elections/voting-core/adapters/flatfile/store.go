package flatfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	"ballotbox/contexts/elections/voting-core/ports"
)

// Store keeps state in tab-separated text files under one directory.
// Identities and candidates are rewritten through a temp file and rename;
// votes and audit entries are appended and synced.
type Store struct {
	mu     sync.Mutex
	dir    string
	logger *slog.Logger
}

// NewStore creates dir when missing. An empty dir means the working directory.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) LoadSnapshot(_ context.Context) (ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshot ports.Snapshot
	err := s.readRecords(identitiesFile, func(fields []string) error {
		identity, err := parseIdentity(fields)
		if err == nil {
			snapshot.Identities = append(snapshot.Identities, identity)
		}
		return err
	})
	if err != nil {
		return ports.Snapshot{}, err
	}
	err = s.readRecords(candidatesFile, func(fields []string) error {
		candidate, err := parseCandidate(fields)
		if err == nil {
			snapshot.Candidates = append(snapshot.Candidates, candidate)
		}
		return err
	})
	if err != nil {
		return ports.Snapshot{}, err
	}
	err = s.readRecords(votesFile, func(fields []string) error {
		vote, err := parseVote(fields)
		if err == nil {
			snapshot.Votes = append(snapshot.Votes, vote)
		}
		return err
	})
	if err != nil {
		return ports.Snapshot{}, err
	}
	err = s.readRecords(auditFile, func(fields []string) error {
		entry, err := parseAuditEntry(fields)
		if err == nil {
			snapshot.AuditEntries = append(snapshot.AuditEntries, entry)
		}
		return err
	})
	if err != nil {
		return ports.Snapshot{}, err
	}
	return snapshot, nil
}

func (s *Store) SaveIdentities(_ context.Context, identities []entities.Identity) error {
	records := make([][]string, 0, len(identities))
	for _, identity := range identities {
		records = append(records, identityRecord(identity))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rewrite(identitiesFile, records); err != nil {
		return s.logError("flatfile_save_identities_failed", err, "count", len(identities))
	}
	return nil
}

func (s *Store) SaveCandidates(_ context.Context, candidates []entities.Candidate) error {
	records := make([][]string, 0, len(candidates))
	for _, candidate := range candidates {
		records = append(records, candidateRecord(candidate))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rewrite(candidatesFile, records); err != nil {
		return s.logError("flatfile_save_candidates_failed", err, "count", len(candidates))
	}
	return nil
}

func (s *Store) AppendVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.append(votesFile, voteRecord(vote)); err != nil {
		return s.logError("flatfile_append_vote_failed", err, "username", vote.VoterUsername)
	}
	return nil
}

func (s *Store) AppendAuditEntry(_ context.Context, entry entities.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.append(auditFile, auditRecord(entry)); err != nil {
		return s.logError("flatfile_append_audit_failed", err,
			"actor", entry.ActorUsername,
			"action", string(entry.Action),
		)
	}
	return nil
}

// readRecords feeds each line of name to handle. Missing files are empty.
// Lines without a tab are split on whitespace so files written by the old
// space-separated format still load. Malformed lines are logged and skipped.
func (s *Store) readRecords(name string, handle func(fields []string) error) error {
	path := filepath.Join(s.dir, name)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return s.logError("flatfile_open_failed", err, "file", name)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitLine(line)
		if err == nil {
			err = handle(fields)
		}
		if err != nil {
			s.logger.Warn("flat file record skipped",
				"event", "flatfile_record_skipped",
				"module", "elections/voting-core",
				"layer", "adapter",
				"file", name,
				"line", lineNumber,
				"error", err.Error(),
			)
		}
	}
	if err := scanner.Err(); err != nil {
		return s.logError("flatfile_read_failed", err, "file", name)
	}
	return nil
}

func splitLine(line string) ([]string, error) {
	if !strings.Contains(line, "\t") {
		return strings.Fields(line), nil
	}
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	fields, err := reader.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return fields, nil
}

func (s *Store) rewrite(name string, records [][]string) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	writer := newWriter(tmp)
	if err := writer.WriteAll(records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (s *Store) append(name string, record []string) error {
	path := filepath.Join(s.dir, name)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	writer := newWriter(file)
	if err := writer.Write(record); err != nil {
		_ = file.Close()
		return fmt.Errorf("append %s: %w", name, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("append %s: %w", name, err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	return file.Close()
}

func newWriter(w io.Writer) *csv.Writer {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	return writer
}

func (s *Store) logError(event string, err error, attrs ...any) error {
	fields := []any{
		"event", event,
		"module", "elections/voting-core",
		"layer", "adapter",
		"dir", s.dir,
		"error", err.Error(),
	}
	fields = append(fields, attrs...)
	s.logger.Error("flat file storage operation failed", fields...)
	return err
}

var _ ports.StateStore = (*Store)(nil)
