package user_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

type fakeIdentityStore struct {
	mu        sync.Mutex
	usernames map[string]bool
	emails    map[string]bool
	rejectFor map[string]error
	lookupErr error
	created   []domain.CreateUserInput
}

func newFakeIdentityStore(existing ...string) *fakeIdentityStore {
	s := &fakeIdentityStore{
		usernames: make(map[string]bool),
		emails:    make(map[string]bool),
		rejectFor: make(map[string]error),
	}
	for _, name := range existing {
		s.usernames[name] = true
	}
	return s
}

func (s *fakeIdentityStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	return s.usernames[username], nil
}

func (s *fakeIdentityStore) CreateUser(ctx context.Context, in domain.CreateUserInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.rejectFor[in.Email]; ok {
		return "", err
	}
	if s.usernames[in.Username] {
		return "", domain.ConflictError{Field: "username"}
	}
	if s.emails[in.Email] {
		return "", domain.ConflictError{Field: "email"}
	}
	s.usernames[in.Username] = true
	s.emails[in.Email] = true
	s.created = append(s.created, in)
	return fmt.Sprintf("user-%d", len(s.created)), nil
}

func (s *fakeIdentityStore) createdUsernames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.created))
	for _, in := range s.created {
		names = append(names, in.Username)
	}
	return names
}

type memWaitlist struct {
	mu        sync.Mutex
	entries   []domain.WaitlistEntry
	nextID    int
	insertErr error
	deleteErr error
}

func (w *memWaitlist) Insert(ctx context.Context, record domain.ImportRecord) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.insertErr != nil {
		return "", w.insertErr
	}
	w.nextID++
	id := fmt.Sprintf("entry-%d", w.nextID)
	w.entries = append(w.entries, domain.WaitlistEntry{ID: id, Record: record})
	return id, nil
}

func (w *memWaitlist) EntriesForDate(ctx context.Context, date domain.Date) ([]domain.WaitlistEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var due []domain.WaitlistEntry
	for _, entry := range w.entries {
		if entry.Record.ActivationDate != nil && entry.Record.ActivationDate.Equal(date) {
			due = append(due, entry)
		}
	}
	return due, nil
}

func (w *memWaitlist) DeleteByEmail(ctx context.Context, email string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.deleteErr != nil {
		return nil, w.deleteErr
	}
	var removed []string
	kept := w.entries[:0]
	for _, entry := range w.entries {
		if entry.Record.Email == email {
			removed = append(removed, entry.ID)
			continue
		}
		kept = append(kept, entry)
	}
	w.entries = kept
	if len(removed) == 0 {
		return nil, domain.ErrWaitlistEntryNotFound
	}
	return removed, nil
}

func (w *memWaitlist) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

type fakeSource struct {
	files map[string]string
	err   error
	opens int
}

func newFakeSource(path, data string) *fakeSource {
	return &fakeSource{files: map[string]string{path: data}}
}

func (f *fakeSource) Open(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	f.opens++
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.files[sourcePath]
	if !ok {
		return nil, errors.New("file does not exist")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

type recordingSink struct {
	progress    []app.Progress
	completions int
	success     bool
	result      domain.RunResult
	progressErr error
}

func (s *recordingSink) ReportProgress(ctx context.Context, progress app.Progress) error {
	s.progress = append(s.progress, progress)
	return s.progressErr
}

func (s *recordingSink) Complete(ctx context.Context, success bool, result domain.RunResult) error {
	s.completions++
	s.success = success
	s.result = result
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	userIDs []string
}

func (n *recordingNotifier) UserCreated(ctx context.Context, userID string, record domain.ImportRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.userIDs = append(n.userIDs, userID)
	return nil
}

func mustDate(value string) domain.Date {
	d, err := domain.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func mustRunConfig(roles ...string) domain.RunConfig {
	cfg, err := domain.NewRunConfig(roles, false)
	if err != nil {
		panic(err)
	}
	return cfg
}
