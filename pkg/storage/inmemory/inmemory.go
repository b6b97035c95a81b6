// Package inmemory implements storage.Driver with in-process maps.
// It is intended for tests and ephemeral runs.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/minuteshq/minutes/pkg/storage"
)

type settingsKey struct {
	userID int64
	chatID int64
}

type projectKey struct {
	userID int64
	alias  string
}

type planEntry struct {
	hash string
	plan []byte
}

// Driver is an in-memory storage driver.
type Driver struct {
	mu             sync.Mutex
	defaultEnabled bool

	settings map[settingsKey]bool
	projects map[projectKey]storage.ProjectEntry
	meetings map[string]storage.MeetingRecord
	plans    map[string]planEntry
}

// NewDriver creates an empty in-memory driver.
func NewDriver(defaultEnabled bool) *Driver {
	return &Driver{
		defaultEnabled: defaultEnabled,
		settings:       make(map[settingsKey]bool),
		projects:       make(map[projectKey]storage.ProjectEntry),
		meetings:       make(map[string]storage.MeetingRecord),
		plans:          make(map[string]planEntry),
	}
}

func (d *Driver) IndexingEnabled(_ context.Context, userID, chatID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if enabled, ok := d.settings[settingsKey{userID, chatID}]; ok {
		return enabled, nil
	}
	return d.defaultEnabled, nil
}

func (d *Driver) SetIndexingEnabled(_ context.Context, userID, chatID int64, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.settings[settingsKey{userID, chatID}] = enabled
	return nil
}

func (d *Driver) UpsertProject(_ context.Context, userID int64, alias string, confidence float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := projectKey{userID, alias}
	entry, ok := d.projects[key]
	if !ok {
		entry = storage.ProjectEntry{Alias: alias}
	}
	entry.Confidence = confidence
	entry.Occurrences++
	entry.LastSeen = time.Now().UTC()
	d.projects[key] = entry
	return nil
}

func (d *Driver) ListProjects(_ context.Context, userID int64) ([]storage.ProjectEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var entries []storage.ProjectEntry
	for key, entry := range d.projects {
		if key.userID == userID {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Alias < entries[j].Alias })

	return entries, nil
}

func (d *Driver) RecordMeeting(_ context.Context, rec storage.MeetingRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.meetings[rec.MeetingID] = rec
	return nil
}

func (d *Driver) GetMeeting(_ context.Context, meetingID string) (*storage.MeetingRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.meetings[meetingID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &rec, nil
}

func (d *Driver) GetPlan(_ context.Context, meetingID string) (string, []byte, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.plans[meetingID]
	if !ok {
		return "", nil, false, nil
	}
	return entry.hash, entry.plan, true, nil
}

func (d *Driver) PutPlan(_ context.Context, meetingID, hash string, plan []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.plans[meetingID] = planEntry{hash: hash, plan: plan}
	return nil
}

func (d *Driver) PurgeUser(_ context.Context, userID int64, chatID *int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key := range d.settings {
		if key.userID == userID && (chatID == nil || key.chatID == *chatID) {
			delete(d.settings, key)
		}
	}
	for id, rec := range d.meetings {
		if rec.UserID == userID && (chatID == nil || rec.ChatID == *chatID) {
			delete(d.meetings, id)
		}
	}
	if chatID == nil {
		for key := range d.projects {
			if key.userID == userID {
				delete(d.projects, key)
			}
		}
	}
	return nil
}

func (d *Driver) Close() error {
	return nil
}

var _ storage.Driver = (*Driver)(nil)
