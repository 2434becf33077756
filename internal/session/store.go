package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrStateExpired reports a transition attempted against a slot that no
// longer holds the expected variant. Callers tell the user to start over.
var ErrStateExpired = errors.New("session state expired")

// Disposer receives temp paths orphaned when a slot is replaced or
// cleared. It runs after the slot lock is released.
type Disposer func(paths []string)

// Store holds one slot per user. Slot access is serialized per user while
// different users proceed independently.
type Store struct {
	mu       sync.Mutex
	slots    map[int64]*slot
	disposer Disposer
}

type slot struct {
	mu       sync.Mutex
	upload   *PendingUpload
	download *PendingDownload
}

// NewStore builds an empty store. The disposer may be nil.
func NewStore(disposer Disposer) *Store {
	return &Store{slots: make(map[int64]*slot), disposer: disposer}
}

func (s *Store) slotFor(userID int64) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[userID]
	if !ok {
		sl = &slot{}
		s.slots[userID] = sl
	}
	return sl
}

// Get returns a copy of the user's current slot contents.
func (s *Store) Get(userID int64) Snapshot {
	sl := s.slotFor(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	switch {
	case sl.upload != nil:
		cp := *sl.upload
		cp.TempPaths = append([]string(nil), sl.upload.TempPaths...)
		return Snapshot{UserID: userID, Kind: HasPendingUpload, Upload: &cp}
	case sl.download != nil:
		cp := *sl.download
		cp.TempPaths = append([]string(nil), sl.download.TempPaths...)
		return Snapshot{UserID: userID, Kind: HasPendingDownload, Download: &cp}
	default:
		return Snapshot{UserID: userID, Kind: NoSession}
	}
}

// SetPendingUpload installs a new upload record, superseding whatever the
// slot held. The returned copy carries the generated ownership token.
func (s *Store) SetPendingUpload(userID int64, pending PendingUpload) PendingUpload {
	pending.Token = uuid.NewString()
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = time.Now()
	}

	sl := s.slotFor(userID)
	sl.mu.Lock()
	orphans := sl.takeOrphans()
	cp := pending
	sl.upload = &cp
	sl.download = nil
	sl.mu.Unlock()

	s.dispose(orphans)
	return pending
}

// SetPendingDownload installs a new download record, superseding whatever
// the slot held.
func (s *Store) SetPendingDownload(userID int64, pending PendingDownload) PendingDownload {
	pending.Token = uuid.NewString()
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = time.Now()
	}

	sl := s.slotFor(userID)
	sl.mu.Lock()
	orphans := sl.takeOrphans()
	cp := pending
	sl.download = &cp
	sl.upload = nil
	sl.mu.Unlock()

	s.dispose(orphans)
	return pending
}

// MutateUpload applies fn to the user's pending upload and returns the
// updated copy. It fails with ErrStateExpired when the slot holds no
// upload, or when token is non-empty and no longer matches the slot.
func (s *Store) MutateUpload(userID int64, token string, fn func(*PendingUpload) error) (PendingUpload, error) {
	sl := s.slotFor(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.upload == nil {
		return PendingUpload{}, ErrStateExpired
	}
	if token != "" && sl.upload.Token != token {
		return PendingUpload{}, ErrStateExpired
	}
	if err := fn(sl.upload); err != nil {
		return PendingUpload{}, err
	}
	cp := *sl.upload
	cp.TempPaths = append([]string(nil), sl.upload.TempPaths...)
	return cp, nil
}

// MutateDownload is the download counterpart of MutateUpload.
func (s *Store) MutateDownload(userID int64, token string, fn func(*PendingDownload) error) (PendingDownload, error) {
	sl := s.slotFor(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.download == nil {
		return PendingDownload{}, ErrStateExpired
	}
	if token != "" && sl.download.Token != token {
		return PendingDownload{}, ErrStateExpired
	}
	if err := fn(sl.download); err != nil {
		return PendingDownload{}, err
	}
	cp := *sl.download
	cp.TempPaths = append([]string(nil), sl.download.TempPaths...)
	return cp, nil
}

// Clear empties the user's slot regardless of what it holds and reports
// whether a pending flow was actually discarded.
func (s *Store) Clear(userID int64) bool {
	sl := s.slotFor(userID)
	sl.mu.Lock()
	cleared := sl.upload != nil || sl.download != nil
	orphans := sl.takeOrphans()
	sl.mu.Unlock()
	s.dispose(orphans)
	return cleared
}

// ClearIfOwner empties the slot only when the given token still owns it.
// On success it hands the record's temp paths back to the caller instead
// of running the disposer: the owning flow may still need to deliver one
// of those files, so it reclaims them itself once delivery is done. A
// false return means the flow was superseded and its terminal message
// should be suppressed.
func (s *Store) ClearIfOwner(userID int64, token string) ([]string, bool) {
	sl := s.slotFor(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	owns := (sl.upload != nil && sl.upload.Token == token) ||
		(sl.download != nil && sl.download.Token == token)
	if !owns {
		return nil, false
	}
	return sl.takeOrphans(), true
}

// ActiveUsers lists users whose slot currently holds a pending flow, for
// the control surface.
func (s *Store) ActiveUsers() []Snapshot {
	s.mu.Lock()
	users := make([]int64, 0, len(s.slots))
	for userID := range s.slots {
		users = append(users, userID)
	}
	s.mu.Unlock()

	var active []Snapshot
	for _, userID := range users {
		if snap := s.Get(userID); snap.Kind != NoSession {
			active = append(active, snap)
		}
	}
	return active
}

// takeOrphans empties the slot and returns any temp paths the discarded
// record still referenced. Caller holds the slot lock.
func (sl *slot) takeOrphans() []string {
	var orphans []string
	if sl.upload != nil {
		orphans = append(orphans, sl.upload.TempPaths...)
	}
	if sl.download != nil {
		orphans = append(orphans, sl.download.TempPaths...)
	}
	sl.upload = nil
	sl.download = nil
	return orphans
}

func (s *Store) dispose(orphans []string) {
	if len(orphans) == 0 || s.disposer == nil {
		return
	}
	s.disposer(orphans)
}
