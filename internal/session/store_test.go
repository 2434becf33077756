package session

import (
	"errors"
	"sync"
	"testing"
)

func TestGetEmptySlot(t *testing.T) {
	store := NewStore(nil)
	snap := store.Get(1)
	if snap.Kind != NoSession {
		t.Fatalf("expected NoSession, got %v", snap.Kind)
	}
}

func TestSetPendingUploadAssignsToken(t *testing.T) {
	store := NewStore(nil)
	pending := store.SetPendingUpload(1, PendingUpload{Stage: UploadRightsPending, FileName: "clip.mkv"})
	if pending.Token == "" {
		t.Fatal("token not assigned")
	}
	if pending.CreatedAt.IsZero() {
		t.Fatal("created time not assigned")
	}
	snap := store.Get(1)
	if snap.Kind != HasPendingUpload || snap.Upload.Token != pending.Token {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestSetPendingUploadSupersedesDownload(t *testing.T) {
	store := NewStore(nil)
	store.SetPendingDownload(1, PendingDownload{Stage: DownloadFormatPending, URL: "https://example.com"})
	store.SetPendingUpload(1, PendingUpload{Stage: UploadRightsPending})

	snap := store.Get(1)
	if snap.Kind != HasPendingUpload || snap.Download != nil {
		t.Fatalf("download should be superseded: %+v", snap)
	}
}

func TestReplacementDisposesOrphanedTempPaths(t *testing.T) {
	var mu sync.Mutex
	var disposed []string
	store := NewStore(func(paths []string) {
		mu.Lock()
		disposed = append(disposed, paths...)
		mu.Unlock()
	})

	first := store.SetPendingUpload(1, PendingUpload{Stage: UploadProcessing})
	if _, err := store.MutateUpload(1, first.Token, func(p *PendingUpload) error {
		p.TempPaths = append(p.TempPaths, "/tmp/1/abc.mkv")
		return nil
	}); err != nil {
		t.Fatalf("MutateUpload: %v", err)
	}

	store.SetPendingUpload(1, PendingUpload{Stage: UploadRightsPending})

	mu.Lock()
	defer mu.Unlock()
	if len(disposed) != 1 || disposed[0] != "/tmp/1/abc.mkv" {
		t.Fatalf("orphans not disposed: %v", disposed)
	}
}

func TestMutateUploadWithoutStateFails(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.MutateUpload(1, "", func(*PendingUpload) error { return nil }); !errors.Is(err, ErrStateExpired) {
		t.Fatalf("expected ErrStateExpired, got %v", err)
	}
}

func TestMutateUploadAgainstDownloadFails(t *testing.T) {
	store := NewStore(nil)
	store.SetPendingDownload(1, PendingDownload{Stage: DownloadFormatPending})
	if _, err := store.MutateUpload(1, "", func(*PendingUpload) error { return nil }); !errors.Is(err, ErrStateExpired) {
		t.Fatalf("expected ErrStateExpired, got %v", err)
	}
}

func TestMutateUploadStaleTokenFails(t *testing.T) {
	store := NewStore(nil)
	stale := store.SetPendingUpload(1, PendingUpload{Stage: UploadProcessing})
	store.SetPendingUpload(1, PendingUpload{Stage: UploadRightsPending})

	if _, err := store.MutateUpload(1, stale.Token, func(*PendingUpload) error { return nil }); !errors.Is(err, ErrStateExpired) {
		t.Fatalf("expected ErrStateExpired for stale token, got %v", err)
	}
}

func TestMutateDownloadAppliesTransition(t *testing.T) {
	store := NewStore(nil)
	pending := store.SetPendingDownload(1, PendingDownload{Stage: DownloadFormatPending, URL: "https://example.com/v"})

	updated, err := store.MutateDownload(1, pending.Token, func(p *PendingDownload) error {
		p.Stage = DownloadFetching
		p.Format = "dl_video_720p"
		return nil
	})
	if err != nil {
		t.Fatalf("MutateDownload: %v", err)
	}
	if updated.Stage != DownloadFetching || updated.Format != "dl_video_720p" {
		t.Fatalf("transition not applied: %+v", updated)
	}
}

func TestClearIfOwner(t *testing.T) {
	store := NewStore(nil)
	stale := store.SetPendingUpload(1, PendingUpload{Stage: UploadProcessing})
	fresh := store.SetPendingUpload(1, PendingUpload{Stage: UploadRightsPending})

	if _, owns := store.ClearIfOwner(1, stale.Token); owns {
		t.Fatal("stale token should not clear the slot")
	}
	if snap := store.Get(1); snap.Kind != HasPendingUpload {
		t.Fatalf("slot should survive stale clear: %+v", snap)
	}
	if _, owns := store.ClearIfOwner(1, fresh.Token); !owns {
		t.Fatal("owner token should clear the slot")
	}
	if snap := store.Get(1); snap.Kind != NoSession {
		t.Fatalf("slot should be empty: %+v", snap)
	}
}

func TestClearIfOwnerHandsBackTempPaths(t *testing.T) {
	var disposed []string
	store := NewStore(func(paths []string) { disposed = append(disposed, paths...) })

	pending := store.SetPendingUpload(1, PendingUpload{Stage: UploadProcessing})
	if _, err := store.MutateUpload(1, pending.Token, func(p *PendingUpload) error {
		p.TempPaths = append(p.TempPaths, "/tmp/1/out.mp3")
		return nil
	}); err != nil {
		t.Fatalf("MutateUpload: %v", err)
	}

	orphans, owns := store.ClearIfOwner(1, pending.Token)
	if !owns {
		t.Fatal("owner token should clear the slot")
	}
	if len(orphans) != 1 || orphans[0] != "/tmp/1/out.mp3" {
		t.Fatalf("temp paths not handed back: %v", orphans)
	}
	// The owner reclaims its own files after delivery; the disposer is
	// reserved for supersede and Clear.
	if len(disposed) != 0 {
		t.Fatalf("owner clear must not dispose: %v", disposed)
	}
}

func TestClearReportsPendingWork(t *testing.T) {
	store := NewStore(nil)
	if store.Clear(1) {
		t.Fatal("empty slot should report nothing cleared")
	}
	store.SetPendingUpload(1, PendingUpload{Stage: UploadRightsPending})
	if !store.Clear(1) {
		t.Fatal("pending upload should report cleared")
	}
	if store.Clear(1) {
		t.Fatal("second clear should find nothing")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewStore(nil)
	store.SetPendingUpload(1, PendingUpload{Stage: UploadRightsPending, FileName: "a.mp4"})

	snap := store.Get(1)
	snap.Upload.FileName = "tampered"
	snap.Upload.TempPaths = append(snap.Upload.TempPaths, "/x")

	again := store.Get(1)
	if again.Upload.FileName != "a.mp4" || len(again.Upload.TempPaths) != 0 {
		t.Fatalf("snapshot mutation leaked into store: %+v", again.Upload)
	}
}

func TestActiveUsers(t *testing.T) {
	store := NewStore(nil)
	store.SetPendingUpload(1, PendingUpload{Stage: UploadRightsPending})
	store.SetPendingDownload(2, PendingDownload{Stage: DownloadFormatPending})
	store.SetPendingUpload(3, PendingUpload{Stage: UploadRightsPending})
	store.Clear(3)

	active := store.ActiveUsers()
	if len(active) != 2 {
		t.Fatalf("expected 2 active users, got %d", len(active))
	}
	for _, snap := range active {
		if snap.Kind == NoSession {
			t.Fatalf("empty slot reported active: %+v", snap)
		}
	}
}

func TestConcurrentUsersDoNotInterfere(t *testing.T) {
	store := NewStore(nil)
	var wg sync.WaitGroup
	for userID := int64(1); userID <= 8; userID++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				pending := store.SetPendingUpload(userID, PendingUpload{Stage: UploadRightsPending})
				if _, err := store.MutateUpload(userID, pending.Token, func(p *PendingUpload) error {
					p.Stage = UploadActionPending
					return nil
				}); err != nil {
					t.Errorf("user %d mutate: %v", userID, err)
					return
				}
				if _, owns := store.ClearIfOwner(userID, pending.Token); !owns {
					t.Errorf("user %d lost slot ownership", userID)
					return
				}
			}
		}(userID)
	}
	wg.Wait()
}
