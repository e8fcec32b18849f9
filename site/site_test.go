package site

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/scholarpage/content"
)

type memBackend struct {
	mu   sync.Mutex
	docs map[string][]byte
	fail bool
}

func newMemBackend() *memBackend {
	return &memBackend{docs: make(map[string][]byte)}
}

func (b *memBackend) GetDocument(key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (b *memBackend) PutDocument(key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("disk full")
	}
	b.docs[key] = append([]byte(nil), data...)
	return nil
}

func (b *memBackend) DeleteDocument(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.docs, key)
	return nil
}

func testLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func testSite(title string) content.Site {
	s := content.Site{
		Profile: content.Profile{Name: map[string]string{"en": "Jane Doe"}, Title: title, Email: "jane@example.edu"},
		News:    []content.NewsItem{{Date: "2024.01", Icon: "🎉", Content: "Hello"}},
	}
	s.Normalize()
	return s
}

// fixedClock returns the same instant on every call, so snapshot IDs must be
// made unique by the manager itself.
func fixedClock() time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *memBackend) {
	t.Helper()
	b := newMemBackend()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	m := NewManager(NewState(content.Site{}), b, testLogger(), opts...)
	if err := m.Load(testSite("v0")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m, b
}

func TestStateReplaceNotifies(t *testing.T) {
	st := NewState(testSite("a"))
	var got []uint64
	st.Subscribe(func(s content.Site, rev uint64) {
		if s.Profile.Title != "b" {
			t.Errorf("subscriber saw title %q", s.Profile.Title)
		}
		got = append(got, rev)
	})
	if rev := st.Replace(testSite("b")); rev != 2 {
		t.Errorf("rev = %d, want 2", rev)
	}
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("notifications = %v", got)
	}
}

func TestStateCurrentIsCopy(t *testing.T) {
	st := NewState(testSite("a"))
	c := st.Current()
	c.News[0].Content = "changed"
	c.Profile.Name["en"] = "changed"
	if cur := st.Current(); cur.News[0].Content != "Hello" || cur.Profile.Name["en"] != "Jane Doe" {
		t.Error("mutating a returned copy changed the live state")
	}
}

func TestStateSubscribersRunInOrder(t *testing.T) {
	st := NewState(testSite("a"))
	var order []string
	st.Subscribe(func(content.Site, uint64) { order = append(order, "index") })
	st.Subscribe(func(content.Site, uint64) { order = append(order, "cache") })
	st.Replace(testSite("b"))
	st.Replace(testSite("c"))
	if got := strings.Join(order, ","); got != "index,cache,index,cache" {
		t.Errorf("order = %s", got)
	}
}

func TestStateSnapshot(t *testing.T) {
	st := NewState(testSite("a"))
	st.Replace(testSite("b"))
	s, rev := st.Snapshot()
	if rev != 2 || s.Profile.Title != "b" {
		t.Errorf("Snapshot = %q at %d, want \"b\" at 2", s.Profile.Title, rev)
	}
	s.News[0].Content = "changed"
	if st.Current().News[0].Content != "Hello" {
		t.Error("mutating the snapshot changed the live state")
	}
}

func TestLoadSeedsAndReloads(t *testing.T) {
	m, b := newTestManager(t)
	if _, ok := b.docs[KeySite]; !ok {
		t.Fatal("seed was not persisted")
	}
	if err := m.Commit(testSite("v1")); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	m2 := NewManager(NewState(content.Site{}), b, testLogger())
	if err := m2.Load(testSite("ignored")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := m2.State().Current().Profile.Title; got != "v1" {
		t.Errorf("reloaded title = %q, want v1", got)
	}
}

func TestSnapshotRingBuffer(t *testing.T) {
	m, _ := newTestManager(t)
	var last Snapshot
	for i := 0; i < 11; i++ {
		var err error
		if last, err = m.CreateSnapshot(""); err != nil {
			t.Fatalf("CreateSnapshot %d: %v", i, err)
		}
	}
	snaps, err := m.Snapshots()
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snaps) != DefaultMaxSnapshots {
		t.Fatalf("len = %d, want %d", len(snaps), DefaultMaxSnapshots)
	}
	if snaps[0].ID != last.ID {
		t.Errorf("newest snapshot should be first")
	}
	for i := 1; i < len(snaps); i++ {
		if snaps[i-1].ID <= snaps[i].ID {
			t.Errorf("ids not strictly decreasing at %d: %d, %d", i, snaps[i-1].ID, snaps[i].ID)
		}
	}
	if !strings.HasPrefix(snaps[0].Label, "Snapshot - ") {
		t.Errorf("default label = %q", snaps[0].Label)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m, _ := newTestManager(t)
	snap, err := m.CreateSnapshot("one")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Commit(testSite("v2")); err != nil {
		t.Fatal(err)
	}
	got, err := m.Snapshot(snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Data.Profile.Title != "v0" {
		t.Errorf("snapshot data changed with the live site: %q", got.Data.Profile.Title)
	}
}

func TestRestoreSnapshot(t *testing.T) {
	m, _ := newTestManager(t)
	snap, _ := m.CreateSnapshot("release")
	if err := m.Commit(testSite("v2")); err != nil {
		t.Fatal(err)
	}

	if _, err := m.RestoreSnapshot(snap.ID); err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}
	if got := m.State().Current().Profile.Title; got != "v0" {
		t.Errorf("title after restore = %q, want v0", got)
	}
	snaps, _ := m.Snapshots()
	if len(snaps) != 2 {
		t.Fatalf("len = %d, want 2", len(snaps))
	}
	if snaps[0].Label != "Before restore: release" || snaps[0].Data.Profile.Title != "v2" {
		t.Errorf("pre-restore snapshot = %q / %q", snaps[0].Label, snaps[0].Data.Profile.Title)
	}

	if _, err := m.RestoreSnapshot(12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestRestoreReplacesLists(t *testing.T) {
	m, _ := newTestManager(t)
	snap, _ := m.CreateSnapshot("small")
	big := testSite("big")
	big.News = append(big.News, content.NewsItem{Date: "2024.02", Content: "more"})
	if err := m.Commit(big); err != nil {
		t.Fatal(err)
	}
	if _, err := m.RestoreSnapshot(snap.ID); err != nil {
		t.Fatal(err)
	}
	if n := len(m.State().Current().News); n != 1 {
		t.Errorf("news after restore = %d, want 1", n)
	}
}

func TestImportSnapshotsFirst(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Import(testSite("imported")); err != nil {
		t.Fatalf("Import: %v", err)
	}
	snaps, _ := m.Snapshots()
	if len(snaps) != 1 || snaps[0].Label != "Before import" || snaps[0].Data.Profile.Title != "v0" {
		t.Errorf("snapshots = %+v", snaps)
	}
	if got := m.State().Current().Profile.Title; got != "imported" {
		t.Errorf("title = %q", got)
	}
}

func TestDeleteAndClearSnapshots(t *testing.T) {
	m, _ := newTestManager(t)
	a, _ := m.CreateSnapshot("a")
	b, _ := m.CreateSnapshot("b")
	if err := m.DeleteSnapshot(a.ID); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if err := m.DeleteSnapshot(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	snaps, _ := m.Snapshots()
	if len(snaps) != 1 || snaps[0].ID != b.ID {
		t.Errorf("snapshots = %+v", snaps)
	}
	if err := m.ClearSnapshots(); err != nil {
		t.Fatal(err)
	}
	if snaps, _ := m.Snapshots(); len(snaps) != 0 {
		t.Errorf("len after clear = %d", len(snaps))
	}
}

func TestCorruptHistoryIsDropped(t *testing.T) {
	m, b := newTestManager(t)
	b.docs[KeySnapshots] = []byte("{broken")
	snaps, err := m.Snapshots()
	if err != nil || len(snaps) != 0 {
		t.Errorf("Snapshots = %v, %v; want empty, nil", snaps, err)
	}
	if _, err := m.CreateSnapshot("fresh"); err != nil {
		t.Errorf("CreateSnapshot after corruption: %v", err)
	}
}

func TestCommitFailureLeavesState(t *testing.T) {
	m, b := newTestManager(t)
	b.fail = true
	if err := m.Commit(testSite("lost")); err == nil {
		t.Fatal("expected error")
	}
	if got := m.State().Current().Profile.Title; got != "v0" {
		t.Errorf("title = %q, live state should be untouched", got)
	}
}

func TestDrafts(t *testing.T) {
	m, _ := newTestManager(t)
	if _, ok := m.PendingDraft(); ok {
		t.Fatal("no draft expected")
	}

	// A draft equal to the live site is not worth a prompt.
	if err := m.SaveDraft(m.State().Current()); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.PendingDraft(); ok {
		t.Error("identical draft should not be pending")
	}

	if err := m.SaveDraft(testSite("draft")); err != nil {
		t.Fatal(err)
	}
	d, ok := m.PendingDraft()
	if !ok || d.Data.Profile.Title != "draft" {
		t.Fatalf("PendingDraft = %+v, %v", d, ok)
	}
	if !d.SavedAt.Equal(fixedClock()) {
		t.Errorf("SavedAt = %v", d.SavedAt)
	}
	if err := m.DiscardDraft(); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.PendingDraft(); ok {
		t.Error("draft still pending after discard")
	}
}

func TestStatistics(t *testing.T) {
	m, _ := newTestManager(t)
	m.CreateSnapshot("x")
	st := m.Statistics()
	if st.Versions != 1 || st.Content.NewsCount != 1 || st.Profile.Name != "Jane Doe" {
		t.Errorf("Statistics = %+v", st)
	}
	if st.LastUpdated != "2026-01-01T12:00:00Z" {
		t.Errorf("LastUpdated = %q", st.LastUpdated)
	}
}
