package session

import (
	"sync"
	"testing"
	"time"
)

func TestGetOrCreateIsStablePerID(t *testing.T) {
	st := NewStore(0)
	first := st.GetOrCreate("s1")
	if first.ID != "s1" {
		t.Fatalf("GetOrCreate ID = %q, want s1", first.ID)
	}

	if _, err := st.Update("s1", func(s *Session) error {
		s.LastAction = "greeted"
		return nil
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	again := st.GetOrCreate("s1")
	if again.LastAction != "greeted" {
		t.Fatalf("session not shared across turns: LastAction = %q", again.LastAction)
	}
	if st.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", st.Len())
	}
}

func TestUpdateSerializesPerSession(t *testing.T) {
	st := NewStore(0)
	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = st.Update("shared", func(s *Session) error {
				// Non-atomic read-modify-write; only per-id locking keeps it exact.
				n := len(s.Turns)
				s.Turns = append(s.Turns, Turn{Role: "client", Text: "x"})
				if len(s.Turns) != n+1 {
					t.Errorf("turn append raced")
				}
				return nil
			})
		}()
	}
	wg.Wait()

	got := st.GetOrCreate("shared")
	if len(got.Turns) != workers {
		t.Fatalf("Turns = %d, want %d", len(got.Turns), workers)
	}
}

func TestSnapshotsDoNotAliasStoreState(t *testing.T) {
	st := NewStore(0)
	_, _ = st.Update("s1", func(s *Session) error {
		s.SetSlot("client_name", "Acme")
		return nil
	})
	snap := st.GetOrCreate("s1")
	snap.Slots[0].Value = "mutated"
	snap.SetSlot("services", "leaked")

	fresh := st.GetOrCreate("s1")
	if v, _ := fresh.Slot("client_name"); v != "Acme" {
		t.Fatalf("snapshot mutation leaked into store: %q", v)
	}
	if _, ok := fresh.Slot("services"); ok {
		t.Fatalf("snapshot append leaked into store")
	}
}

func TestSlotOrderIsCollectionOrder(t *testing.T) {
	s := &Session{}
	s.SetSlot("client_name", "Acme")
	s.SetSlot("services", "Website")
	s.SetSlot("client_name", "Acme Corp") // update keeps position
	if s.Slots[0].Name != "client_name" || s.Slots[1].Name != "services" {
		t.Fatalf("slot order = %v, want collection order", s.Slots)
	}
	if s.Slots[0].Value != "Acme Corp" {
		t.Fatalf("slot update lost: %v", s.Slots[0])
	}
}

func TestObjectionsAreAnOrderedSet(t *testing.T) {
	s := &Session{}
	s.AddObjection("timing")
	s.AddObjection("pricing")
	s.AddObjection("timing")
	if len(s.Objections) != 2 || s.Objections[0] != "timing" {
		t.Fatalf("Objections = %v, want [timing pricing]", s.Objections)
	}
	if !s.HasObjection("pricing") || s.HasObjection("trust") {
		t.Fatalf("HasObjection misreported")
	}
}

func TestEvictIdleRespectsTTL(t *testing.T) {
	st := NewStore(time.Hour)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st.SetClock(func() time.Time { return current })

	st.GetOrCreate("old")
	current = current.Add(2 * time.Hour)
	st.GetOrCreate("fresh")

	st.evictIdle()
	if st.Len() != 1 {
		t.Fatalf("Len() after evict = %d, want 1", st.Len())
	}
	if got := st.GetOrCreate("fresh"); got.LastAction != "" {
		t.Fatalf("fresh session replaced unexpectedly")
	}
}

func TestEvictIdleNeverBlocksOnInFlightTurn(t *testing.T) {
	st := NewStore(time.Hour)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st.SetClock(func() time.Time { return base })
	st.GetOrCreate("stale")

	st.SetClock(func() time.Time { return base.Add(2 * time.Hour) })
	st.GetOrCreate("busy")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := st.Update("busy", func(s *Session) error {
			close(entered)
			<-release
			return nil
		})
		done <- err
	}()
	<-entered

	swept := make(chan struct{})
	go func() {
		st.evictIdle()
		close(swept)
	}()
	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("evictIdle blocked behind an in-flight turn")
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Update never returned after the sweep")
	}

	if st.Len() != 1 {
		t.Fatalf("Len() after sweep = %d, want 1 (stale evicted, busy kept)", st.Len())
	}
	if got := st.GetOrCreate("busy"); got.LastActivityAt.IsZero() {
		t.Fatalf("busy session lost its activity stamp")
	}
}
