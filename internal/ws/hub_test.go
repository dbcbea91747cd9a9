package ws

import (
	"errors"
	"sort"
	"testing"
)

// fakeSender records every event it accepts.
type fakeSender struct {
	events []Event
	fail   bool
}

func (f *fakeSender) Send(e Event) error {
	if f.fail {
		return errors.New("send fail")
	}
	f.events = append(f.events, e)
	return nil
}

// lastOnline returns the online set carried by the most recent
// getOnlineUsers event delivered to f, or nil if none arrived.
func (f *fakeSender) lastOnline(t *testing.T) []string {
	t.Helper()
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].Name == EventOnlineUsers {
			users, ok := f.events[i].Data.([]string)
			if !ok {
				t.Fatalf("getOnlineUsers payload has type %T", f.events[i].Data)
			}
			sorted := append([]string(nil), users...)
			sort.Strings(sorted)
			return sorted
		}
	}
	return nil
}

func TestHub_ConnectBroadcastsOnlineSet(t *testing.T) {
	hub := NewHub(NewRegistry())

	alice := &fakeSender{}
	bob := &fakeSender{}

	hub.Connect("alice", alice)
	hub.Connect("bob", bob)

	// both connections must have observed the broadcast that followed bob's
	// registration, and it must already include bob
	want := []string{"alice", "bob"}
	for name, s := range map[string]*fakeSender{"alice": alice, "bob": bob} {
		got := s.lastOnline(t)
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("%s saw online set %v, want %v", name, got, want)
		}
	}
}

func TestHub_DisconnectRemovesListenerAndPresence(t *testing.T) {
	hub := NewHub(NewRegistry())

	alice := &fakeSender{}
	bob := &fakeSender{}

	aliceConn := hub.Connect("alice", alice)
	hub.Connect("bob", bob)

	hub.Disconnect("alice", aliceConn)

	if got := bob.lastOnline(t); len(got) != 1 || got[0] != "bob" {
		t.Fatalf("bob saw online set %v after alice left, want [bob]", got)
	}

	// the listener is gone: targeted sends must report failure
	if hub.SendTo(aliceConn, Event{Name: EventNewMessage}) {
		t.Fatal("SendTo succeeded for a disconnected connection")
	}
	if hub.ConnCount() != 1 {
		t.Fatalf("expected 1 live connection, got %d", hub.ConnCount())
	}
}

func TestHub_AnonymousConnectionGetsBroadcastsNotPresence(t *testing.T) {
	reg := NewRegistry()
	hub := NewHub(reg)

	anon := &fakeSender{}
	hub.Connect("", anon)

	alice := &fakeSender{}
	hub.Connect("alice", alice)

	// the anonymous connection observes presence changes
	if got := anon.lastOnline(t); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("anonymous connection saw %v, want [alice]", got)
	}
	// but never appears in them
	if len(reg.Snapshot()) != 1 {
		t.Fatalf("anonymous connection leaked into presence: %v", reg.Snapshot())
	}
}

func TestHub_SecondDeviceSupersedesPresence(t *testing.T) {
	reg := NewRegistry()
	hub := NewHub(reg)

	device1 := &fakeSender{}
	device2 := &fakeSender{}

	conn1 := hub.Connect("alice", device1)
	conn2 := hub.Connect("alice", device2)

	// presence points at the most recent device only
	if got, _ := reg.Lookup("alice"); got != conn2 {
		t.Fatalf("Lookup(alice) = %q, want newest connection %q", got, conn2)
	}

	// the older device disconnecting later must not knock the newer one offline
	hub.Disconnect("alice", conn1)
	if got, ok := reg.Lookup("alice"); !ok || got != conn2 {
		t.Fatalf("stale disconnect removed newer registration: %q, %v", got, ok)
	}
}

func TestHub_BroadcastFailureIsIsolated(t *testing.T) {
	hub := NewHub(NewRegistry())

	broken := &fakeSender{fail: true}
	healthy := &fakeSender{}

	hub.Connect("broken", broken)
	hub.Connect("healthy", healthy)

	// the broken connection must not prevent the healthy one from
	// receiving the broadcast
	if got := healthy.lastOnline(t); len(got) != 2 {
		t.Fatalf("healthy connection missed the broadcast: %v", got)
	}
}
