package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/fennlabs/fennlingo/internal/dialogue"
	"github.com/fennlabs/fennlingo/internal/session"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := session.NewMemoryStore(0)
	ctx := t.Context()

	if _, found, err := store.Get(ctx, "u1"); err != nil || found {
		t.Fatalf("Get on empty store = found %v, err %v", found, err)
	}

	want := dialogue.Session{State: dialogue.StateMainMenu, Language: "fr", Score: 3}
	if err := store.Put(ctx, "u1", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, found, err := store.Get(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("Get = found %v, err %v", found, err)
	}
	if got.State != want.State || got.Language != want.Language || got.Score != want.Score {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := session.NewMemoryStore(0)
	ctx := t.Context()

	if err := store.Put(ctx, "u1", dialogue.Session{State: dialogue.StateMainMenu}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := store.Get(ctx, "u1"); found {
		t.Fatal("session still there after Delete")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := session.NewMemoryStore(time.Millisecond)
	ctx := t.Context()

	if err := store.Put(ctx, "u1", dialogue.Session{State: dialogue.StateMainMenu}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, found, _ := store.Get(ctx, "u1"); found {
		t.Fatal("expired session still returned")
	}
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	store := session.NewMemoryStore(0)
	ctx := t.Context()

	_ = store.Put(ctx, "u1", dialogue.Session{State: dialogue.StateMainMenu, Language: "fr"})
	_ = store.Put(ctx, "u2", dialogue.Session{State: dialogue.StateContext, Language: "en"})

	got, _, _ := store.Get(ctx, "u2")
	if got.State != dialogue.StateContext || got.Language != "en" {
		t.Fatalf("u2 session = %+v", got)
	}
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := session.NewKeyedMutex()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("u1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
}

func TestKeyedMutexDoesNotBlockOtherKeys(t *testing.T) {
	km := session.NewKeyedMutex()

	unlock := km.Lock("u1")
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := km.Lock("u2")
		u()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}
