package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/monthly/internal/services"
	"github.com/desertthunder/monthly/internal/shared"
	tu "github.com/desertthunder/monthly/internal/testing"
)

func TestCollection(t *testing.T) {
	ctx := context.Background()

	newCollection := func(lib *tu.FakeLibrary, id, name string) *Collection {
		return NewCollection(lib, services.SpotifyPlaylist{ID: id, Name: name, Type: "playlist"})
	}

	t.Run("loads membership lazily", func(t *testing.T) {
		lib := tu.NewFakeLibrary("user")
		lib.AddPlaylist("p1", "Jan '24", "x", "y")
		c := newCollection(lib, "p1", "Jan '24")

		if c.Loaded() {
			t.Fatal("expected collection to start unloaded")
		}
		if lib.CallCount(tu.OpPlaylistItems) != 0 {
			t.Fatal("expected no membership fetch before first add")
		}

		outcome, err := c.AddItem(ctx, Item{ID: "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome != AlreadyPresent {
			t.Errorf("expected %v, got %v", AlreadyPresent, outcome)
		}
		if !c.Loaded() || c.Len() != 2 {
			t.Errorf("expected 2 loaded members, got loaded=%v len=%d", c.Loaded(), c.Len())
		}
		if n := len(lib.MutationsOf(tu.OpAddToPlaylist)); n != 0 {
			t.Errorf("expected no add calls, got %d", n)
		}
	})

	t.Run("adding same item twice issues one add", func(t *testing.T) {
		lib := tu.NewFakeLibrary("user")
		lib.AddPlaylist("p1", "Jan '24")
		c := newCollection(lib, "p1", "Jan '24")
		item := Item{ID: "a", Name: "Song A"}

		first, err := c.AddItem(ctx, item)
		if err != nil {
			t.Fatalf("first add failed: %v", err)
		}
		second, err := c.AddItem(ctx, item)
		if err != nil {
			t.Fatalf("second add failed: %v", err)
		}

		if first != Added || second != AlreadyPresent {
			t.Errorf("expected added then already_present, got %v then %v", first, second)
		}
		if n := lib.CallCount(tu.OpAddToPlaylist); n != 1 {
			t.Errorf("expected 1 add call, got %d", n)
		}
		if n := lib.CallCount(tu.OpPlaylistItems); n != 1 {
			t.Errorf("expected membership to load once, got %d fetches", n)
		}
	})

	t.Run("pages through large playlists", func(t *testing.T) {
		lib := tu.NewFakeLibrary("user")
		members := make([]string, 0, 250)
		for i := range 250 {
			members = append(members, fmt.Sprintf("t%d", i))
		}
		lib.AddPlaylist("p1", "Jan '24", members...)
		c := newCollection(lib, "p1", "Jan '24")

		outcome, err := c.AddItem(ctx, Item{ID: "t249"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome != AlreadyPresent {
			t.Errorf("expected member on the last page to be present, got %v", outcome)
		}
		if n := lib.CallCount(tu.OpPlaylistItems); n != 3 {
			t.Errorf("expected 3 membership pages, got %d", n)
		}
	})

	t.Run("exact page multiple fetches one empty page", func(t *testing.T) {
		lib := tu.NewFakeLibrary("user")
		members := make([]string, 0, 100)
		for i := range 100 {
			members = append(members, fmt.Sprintf("t%d", i))
		}
		lib.AddPlaylist("p1", "Jan '24", members...)
		c := newCollection(lib, "p1", "Jan '24")

		if _, err := c.AddItem(ctx, Item{ID: "new"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := lib.CallCount(tu.OpPlaylistItems); n != 2 {
			t.Errorf("expected 2 membership pages, got %d", n)
		}
		if c.Len() != 101 {
			t.Errorf("expected 101 members, got %d", c.Len())
		}
	})

	t.Run("failed load retries on next call", func(t *testing.T) {
		lib := tu.NewFakeLibrary("user")
		lib.AddPlaylist("p1", "Jan '24", "x")
		lib.ErrQueue[tu.OpPlaylistItems] = []error{errors.New("connection reset")}
		c := newCollection(lib, "p1", "Jan '24")

		_, err := c.AddItem(ctx, Item{ID: "a"})
		if !shared.IsTransport(err) {
			t.Fatalf("expected transport error, got %v", err)
		}
		if c.Loaded() {
			t.Error("expected collection to stay unloaded after failed fetch")
		}
		if n := lib.CallCount(tu.OpAddToPlaylist); n != 0 {
			t.Errorf("expected no add calls after failed load, got %d", n)
		}

		outcome, err := c.AddItem(ctx, Item{ID: "x"})
		if err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if outcome != AlreadyPresent {
			t.Errorf("expected %v after retry, got %v", AlreadyPresent, outcome)
		}
	})

	t.Run("failed add leaves membership untouched", func(t *testing.T) {
		lib := tu.NewFakeLibrary("user")
		lib.AddPlaylist("p1", "Jan '24")
		lib.ErrQueue[tu.OpAddToPlaylist] = []error{&shared.TransportError{Op: "add", Status: 500}}
		c := newCollection(lib, "p1", "Jan '24")
		item := Item{ID: "a"}

		if _, err := c.AddItem(ctx, item); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("expected no local members after failed add, got %d", c.Len())
		}

		outcome, err := c.AddItem(ctx, item)
		if err != nil {
			t.Fatalf("second add failed: %v", err)
		}
		if outcome != Added {
			t.Errorf("expected %v on second attempt, got %v", Added, outcome)
		}
		if got := lib.MembersOf("p1"); len(got) != 1 || got[0] != "a" {
			t.Errorf("expected remote members [a], got %v", got)
		}
	})
}

func TestCollectionIndex(t *testing.T) {
	lib := tu.NewFakeLibrary("user")
	index := NewCollectionIndex()
	index.Insert(NewCollection(lib, services.SpotifyPlaylist{ID: "p1", Name: "Jan '24"}))
	index.Insert(NewCollection(lib, services.SpotifyPlaylist{ID: "p2", Name: "Jan '24"}))
	index.Insert(NewCollection(lib, services.SpotifyPlaylist{ID: "p3", Name: "jan '24"}))

	t.Run("first match wins", func(t *testing.T) {
		if c := index.Find("Jan '24"); c == nil || c.ID != "p1" {
			t.Errorf("expected p1, got %+v", c)
		}
	})

	t.Run("match is exact", func(t *testing.T) {
		if c := index.Find("jan '24"); c == nil || c.ID != "p3" {
			t.Errorf("expected p3, got %+v", c)
		}
		if c := index.Find("Feb '24"); c != nil {
			t.Errorf("expected no match, got %+v", c)
		}
	})

	t.Run("keeps every playlist", func(t *testing.T) {
		if index.Len() != 3 || len(index.All()) != 3 {
			t.Errorf("expected 3 playlists, got %d", index.Len())
		}
	})
}
