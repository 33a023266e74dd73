// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/monthly/internal/services"
)

// Operation names used to key [FakeLibrary] error injection and call counts.
const (
	OpUserProfile    = "UserProfile"
	OpSavedTracks    = "SavedTracks"
	OpUserPlaylists  = "UserPlaylists"
	OpPlaylistItems  = "PlaylistItems"
	OpCreatePlaylist = "CreatePlaylist"
	OpAddToPlaylist  = "AddToPlaylist"
)

// Mutation records a write made against a [FakeLibrary].
type Mutation struct {
	Op         string
	PlaylistID string
	Name       string
	TrackIDs   []string
}

// FakeLibrary is an in-memory Spotify account with limit/offset paging.
//
// Saved is served in the order given, so tests list it newest first like the real API does.
// Errs fails an operation on every call; ErrQueue fails the next calls in order, where a nil
// entry lets that call through.
type FakeLibrary struct {
	mu sync.Mutex

	UserID     string
	Saved      []services.SpotifySavedTrack
	Playlists  []services.SpotifyPlaylist
	Members    map[string][]string
	CreateType string

	Errs     map[string]error
	ErrQueue map[string][]error

	Calls     map[string]int
	Mutations []Mutation

	created int
}

// NewFakeLibrary returns an empty account owned by userID.
func NewFakeLibrary(userID string) *FakeLibrary {
	return &FakeLibrary{
		UserID:   userID,
		Members:  make(map[string][]string),
		Errs:     make(map[string]error),
		ErrQueue: make(map[string][]error),
		Calls:    make(map[string]int),
	}
}

// SavedTrack builds a saved-track record.
func SavedTrack(id, name, addedAt string) services.SpotifySavedTrack {
	return services.SpotifySavedTrack{
		AddedAt: addedAt,
		Track:   &services.SpotifyTrack{ID: id, Name: name, Type: "track"},
	}
}

// AddPlaylist lists a playlist with the given members.
func (f *FakeLibrary) AddPlaylist(id, name string, trackIDs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Playlists = append(f.Playlists, services.SpotifyPlaylist{ID: id, Name: name, Type: "playlist"})
	f.Members[id] = append([]string(nil), trackIDs...)
}

// CallCount returns how many times op was called.
func (f *FakeLibrary) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

// MembersOf returns a copy of a playlist's track ids.
func (f *FakeLibrary) MembersOf(id string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Members[id]...)
}

// MutationsOf returns the recorded mutations for op.
func (f *FakeLibrary) MutationsOf(op string) []Mutation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Mutation
	for _, m := range f.Mutations {
		if m.Op == op {
			out = append(out, m)
		}
	}
	return out
}

// call counts op and returns the injected error, if any. Callers hold f.mu.
func (f *FakeLibrary) call(op string) error {
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[op]++

	if queue := f.ErrQueue[op]; len(queue) > 0 {
		f.ErrQueue[op] = queue[1:]
		return queue[0]
	}
	return f.Errs[op]
}

func page[T any](all []T, limit, offset int) ([]T, int) {
	if offset >= len(all) {
		return []T{}, len(all)
	}
	end := min(offset+limit, len(all))
	return append([]T(nil), all[offset:end]...), len(all)
}

func (f *FakeLibrary) UserProfile(ctx context.Context) (*services.SpotifyUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpUserProfile); err != nil {
		return nil, err
	}
	return &services.SpotifyUser{ID: f.UserID}, nil
}

func (f *FakeLibrary) SavedTracks(ctx context.Context, limit, offset int) (*services.SpotifyPaginatedTracks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpSavedTracks); err != nil {
		return nil, err
	}
	items, total := page(f.Saved, limit, offset)
	return &services.SpotifyPaginatedTracks{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (f *FakeLibrary) UserPlaylists(ctx context.Context, limit, offset int) (*services.SpotifyPaginatedPlaylists, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpUserPlaylists); err != nil {
		return nil, err
	}
	items, total := page(f.Playlists, limit, offset)
	return &services.SpotifyPaginatedPlaylists{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (f *FakeLibrary) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*services.SpotifyPaginatedPlaylistTracks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpPlaylistItems); err != nil {
		return nil, err
	}

	entries := make([]services.SpotifyPlaylistTrack, 0, len(f.Members[playlistID]))
	for _, id := range f.Members[playlistID] {
		entries = append(entries, services.SpotifyPlaylistTrack{Track: &services.SpotifyTrack{ID: id, Type: "track"}})
	}
	items, total := page(entries, limit, offset)
	return &services.SpotifyPaginatedPlaylistTracks{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (f *FakeLibrary) CreatePlaylist(ctx context.Context, userID, name string) (*services.SpotifyPlaylist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpCreatePlaylist); err != nil {
		return nil, err
	}

	f.created++
	playlist := services.SpotifyPlaylist{
		ID:    fmt.Sprintf("created-%d", f.created),
		Name:  name,
		Type:  "playlist",
		Owner: services.Owner{ID: userID},
	}
	if f.CreateType != "" {
		playlist.Type = f.CreateType
	}

	f.Playlists = append(f.Playlists, playlist)
	if f.Members == nil {
		f.Members = make(map[string][]string)
	}
	f.Members[playlist.ID] = nil
	f.Mutations = append(f.Mutations, Mutation{Op: OpCreatePlaylist, PlaylistID: playlist.ID, Name: name})
	return &playlist, nil
}

func (f *FakeLibrary) AddToPlaylist(ctx context.Context, playlistID string, trackIDs []string) (*services.SpotifySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpAddToPlaylist); err != nil {
		return nil, err
	}

	f.Members[playlistID] = append(f.Members[playlistID], trackIDs...)
	f.Mutations = append(f.Mutations, Mutation{
		Op:         OpAddToPlaylist,
		PlaylistID: playlistID,
		TrackIDs:   append([]string(nil), trackIDs...),
	})
	return &services.SpotifySnapshot{SnapshotID: fmt.Sprintf("snap-%d", len(f.Mutations))}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
