package tasks

import (
	"context"

	"github.com/desertthunder/monthly/internal/services"
	"github.com/desertthunder/monthly/internal/shared"
)

// membershipPageSize is the page size used when listing a playlist's tracks.
const membershipPageSize = services.MaxPlaylistPageSize

// PlaylistEditor is the part of the remote client a [Collection] needs.
type PlaylistEditor interface {
	PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*services.SpotifyPaginatedPlaylistTracks, error)
	AddToPlaylist(ctx context.Context, playlistID string, trackIDs []string) (*services.SpotifySnapshot, error)
}

// AddOutcome reports what [Collection.AddItem] did.
type AddOutcome int

const (
	Added AddOutcome = iota
	AlreadyPresent
)

func (o AddOutcome) String() string {
	if o == AlreadyPresent {
		return "already_present"
	}
	return "added"
}

// Collection is a playlist with lazily loaded membership.
//
// Once loaded, members holds the remote membership at load time plus every track added through
// this Collection. It is never re-fetched, so edits made elsewhere during a run are not seen.
type Collection struct {
	ID   string
	Name string

	editor  PlaylistEditor
	members map[string]struct{}
}

// NewCollection wraps a playlist record.
func NewCollection(editor PlaylistEditor, raw services.SpotifyPlaylist) *Collection {
	return &Collection{ID: raw.ID, Name: raw.Name, editor: editor}
}

// Loaded reports whether membership has been fetched.
func (c *Collection) Loaded() bool {
	return c.members != nil
}

// Len returns the number of known members, 0 before loading.
func (c *Collection) Len() int {
	return len(c.members)
}

// AddItem adds item to the playlist unless it is already a member.
//
// Membership is loaded on first use. A failed load leaves the Collection unloaded so the next
// call tries again. A failed add leaves local membership untouched.
func (c *Collection) AddItem(ctx context.Context, item Item) (AddOutcome, error) {
	if c.members == nil {
		members, err := c.fetchMembers(ctx)
		if err != nil {
			return Added, err
		}
		c.members = members
	}

	if _, ok := c.members[item.ID]; ok {
		return AlreadyPresent, nil
	}

	if _, err := c.editor.AddToPlaylist(ctx, c.ID, []string{item.ID}); err != nil {
		return Added, err
	}

	c.members[item.ID] = struct{}{}
	return Added, nil
}

// CollectionIndex holds playlists in listing order. Lookups are by exact name and the first match
// wins, so a duplicated name resolves to the earliest listed playlist.
type CollectionIndex struct {
	ordered []*Collection
	byName  map[string]*Collection
}

func NewCollectionIndex() *CollectionIndex {
	return &CollectionIndex{byName: make(map[string]*Collection)}
}

// Insert appends c. An earlier playlist with the same name keeps precedence.
func (x *CollectionIndex) Insert(c *Collection) {
	x.ordered = append(x.ordered, c)
	if _, ok := x.byName[c.Name]; !ok {
		x.byName[c.Name] = c
	}
}

// Find returns the first playlist named name, or nil.
func (x *CollectionIndex) Find(name string) *Collection {
	return x.byName[name]
}

func (x *CollectionIndex) Len() int {
	return len(x.ordered)
}

// All returns the playlists in insertion order.
func (x *CollectionIndex) All() []*Collection {
	return x.ordered
}

// fetchMembers pages through the whole playlist so large playlists are never truncated.
// Items without a track id (removed tracks, local files) are skipped.
func (c *Collection) fetchMembers(ctx context.Context) (map[string]struct{}, error) {
	members := make(map[string]struct{})
	offset := 0

	for {
		page, err := c.editor.PlaylistItems(ctx, c.ID, membershipPageSize, offset)
		if err != nil {
			if shared.IsTransport(err) {
				return nil, err
			}
			return nil, &shared.RemoteError{Op: "playlist items", Err: err}
		}

		for _, entry := range page.Items {
			if entry.Track == nil || entry.Track.ID == "" {
				continue
			}
			members[entry.Track.ID] = struct{}{}
		}

		if len(page.Items) < membershipPageSize {
			return members, nil
		}
		offset += membershipPageSize
	}
}
