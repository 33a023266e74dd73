package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/monthly/internal/services"
	"github.com/desertthunder/monthly/internal/shared"
)

// PageSize is the page size for the saved tracks and playlists listings.
const PageSize = services.MaxPageSize

// ErrRunInProgress is returned when Run is called while another run on the same Synchronizer is active.
var ErrRunInProgress = errors.New("sync run already in progress")

// Library is the remote client the [Synchronizer] drives. [services.SpotifyService] implements it.
type Library interface {
	PlaylistEditor
	UserProfile(ctx context.Context) (*services.SpotifyUser, error)
	SavedTracks(ctx context.Context, limit, offset int) (*services.SpotifyPaginatedTracks, error)
	UserPlaylists(ctx context.Context, limit, offset int) (*services.SpotifyPaginatedPlaylists, error)
	CreatePlaylist(ctx context.Context, userID, name string) (*services.SpotifyPlaylist, error)
}

// SynchronizerOpts configures a [Synchronizer].
type SynchronizerOpts struct {
	Watermark  time.Time   // Tracks liked at or before this instant are ignored. Defaults to the start of the current month.
	NameFormat string      // Go time layout naming monthly playlists. Defaults to [shared.DefaultNameFormat].
	UserID     string      // Playlist owner. Resolved with UserProfile on first use when empty.
	Logger     *log.Logger // Defaults to [shared.NewLogger].
}

// Synchronizer adds newly liked tracks to month-named playlists.
//
// The watermark is the only state kept between runs. Runs on one Synchronizer are serialized;
// separate Synchronizers against the same account must not run concurrently, since racing
// find-or-create calls can create duplicate playlists.
type Synchronizer struct {
	library Library
	logger  *log.Logger
	layout  string

	mu        sync.Mutex
	watermark time.Time
	userID    string
}

// NewSynchronizer creates a Synchronizer for library.
func NewSynchronizer(library Library, opts SynchronizerOpts) *Synchronizer {
	if opts.Watermark.IsZero() {
		opts.Watermark = shared.StartOfMonth(time.Now())
	}
	if opts.NameFormat == "" {
		opts.NameFormat = shared.DefaultNameFormat
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Synchronizer{
		library:   library,
		logger:    opts.Logger,
		layout:    opts.NameFormat,
		watermark: opts.Watermark,
		userID:    opts.UserID,
	}
}

// Watermark returns the instant after which liked tracks count as new.
func (s *Synchronizer) Watermark() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark
}

// Addition records one reconciled item.
type Addition struct {
	Item     Item
	Playlist string
	Outcome  AddOutcome
}

// RunResult summarizes one run. On abort, it holds whatever was done before the failure.
type RunResult struct {
	Phase     Phase      // Done or Aborted
	FailedIn  Phase      // Phase that failed, when Phase is Aborted
	Fetched   int        // Saved tracks fetched
	New       int        // Saved tracks newer than the watermark
	Additions []Addition // Reconciled items, in processing order
	Created   []string   // Playlists created during the run
	Watermark time.Time  // Watermark after the run
}

// Added returns the number of items added to a playlist.
func (r *RunResult) Added() int {
	n := 0
	for _, a := range r.Additions {
		if a.Outcome == Added {
			n++
		}
	}
	return n
}

// Skipped returns the number of items that were already in their playlist.
func (r *RunResult) Skipped() int {
	return len(r.Additions) - r.Added()
}

// Run performs one sync: fetch saved tracks, keep the new ones, and add each to its month's playlist.
//
// The first failure aborts the run and leaves the watermark unchanged. A partially reconciled run
// has no rollback; running again is safe because tracks already added are detected and skipped.
func (s *Synchronizer) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	watermark := s.watermark
	result := &RunResult{Phase: Idle, Watermark: watermark}
	logger := s.logger.With("since", watermark.Format(time.RFC3339))

	abort := func(phase Phase, msg string, err error) (*RunResult, error) {
		result.Phase = Aborted
		result.FailedIn = phase
		logger.Error(msg, "phase", phase, "err", err)
		sendProgress(progress, abortedUpdate(phase, err))
		return result, fmt.Errorf("%s: %w", msg, err)
	}

	saved, err := s.fetchSaved(ctx, watermark, progress)
	if err != nil {
		return abort(FetchingSaved, "error loading saved items", err)
	}
	result.Fetched = len(saved)

	fresh := filterNew(saved, watermark)
	result.New = len(fresh)
	sendProgress(progress, filteredUpdate(len(fresh), len(saved)))

	if len(fresh) == 0 {
		logger.Info("No new songs")
		result.Phase = Done
		sendProgress(progress, doneUpdate(result))
		return result, nil
	}

	index, err := s.fetchCollections(ctx, progress)
	if err != nil {
		return abort(FetchingCollections, "error loading playlists", err)
	}

	if err := s.reconcile(ctx, index, fresh, result, progress); err != nil {
		return abort(Reconciling, "error during playlist creation/detection", err)
	}

	if newest := newestLikedAt(saved); newest.After(watermark) {
		s.watermark = newest
	}
	result.Watermark = s.watermark
	result.Phase = Done

	logger.Info("sync complete", "added", result.Added(), "skipped", result.Skipped(),
		"created", len(result.Created), "watermark", s.watermark.Format(time.RFC3339))
	sendProgress(progress, doneUpdate(result))
	return result, nil
}

// fetchSaved widens the fetch one page at a time until the oldest fetched track is no newer than
// watermark or the library is exhausted. Items keep the remote's newest-first order.
func (s *Synchronizer) fetchSaved(ctx context.Context, watermark time.Time, progress chan<- ProgressUpdate) ([]Item, error) {
	var items []Item

	for offset, page := 0, 1; ; offset, page = offset+PageSize, page+1 {
		resp, err := s.library.SavedTracks(ctx, PageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, raw := range resp.Items {
			item, err := NewItem(raw)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}

		s.logger.Debug("fetched saved tracks page", "offset", offset, "count", len(resp.Items))
		sendProgress(progress, savedPageUpdate(page, len(items)))

		if len(resp.Items) < PageSize {
			return items, nil
		}
		if !items[len(items)-1].LikedAt.After(watermark) {
			return items, nil
		}
	}
}

// filterNew returns the items liked strictly after watermark, preserving order.
func filterNew(items []Item, watermark time.Time) []Item {
	var fresh []Item
	for _, item := range items {
		if item.LikedAt.After(watermark) {
			fresh = append(fresh, item)
		}
	}
	return fresh
}

// newestLikedAt returns the latest LikedAt among items.
func newestLikedAt(items []Item) time.Time {
	var newest time.Time
	for _, item := range items {
		if item.LikedAt.After(newest) {
			newest = item.LikedAt
		}
	}
	return newest
}

// fetchCollections lists every playlist the user follows or owns.
func (s *Synchronizer) fetchCollections(ctx context.Context, progress chan<- ProgressUpdate) (*CollectionIndex, error) {
	index := NewCollectionIndex()

	for offset, page := 0, 1; ; offset, page = offset+PageSize, page+1 {
		resp, err := s.library.UserPlaylists(ctx, PageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, raw := range resp.Items {
			index.Insert(NewCollection(s.library, raw))
		}
		sendProgress(progress, playlistPageUpdate(page, index.Len()))

		if len(resp.Items) < PageSize {
			return index, nil
		}
	}
}

// group is a run of items that share a playlist name.
type group struct {
	key   string
	items []Item
}

// groupByKey buckets items by playlist name. Groups appear in the order their first item does and
// items keep their relative order, whatever the order of the input.
func groupByKey(items []Item, layout string) []group {
	var groups []group
	positions := make(map[string]int)

	for _, item := range items {
		key := item.Key(layout)
		pos, ok := positions[key]
		if !ok {
			pos = len(groups)
			positions[key] = pos
			groups = append(groups, group{key: key})
		}
		groups[pos].items = append(groups[pos].items, item)
	}
	return groups
}

// reconcile adds every item to its month's playlist, recording progress into result.
func (s *Synchronizer) reconcile(ctx context.Context, index *CollectionIndex, items []Item, result *RunResult, progress chan<- ProgressUpdate) error {
	step := 0
	for _, g := range groupByKey(items, s.layout) {
		collection, created, err := s.findOrCreate(ctx, index, g.key)
		if err != nil {
			return err
		}
		if created {
			result.Created = append(result.Created, collection.Name)
			s.logger.Infof("%s was created", collection.Name)
			sendProgress(progress, createdUpdate(collection.Name))
		}

		for _, item := range g.items {
			outcome, err := collection.AddItem(ctx, item)
			if err != nil {
				return fmt.Errorf("adding %q to %s: %w", item.Name, collection.Name, err)
			}

			step++
			add := Addition{Item: item, Playlist: collection.Name, Outcome: outcome}
			result.Additions = append(result.Additions, add)

			if outcome == AlreadyPresent {
				s.logger.Infof("%s already in %s", item.Name, collection.Name)
			} else {
				s.logger.Infof("%s added to %s", item.Name, collection.Name)
			}
			sendProgress(progress, reconcileUpdate(step, len(items), add))
		}
	}
	return nil
}

// findOrCreate returns the playlist named name, creating it when the index has none.
func (s *Synchronizer) findOrCreate(ctx context.Context, index *CollectionIndex, name string) (*Collection, bool, error) {
	if c := index.Find(name); c != nil {
		return c, false, nil
	}

	userID, err := s.owner(ctx)
	if err != nil {
		return nil, false, err
	}

	raw, err := s.library.CreatePlaylist(ctx, userID, name)
	if err != nil {
		return nil, false, err
	}
	if raw.Type != "playlist" {
		return nil, false, &shared.ValidationError{Field: "type", Want: "playlist", Got: raw.Type}
	}
	if raw.ID == "" {
		return nil, false, &shared.ShapeError{Op: "create playlist", Field: "id"}
	}

	c := NewCollection(s.library, *raw)
	if c.Name == "" {
		c.Name = name
	}
	index.Insert(c)
	return c, true, nil
}

// owner returns the playlist owner id, asking the API once when it wasn't configured.
func (s *Synchronizer) owner(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}
	user, err := s.library.UserProfile(ctx)
	if err != nil {
		return "", err
	}
	s.userID = user.ID
	return s.userID, nil
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
