package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Run phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase is a state of the sync run state machine:
//
//	Idle → FetchingSaved → Filtering → FetchingCollections → Reconciling → Done
//
// Any phase may move to Aborted.
type Phase int

const (
	Idle Phase = iota
	FetchingSaved
	Filtering
	FetchingCollections
	Reconciling
	Done
	Aborted
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case FetchingSaved:
		return "fetching_saved"
	case Filtering:
		return "filtering"
	case FetchingCollections:
		return "fetching_collections"
	case Reconciling:
		return "reconciling"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	default:
		return ""
	}
}

func savedPageUpdate(page, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchingSaved,
		Step:    page,
		Message: fmt.Sprintf("Fetched page %d of liked songs (%d so far)...", page, fetched),
	}
}

func filteredUpdate(fresh, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Filtering,
		Step:    fresh,
		Total:   fetched,
		Message: fmt.Sprintf("%d of %d liked songs are new", fresh, fetched),
	}
}

func playlistPageUpdate(page, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchingCollections,
		Step:    page,
		Message: fmt.Sprintf("Fetched page %d of playlists (%d so far)...", page, fetched),
	}
}

func reconcileUpdate(step, total int, add Addition) ProgressUpdate {
	verb := "added to"
	if add.Outcome == AlreadyPresent {
		verb = "already in"
	}
	return ProgressUpdate{
		Phase:   Reconciling,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s %s", step, total, add.Item.Name, verb, add.Playlist),
		Data:    add,
	}
}

func createdUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconciling,
		Message: fmt.Sprintf("%s was created", name),
	}
}

func doneUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    result.Added(),
		Total:   result.New,
		Message: fmt.Sprintf("Sync complete: %d added, %d already present", result.Added(), result.Skipped()),
		Data:    result,
	}
}

func abortedUpdate(phase Phase, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Aborted,
		Message: fmt.Sprintf("Sync aborted while %s: %v", phase, err),
		Data:    err,
	}
}
