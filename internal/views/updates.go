package views

import "fmt"

// Update represents a progress event emitted by a controller.
type Update struct {
	Phase   Phase  // Operation phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase enumerates controller operations.
type Phase int

const (
	ResolveSession Phase = iota
	Authenticate
	LoadLibrary
	SubmitRating
	RefreshFeed
	SaveSong
	RunSearch
	LookupExternal
	ImportTrack
)

func (p Phase) String() string {
	switch p {
	case ResolveSession:
		return "resolve_session"
	case Authenticate:
		return "authenticate"
	case LoadLibrary:
		return "load_library"
	case SubmitRating:
		return "submit_rating"
	case RefreshFeed:
		return "refresh_feed"
	case SaveSong:
		return "save_song"
	case RunSearch:
		return "run_search"
	case LookupExternal:
		return "lookup_external"
	case ImportTrack:
		return "import_track"
	default:
		return ""
	}
}

// send delivers u without blocking.
func send(ch chan<- Update, u Update) {
	if ch == nil {
		return
	}
	select {
	case ch <- u:
	default:
	}
}

func phaseUpdate(p Phase, msg string) Update {
	return Update{Phase: p, Message: msg}
}

func ratingUpdate(songID int64, stars int) Update {
	return Update{
		Phase:   SubmitRating,
		Message: fmt.Sprintf("Rating song %d with %d stars...", songID, stars),
		Data:    songID,
	}
}

func searchUpdate(s SearchSession) Update {
	return Update{
		Phase:   RunSearch,
		Message: fmt.Sprintf("[#%d] %s", s.Seq, s.Kind.Placeholder()),
		Data:    s,
	}
}

func saveUpdate(title string) Update {
	return Update{Phase: SaveSong, Message: "Saving \"" + title + "\"..."}
}
