package downloader

type State int32

const (
	StateResolving State = iota
	StateIndexFetching
	StateChapterLoop
	StateFinalizing
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateIndexFetching:
		return "fetching index"
	case StateChapterLoop:
		return "downloading"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	}

	return "unknown"
}
