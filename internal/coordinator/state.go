package coordinator

import (
	"fmt"

	"github.com/LeoCrisGG/Clima/internal/weather"
)

// StateKind is the discriminator of the UIState tagged union. Exactly one
// variant is active at a time; every operation ends in one of the three.
type StateKind int

const (
	StateLoading StateKind = iota
	StateSuccess
	StateError
)

func (k StateKind) String() string {
	switch k {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("StateKind(%d)", int(k))
	}
}

// MarshalJSON renders the kind as its string form.
func (k StateKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UIState is the single value the presentation layer observes.
// Snapshot is set only for StateSuccess, Message only for StateError.
type UIState struct {
	Kind     StateKind         `json:"kind"`
	Snapshot *weather.Snapshot `json:"snapshot,omitempty"`
	Message  string            `json:"message,omitempty"`
}

func loadingState() UIState {
	return UIState{Kind: StateLoading}
}

func successState(snap weather.Snapshot) UIState {
	return UIState{Kind: StateSuccess, Snapshot: &snap}
}

func errorState(message string) UIState {
	return UIState{Kind: StateError, Message: message}
}

// SearchState holds the free-text query, the latest suggestion list and
// whether a suggestion fetch is in flight.
type SearchState struct {
	Query       string         `json:"query"`
	Suggestions []weather.City `json:"suggestions"`
	Fetching    bool           `json:"fetching"`
}

// opKind discriminates the remembered last primary operation for Retry.
type opKind int

const (
	opByCoords opKind = iota
	opByName
)

type rememberedOp struct {
	kind   opKind
	coords weather.Coordinates
	name   string
}
