package appstore

import (
	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/value"
)

// State is a snapshot of the application state.
// Treat every container in a State as read-only.
type State struct {
	// Dashboard is the ordered list of bookmarked station cards.
	Dashboard value.List
	// Sensors maps sensor id to the latest sensor record.
	Sensors value.Map
	// Settings holds user preferences.
	Settings value.Map
	// Stations is the list of known weather stations.
	Stations value.List

	// Measurements maps sensor id to its recent readings. Not persisted.
	Measurements value.Map
	// Online reports network reachability. Not persisted.
	Online bool

	// Seq is the sequence number of the last applied mutation, 0 if none.
	Seq int64
}

// NewState returns the initial state: every container empty, not nil.
func NewState() State {
	return State{
		Dashboard:    value.List{},
		Sensors:      value.Map{},
		Settings:     value.Map{},
		Stations:     value.List{},
		Measurements: value.Map{},
	}
}

// Slice returns the value of a persisted slice, or nil for an unknown name.
func (s State) Slice(name slice.Name) value.Value {
	switch name {
	case slice.Dashboard:
		return s.Dashboard
	case slice.Sensors:
		return s.Sensors
	case slice.Settings:
		return s.Settings
	case slice.Stations:
		return s.Stations
	default:
		return nil
	}
}
