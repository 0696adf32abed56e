package appstore

import (
	"fmt"

	"github.com/roach88/stationcache/internal/value"
)

// MutationKind identifies a state-changing operation.
type MutationKind int

const (
	AddBookmark MutationKind = iota + 1
	RemoveBookmark
	SetCardMode
	SetCardTimeAgo
	SetDashboard
	SetSensorData
	SetSettings
	SetStations
	SetMeasurements
	SetOnline
)

// Card defaults applied by AddBookmark.
const (
	DefaultCardMode    = "current"
	DefaultCardTimeAgo = 24 // hours
)

var kindNames = map[MutationKind]string{
	AddBookmark:     "addBookmark",
	RemoveBookmark:  "removeBookmark",
	SetCardMode:     "setCardMode",
	SetCardTimeAgo:  "setCardTimeAgo",
	SetDashboard:    "setDashboard",
	SetSensorData:   "setSensorData",
	SetSettings:     "setSettings",
	SetStations:     "setStations",
	SetMeasurements: "setMeasurements",
	SetOnline:       "setOnline",
}

// String returns the mutation's external tag.
func (k MutationKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MutationKind(%d)", int(k))
}

// ParseMutationKind resolves an external tag such as "setStations".
func ParseMutationKind(s string) (MutationKind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown mutation kind %q", s)
}

// Kinds returns every mutation kind in declaration order.
func Kinds() []MutationKind {
	kinds := make([]MutationKind, 0, len(kindNames))
	for k := AddBookmark; k <= SetOnline; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Mutation is the record delivered to listeners after a commit.
type Mutation struct {
	Kind    MutationKind
	Payload value.Value
	Seq     int64
}

// reducer computes the next state. It must not modify containers of cur.
type reducer func(cur State, payload value.Value) (State, error)

var reducers = map[MutationKind]reducer{
	AddBookmark:     addBookmark,
	RemoveBookmark:  removeBookmark,
	SetCardMode:     setCardMode,
	SetCardTimeAgo:  setCardTimeAgo,
	SetDashboard:    setDashboard,
	SetSensorData:   setSensorData,
	SetSettings:     setSettings,
	SetStations:     setStations,
	SetMeasurements: setMeasurements,
	SetOnline:       setOnline,
}

func addBookmark(cur State, payload value.Value) (State, error) {
	p, station, err := stationPayload(payload)
	if err != nil {
		return cur, err
	}
	if findCard(cur.Dashboard, station) >= 0 {
		return cur, nil
	}

	card := value.MapOf(
		value.P("station", value.String(station)),
		value.P("mode", value.String(DefaultCardMode)),
		value.P("timeAgo", value.Int(DefaultCardTimeAgo)),
	)
	if mode, ok := p["mode"].(value.String); ok {
		card["mode"] = mode
	}
	if ago, ok := p["timeAgo"].(value.Int); ok {
		card["timeAgo"] = ago
	}

	cur.Dashboard = cur.Dashboard.Append(card)
	return cur, nil
}

func removeBookmark(cur State, payload value.Value) (State, error) {
	station, ok := payload.(value.String)
	if !ok {
		return cur, fmt.Errorf("payload must be a station id string, got %T", payload)
	}

	next := make(value.List, 0, len(cur.Dashboard))
	for _, c := range cur.Dashboard {
		if cardStation(c) != string(station) {
			next = append(next, c)
		}
	}
	cur.Dashboard = next
	return cur, nil
}

func setCardMode(cur State, payload value.Value) (State, error) {
	p, station, err := stationPayload(payload)
	if err != nil {
		return cur, err
	}
	mode, ok := p["mode"].(value.String)
	if !ok {
		return cur, fmt.Errorf("payload.mode must be a string")
	}
	return updateCard(cur, station, "mode", mode)
}

func setCardTimeAgo(cur State, payload value.Value) (State, error) {
	p, station, err := stationPayload(payload)
	if err != nil {
		return cur, err
	}
	ago, ok := p["timeAgo"].(value.Int)
	if !ok {
		return cur, fmt.Errorf("payload.timeAgo must be an integer")
	}
	return updateCard(cur, station, "timeAgo", ago)
}

func setDashboard(cur State, payload value.Value) (State, error) {
	l, ok := payload.(value.List)
	if !ok {
		return cur, fmt.Errorf("payload must be a list, got %T", payload)
	}
	cur.Dashboard = l
	return cur, nil
}

func setSensorData(cur State, payload value.Value) (State, error) {
	m, ok := payload.(value.Map)
	if !ok {
		return cur, fmt.Errorf("payload must be a map, got %T", payload)
	}
	id, ok := m.String("id")
	if !ok || id == "" {
		return cur, fmt.Errorf("payload.id must be a non-empty string")
	}
	cur.Sensors = cur.Sensors.With(id, m)
	return cur, nil
}

func setSettings(cur State, payload value.Value) (State, error) {
	m, ok := payload.(value.Map)
	if !ok {
		return cur, fmt.Errorf("payload must be a map, got %T", payload)
	}
	next := make(value.Map, len(cur.Settings)+len(m))
	for k, v := range cur.Settings {
		next[k] = v
	}
	for k, v := range m {
		next[k] = v
	}
	cur.Settings = next
	return cur, nil
}

func setStations(cur State, payload value.Value) (State, error) {
	l, ok := payload.(value.List)
	if !ok {
		return cur, fmt.Errorf("payload must be a list, got %T", payload)
	}
	cur.Stations = l
	return cur, nil
}

func setMeasurements(cur State, payload value.Value) (State, error) {
	m, ok := payload.(value.Map)
	if !ok {
		return cur, fmt.Errorf("payload must be a map, got %T", payload)
	}
	sensor, ok := m.String("sensor")
	if !ok || sensor == "" {
		return cur, fmt.Errorf("payload.sensor must be a non-empty string")
	}
	values, ok := m["values"].(value.List)
	if !ok {
		return cur, fmt.Errorf("payload.values must be a list")
	}
	cur.Measurements = cur.Measurements.With(sensor, values)
	return cur, nil
}

func setOnline(cur State, payload value.Value) (State, error) {
	b, ok := payload.(value.Bool)
	if !ok {
		return cur, fmt.Errorf("payload must be a bool, got %T", payload)
	}
	cur.Online = bool(b)
	return cur, nil
}

// stationPayload validates a map payload carrying a "station" id.
func stationPayload(payload value.Value) (value.Map, string, error) {
	m, ok := payload.(value.Map)
	if !ok {
		return nil, "", fmt.Errorf("payload must be a map, got %T", payload)
	}
	station, ok := m.String("station")
	if !ok || station == "" {
		return nil, "", fmt.Errorf("payload.station must be a non-empty string")
	}
	return m, station, nil
}

func updateCard(cur State, station, field string, v value.Value) (State, error) {
	i := findCard(cur.Dashboard, station)
	if i < 0 {
		return cur, fmt.Errorf("no dashboard card for station %q", station)
	}
	card, _ := cur.Dashboard[i].(value.Map)

	next := make(value.List, len(cur.Dashboard))
	copy(next, cur.Dashboard)
	next[i] = card.With(field, v)
	cur.Dashboard = next
	return cur, nil
}

func findCard(dashboard value.List, station string) int {
	for i, c := range dashboard {
		if cardStation(c) == station {
			return i
		}
	}
	return -1
}

func cardStation(card value.Value) string {
	m, ok := card.(value.Map)
	if !ok {
		return ""
	}
	s, _ := m.String("station")
	return s
}
