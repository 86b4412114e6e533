package contract

import (
	"bytes"
	_ "embed"
	"fmt"
	"maps"
	"os"

	"github.com/huangsam/podium/schema"
	"gopkg.in/yaml.v3"
)

//go:embed events/abu_dhabi_2025.yaml
var defaultEventYAML []byte

// DefaultEventName is the name of the event used when no file is given.
const DefaultEventName = "2025 Abu Dhabi Grand Prix"

// LoadEventConfig reads and validates the event tables at path.
// An empty path selects the embedded default event.
func LoadEventConfig(path string) (schema.EventConfig, error) {
	data := defaultEventYAML
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return schema.EventConfig{}, fmt.Errorf("read event file: %w", err)
		}
		data = raw
	}
	return ParseEventConfig(data)
}

// ParseEventConfig decodes event tables from YAML and validates them.
// Unknown keys are rejected so typos do not silently drop a table.
func ParseEventConfig(data []byte) (schema.EventConfig, error) {
	var event schema.EventConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&event); err != nil {
		return schema.EventConfig{}, &schema.ConfigurationError{Msg: "decode event tables", Err: err}
	}
	if err := event.Validate(); err != nil {
		return schema.EventConfig{}, err
	}
	return event, nil
}

// CloneEvent returns a deep copy of the event tables.
func CloneEvent(e schema.EventConfig) schema.EventConfig {
	out := e
	out.Drivers = append([]schema.DriverEntry(nil), e.Drivers...)
	out.Qualifying = append([]schema.QualifyingEntry(nil), e.Qualifying...)
	out.ActualOrder = append([]string(nil), e.ActualOrder...)
	out.PointsTable = append([]int(nil), e.PointsTable...)
	if e.Teams != nil {
		out.Teams = maps.Clone(e.Teams)
	}
	if e.Standings != nil {
		out.Standings = maps.Clone(e.Standings)
	}
	if e.CalibrationOffset != nil {
		offset := *e.CalibrationOffset
		out.CalibrationOffset = &offset
	}
	return out
}
