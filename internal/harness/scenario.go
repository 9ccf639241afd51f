// Package harness runs YAML-defined conformance scenarios against the
// tracking buffer.
//
// A scenario is a flat list of steps (track, identify, acknowledge) plus
// expectations about what remains buffered afterwards. Scenarios double as
// executable documentation of the store's insertion/dedup/deletion
// contract, and their final snapshots are golden-tested.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spoolkit/spool/internal/record"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Steps run in order against a fresh buffer.
	Steps []Step `yaml:"steps"`

	// Expect validates the buffer after all steps ran.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Step is one action in a scenario. Exactly one member is set.
type Step struct {
	Track    *TrackStep    `yaml:"track,omitempty"`
	Identify *IdentifyStep `yaml:"identify,omitempty"`

	// AckEvent / AckCustomer acknowledge a buffered record by its
	// one-based insertion position within this scenario run.
	AckEvent    int `yaml:"ack_event,omitempty"`
	AckCustomer int `yaml:"ack_customer,omitempty"`

	// ReenqueueEvent replays an already-buffered event by position. The
	// record keeps its storage identity, so the buffer must not grow.
	ReenqueueEvent int `yaml:"reenqueue_event,omitempty"`
}

// TrackStep buffers one behavioral event.
type TrackStep struct {
	Token      string          `yaml:"token,omitempty"`
	Type       string          `yaml:"type"`
	IDKey      string          `yaml:"id_key,omitempty"`
	IDValue    any             `yaml:"id_value,omitempty"`
	Timestamp  float64         `yaml:"timestamp"`
	Properties []PropertyEntry `yaml:"properties,omitempty"`
}

// IdentifyStep buffers one customer update.
type IdentifyStep struct {
	Token      string          `yaml:"token,omitempty"`
	IDKey      string          `yaml:"id_key,omitempty"`
	IDValue    any             `yaml:"id_value,omitempty"`
	Timestamp  float64         `yaml:"timestamp"`
	Properties []PropertyEntry `yaml:"properties,omitempty"`
}

// PropertyEntry is one key/value pair in a scenario property list.
type PropertyEntry struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// Expectation validates the buffer state after a scenario run.
type Expectation struct {
	Events          *int `yaml:"events,omitempty"`
	CustomerUpdates *int `yaml:"customer_updates,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	for i, step := range sc.Steps {
		if err := step.validate(); err != nil {
			return nil, fmt.Errorf("scenario %s step %d: %w", sc.Name, i+1, err)
		}
	}
	return &sc, nil
}

// validate rejects steps with zero or multiple actions.
func (s Step) validate() error {
	actions := 0
	if s.Track != nil {
		actions++
	}
	if s.Identify != nil {
		actions++
	}
	if s.AckEvent != 0 {
		actions++
	}
	if s.AckCustomer != 0 {
		actions++
	}
	if s.ReenqueueEvent != 0 {
		actions++
	}
	if actions != 1 {
		return fmt.Errorf("expected exactly one action, got %d", actions)
	}
	return nil
}

// convertValue maps a YAML scalar onto a record value.
func convertValue(v any) (record.Value, error) {
	switch val := v.(type) {
	case nil:
		return record.Null{}, nil
	case string:
		return record.String(val), nil
	case int:
		return record.Int(int64(val)), nil
	case int64:
		return record.Int(val), nil
	case float64:
		return record.Float(val), nil
	case bool:
		return record.Bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported scenario value type: %T", v)
	}
}

// convertProperties maps scenario property entries onto record properties,
// preserving order and duplicate keys.
func convertProperties(entries []PropertyEntry) ([]record.Property, error) {
	props := make([]record.Property, 0, len(entries))
	for _, e := range entries {
		value, err := convertValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", e.Key, err)
		}
		props = append(props, record.Property{Key: e.Key, Value: value})
	}
	return props, nil
}
