// Package filter provides user filtering of composition rows
package filter

import (
	"strconv"

	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// Exclusion removes rows whose key equals Key at the flagged positions.
// Aggregate (Mono) keys ignore Positions and compare the whole key.
type Exclusion struct {
	Key       string  `yaml:"key" validate:"required"`
	Positions [3]bool `yaml:"positions"`
}

// Level holds the filter of one composition level
type Level struct {
	Exclude []Exclusion `yaml:"exclude" validate:"dive"`
	Minimum float64     `yaml:"minimum" validate:"gte=0"` // Keep only rows with Values[level].Mean >= Minimum
}

// Config holds filtering configuration, one level per composition scheme
type Config struct {
	Levels []Level `yaml:"levels" validate:"dive"`
}

// Empty reports whether no level filters anything
func (c *Config) Empty() bool {
	for _, level := range c.Levels {
		if len(level.Exclude) > 0 || level.Minimum > 0 {
			return false
		}
	}
	return true
}

// Apply removes the rows rejected by any level. Row order is preserved.
func (c *Config) Apply(comp *frame.CompFrame) *frame.CompFrame {
	if c.Empty() {
		return comp
	}

	out := &frame.CompFrame{
		Schemes:    comp.Schemes,
		Replicates: comp.Replicates,
	}
	for _, row := range comp.Rows {
		if c.keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// keep checks every level against the row
func (c *Config) keep(row frame.CompRow) bool {
	for index, level := range c.Levels {
		if index >= len(row.Keys) {
			break
		}
		key := row.Keys[index]

		for _, exclusion := range level.Exclude {
			if excluded(key, exclusion) {
				return false
			}
		}

		// Apply minimum value filter
		if level.Minimum > 0 {
			mean := row.Values[index].Mean
			if !mean.Valid || mean.Float64 < level.Minimum {
				return false
			}
		}
	}
	return true
}

// excluded checks whether a key matches an exclusion
func excluded(key frame.Key, exclusion Exclusion) bool {
	parts := components(key)
	if len(parts) != 3 {
		return key.String() == exclusion.Key
	}
	for position, flagged := range exclusion.Positions {
		if flagged && parts[position] == exclusion.Key {
			return true
		}
	}
	return false
}

// components returns the per-position key parts as strings
func components(key frame.Key) []string {
	if len(key.Labels) > 0 {
		return key.Labels
	}
	parts := make([]string, len(key.Numbers))
	for i, n := range key.Numbers {
		parts[i] = strconv.FormatFloat(n, 'f', -1, 64)
	}
	return parts
}
