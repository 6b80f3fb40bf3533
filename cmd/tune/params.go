// Package main provides CMA-ES tuning of shoal energy and lifecycle parameters.
package main

import (
	"github.com/pthm-cable/shoal/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Energy
			{
				Name: "basal_metabolism", Path: "energy.basal_metabolism_coeff", Min: 0.000005, Max: 0.0001, Default: 0.00002,
				get: func(c *config.Config) float64 { return c.Energy.BasalMetabolismCoeff },
				set: func(c *config.Config, v float64) { c.Energy.BasalMetabolismCoeff = v },
			},
			{
				Name: "drag", Path: "energy.drag_coeff", Min: 0.0005, Max: 0.01, Default: 0.003,
				get: func(c *config.Config) float64 { return c.Energy.DragCoeff },
				set: func(c *config.Config, v float64) { c.Energy.DragCoeff = v },
			},
			{
				Name: "max_speed", Path: "energy.max_speed_coeff", Min: 0.05, Max: 0.4, Default: 0.15,
				get: func(c *config.Config) float64 { return c.Energy.MaxSpeedCoeff },
				set: func(c *config.Config, v float64) { c.Energy.MaxSpeedCoeff = v },
			},
			{
				Name: "idle_speed", Path: "energy.idle_speed_coeff", Min: 0.02, Max: 0.3, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Energy.IdleSpeedCoeff },
				set: func(c *config.Config, v float64) { c.Energy.IdleSpeedCoeff = v },
			},
			{
				Name: "predation_eff", Path: "energy.predation_efficiency", Min: 0.3, Max: 1.0, Default: 1.0,
				get: func(c *config.Config) float64 { return c.Energy.PredationEfficiency },
				set: func(c *config.Config, v float64) { c.Energy.PredationEfficiency = v },
			},
			{
				Name: "growth_rate", Path: "energy.growth_rate", Min: 0.00005, Max: 0.001, Default: 0.0002,
				get: func(c *config.Config) float64 { return c.Energy.GrowthRate },
				set: func(c *config.Config, v float64) { c.Energy.GrowthRate = v },
			},
			// Lifecycle
			{
				Name: "mutation_rate", Path: "lifecycle.mutation_rate", Min: 0.0, Max: 0.3, Default: 0.05,
				get: func(c *config.Config) float64 { return c.Lifecycle.MutationRate },
				set: func(c *config.Config, v float64) { c.Lifecycle.MutationRate = v },
			},
			{
				Name: "child_adult_ratio", Path: "lifecycle.child_adult_ratio", Min: 0.05, Max: 0.5, Default: 0.2,
				get: func(c *config.Config) float64 { return c.Lifecycle.ChildAdultRatio },
				set: func(c *config.Config, v float64) { c.Lifecycle.ChildAdultRatio = v },
			},
			{
				Name: "birth_eff", Path: "lifecycle.birth_efficiency", Min: 0.2, Max: 1.0, Default: 0.5,
				get: func(c *config.Config) float64 { return c.Lifecycle.BirthEfficiency },
				set: func(c *config.Config, v float64) { c.Lifecycle.BirthEfficiency = v },
			},
			{
				Name: "max_age", Path: "lifecycle.max_age", Min: 30, Max: 300, Default: 120,
				get: func(c *config.Config) float64 { return c.Lifecycle.MaxAge },
				set: func(c *config.Config, v float64) { c.Lifecycle.MaxAge = v },
			},
			// Plankton
			{
				Name: "plankton_mass", Path: "plankton.mass", Min: 0.01, Max: 0.2, Default: 0.05,
				get: func(c *config.Config) float64 { return c.Plankton.Mass },
				set: func(c *config.Config, v float64) { c.Plankton.Mass = v },
			},
			{
				Name: "plankton_spawn_rate", Path: "plankton.spawn_rate", Min: 0.1, Max: 4.0, Default: 1.5,
				get: func(c *config.Config) float64 { return c.Plankton.SpawnRate },
				set: func(c *config.Config, v float64) { c.Plankton.SpawnRate = v },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.get(cfg)
	}
	return out
}
