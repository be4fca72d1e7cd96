package config

import "sort"

// Presets groups ready-made runs by generator kind.
var Presets = map[string]map[string]*Config{
	"solar": {
		"inner": {
			Name: "solar/inner", Updater: "exact", Integrator: "symplectic",
			Dt: 0.0005, Steps: 20000, SampleEvery: 50, Seed: 1,
			Physics:   PhysicsConfig{G: 1, Softening: 0.001, Theta: 0.5, UniverseRadius: 20},
			Generator: GeneratorConfig{Kind: "solar", Bodies: 5, CentralMass: 1000, BodyMass: 0.001, MinRadius: 2, MaxRadius: 8},
		},
		"full": {
			Name: "solar/full", Updater: "barneshut", Integrator: "symplectic",
			Dt: 0.001, Steps: 50000, SampleEvery: 100, Seed: 1,
			Physics:   PhysicsConfig{G: 1, Softening: 0.001, Theta: 0.5, UniverseRadius: 60},
			Generator: GeneratorConfig{Kind: "solar", Bodies: 9, CentralMass: 1000, BodyMass: 0.001, MinRadius: 2, MaxRadius: 50},
		},
	},
	"binary": {
		"equal": {
			Name: "binary/equal", Updater: "exact", Integrator: "symplectic",
			Dt: 0.001, Steps: 20000, SampleEvery: 50, Seed: 1,
			Physics:   PhysicsConfig{G: 1, Softening: 0.01, Theta: 0.5, UniverseRadius: 30},
			Generator: GeneratorConfig{Kind: "binary", Bodies: 2, CentralMass: 500, BodyMass: 500, MinRadius: 4, MaxRadius: 20},
		},
		"circumbinary": {
			Name: "binary/circumbinary", Updater: "barneshut", Integrator: "symplectic",
			Dt: 0.001, Steps: 20000, SampleEvery: 100, Seed: 7,
			Physics:   PhysicsConfig{G: 1, Softening: 0.05, Theta: 0.6, UniverseRadius: 60},
			Generator: GeneratorConfig{Kind: "binary", Bodies: 400, CentralMass: 500, BodyMass: 250, MinRadius: 4, MaxRadius: 40, Thickness: 0.5},
		},
	},
	"disk": {
		"small": {
			Name: "disk/small", Updater: "barneshut", Integrator: "symplectic",
			Dt: 0.001, Steps: 5000, SampleEvery: 25, Seed: 42,
			Physics:   PhysicsConfig{G: 1, Softening: 0.05, Theta: 0.5, UniverseRadius: 100},
			Generator: GeneratorConfig{Kind: "disk", Bodies: 200, CentralMass: 1000, BodyMass: 0.01, MinRadius: 5, MaxRadius: 50, Thickness: 1},
		},
		"galaxy": {
			Name: "disk/galaxy", Updater: "parallel", Integrator: "symplectic",
			Dt: 0.002, Steps: 10000, SampleEvery: 50, Seed: 42,
			Physics:   PhysicsConfig{G: 1, Softening: 0.1, Theta: 0.7, UniverseRadius: 200},
			Generator: GeneratorConfig{Kind: "disk", Bodies: 5000, CentralMass: 10000, BodyMass: 0.05, MinRadius: 10, MaxRadius: 150, Thickness: 4},
		},
	},
	"cluster": {
		"cold": {
			Name: "cluster/cold", Updater: "barneshut", Integrator: "symplectic",
			Dt: 0.001, Steps: 5000, SampleEvery: 25, Seed: 3,
			Physics:   PhysicsConfig{G: 1, Softening: 0.1, Theta: 0.5, UniverseRadius: 50},
			Generator: GeneratorConfig{Kind: "cluster", Bodies: 500, BodyMass: 1, MaxRadius: 20},
		},
		"dense": {
			Name: "cluster/dense", Updater: "parallel", Integrator: "symplectic",
			Dt: 0.0005, Steps: 10000, SampleEvery: 50, Seed: 3,
			Physics:   PhysicsConfig{G: 1, Softening: 0.05, Theta: 0.6, UniverseRadius: 50},
			Generator: GeneratorConfig{Kind: "cluster", Bodies: 3000, BodyMass: 0.5, MaxRadius: 10},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(kind, preset string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListKinds() []string {
	kinds := make([]string, 0, len(Presets))
	for kind := range Presets {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
