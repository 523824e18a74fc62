package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wdmsim/wdmsim/sim/design"
	"github.com/wdmsim/wdmsim/sim/experiment"
)

// Design config files are YAML maps of named sections. Every section carries
// a type tag so pointing a flag at the wrong file or section fails loudly
// instead of zero-filling a parameter struct:
//
//	dwdm8:
//	  type: LASER
//	  num_channel: 8
//	  center_wavelength: 1.3e-06
//	  ...
const (
	sectionTypeLaser     = "LASER"
	sectionTypeRing      = "RING"
	sectionTypeLaneOrder = "LANEORDER"
)

// loadSection finds the named section and verifies its type tag.
func loadSection(path, section, wantType string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	node, ok := sections[section]
	if !ok {
		return nil, fmt.Errorf("config %s has no section %q", path, section)
	}

	var header struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&header); err != nil {
		return nil, fmt.Errorf("config %s section %q: %w", path, section, err)
	}
	if header.Type != wantType {
		return nil, fmt.Errorf("config %s section %q has type %q, want %q", path, section, header.Type, wantType)
	}
	return &node, nil
}

// LoadLaserParams reads one LASER section from a design config file.
func LoadLaserParams(path, section string) (design.LaserDesignParams, error) {
	var p design.LaserDesignParams
	node, err := loadSection(path, section, sectionTypeLaser)
	if err != nil {
		return p, err
	}
	if err := node.Decode(&p); err != nil {
		return p, fmt.Errorf("config %s section %q: %w", path, section, err)
	}
	return p, p.Validate()
}

// LoadRingParams reads one RING section from a design config file.
func LoadRingParams(path, section string) (design.RingDesignParams, error) {
	var p design.RingDesignParams
	node, err := loadSection(path, section, sectionTypeRing)
	if err != nil {
		return p, err
	}
	if err := node.Decode(&p); err != nil {
		return p, fmt.Errorf("config %s section %q: %w", path, section, err)
	}
	return p, p.Validate()
}

// LoadLaneOrderParams reads one LANEORDER section from a design config file.
// The section name doubles as the alias when the section has none.
func LoadLaneOrderParams(path, section string) (design.LaneOrderParams, error) {
	var p design.LaneOrderParams
	node, err := loadSection(path, section, sectionTypeLaneOrder)
	if err != nil {
		return p, err
	}
	if err := node.Decode(&p); err != nil {
		return p, fmt.Errorf("config %s section %q: %w", path, section, err)
	}
	if p.Alias == "" {
		p.Alias = section
	}
	return p, p.Validate()
}

// loadExperimentConfig assembles an experiment config from the shared flags.
func loadExperimentConfig() (experiment.Config, error) {
	var cfg experiment.Config
	var err error

	if cfg.Laser, err = LoadLaserParams(laserConfigFile, laserConfigSection); err != nil {
		return cfg, err
	}
	if cfg.Ring, err = LoadRingParams(ringConfigFile, ringConfigSection); err != nil {
		return cfg, err
	}
	if cfg.InitLaneOrder, err = LoadLaneOrderParams(initLaneOrderFile, initLaneOrderSection); err != nil {
		return cfg, err
	}
	if cfg.TargetLaneOrder, err = LoadLaneOrderParams(targetLaneOrderFile, targetLaneOrderSection); err != nil {
		return cfg, err
	}
	cfg.ArbiterName = arbiterName
	return cfg, nil
}
