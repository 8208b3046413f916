// Package testutil loads YAML test vectors for the STF packages, kept
// separate from the core packages so vector authoring (an external
// collaborator concern) never pulls gopkg.in/yaml.v2 into production
// binaries.
//
// Grounded on beacon-chain/blockchain/forkchoice/lmd_ghost_yaml_test.go's
// ioutil.ReadFile + yaml.Unmarshal(&cfg) idiom.
package testutil

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// LoadYAML reads path and unmarshals it into out, which must be a pointer.
func LoadYAML(path string, out interface{}) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

// TimingCase is one row of a safrole epoch/rotation timing vector: given a
// parent and current slot under a fixed epoch length, what the derived
// booleans the overlay.Time helpers compute should equal.
type TimingCase struct {
	Name           string `yaml:"name"`
	ParentSlot     uint64 `yaml:"parent_slot"`
	CurrentSlot    uint64 `yaml:"current_slot"`
	EpochLength    uint32 `yaml:"epoch_length"`
	TicketEnd      uint32 `yaml:"ticket_end"`
	Rotation       uint32 `yaml:"rotation"`
	WantNewEpoch   bool   `yaml:"want_new_epoch"`
	WantCrossedEnd bool   `yaml:"want_crossed_ticket_end"`
}

// TimingSuite is the top-level document shape for a timing vector file.
type TimingSuite struct {
	Cases []TimingCase `yaml:"cases"`
}
