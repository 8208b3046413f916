// Command jamstf applies one block (slot 1, empty extrinsics) to a fresh
// empty genesis state built with state.New for the chosen -network
// configuration and prints the resulting state root, exercising the
// transition package end to end from the command line. It reads no input
// files.
//
// Grounded on beacon-chain/main.go's package shape: a thin main wiring
// flags/logging, with automaxprocs imported for its GOMAXPROCS side effect
// before any concurrent work runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"

	"github.com/jamzig/jamzig-sub002/crypto"
	"github.com/jamzig/jamzig-sub002/header"
	"github.com/jamzig/jamzig-sub002/params"
	"github.com/jamzig/jamzig-sub002/state"
	"github.com/jamzig/jamzig-sub002/transition"
)

func main() {
	network := flag.String("network", "tiny", "protocol configuration: mainnet or tiny")
	flag.Parse()

	cfg := params.Tiny()
	if *network == "mainnet" {
		cfg = params.Mainnet()
	}

	s := state.New(int(cfg.CoreCount), int(cfg.EpochLength))
	blk := &transition.Block{Header: header.Header{Slot: 1}}
	v := transition.Verifiers{
		Ed25519: crypto.StdEd25519Verifier{},
		VRF:     crypto.StdVRFVerifier{},
		Ring:    crypto.StdRingVRFVerifier{},
	}

	result, err := transition.Process(context.Background(), s, state.Hash{}, blk, cfg, v)
	if err != nil {
		logrus.WithError(err).Error("jamstf: transition failed")
		os.Exit(1)
	}
	fmt.Printf("state_root=%x\n", result.StateRoot)
}
