package main

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/spf13/cobra"

	"github.com/22388o/bp-core/taproot"
)

type deriveOutputKeyCommand struct {
	InternalKey string
	MerkleRoot  string

	cmd *cobra.Command
}

func newDeriveOutputKeyCommand() *cobra.Command {
	cc := &deriveOutputKeyCommand{}
	cc.cmd = &cobra.Command{
		Use:   "derive-output-key",
		Short: "Derive a Taproot output key and scriptPubkey",
		Long: `derive-output-key tweaks a 32-byte x-only internal key with
the root of a script tree (or with no script tree at all, for a
key-path-only output) and prints the resulting output key, its parity,
and the witness-v1 scriptPubkey.`,
		Example: `bpcommit derive-output-key \
	--internal-key 79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798`,
		RunE: cc.Execute,
	}
	cc.cmd.Flags().StringVar(
		&cc.InternalKey, "internal-key", "", "hex-encoded 32-byte "+
			"x-only internal public key",
	)
	cc.cmd.Flags().StringVar(
		&cc.MerkleRoot, "merkle-root", "", "hex-encoded 32-byte "+
			"script-tree merkle root; leave empty for a "+
			"key-path-only output",
	)

	return cc.cmd
}

func (c *deriveOutputKeyCommand) Execute(_ *cobra.Command, _ []string) error {
	keyBytes, err := hex.DecodeString(c.InternalKey)
	if err != nil {
		return fmt.Errorf("error decoding internal key: %w", err)
	}

	internal, err := taproot.InternalPkFromBytes(keyBytes)
	if err != nil {
		return fmt.Errorf("error parsing internal key: %w", err)
	}

	var merkleRoot *taproot.TapNodeHash
	if c.MerkleRoot != "" {
		rootBytes, err := hex.DecodeString(c.MerkleRoot)
		if err != nil {
			return fmt.Errorf("error decoding merkle root: %w", err)
		}
		if len(rootBytes) != 32 {
			return fmt.Errorf("merkle root must be exactly 32 bytes, "+
				"got %d", len(rootBytes))
		}
		var raw [32]byte
		copy(raw[:], rootBytes)
		root := taproot.NewTapNodeHash(raw)
		merkleRoot = &root
	}

	outputKey, parity, err := internal.ToOutputKey(merkleRoot)
	if err != nil {
		return fmt.Errorf("error deriving output key: %w", err)
	}

	spk, err := taproot.P2TR(internal, merkleRoot)
	if err != nil {
		return fmt.Errorf("error building scriptPubkey: %w", err)
	}

	log.Debugf("derived taproot output key with parity %v", parity)

	fmt.Printf("output_key:    %x\n", schnorr.SerializePubKey(outputKey))
	fmt.Printf("parity:        %d\n", parity)
	fmt.Printf("scriptPubkey:  %x\n", spk)

	return nil
}
