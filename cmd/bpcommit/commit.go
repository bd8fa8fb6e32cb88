package main

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/spf13/cobra"

	"github.com/22388o/bp-core/lockscript"
)

type commitCommand struct {
	Script  string
	Pubkey  string
	Tag     string
	Message string

	cmd *cobra.Command
}

func newCommitCommand() *cobra.Command {
	cc := &commitCommand{}
	cc.cmd = &cobra.Command{
		Use:   "commit",
		Short: "Embed an LNPBP-2 key-set commitment into a lock script",
		Long: `Commit extracts the public keys and pubkey hashes referenced
by a lock script, tweaks the given container public key against that set
so that it commits to a message, and rewrites the script with the tweaked
key or hash in place of the original.`,
		Example: `bpcommit commit \
	--script 210279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798ac \
	--pubkey 0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798 \
	--tag 546573745f546167 \
	--message 48656c6c6f`,
		RunE: cc.Execute,
	}
	cc.cmd.Flags().StringVar(
		&cc.Script, "script", "", "hex-encoded lock script to commit into",
	)
	cc.cmd.Flags().StringVar(
		&cc.Pubkey, "pubkey", "", "hex-encoded compressed public key "+
			"the script references and whose tweaked replacement "+
			"carries the commitment",
	)
	cc.cmd.Flags().StringVar(
		&cc.Tag, "tag", "", "hex-encoded protocol tag the tweak is "+
			"derived under",
	)
	cc.cmd.Flags().StringVar(
		&cc.Message, "message", "", "hex-encoded message to commit",
	)

	return cc.cmd
}

func (c *commitCommand) Execute(_ *cobra.Command, _ []string) error {
	script, err := hex.DecodeString(c.Script)
	if err != nil {
		return fmt.Errorf("error decoding script: %w", err)
	}

	pubkeyBytes, err := hex.DecodeString(c.Pubkey)
	if err != nil {
		return fmt.Errorf("error decoding pubkey: %w", err)
	}
	pubkey, err := btcec.ParsePubKey(pubkeyBytes)
	if err != nil {
		return fmt.Errorf("error parsing pubkey: %w", err)
	}

	tag, err := hex.DecodeString(c.Tag)
	if err != nil {
		return fmt.Errorf("error decoding tag: %w", err)
	}

	msg, err := hex.DecodeString(c.Message)
	if err != nil {
		return fmt.Errorf("error decoding message: %w", err)
	}

	container := &lockscript.Container{
		Script: script,
		Pubkey: pubkey,
		Tag:    tag,
	}

	rewritten, err := lockscript.EmbedCommit(container, msg)
	if err != nil {
		return fmt.Errorf("error embedding commitment: %w", err)
	}

	log.Debugf("tweaked %d-byte script into %d bytes", len(script),
		len(rewritten))

	fmt.Printf("script:          %x\n", rewritten)
	fmt.Printf("tweaking_factor: %x\n", container.TweakingFactor)

	return nil
}
