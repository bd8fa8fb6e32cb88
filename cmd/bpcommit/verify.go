package main

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/spf13/cobra"

	"github.com/22388o/bp-core/lockscript"
)

type verifyCommand struct {
	Script    string
	Pubkey    string
	Tag       string
	Message   string
	Rewritten string

	cmd *cobra.Command
}

func newVerifyCommand() *cobra.Command {
	cc := &verifyCommand{}
	cc.cmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify a lock script was rewritten by an LNPBP-2 commitment",
		Long: `Verify re-derives the LNPBP-2 commitment for the original
script, container public key, tag and message, and reports whether the
given rewritten script matches the result.`,
		Example: `bpcommit verify \
	--script 210279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798ac \
	--pubkey 0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798 \
	--tag 546573745f546167 \
	--message 48656c6c6f \
	--rewritten 21...ac`,
		RunE: cc.Execute,
	}
	cc.cmd.Flags().StringVar(&cc.Script, "script", "", "hex-encoded original lock script")
	cc.cmd.Flags().StringVar(&cc.Pubkey, "pubkey", "", "hex-encoded compressed container public key")
	cc.cmd.Flags().StringVar(&cc.Tag, "tag", "", "hex-encoded protocol tag")
	cc.cmd.Flags().StringVar(&cc.Message, "message", "", "hex-encoded committed message")
	cc.cmd.Flags().StringVar(&cc.Rewritten, "rewritten", "", "hex-encoded candidate rewritten script")

	return cc.cmd
}

func (c *verifyCommand) Execute(_ *cobra.Command, _ []string) error {
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

	rewritten, err := hex.DecodeString(c.Rewritten)
	if err != nil {
		return fmt.Errorf("error decoding rewritten script: %w", err)
	}

	container := lockscript.Container{Script: script, Pubkey: pubkey, Tag: tag}

	ok, err := lockscript.Verify(container, msg, rewritten)
	if err != nil {
		return fmt.Errorf("error verifying commitment: %w", err)
	}

	if !ok {
		log.Warnf("rewritten script does not match the expected commitment")
		fmt.Println("valid: false")
		return nil
	}

	fmt.Println("valid: true")
	return nil
}
