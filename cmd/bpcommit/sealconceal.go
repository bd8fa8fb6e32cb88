package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/22388o/bp-core/seal"
)

type sealConcealCommand struct {
	Seal string

	cmd *cobra.Command
}

func newSealConcealCommand() *cobra.Command {
	cc := &sealConcealCommand{}
	cc.cmd = &cobra.Command{
		Use:   "seal-conceal",
		Short: "Parse a revealed seal and print its concealed form",
		Long: `seal-conceal parses a seal's textual representation
(method:txid_or_~:vout#0x<blinding>) and prints the 32-byte concealed
seal hash derived from it, hiding the outpoint from anyone who does not
hold the blinding factor.`,
		Example: `bpcommit seal-conceal \
	--seal tapret1st:646ca5c1062619e2a2d60771c9dfd820551fb773e4dc8c4ed67965a8d1fae839:0#0x31bbed7e7b2d`,
		RunE: cc.Execute,
	}
	cc.cmd.Flags().StringVar(
		&cc.Seal, "seal", "", "textual representation of a revealed seal",
	)

	return cc.cmd
}

func (c *sealConcealCommand) Execute(_ *cobra.Command, _ []string) error {
	revealed, err := seal.Parse(c.Seal)
	if err != nil {
		return fmt.Errorf("error parsing seal: %w", err)
	}

	log.Debugf("parsed seal with method %v, vout %d", revealed.Method,
		revealed.Vout)

	fmt.Printf("concealed: %s\n", revealed.Conceal().String())

	return nil
}
