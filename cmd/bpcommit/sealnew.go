package main

import (
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/spf13/cobra"

	"github.com/22388o/bp-core/seal"
)

type sealNewCommand struct {
	Method string
	Txid   string
	Vout   uint32

	cmd *cobra.Command
}

func newSealNewCommand() *cobra.Command {
	cc := &sealNewCommand{}
	cc.cmd = &cobra.Command{
		Use:   "seal-new",
		Short: "Create a new blinded single-use-seal with a random blinding factor",
		Long: `seal-new builds a revealed single-use-seal bound to a
transaction outpoint, drawing its blinding factor from crypto/rand, and
prints its canonical textual representation.`,
		Example: `bpcommit seal-new \
	--method tapret1st \
	--txid 646ca5c1062619e2a2d60771c9dfd820551fb773e4dc8c4ed67965a8d1fae839 \
	--vout 0`,
		RunE: cc.Execute,
	}
	cc.cmd.Flags().StringVar(
		&cc.Method, "method", "tapret1st", "seal close method, "+
			"\"opret1st\" or \"tapret1st\"",
	)
	cc.cmd.Flags().StringVar(
		&cc.Txid, "txid", "", "hex-encoded transaction id the seal "+
			"is bound to; leave empty for a witness-transaction "+
			"seal with no known txid yet",
	)
	cc.cmd.Flags().Uint32Var(&cc.Vout, "vout", 0, "output index the seal is bound to")

	return cc.cmd
}

func (c *sealNewCommand) Execute(_ *cobra.Command, _ []string) error {
	method, err := seal.ParseCloseMethod(c.Method)
	if err != nil {
		return fmt.Errorf("error parsing close method: %w", err)
	}

	var txid *chainhash.Hash
	if c.Txid != "" {
		txid, err = chainhash.NewHashFromStr(c.Txid)
		if err != nil {
			return fmt.Errorf("error parsing txid: %w", err)
		}
	}

	revealed, err := seal.With(method, txid, c.Vout, rand.Reader)
	if err != nil {
		return fmt.Errorf("error creating seal: %w", err)
	}

	log.Debugf("created seal for method %v, vout %d", method, c.Vout)

	fmt.Printf("revealed:  %s\n", revealed.String())
	fmt.Printf("concealed: %s\n", revealed.Conceal().String())

	return nil
}
