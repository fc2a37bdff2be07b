// Command monerosim compiles a MoneroSim scenario into a Shadow
// simulation plan: `expand` resolves every auto field, `plan` runs
// topology, addressing, and emission, and `validate` re-checks an
// already-expanded scenario without re-emitting anything (spec.md §6).
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/monerosim/monerosim/internal/simerr"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := newRootCmd(log)
	if err := root.Execute(); err != nil {
		if se, ok := err.(*simerr.Error); ok {
			log.Error(se.Error())
			os.Exit(se.Kind.ExitCode())
		}
		log.Error(err.Error())
		os.Exit(1)
	}
}
