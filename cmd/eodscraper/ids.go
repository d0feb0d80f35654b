package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/ahmethakanbesel/eodscraper/internal/config"
)

type idsCmd struct {
	cfg config.Config
}

func (*idsCmd) Name() string     { return "ids" }
func (*idsCmd) Synopsis() string { return "validate the instrument id map" }
func (*idsCmd) Usage() string {
	return `ids [NAME ...]:
  Check IDMAP_PATH and print the provider id of each NAME.
`
}

func (*idsCmd) SetFlags(*flag.FlagSet) {}

func (c *idsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	ids, err := provideIDMap(c.cfg)
	if err != nil {
		return exitWith("load id map", err)
	}
	fmt.Printf("%s: %d entries\n", c.cfg.IDMapPath, ids.Len())

	for _, name := range f.Args() {
		id, err := ids.Lookup(name)
		if err != nil {
			return exitWith("lookup", err)
		}
		fmt.Printf("%s=%s\n", name, id)
	}
	return subcommands.ExitSuccess
}
