package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voltgrid/gridenv/grid"
)

func DescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the registry layout and the documented vector form",
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := loadSpace()
			if err != nil {
				return err
			}
			reg := space.Registry()

			fmt.Printf("loads: %d (%s)\n", reg.NLoad, strings.Join(reg.NameLoad, ", "))
			fmt.Printf("generators: %d (%s)\n", reg.NGen, strings.Join(reg.NameGen, ", "))
			fmt.Printf("storage units: %d (%s)\n", reg.NStorage, strings.Join(reg.NameStorage, ", "))
			fmt.Printf("lines: %d (%s)\n", reg.NLine, strings.Join(reg.NameLine, ", "))
			fmt.Printf("topology vector: %d slots\n", reg.Dim())
			fmt.Printf("authorized keys: %s\n", strings.Join(space.AuthorizedKeys(), ", "))

			// the vector layout is part of the interchange contract: a
			// length or order mismatch across versions is a hard failure
			dim := reg.Dim()
			fmt.Printf("vector form: %d values\n", grid.VectSize(reg))
			fmt.Printf("  [%4d, %4d) set_bus per slot (0 untouched, -1 disconnect, >=1 busbar)\n", 0, dim)
			fmt.Printf("  [%4d, %4d) change_bus per slot (0/1)\n", dim, 2*dim)
			off := 2 * dim
			fmt.Printf("  [%4d, %4d) detach_load per load (0/1)\n", off, off+reg.NLoad)
			off += reg.NLoad
			fmt.Printf("  [%4d, %4d) detach_gen per generator (0/1)\n", off, off+reg.NGen)
			off += reg.NGen
			fmt.Printf("  [%4d, %4d) detach_storage per storage unit (0/1)\n", off, off+reg.NStorage)
			return nil
		},
	}
}
