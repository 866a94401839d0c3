package commands

import (
	"github.com/spf13/cobra"

	"github.com/voltgrid/gridenv/grid"
)

var (
	registryPath    string
	savePath        string
	maxSubstations  int
	allowDetachment bool
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "gridenv",
		Short: "Inspect, validate and convert grid topology actions",
	}
	rootCommand.PersistentFlags().StringVarP(&registryPath, "registry", "r", "", "Registry description file (JSON), defaults to the built-in example grid")
	rootCommand.PersistentFlags().StringVarP(&savePath, "save", "s", "results", "Save result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&maxSubstations, "max-substations", 5, "Maximum substations an action may touch per step")
	rootCommand.PersistentFlags().BoolVar(&allowDetachment, "allow-detachment", true, "Permit load/generator/storage detachment")
	// adding the subcommands here
	rootCommand.AddCommand(DescribeCommand())
	rootCommand.AddCommand(ValidateCommand())
	rootCommand.AddCommand(ConvertCommand())
	rootCommand.AddCommand(ReplayCommand())
	rootCommand.AddCommand(ServeCommand())
	rootCommand.AddCommand(ArchiveCommand())
	return rootCommand
}

func loadSpace() (*grid.Space, error) {
	reg := grid.DefaultRegistry()
	if registryPath != "" {
		var err error
		reg, err = grid.RegistryFromFile(registryPath)
		if err != nil {
			return nil, err
		}
	}
	params := grid.DefaultParameters()
	params.MaxSubstationsPerStep = maxSubstations
	params.AllowDetachment = allowDetachment
	return grid.NewSpace(reg, params), nil
}
