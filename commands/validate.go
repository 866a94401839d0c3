package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voltgrid/gridenv/util"
)

func ValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <action.json>",
		Short: "Check one structured action for ambiguity and policy violations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := loadSpace()
			if err != nil {
				return err
			}
			dict, err := util.ReadDict(args[0])
			if err != nil {
				return err
			}
			a, err := space.FromDict(dict)
			if err != nil {
				return err
			}
			rejected, reason := space.Validate(a)
			if rejected {
				fmt.Printf("rejected: %s\n", reason)
				return nil
			}
			fmt.Printf("ok: %s\n", a.Hash())
			return nil
		},
	}
}
