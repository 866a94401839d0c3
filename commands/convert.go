package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voltgrid/gridenv/grid"
	"github.com/voltgrid/gridenv/util"
)

func ConvertCommand() *cobra.Command {
	var (
		toForm   string
		fromForm string
	)
	cmd := &cobra.Command{
		Use:   "convert <action file>",
		Short: "Convert an action between the dict, json and vector forms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := loadSpace()
			if err != nil {
				return err
			}

			var a *grid.Action
			switch fromForm {
			case "dict", "json":
				dict, err := util.ReadDict(args[0])
				if err != nil {
					return err
				}
				a, err = space.FromDict(dict)
				if err != nil {
					return err
				}
			case "vector":
				vect, err := util.ReadVector(args[0])
				if err != nil {
					return err
				}
				a, err = space.FromVect(vect)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown source form %q", fromForm)
			}

			switch toForm {
			case "json", "dict":
				data, err := a.ToJSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			case "vector":
				data, err := json.Marshal(a.ToVect())
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			default:
				return fmt.Errorf("unknown target form %q", toForm)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fromForm, "from", "json", "Source form: json or vector")
	cmd.Flags().StringVar(&toForm, "to", "vector", "Target form: json or vector")
	return cmd
}
