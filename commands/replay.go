package commands

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/voltgrid/gridenv/analysis"
	"github.com/voltgrid/gridenv/grid"
	"github.com/voltgrid/gridenv/types"
	"github.com/voltgrid/gridenv/util"
)

func ReplayCommand() *cobra.Command {
	var plotResults bool
	cmd := &cobra.Command{
		Use:   "replay <actions.json>",
		Short: "Apply a sequence of actions to a fresh topology and report the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := loadSpace()
			if err != nil {
				return err
			}
			dicts, err := util.ReadDictList(args[0])
			if err != nil {
				return err
			}

			if err := os.MkdirAll(savePath, os.ModePerm); err != nil {
				return err
			}
			env := grid.NewTopoEnvironment(space)
			trace := types.NewTrace()
			state := env.Reset()

			lines := make([]string, 0, len(dicts))
			for step, dict := range dicts {
				a, err := space.FromDict(dict)
				if err != nil {
					return fmt.Errorf("step %d: %w", step, err)
				}
				next := env.Step(a)
				trace.Append(state, a, next)
				state = next

				info := env.LastInfo()
				verdict := "applied"
				if info.IsAmbiguous {
					verdict = fmt.Sprintf("ambiguous, skipped (%s)", info.Reason)
				} else if info.IsIllegal {
					verdict = fmt.Sprintf("illegal, skipped (%s)", info.Reason)
				}
				line := fmt.Sprintf("step %3d: %s -> %s", step, a.Hash(), verdict)
				fmt.Println(line)
				lines = append(lines, line)
			}
			fmt.Printf("final topology: %s\n", state.Hash())
			lines = append(lines, fmt.Sprintf("final topology: %s", state.Hash()))

			if err := util.WriteToFile(path.Join(savePath, "replay.txt"), lines...); err != nil {
				return err
			}
			if plotResults {
				counts := analysis.DetachmentCount()(trace)
				plotFn := analysis.LinePlotter(savePath, "detachments", "Disconnected terminals")
				if err := plotFn([]string{"replay"}, [][]int{counts}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plotResults, "plot", false, "Plot disconnected terminal counts per step")
	return cmd
}
