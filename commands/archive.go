package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/voltgrid/gridenv/archive"
	"github.com/voltgrid/gridenv/util"
)

func ArchiveCommand() *cobra.Command {
	var (
		redisAddr string
		episode   string
	)
	cmd := &cobra.Command{
		Use:   "archive [actions.json]",
		Short: "Checkpoint an action sequence to redis, or list an archived episode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := loadSpace()
			if err != nil {
				return err
			}
			store := archive.NewStore(redisAddr)
			defer store.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				return fmt.Errorf("redis at %s: %w", redisAddr, err)
			}

			if len(args) == 0 {
				if episode == "" {
					return fmt.Errorf("either an actions file or --episode is required")
				}
				actions, err := store.Episode(ctx, space, episode)
				if err != nil {
					return err
				}
				for step, a := range actions {
					fmt.Printf("step %3d: %s\n", step, a.Hash())
				}
				return nil
			}

			dicts, err := util.ReadDictList(args[0])
			if err != nil {
				return err
			}
			id := store.NewEpisode()
			for step, dict := range dicts {
				a, err := space.FromDict(dict)
				if err != nil {
					return fmt.Errorf("step %d: %w", step, err)
				}
				if err := store.Put(ctx, id, step, a); err != nil {
					return err
				}
			}
			fmt.Printf("archived %d steps under episode %s\n", len(dicts), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&redisAddr, "redis", "127.0.0.1:6379", "Redis address")
	cmd.Flags().StringVar(&episode, "episode", "", "Episode id to list instead of archiving")
	return cmd
}
