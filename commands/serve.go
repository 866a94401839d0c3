package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/voltgrid/gridenv/server"
)

func ServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validator and codecs over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := loadSpace()
			if err != nil {
				return err
			}
			s := server.NewActionServer(addr, space)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- s.Start()
			}()
			fmt.Printf("serving on %s\n", addr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return s.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	return cmd
}
