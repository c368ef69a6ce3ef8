package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const healthPollInterval = 200 * time.Millisecond

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long: `Check server health.

With --wait the check is retried until the server answers or the
duration elapses, which is handy right after starting a server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deadline := time.Now().Add(wait)

			for {
				var result HealthResult
				err := client.Get("/api/v1/health", &result)
				if err == nil {
					NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
					return nil
				}
				if !time.Now().Before(deadline) {
					if wait > 0 {
						return fmt.Errorf("server not healthy after %s: %w", wait, err)
					}
					return err
				}
				time.Sleep(healthPollInterval)
			}
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep retrying for up to this long")
	return cmd
}
