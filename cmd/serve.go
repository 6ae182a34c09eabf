// File: cmd/serve.go
package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/snakepilot/internal/observability"
	"github.com/xkilldash9x/snakepilot/internal/refserver"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference decision service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			serverCfg := cfg.Server()
			if cmd.Flags().Changed("addr") {
				serverCfg.Addr = addr
			}
			if !serverCfg.Debug {
				gin.SetMode(gin.ReleaseMode)
			}
			return refserver.New(serverCfg, observability.Component("serve")).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}
