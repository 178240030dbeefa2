package main

import (
	"os/signal"
	"syscall"

	"go-rbacadmin/internal/boot"

	"github.com/spf13/cobra"
)

func newWorkerCmd(cfgFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:          "worker",
		Short:        "consume operation logs and run scheduled tasks",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := resolveConfigPath(*cfgFlag)
			if err != nil {
				return err
			}
			w, err := boot.InitWorker(cfgPath)
			if err != nil {
				return err
			}
			defer w.Close()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}
}
