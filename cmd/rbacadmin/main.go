package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "rbacadmin",
		Short: "rbac admin backend: users, roles, menus, departments, dict",
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file, defaults to $CONFIG_PATH or configs/config.dev.yaml")
	cmd.AddCommand(
		newServeCmd(&cfgPath),
		newMigrateCmd(&cfgPath),
		newWorkerCmd(&cfgPath),
	)
	return cmd
}
