package main

import (
	"go-rbacadmin/internal/boot"

	"github.com/spf13/cobra"
)

func newMigrateCmd(cfgFlag *string) *cobra.Command {
	var withSeed bool
	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "create tables and write the initial menus, roles and super user",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := resolveConfigPath(*cfgFlag)
			if err != nil {
				return err
			}
			m, err := boot.InitMigrator(cfgPath)
			if err != nil {
				return err
			}
			defer m.Close()
			return m.Run(cmd.Context(), withSeed)
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", true, "write initial data after migration")
	return cmd
}
