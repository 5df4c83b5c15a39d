package cmd

import (
	"github.com/pipeos/pipes/src/utils/model"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Applies database migrations and exits",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		// Regular user is used if there's no dedicated migration user
		if conf.Database.MigrationUser == "" {
			conf.Database.MigrationUser = conf.Database.User
			conf.Database.MigrationPassword = conf.Database.Password
		}

		return model.Migrate(applicationCtx, conf)
	},
}
