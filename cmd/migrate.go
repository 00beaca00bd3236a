package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the license table and the document bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}
		zap.L().Info("store migrated", zap.String("driver", cfg.Store.Driver))

		gw, err := initBlob()
		if err != nil {
			return err
		}
		if err := gw.EnsureBucket(ctx); err != nil {
			return eris.Wrap(err, "ensure bucket")
		}
		zap.L().Info("bucket ready", zap.String("bucket", cfg.Blob.Bucket))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
