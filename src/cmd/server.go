package cmd

import (
	"github.com/pipeos/pipes/src/api"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(serverCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serves the REST API and derives pipe functions in the background",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := api.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
}
