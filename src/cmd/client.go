package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pipeos/pipes/src/utils/client"
	"github.com/pipeos/pipes/src/utils/model"

	"github.com/spf13/cobra"
)

var containerFile string

func init() {
	clientCreateCmd.Flags().StringVar(&containerFile, "file", "", "JSON file with the pipe container")
	_ = clientCreateCmd.MarkFlagRequired("file")

	clientCmd.AddCommand(clientCreateCmd, clientGetCmd, clientDeriveCmd, clientFunctionsCmd, clientDeleteFunctionsCmd)
	RootCmd.AddCommand(clientCmd)
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Talks to a running pipes server",
}

func printJSON(v any) (err error) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	_, err = fmt.Fprintln(os.Stdout, string(buf))
	return
}

var clientCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Stores a pipe container, its functions are derived in the background",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		buf, err := os.ReadFile(containerFile)
		if err != nil {
			return
		}

		var container model.PipeContainer
		err = json.Unmarshal(buf, &container)
		if err != nil {
			return
		}

		out, err := client.NewClient(conf).CreateWithFunctions(applicationCtx, &container)
		if err != nil {
			return
		}
		return printJSON(out)
	},
}

var clientGetCmd = &cobra.Command{
	Use:   "get <container-id>",
	Short: "Prints a pipe container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		out, err := client.NewClient(conf).GetContainer(applicationCtx, args[0])
		if err != nil {
			return
		}
		return printJSON(out)
	},
}

var clientDeriveCmd = &cobra.Command{
	Use:   "derive <container-id>",
	Short: "Derives functions of a stored pipe container and waits for the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		return client.NewClient(conf).Derive(applicationCtx, args[0])
	},
}

var clientFunctionsCmd = &cobra.Command{
	Use:   "functions <container-id>",
	Short: "Prints functions of a pipe container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		out, err := client.NewClient(conf).GetFunctions(applicationCtx, args[0])
		if err != nil {
			return
		}
		return printJSON(out)
	},
}

var clientDeleteFunctionsCmd = &cobra.Command{
	Use:   "delete-functions <container-id>",
	Short: "Removes a pipe container together with its functions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		count, err := client.NewClient(conf).DeleteFunctions(applicationCtx, args[0])
		if err != nil {
			return
		}
		return printJSON(map[string]int64{"count": count})
	},
}
