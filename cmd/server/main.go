package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := log.New(os.Stdout, "[clubweb] ", log.LstdFlags|log.Lmicroseconds)
	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *log.Logger) *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:          "clubweb",
		Short:        "Club website frontend for the club REST backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	serve := newServeCmd(logger, &envFile)
	root.AddCommand(serve, newBoardsCmd(&envFile), newCheckLoginCmd(&envFile))
	// a bare "clubweb" serves
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}
