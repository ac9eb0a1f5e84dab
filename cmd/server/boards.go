package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clubweb/internal/boards"
	"clubweb/internal/config"
)

func newBoardsCmd(envFile *string) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "Validate and print the board catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("file") {
				cfg, err := config.Load(*envFile)
				if err != nil {
					return err
				}
				path = cfg.BoardsPath
			}
			catalog, err := boards.Load(path)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tPATH\tCATEGORY\tWRITE\tGROUP")
			for _, b := range catalog.Boards {
				write := b.WriteRole
				if write == "" {
					write = "member"
				}
				group := b.Group
				if group == "" {
					group = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d (%s)\t%s\t%s\n", b.Key, b.Path, b.CategoryID, b.CategoryName, write, group)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "catalog file (defaults to BOARDS_PATH or the built-in catalog)")
	return cmd
}
