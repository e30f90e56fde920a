package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag, serverFlag, outputFlag, dataFlag string

	ctx := newCommandContext(&configFlag, &serverFlag, &outputFlag, &dataFlag)

	rootCmd := &cobra.Command{
		Use:           "gallery",
		Short:         "PhotoGallery terminal client",
		Long:          "Browse the gallery, edit text overlays and export images. Without a subcommand an interactive session starts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.newApp(cmd)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "Gallery server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Directory for exported images")
	rootCmd.PersistentFlags().StringVarP(&dataFlag, "data", "d", "", "Local state file")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newUploadCommand(ctx))
	rootCmd.AddCommand(newExportsCommand(ctx))

	return rootCmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var search, sortOrder string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List gallery images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var listArgs []string
			if sortOrder != "" {
				listArgs = append(listArgs, "sort="+sortOrder)
			}
			listArgs = append(listArgs, strings.Fields(search)...)
			return runOne(ctx, cmd, "list", listArgs...)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "q", "", "Only images whose name contains this text")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "Order: newest, oldest, largest, smallest or name")
	return cmd
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload images using the saved admin session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne(ctx, cmd, "upload", args...)
		},
	}
}

func newExportsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "exports",
		Short: "Show recent exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne(ctx, cmd, "exports")
		},
	}
}

func runOne(ctx *commandContext, cmd *cobra.Command, name string, args ...string) error {
	app, err := ctx.newApp(cmd)
	if err != nil {
		return err
	}
	return app.Exec(cmd.Context(), name, args...)
}
