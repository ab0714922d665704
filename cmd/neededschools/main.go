package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChicagoDave/neededschools/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "neededschools",
		Short: "Estimate how many schools each administrative region needs",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindSettings(v, cmd)
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.Float64("capacity", 0, "pupils per school (overrides the project file)")
	flags.Bool("strict", false, "abort without writing output when any region is flagged")
	flags.String("database-url", "", "PostGIS connection string for postgis layers")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(computeCmd(v))
	rootCmd.AddCommand(validateCmd(v))
	rootCmd.AddCommand(fieldsCmd(v))
	rootCmd.AddCommand(serveCmd(v))
	return rootCmd
}

func computeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "compute [project-path]",
		Short: "Count schools per region, print the results and write the configured outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(v, args[0])
			if err != nil {
				return err
			}
			return runCompute(cmd.Context(), cmd.OutOrStdout(), p, newLogger(v, cmd.ErrOrStderr()))
		},
	}
}

func validateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Check the project file and region populations without counting schools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(v, args[0])
			if err != nil {
				return err
			}
			return runValidate(cmd.Context(), cmd.OutOrStdout(), p)
		},
	}
}

func fieldsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "fields [project-path]",
		Short: "List the attribute fields of the regions layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(v, args[0])
			if err != nil {
				return err
			}
			return runFields(cmd.Context(), cmd.OutOrStdout(), p)
		},
	}
}

func serveCmd(v *viper.Viper) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Serve results, the annotated layer and metrics over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(v, args[0])
			if err != nil {
				return err
			}
			srv := server.New(p, port, newLogger(v, cmd.ErrOrStderr()))
			if err := srv.Start(cmd.Context()); err != nil {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	return cmd
}
