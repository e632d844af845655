package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"context-bisect/internal/app"
)

type resolveOptions struct {
	RepoIndex string
	Output    string
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve <request>...",
		Short: "Resolve a request and write the snapshot to a .ctx file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.RepoIndex, "repo-index", "", "Repository index file")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Snapshot output path (.ctx)")

	_ = viper.BindPFlag("repo_index", cmd.Flags().Lookup("repo-index"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))

	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts resolveOptions, args []string) error {
	service := newAppService()
	result, err := service.Resolve(ctx, app.ResolveRequest{
		Request:   strings.Join(args, " "),
		RepoIndex: resolveString(cmd, opts.RepoIndex, "repo_index", "repo-index"),
		Output:    resolveString(cmd, opts.Output, "output", "output"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("resolved %d packages: %s\n", result.PackageCount, result.OutputPath)
	return nil
}
