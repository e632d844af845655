package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"context-bisect/internal/app"
)

type diffOptions struct {
	RepoIndex string
	Root      string
}

func newDiffCommand() *cobra.Command {
	opts := diffOptions{}
	cmd := &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "Classify the package delta between two snapshots or requests",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.RepoIndex, "repo-index", "", "Repository index file")
	cmd.Flags().StringVar(&opts.Root, "root", "", "Base directory for relative snapshot paths")

	_ = viper.BindPFlag("repo_index", cmd.Flags().Lookup("repo-index"))
	_ = viper.BindPFlag("root", cmd.Flags().Lookup("root"))

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, opts diffOptions, args []string) error {
	service := newAppService()
	result, err := service.Diff(ctx, app.DiffRequest{
		Before:    args[0],
		After:     args[1],
		RepoIndex: resolveString(cmd, opts.RepoIndex, "repo_index", "repo-index"),
		Root:      resolveString(cmd, opts.Root, "root", "root"),
	})
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(result.Diff)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
