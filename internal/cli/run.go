package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"context-bisect/internal/app"
	"context-bisect/internal/types"
)

type runOptions struct {
	RepoIndex string
	Root      string
	Partial   bool
	Matches   []string
	Report    string
}

func newRunCommand() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run <good> [<mid>...] <bad> <check-script>",
		Short: "Bisect snapshots or requests to find the change behind a failing check",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.RepoIndex, "repo-index", "", "Repository index file")
	cmd.Flags().StringVar(&opts.Root, "root", "", "Base directory for relative snapshot paths")
	cmd.Flags().BoolVar(&opts.Partial, "partial", false, "Resolve candidate requests lazily during the search")
	cmd.Flags().StringSliceVar(&opts.Matches, "matches", nil, "Restrict the report to these package names (globs allowed)")
	cmd.Flags().StringVar(&opts.Report, "report", "", "Write the summary to this yaml file")

	_ = viper.BindPFlag("repo_index", cmd.Flags().Lookup("repo-index"))
	_ = viper.BindPFlag("root", cmd.Flags().Lookup("root"))
	_ = viper.BindPFlag("partial", cmd.Flags().Lookup("partial"))
	_ = viper.BindPFlag("matches", cmd.Flags().Lookup("matches"))
	_ = viper.BindPFlag("report", cmd.Flags().Lookup("report"))

	return cmd
}

func runRun(ctx context.Context, cmd *cobra.Command, opts runOptions, args []string) error {
	items := args[:len(args)-1]
	checkPath := args[len(args)-1]

	service := newAppService()
	result, err := service.Run(ctx, app.RunRequest{
		Items:      items,
		CheckPath:  checkPath,
		RepoIndex:  resolveString(cmd, opts.RepoIndex, "repo_index", "repo-index"),
		Root:       resolveString(cmd, opts.Root, "root", "root"),
		Partial:    resolveBool(cmd, opts.Partial, "partial", "partial"),
		Matches:    resolveStrings(cmd, opts.Matches, "matches", "matches"),
		ReportPath: resolveString(cmd, opts.Report, "report", "report"),
	})
	if err != nil {
		return err
	}
	printSummary(result.Summary)
	return nil
}

func printSummary(summary types.BisectSummary) {
	fmt.Println("These added / removed / changed packages are the cause of the issue:")
	categories := summary.Diff.Categories()
	for _, category := range types.DiffCategories {
		packages, ok := categories[category]
		if !ok {
			continue
		}
		fmt.Printf("    %s\n", category)
		for _, pkg := range packages {
			fmt.Printf("        %s-%s\n", pkg.Name, pkg.Version)
		}
	}
}
