package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/BradSegal/anatomize/internal/pack"
)

var explainCmd = &cobra.Command{
	Use:   "explain PATH...",
	Short: "Show which rule excludes a path and how it would be represented",
	Long: `Explain evaluates relative paths against the ignore rules, the include
allowlist and the representation policy without walking the tree. A trailing
"/" marks a path as a directory when it does not exist on disk.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplain,
}

func init() {
	f := explainCmd.Flags()
	f.String("root", ".", "Directory the paths are relative to")
	f.Bool("json", false, "Print explanations as JSON")
	bindCommandFlags(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	opts, err := packOptions(viper.GetString("root"))
	if err != nil {
		return err
	}
	explanations, err := pack.Explain(opts, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if viper.GetBool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(explanations)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSTATUS\tRULE\tREPRESENTATION")
	for _, ex := range explanations {
		status, rule := "included", "-"
		switch {
		case ex.Excluded:
			status = "excluded"
			rule = ex.MatchedSource
			if ex.MatchedPattern != "" {
				rule = fmt.Sprintf("%s (%s)", ex.MatchedPattern, ex.MatchedSource)
			}
			if ex.MatchedPath != "" {
				rule += " via " + ex.MatchedPath + "/"
			}
		case !ex.Included:
			status = "not included"
			rule = "include allowlist"
		}
		rep := "-"
		if ex.Representation != "" {
			rep = string(ex.Representation)
			if ex.RepresentationRule != "" {
				rep += " (" + ex.RepresentationRule + ")"
			}
		}
		path := ex.Path
		if ex.IsDir {
			path += "/"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", path, status, rule, rep)
	}
	return tw.Flush()
}
