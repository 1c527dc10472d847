package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/BradSegal/anatomize/internal/discovery"
	"github.com/BradSegal/anatomize/internal/pack"
)

var packCmd = &cobra.Command{
	Use:   "pack [PATH|GIT_URL]",
	Short: "Pack a directory or git repository",
	Long: `Pack walks PATH (default ".") or a fresh clone of GIT_URL and renders
every selected file as content, summary or meta.

Representation rules are registered in the order --content, --summary,
--meta, --assign; the last matching rule wins.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPack,
}

func init() {
	f := packCmd.Flags()
	f.StringP("output", "o", formatText, "Output format: text, markdown or json")
	f.StringP("file", "f", "", "Save output to the specified file")
	f.BoolP("clipboard", "c", false, "Copy output to the clipboard")
	f.String("pdf", "", "Also save a syntax-highlighted PDF")
	f.String("upload", "", "Also upload the output to s3://bucket/key")
	f.Bool("interactive", false, "Pick files and directories to include with a fuzzy finder")
	f.Bool("trace", false, "Record include and exclude decisions")
	bindCommandFlags(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	arg := "."
	if len(args) == 1 {
		arg = args[0]
	}

	root, cleanup, err := resolveRoot(ctx, arg, cmd.ErrOrStderr())
	defer cleanup()
	if err != nil {
		return err
	}

	opts, err := packOptions(root)
	if err != nil {
		return err
	}
	opts.Trace = viper.GetBool("trace")

	if viper.GetBool("interactive") {
		patterns, err := runInteractiveFinder(opts)
		if errors.Is(err, errSelectionAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Interactive selection aborted.")
			return nil
		}
		if err != nil {
			return err
		}
		opts.Include = append(opts.Include, patterns...)
	}

	m, err := pack.Run(opts)
	if err != nil {
		return err
	}

	format := viper.GetString("output")
	rendered, err := renderManifest(m, format)
	if err != nil {
		return err
	}
	if opts.Trace && format != formatJSON {
		printTrace(cmd.ErrOrStderr(), m.Trace)
	}

	pdfPath := viper.GetString("pdf")
	if pdfPath != "" {
		if err := generatePDF(m, pdfPath); err != nil {
			return err
		}
	}

	if dest := viper.GetString("upload"); dest != "" {
		loc, err := parseS3URL(dest, "bundle"+extensionFor(format))
		if err != nil {
			return err
		}
		var s3cfg s3Config
		if err := viper.UnmarshalKey("s3", &s3cfg); err != nil {
			return fmt.Errorf("s3 config: %w", err)
		}
		if err := uploadBundle(ctx, s3cfg, loc, []byte(rendered), contentTypeFor(format)); err != nil {
			return err
		}
	}

	target := outputTarget{File: viper.GetString("file"), Clipboard: viper.GetBool("clipboard")}
	if target.File == "" && !target.Clipboard && (pdfPath != "" || viper.GetString("upload") != "") {
		return nil
	}
	return writeOutput(rendered, target, cmd.OutOrStdout())
}

// printTrace writes one line per decision.
func printTrace(w io.Writer, trace []discovery.TraceItem) {
	for _, t := range trace {
		line := fmt.Sprintf("%-8s %s", t.Decision, t.Path)
		if t.IsDir {
			line += "/"
		}
		if t.Reason != "" {
			line += fmt.Sprintf(" [%s]", t.Reason)
		}
		if t.MatchedPattern != "" {
			line += fmt.Sprintf(" %s (%s)", t.MatchedPattern, t.MatchedSource)
		}
		fmt.Fprintln(w, line)
	}
	logger.Debug("trace printed", zap.Int("items", len(trace)))
}
