package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/docscan/internal/analyze"
	"github.com/sells-group/docscan/internal/model"
)

var (
	analyzeFile   string
	analyzeOutput string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a document locally and print the report",
	Long:  "Runs the classification and retrieval calls for a document read from --file or stdin. Nothing is stored.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput(analyzeOutput); err != nil {
			return err
		}
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		text, err := readDocument(cmd.InOrStdin(), analyzeFile)
		if err != nil {
			return err
		}

		gw, err := initGateway(cfg)
		if err != nil {
			return err
		}

		s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		s.Suffix = fmt.Sprintf(" Analyzing with %s retrieval...", gw.RetrievalMode())
		s.Start()
		rep, err := analyze.New(gw, nil).Run(cmd.Context(), text)
		s.Stop()
		if err != nil {
			return err
		}

		return writeReport(cmd.OutOrStdout(), rep, analyzeOutput)
	},
}

func validateOutput(format string) error {
	switch format {
	case "human", "json", "yaml":
		return nil
	default:
		return eris.Errorf("unknown output format %q (want human, json or yaml)", format)
	}
}

// readDocument reads the document from path, or from stdin when path is
// empty or "-".
func readDocument(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", eris.Wrap(err, "read document")
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", eris.New("document is empty")
	}
	return text, nil
}

func writeReport(w io.Writer, rep model.AnalysisReport, format string) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode json")
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(rep)
		if err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		_, err = fmt.Fprint(w, string(out))
		return err
	default:
		writeHuman(w, rep)
		return nil
	}
}

func likelihoodColor(l model.Likelihood) *color.Color {
	switch l {
	case model.LikelihoodHigh:
		return color.New(color.FgRed, color.Bold)
	case model.LikelihoodMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func writeHuman(w io.Writer, rep model.AnalysisReport) {
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	cyan.Fprint(w, "AI likelihood: ")
	likelihoodColor(rep.AILikelihood).Fprintln(w, rep.AILikelihood)
	if rep.AIReasoning != "" {
		fmt.Fprintf(w, "   %s\n", rep.AIReasoning)
	}
	fmt.Fprintln(w)

	cyan.Fprintf(w, "Online sources (%d)\n", rep.OnlineSourcesCount)
	if rep.OnlineSourcesCount == 0 {
		fmt.Fprintln(w, "   none found")
		return
	}
	for i, src := range rep.OnlineSources {
		fmt.Fprintf(w, "   %d. %s\n", i+1, src.Title)
		fmt.Fprintf(w, "      %s\n", color.CyanString(src.URL))
		if src.Snippet != "" {
			fmt.Fprintf(w, "      %s\n", color.HiBlackString(src.Snippet))
		}
	}
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "document path (default stdin)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "human", "output format: human, json or yaml")
	rootCmd.AddCommand(analyzeCmd)
}
