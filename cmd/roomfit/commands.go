package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/RoomFit/internal/engine"
	"github.com/piwi3910/RoomFit/internal/evaluation"
	"github.com/piwi3910/RoomFit/internal/export"
	"github.com/piwi3910/RoomFit/internal/importer"
	"github.com/piwi3910/RoomFit/internal/llm"
	"github.com/piwi3910/RoomFit/internal/model"
	"github.com/piwi3910/RoomFit/internal/project"
	"github.com/piwi3910/RoomFit/internal/server"
)

func serveCmd(e *env) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the design studio over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := e.newStudio(ctx)
			if err != nil {
				return err
			}
			if listen == "" {
				listen = e.config.Listen
			}
			return server.New(st, e.log).ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on (default from config)")
	return cmd
}

func describeCmd(e *env) *cobra.Command {
	var share string

	cmd := &cobra.Command{
		Use:   "describe [layout.yaml]",
		Short: "Print the natural-language description of a layout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := e.loadLayout(args, share)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), evaluation.Describe(s.Layout()))
			return nil
		},
	}

	cmd.Flags().StringVar(&share, "share", "", "read the layout from a share code")
	return cmd
}

func evaluateCmd(e *env) *cobra.Command {
	var share string

	cmd := &cobra.Command{
		Use:   "evaluate [layout.yaml]",
		Short: "Score a layout against a client brief and print the feedback",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, s, err := e.loadLayout(args, share)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			res, brief := e.evaluate(ctx, f, s)
			printResult(cmd.OutOrStdout(), brief, res)
			if res.Failed() {
				return errors.New("evaluation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&share, "share", "", "read the layout from a share code")
	return cmd
}

// evaluate runs one evaluation synchronously. A request in the layout
// file replaces the generated brief when it can be embedded.
func (e *env) evaluate(ctx context.Context, f project.LayoutFile, s engine.Session) (model.EvaluationResult, llm.Brief) {
	svc, brief := e.service(ctx)
	if f.Request != "" {
		vec, err := svc.Embed(ctx, f.Request)
		switch {
		case err != nil:
			e.log.Warn("embed layout request", zap.Error(err))
		case len(vec) == 0:
			e.log.Warn("embed layout request: empty vector")
		default:
			brief = llm.Brief{Text: f.Request, Embedding: vec, Live: brief.Live}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.EvaluationTimeout)
	defer cancel()
	orch := evaluation.NewOrchestrator(svc, e.log)
	res := orch.Evaluate(ctx, evaluation.Request{Text: brief.Text, Embedding: brief.Embedding}, s.Layout())
	return res, brief
}

func printResult(w io.Writer, brief llm.Brief, res model.EvaluationResult) {
	fmt.Fprintf(w, "Request:     %s\n", brief.Text)
	if !brief.Live {
		fmt.Fprintln(w, "             (placeholder brief, model offline)")
	}
	fmt.Fprintf(w, "Description: %s\n", res.Description)
	fmt.Fprintf(w, "Score:       %.1f / %.0f\n", res.Score, model.MaxScore)
	fmt.Fprintf(w, "Feedback:    %s\n", res.Feedback)
	fmt.Fprintf(w, "State:       %s\n", res.State)
}

func exportCmd(e *env) *cobra.Command {
	var (
		pdfPath, dxfPath, xlsxPath string
		share                      string
		unitsPerCell               float64
		withEval                   bool
	)

	cmd := &cobra.Command{
		Use:   "export [layout.yaml]",
		Short: "Export a layout as a PDF report, DXF floor plan or Excel tally",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pdfPath == "" && dxfPath == "" && xlsxPath == "" {
				return errors.New("nothing to export: pass --pdf, --dxf or --xlsx")
			}
			f, s, err := e.loadLayout(args, share)
			if err != nil {
				return err
			}
			l := s.Layout()
			out := cmd.OutOrStdout()

			if pdfPath != "" {
				report := export.Report{Layout: l, Request: f.Request, GeneratedAt: time.Now()}
				if withEval {
					res, brief := e.evaluate(cmd.Context(), f, s)
					report.Result = &res
					report.Request = brief.Text
				}
				if err := export.ExportReport(pdfPath, report); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", pdfPath)
			}
			if dxfPath != "" {
				if err := export.ExportDXF(dxfPath, l, unitsPerCell); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", dxfPath)
			}
			if xlsxPath != "" {
				if err := export.ExportTally(xlsxPath, l); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", xlsxPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write a PDF report to this path")
	cmd.Flags().StringVar(&dxfPath, "dxf", "", "write a DXF floor plan to this path")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an Excel furniture tally to this path")
	cmd.Flags().Float64Var(&unitsPerCell, "units-per-cell", 100, "DXF drawing units per grid cell")
	cmd.Flags().BoolVar(&withEval, "evaluate", false, "evaluate the layout and include the result in the PDF")
	cmd.Flags().StringVar(&share, "share", "", "read the layout from a share code")
	return cmd
}

func catalogCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and convert furniture catalogs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate [catalog]",
		Short: "Check a YAML, CSV or Excel catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, warnings, err := importer.LoadCatalog(args[0])
			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d kinds: ", cat.Len())
			for i, name := range cat.Names() {
				if i > 0 {
					fmt.Fprint(out, ", ")
				}
				fmt.Fprint(out, name)
			}
			fmt.Fprintln(out)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "convert [catalog] [out.yaml]",
		Short: "Convert a CSV or Excel catalog into YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, warnings, err := importer.LoadCatalog(args[0])
			for _, w := range warnings {
				e.log.Warn("catalog", zap.String("warning", w))
			}
			if err != nil {
				return err
			}
			data, err := importer.WriteCatalogYAML(cat.Kinds())
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d kinds to %s\n", cat.Len(), args[1])
			return nil
		},
	})
	return cmd
}
