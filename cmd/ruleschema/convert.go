package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-ruleschema/pkg/generator"
	"github.com/goliatone/go-ruleschema/pkg/manifest"
	"github.com/goliatone/go-ruleschema/pkg/orchestrator"
	"github.com/goliatone/go-ruleschema/pkg/render"
)

var convertCmd = &cobra.Command{
	Use:   "convert <manifest>",
	Short: "Generate definitions from a rule manifest",
	Long: `Loads a YAML or JSON manifest from a path or http(s) URL and writes the
generated definitions as json, yaml or an OpenAPI 3.0 document.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("format", "f", render.FormatJSON, "Output format (json, yaml, openapi)")
	convertCmd.Flags().StringP("output", "o", "", "Output file (stdout if empty)")
	convertCmd.Flags().String("ref-prefix", "", "Reference prefix, overrides the manifest setting")
	convertCmd.Flags().Bool("skip-missing", false, "Only require properties with a presence rule")
	convertCmd.Flags().Bool("sanitize", false, "Strip markup from descriptions and titles")
	convertCmd.Flags().String("title", "", "OpenAPI info title")
	convertCmd.Flags().String("doc-version", "", "OpenAPI info version")
	convertCmd.Flags().Duration("timeout", 30*time.Second, "Timeout for remote manifests")
}

func runConvert(cmd *cobra.Command, args []string) error {
	logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}

	src, err := manifest.SourceFromArg(args[0])
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	refPrefix, _ := cmd.Flags().GetString("ref-prefix")
	sanitize, _ := cmd.Flags().GetBool("sanitize")
	title, _ := cmd.Flags().GetString("title")
	docVersion, _ := cmd.Flags().GetString("doc-version")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	var options []generator.Option
	if refPrefix != "" {
		options = append(options, generator.WithRefPointerPrefix(refPrefix))
	}
	if cmd.Flags().Changed("skip-missing") {
		skip, _ := cmd.Flags().GetBool("skip-missing")
		options = append(options, generator.WithSkipMissingProperties(skip))
	}

	gen := orchestrator.New(
		orchestrator.WithLogger(logger),
		orchestrator.WithLoaderOptions(manifest.WithHTTPFallback(timeout)),
	)
	out, err := gen.Generate(cmd.Context(), orchestrator.Request{
		Source:        src,
		Renderer:      format,
		Options:       options,
		Sanitize:      sanitize,
		RenderOptions: render.RenderOptions{Title: title, Version: docVersion},
	})
	if err != nil {
		return err
	}

	if output == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("definitions written", "path", output, "format", format)
	return nil
}
