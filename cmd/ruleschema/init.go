package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ruleschema/pkg/manifest"
	"github.com/goliatone/go-ruleschema/pkg/wizard"
)

// promptDriver is swapped in tests.
var promptDriver wizard.PromptDriver

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a rule manifest interactively",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringP("output", "o", "", "Manifest file to write (stdout if empty)")
}

func runInit(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	m, err := wizard.New(promptDriver).Run(cmd.Context())
	if err != nil {
		return err
	}

	payload, err := encodeManifest(m)
	if err != nil {
		return err
	}
	if output == "" {
		_, err := cmd.OutOrStdout().Write(payload)
		return err
	}
	if err := os.WriteFile(output, payload, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func encodeManifest(m manifest.Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}
