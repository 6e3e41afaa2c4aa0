package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskpilot/internal/apperror"
)

// writeJSON prints v as indented JSON on the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// readInput returns the content of file, or stdin when file is "-" or
// empty and no fallback text was given.
func readInput(cmd *cobra.Command, file, fallback string) (string, error) {
	switch {
	case file != "" && file != "-":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	case file == "" && fallback != "":
		return fallback, nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

// decodeInput reads JSON from file (or stdin) into v.
func decodeInput(cmd *cobra.Command, file string, v any) error {
	raw, err := readInput(cmd, file, "")
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("invalid JSON input: %w", err)
	}
	return nil
}

// errorReport is what a failed command writes to stderr.
type errorReport struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Status int    `json:"status"`
}

// reportError writes err as a single JSON line. Status follows the HTTP
// mapping of the error kind.
func reportError(w io.Writer, err error) {
	kind := apperror.KindOf(err)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if encErr := enc.Encode(errorReport{
		Error:  err.Error(),
		Kind:   kind.String(),
		Status: apperror.HTTPStatus(kind),
	}); encErr != nil {
		fmt.Fprintln(w, err)
	}
}
