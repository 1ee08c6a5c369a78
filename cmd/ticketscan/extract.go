package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/entity"
	"github.com/ticketscan/ticketscan/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract fields from one OCR text file (use \"-\" for stdin)",
	Example: `  # Extract from a file, result as JSON on stdout
  ticketscan extract receipt.txt

  # Pipe OCR output through stdin, force French patterns
  cat receipt.txt | ticketscan extract - --language fr

  # Fail instead of falling back to defaults
  ticketscan extract receipt.txt --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("language", "l", "auto", "receipt language (fr, en, auto)")
	extractCmd.Flags().String("type", "", "receipt type hint (RETAIL, CARD_PAYMENT, CASH_REGISTER)")
	extractCmd.Flags().Bool("strict", false, "reject results that fail validation instead of defaulting")
	extractCmd.Flags().StringP("output", "o", "", "output file path (default: stdout)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	langFlag, _ := cmd.Flags().GetString("language")
	typeFlag, _ := cmd.Flags().GetString("type")
	strict, _ := cmd.Flags().GetBool("strict")
	outputPath, _ := cmd.Flags().GetString("output")

	lang, ok := constants.CanonicalizeLanguage(langFlag)
	if !ok {
		return fmt.Errorf("unsupported language %q", langFlag)
	}

	var (
		text []byte
		err  error
	)
	if args[0] == "-" {
		text, err = io.ReadAll(os.Stdin)
	} else {
		text, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	engine := extract.NewEngine(extract.WithLogger(logger))
	result, err := engine.Extract(string(text), entity.ExtractionOptions{
		Language:         lang,
		ReceiptType:      constants.ReceiptType(typeFlag),
		StrictValidation: strict,
	})
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	if outputPath != "" {
		return os.WriteFile(outputPath, payload, 0o644)
	}
	_, err = os.Stdout.Write(payload)
	return err
}
