// =============================================================================
// BKHD to UpSSE Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts one BKHD listing
// into UpSSE output.
//
// COMMAND USAGE:
//   upsse process --listing <file> --location <name> [flags]
//
// FLAGS:
//   --listing   : BKHD listing (.xlsx, or .csv)
//   --location  : Station name as configured in the reference workbook
//   --periods   : 1 (default) or 2 for a mid-day price change
//   --boundary  : First invoice number at the new price (with --periods 2)
//   --date      : Confirmed transaction date (YYYY-MM-DD)
//   --out       : Output directory (overrides output_dir)
//   --delimiter : Field delimiter of CSV listings
//
// PROCESSING PIPELINE:
//   1. Load configuration, policy and reference data
//   2. Read the listing
//   3. Convert; on an ambiguous date ask (terminal) or stop (scripts)
//   4. Write UpSSE.xlsx, or the two-period zip archive
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/converter"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/csvparser"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/xlsxparser"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/xlsxwriter"
	"github.com/ginjaninja78/bkhd-upsse-converter/pkg/utils"
)

// Output base names.
const (
	singleOutputName  = "UpSSE"
	oldPeriodName     = "UpSSE_gia_cu.xlsx"
	newPeriodName     = "UpSSE_gia_moi.xlsx"
	twoPeriodArchive  = "UpSSE_2_giai_doan"
	dateFileLayout    = "20060102"
	defaultPeriodFlag = "1"
)

// errDateChoiceRequired stops a non-interactive run on an ambiguous date.
var errDateChoiceRequired = errors.New("transaction date is ambiguous, rerun with --date")

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	listingPath  string
	locationName string
	periodsFlag  string
	boundaryFlag string
	dateFlag     string
	outDir       string
	csvDelimiter string
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert a BKHD listing into an UpSSE import file",
	Long: `The process command reads one BKHD listing, checks it against the selected
location and writes the UpSSE accounting import.

With --periods 1 the result is UpSSE.xlsx. With --periods 2 the listing is cut
at the --boundary invoice and both halves are written to
UpSSE_gia_cu.xlsx and UpSSE_gia_moi.xlsx inside UpSSE_2_giai_doan.zip. If one
half has no rows, only the other workbook is written, without the archive.

If the transaction date could be read either way round (03/07 or 07/03), an
interactive run asks which one is right; a scripted run stops and prints the
--date values to pass.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess()
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&listingPath, "listing", "l", "", "Path to the BKHD listing (.xlsx or .csv)")
	processCmd.Flags().StringVar(&locationName, "location", "", "Station name as configured in the reference data")
	processCmd.Flags().StringVar(&periodsFlag, "periods", defaultPeriodFlag, "Number of price periods in the listing (1 or 2)")
	processCmd.Flags().StringVar(&boundaryFlag, "boundary", "", "First invoice number at the new price (with --periods 2)")
	processCmd.Flags().StringVar(&dateFlag, "date", "", "Confirmed transaction date (YYYY-MM-DD)")
	processCmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (overrides output_dir)")
	processCmd.Flags().StringVar(&csvDelimiter, "delimiter", ",", "Field delimiter for CSV listings")

	_ = processCmd.MarkFlagRequired("listing")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess() error {
	startTime := time.Now()
	out := os.Stdout

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION AND REFERENCE DATA
	// =========================================================================

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() { _ = env.logger.Sync() }()

	logger := env.logger.With(zap.String("run_id", uuid.NewString()))

	bundle, err := env.bundle()
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	mode, err := converter.ParsePricingMode(periodsFlag)
	if err != nil {
		return err
	}

	location := locationName
	if location == "" {
		if !isTerminal() {
			return fmt.Errorf("--location is required")
		}
		if location, err = promptLocation(bundle.LocationOrder); err != nil {
			return err
		}
	}

	boundary := boundaryFlag
	if mode == converter.TwoPeriods && strings.TrimSpace(boundary) == "" && isTerminal() {
		if boundary, err = promptBoundary(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 2: READ LISTING
	// =========================================================================

	listing, err := readListing(listingPath)
	if err != nil {
		return err
	}
	logger.Debug("Read listing",
		zap.String("path", listingPath),
		zap.Int("lines", len(listing.Lines)),
		zap.String("declared_symbol", listing.DeclaredSymbol))

	// =========================================================================
	// STEP 3: CONVERT
	// =========================================================================

	conv := converter.New(bundle, env.policy, logger)
	req := converter.Request{
		Listing:         listing,
		Location:        location,
		Mode:            mode,
		BoundaryInvoice: boundary,
		ConfirmedDate:   dateFlag,
	}

	result, err := conv.Transform(req)
	if err != nil {
		return err
	}

	if result.NeedsDateChoice() {
		if !isTerminal() {
			printDateOptions(out, result.Date.Options)
			return errDateChoiceRequired
		}
		if req.ConfirmedDate, err = promptDate(result.Date.Options); err != nil {
			return err
		}
		if result, err = conv.Transform(req); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT
	// =========================================================================

	dir := env.config.OutputDir
	if outDir != "" {
		dir = outDir
	}
	fm := utils.NewFileManager(dir, env.config.OutputNameFormat)
	params := map[string]string{
		"location": location,
		"date":     result.Date.Date.Format(dateFileLayout),
	}

	path, err := writeResult(fm, result, params)
	if err != nil {
		return err
	}

	logger.Info("Wrote UpSSE output",
		zap.String("path", path),
		zap.Stringer("mode", result.Mode),
		zap.Duration("elapsed", time.Since(startTime)))

	printPath(out, "Wrote", path)
	printInfof(out, "Transaction date %s", result.Date.Date.Format(converter.DateLabelLayout))
	return nil
}

// readListing picks the parser by file extension.
func readListing(path string) (*types.Listing, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvparser.Parse(path, csvparser.Settings{Delimiter: csvDelimiter})
	default:
		return xlsxparser.Parse(path)
	}
}

// writeResult renders the converted rows and stores them. Two-period output
// is zipped only when both batches have rows; a lone batch is written as a
// plain workbook under its period name.
func writeResult(fm *utils.FileManager, result *converter.Result, params map[string]string) (string, error) {
	if result.Mode == converter.SinglePeriod {
		return writeWorkbook(fm, singleOutputName, result.Rows, params)
	}

	var batches []periodBatch
	for _, batch := range []periodBatch{
		{oldPeriodName, result.OldRows},
		{newPeriodName, result.NewRows},
	} {
		if len(batch.rows) > 0 {
			batches = append(batches, batch)
		}
	}

	if len(batches) == 1 {
		return writeWorkbook(fm, strings.TrimSuffix(batches[0].name, ".xlsx"), batches[0].rows, params)
	}

	entries := make([]utils.ArchiveEntry, 0, len(batches))
	for _, batch := range batches {
		content, err := xlsxwriter.Bytes(batch.rows)
		if err != nil {
			return "", err
		}
		entries = append(entries, utils.ArchiveEntry{Name: batch.name, Content: content})
	}

	params["name"] = twoPeriodArchive
	return fm.WriteArchive(params, entries)
}

// periodBatch is one workbook of a two-period result.
type periodBatch struct {
	name string
	rows []types.AccountingRow
}

func writeWorkbook(fm *utils.FileManager, name string, rows []types.AccountingRow, params map[string]string) (string, error) {
	content, err := xlsxwriter.Bytes(rows)
	if err != nil {
		return "", err
	}
	params["name"] = name
	return fm.WriteFile(".xlsx", params, content)
}
