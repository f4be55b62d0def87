package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Angki/bandcamp-codes-verificator/internal/config"
	"github.com/Angki/bandcamp-codes-verificator/pkg/batch"
	"github.com/Angki/bandcamp-codes-verificator/pkg/credentials"
	"github.com/Angki/bandcamp-codes-verificator/pkg/crumb"
	"github.com/Angki/bandcamp-codes-verificator/pkg/logging"
	"github.com/Angki/bandcamp-codes-verificator/pkg/pacing"
	"github.com/Angki/bandcamp-codes-verificator/pkg/verify"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var verifyFlags struct {
	input      string
	codes      string
	crumb      string
	clientID   string
	session    string
	identity   string
	output     string
	format     string
	verbose    bool
	dryRun     bool
	fetchCrumb bool
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	f := verifyCmd.Flags()
	f.StringVarP(&verifyFlags.input, "input", "i", "", "path to a text file with one code per line")
	f.StringVarP(&verifyFlags.codes, "codes", "c", "", "codes as a newline-delimited string")
	f.StringVar(&verifyFlags.crumb, "crumb", "", "anti-forgery crumb (falls back to BANDCAMP_CRUMB)")
	f.StringVar(&verifyFlags.clientID, "client-id", "", "client_id cookie (falls back to BANDCAMP_CLIENT_ID)")
	f.StringVar(&verifyFlags.session, "session", "", "session cookie (falls back to BANDCAMP_SESSION)")
	f.StringVar(&verifyFlags.identity, "identity", "", "identity cookie, optional (falls back to BANDCAMP_IDENTITY)")
	f.StringVarP(&verifyFlags.output, "output", "o", "results.csv", "output file path")
	f.StringVarP(&verifyFlags.format, "format", "f", "csv", "output format: csv or json")
	f.BoolVarP(&verifyFlags.verbose, "verbose", "v", false, "print every result as it arrives")
	f.BoolVar(&verifyFlags.dryRun, "dry-run", false, "list what would be verified without making calls")
	f.BoolVar(&verifyFlags.fetchCrumb, "fetch-crumb", false, "extract the crumb from the signed-in page when not provided")

	verifyCmd.MarkFlagsMutuallyExclusive("input", "codes")
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a batch of download codes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd.Context())
	},
}

func runVerify(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := logging.LogLevel(cfg.LogLevel)
	if verifyFlags.verbose {
		level = logging.LevelDebug
	}
	logging.Setup(logging.Config{Level: level, Pretty: cfg.LogPretty})

	if _, err := exportFormat(verifyFlags.format); err != nil {
		return err
	}

	codes, err := readCodes()
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		return fmt.Errorf("no codes found")
	}
	if len(codes) > cfg.MaxCodes {
		return fmt.Errorf("too many codes: %d (max %d)", len(codes), cfg.MaxCodes)
	}
	fmt.Printf("Found %d code(s) to verify\n", len(codes))

	if verifyFlags.dryRun {
		printDryRun(codes)
		return nil
	}

	// Ctrl-C requests cooperative cancellation; the item in flight
	// completes and partial results are still exported.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	creds, err := resolveCredentials(ctx, cfg)
	if err != nil {
		return err
	}

	client, err := verify.New(verify.Config{
		VerifyURL: cfg.VerifyURL,
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
	})
	if err != nil {
		return err
	}

	pacer, err := pacing.New(cfg.MinDelay, cfg.MaxDelay)
	if err != nil {
		return err
	}

	runner, err := batch.NewRunner(client, pacer, batch.Config{
		MaxCodes:   cfg.MaxCodes,
		OnProgress: printProgress,
	})
	if err != nil {
		return err
	}

	results, err := runner.Run(ctx, codes, creds)
	if err != nil {
		return err
	}

	printSummary(batch.Summarize(results))
	if verifyFlags.verbose {
		printSampleResults(results)
	}

	if verifyFlags.output != "" {
		if err := writeResults(verifyFlags.output, verifyFlags.format, results); err != nil {
			return err
		}
		fmt.Printf("Results saved to: %s\n", verifyFlags.output)
	}

	return nil
}

func readCodes() ([]string, error) {
	switch {
	case verifyFlags.input != "":
		data, err := os.ReadFile(verifyFlags.input)
		if err != nil {
			return nil, fmt.Errorf("read codes file: %w", err)
		}
		return batch.ParseCodes(string(data)), nil
	case verifyFlags.codes != "":
		return batch.ParseCodes(verifyFlags.codes), nil
	default:
		return nil, fmt.Errorf("either --input or --codes is required")
	}
}

// resolveCredentials merges flags over stored configuration and, when
// allowed, fetches a missing crumb from the signed-in page.
func resolveCredentials(ctx context.Context, cfg config.Config) (credentials.Bundle, error) {
	clientID := firstNonEmpty(verifyFlags.clientID, cfg.ClientID)
	session := firstNonEmpty(verifyFlags.session, cfg.Session)
	identity := firstNonEmpty(verifyFlags.identity, cfg.Identity)
	crumbValue := firstNonEmpty(verifyFlags.crumb, cfg.Crumb)

	if crumbValue == "" && verifyFlags.fetchCrumb && clientID != "" && session != "" {
		source, err := crumb.NewPageSource(crumb.PageConfig{
			UserAgent: cfg.UserAgent,
			ClientID:  clientID,
			Session:   session,
			Identity:  identity,
		})
		if err != nil {
			return credentials.Bundle{}, err
		}
		crumbValue, err = source.Crumb(ctx)
		if err != nil {
			return credentials.Bundle{}, fmt.Errorf("fetch crumb: %w", err)
		}
	}

	return credentials.New(crumbValue, clientID, session, identity)
}

func printProgress(seq, total int, result verify.Result) {
	if !verifyFlags.verbose && seq%10 != 0 && seq != total {
		return
	}
	status := "OK"
	if !result.OK {
		status = "FAIL"
	}
	fmt.Printf("[%d/%d] %s - HTTP %d - %s (%dms)\n",
		seq, total, displayCode(result.Code), result.Status, status, result.Elapsed.Milliseconds())
}

func printDryRun(codes []string) {
	fmt.Println("[DRY RUN] Would verify the following codes:")
	for i, code := range codes {
		if i == 10 {
			fmt.Printf("  ... and %d more\n", len(codes)-10)
			break
		}
		fmt.Printf("  %d. %s\n", i+1, code)
	}
	fmt.Printf("Output would be saved to: %s\n", verifyFlags.output)
}

func printSummary(s batch.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Verification Summary")
	t.AppendRow(table.Row{"Total codes", s.Total})
	t.AppendRow(table.Row{"Successful", s.Succeeded})
	t.AppendRow(table.Row{"Failed", s.Failed})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func printSampleResults(results []verify.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Code", "Status", "Success", "Time"})

	for i, r := range results {
		if i == 10 {
			break
		}
		t.AppendRow(table.Row{
			r.Seq,
			displayCode(r.Code),
			r.Status,
			r.OK,
			fmt.Sprintf("%dms", r.Elapsed.Milliseconds()),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
	if len(results) > 10 {
		fmt.Printf("... and %d more results\n", len(results)-10)
	}
}

func displayCode(code string) string {
	if len(code) <= 30 {
		return code
	}
	return code[:27] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
