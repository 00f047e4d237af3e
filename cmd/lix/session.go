package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ethan4582/linkedin-extractor/pkg/export"
	"github.com/Ethan4582/linkedin-extractor/pkg/notion"
	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the people collected in the session",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the session to a CSV or Excel file",
	Long: `Write the session to a CSV or Excel file.

Examples:
  lix export                       # linkedin_profiles_<date>.csv
  lix export --format xlsx -o acme.xlsx
  lix export -o -                  # CSV to stdout`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Add the session's people to a Notion database",
	Long: `Add the session's people to a Notion database.

People whose URL is already in the database are skipped. The database needs
a Name (title), Company (text) and URL (url) property.

Credentials come from --notion-token/--notion-database, LIX_NOTION_TOKEN and
LIX_NOTION_DATABASE, config.yaml, or the ones saved by a previous --save.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget collected people and unlock the company",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	listCmd.Flags().Bool("json", false, "print as JSON")

	exportCmd.Flags().StringP("format", "f", export.FormatCSV, "csv or xlsx")
	exportCmd.Flags().StringP("output", "o", "", "output file, - for stdout (default: linkedin_profiles_<date>.<format>)")

	syncCmd.Flags().String("notion-token", "", "Notion integration token")
	syncCmd.Flags().String("notion-database", "", "Notion database ID")
	syncCmd.Flags().Duration("notion-delay", notion.DefaultDelay, "pause between page creations")
	syncCmd.Flags().Bool("save", false, "remember the Notion credentials in the session")

	rootCmd.AddCommand(listCmd, exportCmd, syncCmd, clearCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	s, store, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(store)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON { //nolint:errcheck // flag is defined above
		return outputJSON(out, s.Records)
	}
	if len(s.Records) == 0 {
		fmt.Fprintln(out, "No people collected yet.")
		return nil
	}
	fmt.Fprintf(out, "%d people at %s:\n", len(s.Records), s.Company)
	printRecords(out, s.Records, 0)
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	s, store, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(store)

	if len(s.Records) == 0 {
		return errors.New("no data to export")
	}

	format, _ := cmd.Flags().GetString("format") //nolint:errcheck // flag is defined above
	path, _ := cmd.Flags().GetString("output")   //nolint:errcheck // flag is defined above
	if path == "" {
		path = export.FileName(format, time.Now())
	}
	if path == "-" {
		return export.Write(cmd.OutOrStdout(), format, s.Records)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := export.Write(f, format, s.Records); err != nil {
		f.Close()       //nolint:errcheck,gosec // already failing
		os.Remove(path) //nolint:errcheck,gosec // partial file
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d people to %s\n", len(s.Records), path)
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, store, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	if len(s.Records) == 0 {
		return errors.New("no data to sync")
	}

	token, database := cfg.NotionToken, cfg.NotionDatabase
	if token == "" {
		token = s.NotionToken
	}
	if database == "" {
		database = s.NotionDatabase
	}

	client, err := notion.New(token, database, notion.WithLogger(logger), notion.WithDelay(cfg.NotionDelay))
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save { //nolint:errcheck // flag is defined above
		s.NotionToken, s.NotionDatabase = token, database
		if err := s.Save(ctx); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}
	}

	res, err := client.Sync(ctx, s.Records)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Notion: %d added, %d already present, %d failed\n",
		res.Created, res.Skipped, res.Failed)
	if res.Failed > 0 {
		return fmt.Errorf("%d records failed to sync", res.Failed)
	}
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	s, store, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(store)

	n := len(s.Records)
	if err := s.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d people.\n", n)
	return nil
}

func printRecords(w io.Writer, recs []profile.Record, offset int) {
	for i, r := range recs {
		fmt.Fprintf(w, "%3d. %s\t%s\t%s\n", offset+i+1, r.Name, r.Company, r.URL())
	}
}
