package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/export"
	"legalconnect-engine/internal/filter"
	"legalconnect-engine/internal/roster"
	"legalconnect-engine/internal/shortlist"
	"legalconnect-engine/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import lawyers from roster files",
	Long: `Import lawyers from JSON, YAML or HTML table exports. The format is taken
from the file extension. Lawyers already in the roster (same name, firm and
location) are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var lawyersCmd = &cobra.Command{
	Use:     "lawyers",
	Aliases: []string{"ls"},
	Short:   "List lawyers matching filters",
	Args:    cobra.NoArgs,
	RunE:    runLawyers,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a user's shortlist as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

// lawyersFlags maps CLI flags onto filter fields.
var lawyersFlags = []struct {
	flag  string
	field filter.Field
	usage string
}{
	{"practice-area", filter.FieldPracticeArea, "exact practice area (family, conveyancing, immigration)"},
	{"location", filter.FieldLocation, "location substring"},
	{"min-experience", filter.FieldMinExperience, "minimum years of experience"},
	{"max-rate", filter.FieldMaxRate, "maximum hourly rate"},
	{"language", filter.FieldLanguage, "spoken language substring"},
	{"query", filter.FieldQuery, "free text over name, firm, location and specialties"},
}

func init() {
	rootCmd.AddCommand(importCmd, lawyersCmd, exportCmd)

	for _, f := range lawyersFlags {
		lawyersCmd.Flags().String(f.flag, "", f.usage)
	}
	lawyersCmd.Flags().Bool("verified", false, "verified lawyers only")
	lawyersCmd.Flags().Bool("mediation", false, "mediation certified lawyers only")
	lawyersCmd.Flags().String("sort", "", "sort by experience_years, hourly_rate_min or success_rate")
	lawyersCmd.Flags().Int("nearby", 6, "suggestions to show when nothing matches a location")
	lawyersCmd.Flags().Bool("json", false, "output as JSON")

	exportCmd.Flags().String("email", "", "account whose shortlist to export")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	_ = exportCmd.MarkFlagRequired("email")
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(); err != nil {
		return err
	}

	res, err := roster.ImportFiles(cmd.Context(), a.db.Pool, args...)
	if err != nil {
		return err
	}
	newPrinter().Success("imported %d of %d lawyers from %d file(s), %d skipped", res.Added, res.Parsed, res.Files, res.Skipped)
	return nil
}

func criteriaFromFlags(cmd *cobra.Command) (filter.Criteria, error) {
	c := filter.Reset()
	var err error
	for _, f := range lawyersFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(f.flag)
		if c, err = c.Update(f.field, v); err != nil {
			return filter.Reset(), err
		}
	}
	for flag, field := range map[string]filter.Field{"verified": filter.FieldVerified, "mediation": filter.FieldMediation} {
		if b, _ := cmd.Flags().GetBool(flag); b {
			if c, err = c.Update(field, "true"); err != nil {
				return filter.Reset(), err
			}
		}
	}
	return c, nil
}

func runLawyers(cmd *cobra.Command, _ []string) error {
	c, err := criteriaFromFlags(cmd)
	if err != nil {
		return err
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(); err != nil {
		return err
	}

	all, err := store.ListLawyers(cmd.Context(), a.db.Pool)
	if err != nil {
		return err
	}
	res := filter.Run(all, c)
	if sortBy, _ := cmd.Flags().GetString("sort"); sortBy != "" {
		res.Lawyers = filter.Refine(res.Lawyers, filter.Refinement{SortBy: filter.SortKey(sortBy)})
	}
	limit, _ := cmd.Flags().GetInt("nearby")
	nearby := filter.Fallback(all, res, c, limit)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"result": res, "nearby": nearby})
	}

	p := newPrinter()
	p.out = cmd.OutOrStdout()
	if res.ResultCount == 0 {
		p.Warn("no lawyers match (roster has %d)", res.TotalCount)
		if len(nearby) > 0 {
			p.Header("Nearby suggestions")
			return renderLawyers(p, nearby)
		}
		return nil
	}
	p.Header(fmt.Sprintf("%d of %d lawyers", res.ResultCount, res.TotalCount))
	return renderLawyers(p, res.Lawyers)
}

func renderLawyers(p *printer, ls []domain.Lawyer) error {
	rows := make([][]string, 0, len(ls))
	for _, l := range ls {
		loc := l.Location
		if l.State != "" {
			loc += ", " + l.State
		}
		rows = append(rows, []string{
			strconv.FormatInt(l.ID, 10),
			l.Name,
			l.Firm,
			l.PracticeArea,
			loc,
			strconv.Itoa(l.ExperienceYears),
			money(l.HourlyRate),
			yesNo(l.Verified),
			strings.Join(l.Languages, ", "),
		})
	}
	t := newTable(p.out)
	t.Header([]string{"ID", "Name", "Firm", "Practice Area", "Location", "Exp", "Rate", "Verified", "Languages"})
	if err := t.Bulk(rows); err != nil {
		return fmt.Errorf("render lawyers: %w", err)
	}
	if err := t.Render(); err != nil {
		return fmt.Errorf("render lawyers: %w", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	out, _ := cmd.Flags().GetString("output")

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(); err != nil {
		return err
	}

	ctx := cmd.Context()
	u, err := store.GetUserByEmail(ctx, a.db.Pool, email)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no account for %s", email)
	}
	if err != nil {
		return err
	}
	kv, err := a.shortlistKV(ctx)
	if err != nil {
		return err
	}
	entries, err := shortlist.NewBook(kv, shortlist.UserOwner(u.ID)).Entries(ctx)
	if err != nil {
		return err
	}

	if out == "" {
		return export.WriteCSV(cmd.OutOrStdout(), entries)
	}
	if err := exportFile(out, entries); err != nil {
		return err
	}
	newPrinter().Success("wrote %d lawyer(s) to %s", len(entries), out)
	return nil
}

// exportFile writes entries as CSV to path and returns the close error too.
func exportFile(path string, entries []shortlist.Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return export.WriteCSV(f, entries)
}
