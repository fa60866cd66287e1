package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/mohammadazar1/acad/internal"
	"github.com/mohammadazar1/acad/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type PlayersParams struct {
	Source  string `descr:"Data source: format:path or a .json/.yaml/.xlsx/.db file (default: the database)" positional:"true" optional:"true"`
	Search  string `descr:"Only show players whose name, sport or division contains this text" optional:"true"`
	Status  string `descr:"Which players to show" alts:"active,inactive,all" default:"all" strict:"true"`
	Sort    string `descr:"Sort field" alts:"name,remaining,paid,enrolled" default:"name" strict:"true"`
	SortDir string `descr:"Sort direction" alts:"asc,desc" default:"asc" strict:"true"`
}

func playersCmd() *cobra.Command {
	return boa.NewCmdT[PlayersParams]("players").
		WithShort("List players with what they owe").
		WithLong("Shows every player's months due, months paid, total due, total paid and remaining balance.").
		WithRunFunc(func(params *PlayersParams) {
			run(func(a *app) error { return runPlayers(a, params) })
		}).
		ToCobra()
}

func runPlayers(a *app, params *PlayersParams) error {
	data, err := a.load(params.Source)
	if err != nil {
		return err
	}
	rows, err := internal.ComputePlayerRows(data.Players, a.asOf)
	if err != nil {
		return err
	}
	display := internal.FilterByStatus(internal.FilterPlayers(rows, params.Search), params.Status)
	currency := a.currencyFor(data.Academy)

	if a.json() {
		internal.SortPlayerRows(display, params.Sort, params.SortDir)
		return internal.PrintPlayersJSON(a.out, display, a.cfg, currency)
	}
	internal.PrintPlayersTable(a.out, rows, display, internal.OutputOptions{
		Search:    params.Search,
		Status:    params.Status,
		SortField: params.Sort,
		SortDir:   params.SortDir,
		Currency:  currency,
	}, a.cfg)
	return nil
}

type WarningsParams struct {
	Source string `descr:"Data source: format:path or a .json/.yaml/.xlsx/.db file (default: the database)" positional:"true" optional:"true"`
}

func warningsCmd() *cobra.Command {
	return boa.NewCmdT[WarningsParams]("warnings").
		WithShort("List players with unpaid months").
		WithLong("Lists every player whose paid months are behind the months elapsed since enrollment, largest debt first.").
		WithRunFunc(func(params *WarningsParams) {
			run(func(a *app) error { return runWarnings(a, params) })
		}).
		ToCobra()
}

func runWarnings(a *app, params *WarningsParams) error {
	data, err := a.load(params.Source)
	if err != nil {
		return err
	}
	warnings, err := internal.DetectPaymentWarnings(data.Players, a.asOf)
	if err != nil {
		return err
	}
	currency := a.currencyFor(data.Academy)
	if a.json() {
		return internal.PrintWarningsJSON(a.out, warnings, currency)
	}
	internal.PrintWarningsTable(a.out, warnings, currency)
	return nil
}

type PlayerParams struct {
	Source string `descr:"Data source: format:path or a .json/.yaml/.xlsx/.db file (default: the database)" positional:"true" optional:"true"`
	ID     string `descr:"Player ID or name"`
}

func playerCmd() *cobra.Command {
	return boa.NewCmdT[PlayerParams]("player").
		WithShort("Show one player's finances and payment history").
		WithRunFunc(func(params *PlayerParams) {
			run(func(a *app) error { return runPlayer(a, params) })
		}).
		ToCobra()
}

func findPlayerRow(a *app, data *internal.AcademyData, id string) (internal.PlayerRow, error) {
	p, ok := data.FindPlayer(id)
	if !ok {
		return internal.PlayerRow{}, fmt.Errorf("player %q: %w", id, internal.ErrNotFound)
	}
	fin, err := internal.ComputeFinances(p.Account(), a.asOf)
	if err != nil {
		return internal.PlayerRow{}, fmt.Errorf("player %s: %w", p.Name, err)
	}
	return internal.PlayerRow{Player: p, Finances: fin}, nil
}

func runPlayer(a *app, params *PlayerParams) error {
	data, err := a.load(params.Source)
	if err != nil {
		return err
	}
	row, err := findPlayerRow(a, data, params.ID)
	if err != nil {
		return err
	}
	if a.json() {
		return internal.PrintPlayerJSON(a.out, row, a.cfg)
	}
	internal.PrintPlayerDetail(a.out, row, a.cfg, a.currencyFor(data.Academy))
	return nil
}

type ReportParams struct {
	Source string `descr:"Data source: format:path or a .json/.yaml/.xlsx/.db file (default: the database)" positional:"true" optional:"true"`
	Year   int    `descr:"Report year (default: the --as-of year)" default:"0"`
}

func reportCmd() *cobra.Command {
	return boa.NewCmdT[ReportParams]("report").
		WithShort("Yearly financial report").
		WithLong("Subscription income, revenue profit, expenses, coach salaries and net income for one year, with expected subscription income and payment warnings.").
		WithRunFunc(func(params *ReportParams) {
			run(func(a *app) error { return runReport(a, params) })
		}).
		ToCobra()
}

func (a *app) report(source string, year int) (internal.FinancialReport, internal.Currency, error) {
	data, err := a.load(source)
	if err != nil {
		return internal.FinancialReport{}, internal.Currency{}, err
	}
	if year == 0 {
		year = a.asOf.Year()
	}
	report, err := internal.BuildFinancialReport(*data, year, a.asOf)
	if err != nil {
		return internal.FinancialReport{}, internal.Currency{}, err
	}
	return report, a.currencyFor(data.Academy), nil
}

func runReport(a *app, params *ReportParams) error {
	report, currency, err := a.report(params.Source, params.Year)
	if err != nil {
		return err
	}
	if a.json() {
		return internal.PrintReportJSON(a.out, report, a.cfg, currency)
	}
	internal.PrintReport(a.out, report, currency)
	return nil
}

type ExportParams struct {
	Source string `descr:"Data source: format:path or a .json/.yaml/.xlsx/.db file (default: the database)" positional:"true" optional:"true"`
	Out    string `descr:"Output file: .xlsx or .pdf for the report, .json or .yaml for a data file import can read"`
	Year   int    `descr:"Report year (default: the --as-of year)" default:"0"`
	ID     string `descr:"Export only this player (ID or name, .xlsx only)" optional:"true"`
}

func exportCmd() *cobra.Command {
	return boa.NewCmdT[ExportParams]("export").
		WithShort("Export the financial report to Excel or PDF, or the academy data to JSON or YAML").
		WithRunFunc(func(params *ExportParams) {
			run(func(a *app) error { return runExport(a, params) })
		}).
		ToCobra()
}

func runExport(a *app, params *ExportParams) error {
	ext := strings.ToLower(filepath.Ext(params.Out))
	var buf bytes.Buffer
	what := "report"

	switch ext {
	case ".xlsx", ".pdf":
	case ".json", ".yaml", ".yml":
		if params.ID != "" {
			return errors.New("player exports are only available as .xlsx")
		}
		data, err := a.load(params.Source)
		if err != nil {
			return err
		}
		format := "json"
		if ext != ".json" {
			format = "yaml"
		}
		if err := internal.WriteDocument(&buf, *data, format); err != nil {
			return err
		}
		return a.writeExport(params.Out, &buf, data.Academy.Name)
	default:
		return fmt.Errorf("unsupported export format %q (want .xlsx, .pdf, .json or .yaml)", ext)
	}

	if params.ID != "" {
		if ext != ".xlsx" {
			return errors.New("player exports are only available as .xlsx")
		}
		data, err := a.load(params.Source)
		if err != nil {
			return err
		}
		row, err := findPlayerRow(a, data, params.ID)
		if err != nil {
			return err
		}
		if err := internal.ExportPlayerXLSX(&buf, row, a.currencyFor(data.Academy)); err != nil {
			return err
		}
		what = row.Player.Name
	} else {
		report, currency, err := a.report(params.Source, params.Year)
		if err != nil {
			return err
		}
		if ext == ".pdf" {
			pdf, err := internal.ExportReportPDF(report, currency)
			if err != nil {
				return err
			}
			buf.Write(pdf)
		} else if err := internal.ExportReportXLSX(&buf, report, currency); err != nil {
			return err
		}
	}

	return a.writeExport(params.Out, &buf, what)
}

func (a *app) writeExport(path string, buf *bytes.Buffer, what string) error {
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	a.log.Info("export written", zap.String("file", path), zap.Int("bytes", buf.Len()))
	fmt.Fprintf(a.out, "Exported %s to %s\n", what, path)
	return nil
}

type InitConfigParams struct {
	Source string `descr:"Data source: format:path or a .json/.yaml/.xlsx/.db file (default: the database)" positional:"true" optional:"true"`
	Out    string `descr:"Where to write the config (default ~/.acad/config.yaml)" optional:"true"`
	Force  bool   `descr:"Overwrite an existing config file" optional:"true"`
}

func initConfigCmd() *cobra.Command {
	return boa.NewCmdT[InitConfigParams]("init-config").
		WithShort("Write a config template with a note slot for every player").
		WithRunFunc(func(params *InitConfigParams) {
			run(func(a *app) error { return runInitConfig(a, params) })
		}).
		ToCobra()
}

func runInitConfig(a *app, params *InitConfigParams) error {
	path := firstNonEmpty(params.Out, internal.DefaultConfigPath())
	if path == "" {
		return errors.New("cannot determine config path, use --out")
	}
	if _, err := os.Stat(path); err == nil && !params.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	data, err := a.load(params.Source)
	if err != nil {
		return err
	}
	cfg := internal.GenerateConfigTemplate(data.Academy.Name, data.Players)
	if data.Academy.Currency != "" {
		cfg.Currency = data.Academy.Currency
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote config for %d players to %s\n", len(data.Players), path)
	return nil
}

type AttendanceParams struct {
	Division string `descr:"Division"`
	Month    string `descr:"Month, YYYY-MM (default: the --as-of month)" optional:"true"`
}

func attendanceCmd() *cobra.Command {
	return boa.NewCmdT[AttendanceParams]("attendance").
		WithShort("Monthly attendance of a division").
		WithLong("Counts, for every player of the division, the sessions attended out of the sessions recorded in the month.").
		WithRunFunc(func(params *AttendanceParams) {
			run(func(a *app) error { return runAttendance(a, params) })
		}).
		ToCobra()
}

func runAttendance(a *app, params *AttendanceParams) error {
	month := time.Date(a.asOf.Year(), a.asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	if params.Month != "" {
		m, err := time.Parse("2006-01", params.Month)
		if err != nil {
			return fmt.Errorf("%w: %q (want YYYY-MM)", internal.ErrInvalidDate, params.Month)
		}
		month = m
	}

	return a.withAcademy(func(s *store.Store, academy *internal.Academy) error {
		players, err := s.Players.List(academy.ID)
		if err != nil {
			return err
		}
		records, err := s.Attendance.List(academy.ID, params.Division, month, month.AddDate(0, 1, -1))
		if err != nil {
			return err
		}
		squad := internal.PlayersInDivision(players, params.Division, false)
		summaries := internal.MonthlyAttendance(squad, records, month.Year(), month.Month())
		sessions := len(internal.SessionDates(records))

		if a.json() {
			return internal.PrintAttendanceJSON(a.out, params.Division, month, sessions, summaries)
		}
		internal.PrintAttendanceTable(a.out, params.Division, month, sessions, summaries)
		return nil
	})
}
