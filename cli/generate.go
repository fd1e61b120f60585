package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pothole-report/config"
	"pothole-report/metadata"
	"pothole-report/model"
	"pothole-report/report"
	"pothole-report/storage"
)

type generateOptions struct {
	folder       string
	reportName   string
	list         bool
	interactive  bool
	exportDir    string
	maxDimension int
	attributes   map[string]*string
}

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func (a *App) warnf(format string, args ...any) {
	fmt.Fprintf(a.Err, "%s %s\n", yellow("Warning:"), fmt.Sprintf(format, args...))
}

func (a *App) runGenerate(cmd *cobra.Command, args []string) error {
	if a.gen.list {
		return a.runList(cmd, args)
	}
	log := a.logger()
	ctx := cmd.Context()

	log.Debug("config search paths", zap.Strings("paths", config.Paths(a.configPath)))
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	log.Debug("loaded config",
		zap.String("path", cfg.LoadedFrom),
		zap.String("report_url", cfg.ReportURL),
		zap.Int("attribute_categories", len(cfg.Attributes)),
		zap.Int("templates", len(cfg.Templates)),
	)

	email, err := a.Credentials(cfg.KeyringAccount, log).GetEmail()
	if errors.Is(err, storage.ErrCredentialNotFound) {
		return fmt.Errorf("email not found in keyring (service %q, account %q); run:\n  %s setup",
			config.ServiceName, cfg.KeyringAccount, report.ProgramName)
	}
	if err != nil {
		return err
	}

	if a.gen.folder == "" {
		return errors.New("-f/--folder is required (unless using --list)")
	}

	photos := storage.NewLocalPhotoStorage(a.gen.folder, log)
	photos.ExportDir = a.gen.exportDir
	photos.MaxDimension = a.gen.maxDimension

	// Fail on a bad folder before asking anything interactively.
	paths, err := photos.ListPhotos()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(a.Err, yellow("No JPG/PNG files found in folder."))
		return nil
	}
	log.Debug("found images", zap.Int("count", len(paths)), zap.String("folder", a.gen.folder))

	composer := report.NewComposer(cfg)
	sel, err := a.selection(cfg, composer)
	if err != nil {
		return err
	}
	text, err := composer.Text(sel)
	if err != nil {
		return err
	}
	log.Debug("composed report text", zap.String("text", text))

	result, err := photos.Scan(ctx, a.Extractor(log))
	if err != nil {
		return err
	}
	if n := len(result.Unreadable); n > 0 {
		fmt.Fprintln(a.Err, yellow(fmt.Sprintf("Skipped %d unreadable image(s).", n)))
	}
	if n := len(result.NoGPS); n > 0 {
		fmt.Fprintln(a.Err, yellow(fmt.Sprintf("Skipped %d image(s) with no GPS data.", n)))
	}

	earliest, ok := result.Earliest()
	if !ok {
		fmt.Fprintln(a.Err, yellow("No report generated (no images with GPS)."))
		return nil
	}
	log.Debug("using earliest image for GPS",
		zap.String("file", earliest.Name()),
		zap.Float64("lat", earliest.LonLat.Lat()),
		zap.Float64("lon", earliest.LonLat.Lon()),
		zap.String("taken_at", report.FormatTakenAt(earliest.TakenAt)),
	)
	if far, metres, ok := metadata.FarthestFrom(earliest, result.Located); ok && metres > cfg.MaxSpreadMetres {
		log.Warn("photos are spread out; the folder may hold more than one defect",
			zap.String("file", far.Name()),
			zap.Float64("metres", metres),
			zap.Float64("max_spread_metres", cfg.MaxSpreadMetres),
		)
	}

	geo, err := a.Geocoder(cfg, log).Reverse(ctx, earliest.LonLat.Lat(), earliest.LonLat.Lon())
	if err != nil {
		log.Warn("geocoding failed; report has no postcode or address", zap.Error(err))
		geo = nil
	} else {
		log.Debug("geocoded", zap.String("postcode", geo.Postcode), zap.String("address", geo.Address))
	}

	sites, err := config.LoadCheckSites("")
	if err != nil {
		fmt.Fprintf(a.Err, "%s %v\n", yellow("Error:"), err)
		sites = nil
	} else if len(sites) == 0 {
		log.Warn("no check sites configured", zap.Strings("paths", config.CheckPaths("")))
	}

	rec := composer.Build(report.Details{
		Photo:      earliest,
		Geocode:    geo,
		Selection:  sel,
		Text:       text,
		Email:      email,
		Folder:     a.gen.folder,
		ImageNames: result.ImageNames(),
		CheckSites: sites,
	})
	if err := report.Render(a.Out, rec); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if a.gen.exportDir != "" {
		return a.export(photos, result)
	}
	return nil
}

// selection resolves what drives the report text: a named template,
// attribute flags, or interactive answers.
func (a *App) selection(cfg *config.Config, composer *report.Composer) (model.Selection, error) {
	raw := map[string]string{}
	for name, value := range a.gen.attributes {
		if value != nil && *value != "" {
			raw[name] = *value
		}
	}

	if a.gen.reportName != "" {
		if len(raw) > 0 || a.gen.interactive {
			return model.Selection{}, errors.New("use either --report-name or attribute selection, not both")
		}
		return model.Selection{TemplateName: a.gen.reportName}, nil
	}

	if a.gen.interactive {
		attrs, err := a.interactiveAttributes(cfg)
		if err != nil {
			return model.Selection{}, err
		}
		if len(attrs) == 0 {
			return model.Selection{}, fmt.Errorf("%w: no attributes selected", report.ErrNoSelection)
		}
		return model.Selection{Attributes: attrs}, nil
	}

	attrs, ignored, err := composer.ParseAttributes(raw)
	for _, name := range ignored {
		a.warnf("attribute %q is not defined in config; ignoring", name)
	}
	if err != nil {
		return model.Selection{}, err
	}
	if len(attrs) == 0 {
		return model.Selection{}, fmt.Errorf("%w: use --interactive, --report-name or attribute flags\nexample: %s -f /path --depth gt50mm --edge sharp",
			report.ErrNoSelection, report.ProgramName)
	}
	a.logger().Debug("selected attributes", zap.Any("attributes", attrs))
	return model.Selection{Attributes: attrs}, nil
}

func (a *App) export(photos *storage.LocalPhotoStorage, result *storage.ScanResult) error {
	unreadable := map[string]bool{}
	for _, name := range result.Unreadable {
		unreadable[name] = true
	}
	var readable []model.Photo
	for _, p := range result.Photos {
		if !unreadable[p.Name()] {
			readable = append(readable, p)
		}
	}

	saved, err := photos.ExportAll(readable)
	fmt.Fprintf(a.Err, "%s\n", green(fmt.Sprintf("Exported %d photo(s) to %s", saved, photos.ExportDir)))
	if err != nil {
		a.warnf("%s", strings.TrimSpace(err.Error()))
	}
	return nil
}

func (a *App) runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	return report.RenderList(a.Out, cfg)
}
