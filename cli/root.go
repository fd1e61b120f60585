package cli

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pothole-report/config"
	"pothole-report/geocode"
	"pothole-report/metadata"
	"pothole-report/storage"
)

// AttributeFlags are the attribute categories exposed as flags.
var AttributeFlags = []string{"depth", "edge", "width", "location", "visibility", "surface"}

var attributeHelp = map[string]string{
	"depth":      "Depth category (e.g. lt40mm, gte40mm, gt50mm)",
	"edge":       "Edge type (e.g. sharp, rounded, gradual)",
	"width":      "Width/size (e.g. small, medium_fist, large_crater)",
	"location":   "Location context, comma-separated for several (e.g. primary_cycle_line,descent)",
	"visibility": "Visibility, comma-separated for several (e.g. obscured_water,visible)",
	"surface":    "Surface condition (e.g. exposed_sub_base, loose_gravel)",
}

// App holds the collaborators of every command. Tests swap them for
// fakes; NewApp wires the real ones.
type App struct {
	Out      io.Writer
	Err      io.Writer
	Prompter Prompter

	Credentials func(account string, logger *zap.Logger) storage.CredentialStore
	Geocoder    func(cfg *config.Config, logger *zap.Logger) geocode.Geocoder
	Extractor   func(logger *zap.Logger) storage.Extractor

	Log *zap.Logger

	configPath string
	verbose    bool
	gen        generateOptions
}

func NewApp() *App {
	return &App{
		Out:      color.Output,
		Err:      color.Error,
		Prompter: readlinePrompter{},
		Credentials: func(account string, logger *zap.Logger) storage.CredentialStore {
			return storage.NewKeyringStore(config.ServiceName, account, logger)
		},
		Geocoder: func(cfg *config.Config, logger *zap.Logger) geocode.Geocoder {
			return geocode.NewNominatim(geocode.Options{
				URL:        cfg.Geocoder.URL,
				UserAgent:  cfg.Geocoder.UserAgent,
				Timeout:    cfg.Geocoder.Timeout,
				MaxRetries: cfg.Geocoder.MaxRetries,
				Log:        logger,
			})
		},
		Extractor: func(logger *zap.Logger) storage.Extractor {
			return metadata.NewExtractor(logger)
		},
	}
}

func (a *App) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

func (a *App) wrap(next runFunc) runFunc {
	return RecoveryMiddleware(a.logger, RunLoggerMiddleware(a.logger, next))
}

// Command builds the command tree. The root command generates a report.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "pothole-report",
		Short: "Prepare a pothole report from a folder of geotagged photos",
		Long: `Reads the photos in a folder, takes the GPS position of the earliest one,
looks up its postcode and prints a report ready to paste into Fill That Hole.

Example:
  $ pothole-report -f ~/Pictures/pothole --depth gt50mm --edge sharp --location primary_cycle_line
  $ pothole-report -f ~/Pictures/pothole -r high-risk`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.Log == nil {
				a.Log = NewLogger(a.Err, a.verbose)
			}
		},
		RunE: a.wrap(a.runGenerate),
	}
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Show processing details and skip reasons")

	flags := root.Flags()
	flags.StringVarP(&a.gen.folder, "folder", "f", "", "Folder containing JPG/PNG photos")
	flags.StringVarP(&a.gen.reportName, "report-name", "r", "", "Named template to use for the report text")
	flags.BoolVarP(&a.gen.list, "list", "l", false, "List report templates and attribute values from config")
	flags.BoolVarP(&a.gen.interactive, "interactive", "i", false, "Prompt for attribute values")
	flags.StringVar(&a.gen.exportDir, "export-dir", "", "Write resized copies of the photos here for upload")
	flags.IntVar(&a.gen.maxDimension, "max-dimension", storage.DefaultMaxDimension, "Longest side in pixels of exported photos")
	a.gen.attributes = map[string]*string{}
	for _, name := range AttributeFlags {
		a.gen.attributes[name] = flags.String(name, "", attributeHelp[name])
	}

	root.AddCommand(a.setupCommand(), a.removeKeyringCommand(), a.listCommand())
	return root
}

// ExecuteContext runs the CLI against os.Args.
func ExecuteContext(ctx context.Context) error {
	return NewApp().Command().ExecuteContext(ctx)
}
