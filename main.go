package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flowire/workflow"
)

var version = "0.3.0"

var (
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	warn   = color.New(color.FgYellow)
	subtle = color.New(color.FgHiBlack)
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	platform   string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "flowire [file]",
		Short:        "flowire - a terminal canvas for workflow diagrams",
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			return runEditor(opts, file)
		},
	}
	root.SetVersionTemplate("flowire {{ .Version }}\n")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+defaultConfigPath()+")")
	root.PersistentFlags().StringVar(&opts.platform, "platform", "", "wheel handling: auto, trackpad or mouse")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(exportCmd(opts), validateCmd(opts))
	return root
}

// setup loads the config and applies flag overrides.
func (o *options) setup() (*Config, error) {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.platform != "" {
		cfg.Input.Platform = o.platform
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// readDocument loads a document leniently. A missing file is a new, empty
// document.
func readDocument(path string, log logrus.FieldLogger) (workflow.Workflow, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return workflow.New(), nil
	}
	if err != nil {
		return workflow.New(), fmt.Errorf("read %s: %w", path, err)
	}
	return workflow.Decode(data, log.WithField("file", path)), nil
}

func runEditor(opts *options, file string) error {
	cfg, err := opts.setup()
	if err != nil {
		return err
	}
	platform, err := cfg.Platform()
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg.Log)
	defer closeLog()

	doc := workflow.New()
	if file != "" {
		if doc, err = readDocument(file, logger); err != nil {
			return err
		}
	}
	logger.WithFields(logrus.Fields{
		"file":     file,
		"nodes":    doc.Len(),
		"platform": platform,
	}).Info("editor started")

	p := tea.NewProgram(
		newModel(cfg, logger, doc, file, platform),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}

func exportCmd(opts *options) *cobra.Command {
	var (
		format string
		output string
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render a document to PNG, JSON or text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.setup()
			if err != nil {
				return err
			}
			logger, closeLog := newLogger(cfg.Log)
			defer closeLog()

			doc, err := readDocument(args[0], logger)
			if err != nil {
				bad.Fprintf(os.Stderr, "flowire: %v\n", err)
				return err
			}

			format = strings.ToLower(format)
			if output == "" {
				base := filepath.Base(args[0])
				output = cfg.GetSavePath(strings.TrimSuffix(base, filepath.Ext(base)) + "." + format)
			}

			switch format {
			case "png":
				err = ExportPNG(doc, output, cfg.Export.Scale)
			case "json":
				err = ExportJSON(doc, output)
			case "txt":
				err = ExportTXT(doc, output, width, height)
			default:
				err = fmt.Errorf("unknown format %q", format)
			}
			if err != nil {
				bad.Fprintf(os.Stderr, "flowire: export failed: %v\n", err)
				return err
			}
			good.Printf("exported %s ", output)
			subtle.Printf("(%d nodes, %d wires)\n", doc.Len(), len(doc.Wires()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "png", "output format: png, json or txt")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().IntVar(&width, "width", 120, "text export width in cells")
	cmd.Flags().IntVar(&height, "height", 40, "text export height in cells")
	return cmd
}

func validateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a document strictly and report every problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.setup(); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				bad.Fprintf(os.Stderr, "flowire: %v\n", err)
				return err
			}
			doc, err := workflow.Unmarshal(data)
			if err != nil {
				bad.Printf("✗ %s is invalid\n", args[0])
				for _, line := range strings.Split(err.Error(), "\n") {
					warn.Printf("  %s\n", line)
				}
				return err
			}
			if err := doc.Validate(); err != nil {
				bad.Printf("✗ %s is invalid\n", args[0])
				warn.Printf("  %v\n", err)
				return err
			}
			good.Printf("✓ %s ", args[0])
			subtle.Printf("(%d nodes, %d wires)\n", doc.Len(), len(doc.Wires()))
			return nil
		},
	}
}
