package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/synthage/internal/config"
	"github.com/mrlokans/synthage/internal/database"
	presetsrepo "github.com/mrlokans/synthage/internal/database/presets"
	"github.com/mrlokans/synthage/internal/firmware"
	"github.com/mrlokans/synthage/internal/presets"
	"github.com/mrlokans/synthage/internal/validation"
)

// ExportFirmwareCommand regenerates firmware artifacts for stored presets.
type ExportFirmwareCommand struct {
	DatabasePath string
	OutputDir    string
	PresetID     uint
	All          bool
	Verbose      bool

	Out io.Writer
}

func NewExportFirmwareCommand() *ExportFirmwareCommand {
	return &ExportFirmwareCommand{Out: os.Stdout}
}

func (cmd *ExportFirmwareCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export-firmware", flag.ContinueOnError)

	var presetID uint64
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the application database")
	fs.StringVar(&cmd.OutputDir, "output", config.DefaultFirmwareDir, "Directory for the generated .ino files")
	fs.Uint64Var(&presetID, "preset", 0, "ID of the preset to export")
	fs.BoolVar(&cmd.All, "all", false, "Export every preset")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print each generated path")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export-firmware (-preset <id> | -all) [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Regenerate firmware_preset_<id>.ino files from the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.PresetID = uint(presetID)

	if cmd.All == (cmd.PresetID != 0) {
		return errors.New("exactly one of -preset or -all is required")
	}
	return nil
}

func (cmd *ExportFirmwareCommand) Run(ctx context.Context) error {
	db, err := database.NewDatabase(cmd.DatabasePath, database.Options{LogLevel: "silent"})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repo := presetsrepo.NewRepository(db.DB)
	svc := presets.NewService(repo, validation.New(validation.Policy{}), nil)
	svc.SetExporter(firmware.NewExporter(firmware.NewStore(cmd.OutputDir)))

	ids := []uint{cmd.PresetID}
	if cmd.All {
		ids, err = repo.ListPresetIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list presets: %w", err)
		}
	}

	var exported int
	var errs []error
	for _, id := range ids {
		path, err := svc.ExportPreset(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("preset %d: %w", id, err))
			continue
		}
		exported++
		if cmd.Verbose {
			fmt.Fprintf(cmd.Out, "  [OK] %s\n", path)
		}
	}

	fmt.Fprintf(cmd.Out, "Exported %d/%d presets to %s\n", exported, len(ids), cmd.OutputDir)
	return errors.Join(errs...)
}
