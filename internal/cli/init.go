package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/vimlantis/internal/config"
)

var (
	initForce       bool
	initEditor      string
	initPort        int
	initHistorySize int
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a project config file",
	Long: `Write a ` + config.ProjectFile + ` with the default settings into a project
directory. Settings given as flags replace the defaults.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInit,
}

func init() {
	f := initCmd.Flags()
	f.BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
	f.StringVar(&initEditor, "editor", "", "Editor command")
	f.IntVar(&initPort, "port", config.DefaultPort, "Server port")
	f.IntVar(&initHistorySize, "history-size", config.DefaultHistorySize, "Opens kept on disk (0 keeps all)")
}

func runInit(_ *cobra.Command, args []string) {
	dir, err := projectDir(args)
	if err != nil {
		exitError("%v", err)
	}

	cfg := config.Default()
	cfg.Editor = initEditor
	cfg.Port = initPort
	cfg.HistorySize = initHistorySize

	path, err := writeProjectConfig(dir, cfg, initForce)
	if err != nil {
		exitError("%v", err)
	}
	color.New(color.FgGreen).Printf("Wrote %s\n", path)
}

var errConfigExists = errors.New("config file already exists (use --force to overwrite)")

// writeProjectConfig validates cfg and saves it as the project file of dir.
func writeProjectConfig(dir string, cfg *config.Config, force bool) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, config.ProjectFile)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s: %w", path, errConfigExists)
	}

	cfg.SetPath(path)
	if err := cfg.Save(); err != nil {
		return "", err
	}
	return path, nil
}
