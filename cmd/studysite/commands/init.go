package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing files"`
	Dir   string `short:"d" name:"dir" help:"Directory to scaffold (defaults to the directory of --config)" type:"path"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	cfgPath := root.Config
	dir := filepath.Dir(cfgPath)
	if i.Dir != "" {
		dir = i.Dir
		cfgPath = filepath.Join(dir, config.DefaultFile)
	}

	out := root.stdout()
	_, _ = fmt.Fprintln(out, "Initializing studysite project")
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", cfgPath)
	if err := config.Init(cfgPath, i.Force); err != nil {
		_, _ = fmt.Fprintln(out, "Initialization failed")
		return err
	}
	written, err := scaffold.Write(dir, i.Force, time.Now())
	for _, p := range written {
		_, _ = fmt.Fprintf(out, "  created %s\n", p)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "initialized successfully")
	return nil
}
