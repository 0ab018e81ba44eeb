package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spikeekips/synctimer/launch"
	"gopkg.in/yaml.v3"
)

type designCommand struct {
	Design string `arg:"" name:"design" help:"design file" type:"existingfile"`
}

// Run prints the design with the default values filled.
func (cmd *designCommand) Run() error {
	d, _, err := launch.TimerDesignFromFile(cmd.Design)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()

	return errors.WithStack(enc.Encode(d))
}
