package main

import (
	"fmt"
	"os"

	"github.com/emojiwin/emojiwin"
)

type Diagnose struct {
	Index int    `short:"i" desc:"Font index for font collections."`
	Input string `index:"0" desc:"Input font file or system font name."`
}

func (cmd *Diagnose) Run() error {
	filename, err := resolveFont(cmd.Input)
	if err != nil {
		return err
	}
	sfnt, _, err := readFont(filename, cmd.Index)
	if err != nil {
		return fmt.Errorf("%v: %v", cmd.Input, err)
	}

	fmt.Printf("File: %s\n\n", filename)
	_, err = emojiwin.Diagnose(sfnt).WriteTo(os.Stdout)
	return err
}
