package main

import (
	"fmt"
	"io"
	"os"

	"github.com/emojiwin/emojiwin"
)

type Analyze struct {
	Force  bool   `short:"f" desc:"Force overwriting existing files."`
	Index  int    `short:"i" desc:"Font index for font collections."`
	Output string `short:"o" desc:"Output file for the report, defaults to standard output."`
	Input  string `index:"0" desc:"Input font file or system font name."`
}

func (cmd *Analyze) Run() error {
	filename, err := resolveFont(cmd.Input)
	if err != nil {
		return err
	}
	sfnt, _, err := readFont(filename, cmd.Index)
	if err != nil {
		return fmt.Errorf("%v: %v", cmd.Input, err)
	}
	a := emojiwin.Analyze(sfnt)

	var w io.WriteCloser = os.Stdout
	if cmd.Output != "" && cmd.Output != "-" {
		if err := confirmOverwrite(cmd.Output, cmd.Force); err != nil {
			return err
		} else if w, err = os.Create(cmd.Output); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "File: %s\n\n", filename); err != nil {
		w.Close()
		return err
	} else if _, err := a.WriteTo(w); err != nil {
		w.Close()
		return err
	} else if w != os.Stdout {
		return w.Close()
	}
	return nil
}
