package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/emojiwin/emojiwin"
)

type Convert struct {
	Quiet   bool   `short:"q" desc:"Suppress output except for errors."`
	Force   bool   `short:"f" desc:"Force overwriting existing files."`
	Workers int    `short:"j" desc:"Number of goroutines that resample glyph images, defaults to the number of CPUs."`
	Output  string `short:"o" desc:"Output font file (only TTF/OTF/WOFF2 are supported), defaults to the input file name with ForWindows appended."`
	Input   string `index:"0" desc:"Input font file or system font name."`
}

func (cmd *Convert) Run() error {
	if cmd.Quiet {
		Info = log.New(io.Discard, "", 0)
		Warning = log.New(io.Discard, "", 0)
	}

	input, err := resolveFont(cmd.Input)
	if err != nil {
		return err
	} else if input == "-" {
		return fmt.Errorf("cannot convert from standard input")
	}

	output := cmd.Output
	if output == "" {
		ext := filepath.Ext(input)
		if _, ok := extMimetype[strings.ToLower(ext)]; !ok {
			ext = ".ttf"
		}
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "ForWindows" + ext
	}
	if _, ok := extMimetype[strings.ToLower(filepath.Ext(output))]; !ok {
		return fmt.Errorf("unsupported output file type: %v", filepath.Ext(output))
	} else if err := confirmOverwrite(output, cmd.Force); err != nil {
		return err
	}

	c := newConsole(cmd.Quiet)
	result, err := emojiwin.Convert(input, output, &emojiwin.Options{
		Workers:  cmd.Workers,
		Log:      c,
		Progress: c.Progress,
	})
	c.Done()
	if err != nil {
		return err
	}

	if cmd.Quiet {
		return nil
	}
	for _, strike := range result.Strikes.Strikes {
		if strike.Modified && !strike.MetadataOnly {
			fmt.Printf("strike %d: %dx%d => %dx%d, %d of %d glyphs resampled\n", strike.Index, strike.PPEMX, strike.PPEMY, strike.Target, strike.Target, strike.Resampled, strike.Attempted)
		} else if strike.Modified {
			fmt.Printf("strike %d: %dx%d => %dx%d, size metadata only\n", strike.Index, strike.PPEMX, strike.PPEMY, strike.Target, strike.Target)
		} else if strike.Dropped {
			fmt.Printf("strike %d: %dx%d removed, %s\n", strike.Index, strike.PPEMX, strike.PPEMY, strike.Reason)
		}
	}

	var rLen, wLen int64
	if info, err := os.Stat(input); err == nil {
		rLen = info.Size()
	}
	if info, err := os.Stat(output); err == nil {
		wLen = info.Size()
	}
	ratio := 1.0
	if 0 < rLen {
		ratio = float64(wLen) / float64(rLen)
	}
	fmt.Printf("%v:  %v => %v (%.1f%%), %d glyphs\n", filepath.Base(output), formatBytes(uint64(rLen)), formatBytes(uint64(wLen)), ratio*100.0, result.GlyphCount)
	if !result.BitmapsFixed && 0 < len(result.Strikes.Strikes) {
		Warning.Println("no bitmap strikes were resized, DirectWrite applications may show empty glyphs")
	}
	return nil
}
