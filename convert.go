// Package emojiwin converts color emoji fonts with CBDT/CBLC bitmap strikes into fonts that DirectWrite renders. Strikes are resampled to the sizes DirectWrite expects, and the cmap, name, OS/2, head, and post tables are rewritten to match the Windows system emoji font.
package emojiwin

import (
	"fmt"
	"strings"

	"github.com/emojiwin/emojiwin/font"
)

// NumSteps is the number of progress steps of a conversion.
const NumSteps = 10

// Options are the conversion options. The zero value is ready to use.
type Options struct {
	// Names replaces the name records, WindowsNames is used when nil.
	Names []NameString

	// Workers is the number of goroutines that resample glyph images, GOMAXPROCS when zero.
	Workers int

	// Log receives the conversion events, they are discarded when nil.
	Log Logger

	// Progress is called at the start of each step.
	Progress func(step, total int, desc string)
}

func (opts *Options) progress(step int, desc string) {
	if opts.Progress != nil {
		opts.Progress(step, NumSteps, desc)
	}
}

// Result is the outcome of a conversion.
type Result struct {
	Cmap         CmapReport
	Strikes      StrikeReport
	BitmapsFixed bool
	GlyphCount   uint16   // of the saved font
	Tables       []string // of the converted font
}

// Convert converts the font at input and saves it to output. The output is written as WOFF2 when its extension is .woff2 and as TTF otherwise. The saved font is loaded again to verify it.
func Convert(input, output string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := orDiscard(opts.Log)

	opts.progress(1, "Loading font...")
	sfnt, err := font.Load(input)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %s", input)

	result, err := ConvertFont(sfnt, opts)
	if err != nil {
		return nil, err
	}

	opts.progress(NumSteps, "Saving font...")
	if err := sfnt.Save(output); err != nil {
		return nil, fmt.Errorf("save %s: %w", output, err)
	}
	log.Printf("saved %s", output)

	saved, err := font.Load(output)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", output, err)
	}
	result.GlyphCount = saved.NumGlyphs()
	log.Printf("verified %s: %d glyphs", output, result.GlyphCount)
	return result, nil
}

// ConvertFont converts the font in memory, which runs all steps of Convert except for loading and saving.
func ConvertFont(sfnt *font.SFNT, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := orDiscard(opts.Log)
	result := &Result{}

	log.Printf("tables: %s", strings.Join(sfnt.Tags(), " "))
	log.Printf("SFNT version: %q", sfnt.Version)
	if sfnt.HasTable("sbix") {
		log.Printf("found Apple sbix color bitmap table")
	}
	if sfnt.HasTable("COLR") && sfnt.HasTable("CPAL") {
		log.Printf("found COLR/CPAL color vector tables")
	}
	if sfnt.HasTable("CBDT") && sfnt.HasTable("CBLC") {
		log.Printf("found CBDT/CBLC color bitmap tables")
	}

	opts.progress(2, "Ensuring Windows-compatible character mapping...")
	var err error
	if result.Cmap, err = NormalizeCmap(sfnt, log); err != nil {
		return nil, err
	}

	opts.progress(3, "Analyzing color table format...")
	checkColorFormat(sfnt, log)

	opts.progress(4, "Checking essential font tables...")
	if sfnt.HasTable("glyf") {
		log.Printf("glyf: table present")
	} else {
		log.Printf("glyf: no table, which is expected for CBDT/CBLC emoji fonts")
	}

	opts.progress(5, "Updating font names...")
	names := opts.Names
	if names == nil {
		names = WindowsNames
	}
	if err := RewriteNames(sfnt, names, log); err != nil {
		return nil, err
	}

	opts.progress(6, "Updating OS/2 table...")
	RewriteOS2(sfnt, log)

	opts.progress(7, "Updating head table...")
	RewriteHead(sfnt, log)

	opts.progress(8, "Updating post table...")
	RewritePost(sfnt, log)

	opts.progress(9, "Verifying essential font tables...")
	verifyTables(sfnt, log)

	if sfnt.HasTable("CBDT") && sfnt.HasTable("CBLC") {
		opts.progress(10, "Optimizing bitmap sizes...")
		report, err := RewriteStrikes(sfnt, opts)
		result.Strikes = report
		if err != nil {
			log.Warnf("bitmaps: %v", err)
		}
		result.BitmapsFixed = report.Success
		if !report.Success {
			log.Warnf("bitmap resizing failed, the font may not work in DirectWrite applications")
		}
	}
	result.GlyphCount = sfnt.NumGlyphs()
	result.Tables = sfnt.Tags()
	return result, nil
}

func checkColorFormat(sfnt *font.SFNT, log Logger) {
	hasCBDT := sfnt.HasTable("CBDT") && sfnt.HasTable("CBLC")
	hasCOLR := sfnt.HasTable("COLR") && sfnt.HasTable("CPAL")
	if hasCOLR {
		log.Printf("color: font has COLR/CPAL tables, which Windows prefers")
	} else if hasCBDT {
		log.Printf("color: font uses CBDT/CBLC bitmaps, Windows prefers COLR/CPAL vectors, keeping the bitmaps")
	} else {
		log.Printf("color: no color tables found")
	}
}

func verifyTables(sfnt *font.SFNT, log Logger) {
	missing := []string{}
	for _, tag := range EssentialTables {
		if !sfnt.HasTable(tag) {
			missing = append(missing, tag)
		}
	}
	if 0 < len(missing) {
		log.Warnf("missing essential tables: %s", strings.Join(missing, ", "))
	}
	if sfnt.CBLC != nil {
		log.Printf("CBLC: %d bitmap strikes", len(sfnt.CBLC.Strikes))
		for i, strike := range sfnt.CBLC.Strikes {
			log.Printf("CBLC: strike %d: %dx%d pixels", i, strike.PPEMX, strike.PPEMY)
		}
	}
}
