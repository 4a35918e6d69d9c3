package emojiwin

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/emojiwin/emojiwin/font"
	"github.com/emojiwin/emojiwin/raster"
)

// GlyphResult is the outcome of resampling a single bitmap glyph.
type GlyphResult struct {
	GlyphID   uint16
	Resampled bool
	Reason    string // why the glyph was skipped
}

// StrikeResult is the outcome of rewriting a single bitmap strike.
type StrikeResult struct {
	Index      int
	PPEMX      uint8 // before rewriting
	PPEMY      uint8 // before rewriting
	Target     int   // canonical size, or 0 when the strike has no size
	Compatible bool  // the strike already had a canonical size

	Attempted int
	Resampled int
	Skipped   int
	Glyphs    []GlyphResult

	Empty        bool // the strike has no index subtables
	MetadataOnly bool // only the strike size and line metrics were rewritten
	Modified     bool
	Dropped      bool   // the index data was unreadable and the strike was removed from the font
	Reason       string // why the strike was left unmodified
}

// StrikeReport is the outcome of rewriting all bitmap strikes.
type StrikeReport struct {
	Strikes  []StrikeResult
	Modified int // strikes with glyphs that were rewritten

	// Success is true when at least one strike with glyphs was modified. Strikes without index subtables are rewritten but do not count.
	Success bool
}

// RewriteStrikes gives every CBLC/CBDT bitmap strike a canonical size. The glyph images of a strike are resampled to the nearest canonical size, and when no glyph could be resampled only the strike size and line metrics are rewritten. Strikes that already have a canonical size are left untouched. Glyph images are resampled in parallel by opts.Workers goroutines.
func RewriteStrikes(sfnt *font.SFNT, opts *Options) (StrikeReport, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := orDiscard(opts.Log)

	report := StrikeReport{}
	if sfnt.CBLC == nil || sfnt.CBDT == nil {
		if err, ok := sfnt.TableErrors["CBLC"]; ok {
			return report, err
		} else if err, ok := sfnt.TableErrors["CBDT"]; ok {
			return report, err
		}
		return report, fmt.Errorf("CBLC/CBDT: missing tables")
	}

	n := len(sfnt.CBLC.Strikes)
	log.Printf("bitmaps: found %d strikes", n)
	changed := 0
	for i := range sfnt.CBLC.Strikes {
		if opts.Progress != nil {
			opts.Progress(NumSteps, NumSteps, fmt.Sprintf("Processing bitmaps: strike %d/%d", i+1, n))
		}
		result := rewriteStrike(sfnt, i, opts.workers(), log)
		if result.Modified {
			changed++
			if !result.Empty {
				report.Modified++
			}
		}
		report.Strikes = append(report.Strikes, result)
	}

	if changed == 0 {
		log.Printf("bitmaps: no strikes were modified")
		return report, nil
	}

	// strikes with unreadable index data cannot be written back
	for i := len(sfnt.CBLC.Strikes) - 1; 0 <= i; i-- {
		if sfnt.CBLC.Strikes[i].Err != nil {
			sfnt.CBLC.RemoveStrike(sfnt.CBDT, i)
			report.Strikes[i].Dropped = true
			log.Warnf("bitmaps: strike %d: index data unreadable, strike removed", i)
		}
	}

	cblc, cbdt, err := sfnt.CBLC.Write(sfnt.CBDT)
	if err != nil {
		return report, err
	}
	sfnt.SetTable("CBLC", cblc)
	sfnt.SetTable("CBDT", cbdt)
	report.Success = 0 < report.Modified
	if report.Success {
		log.Printf("bitmaps: modified %d of %d strikes", report.Modified, n)
	} else {
		log.Printf("bitmaps: only strikes without glyphs were modified")
	}
	return report, nil
}

func rewriteStrike(sfnt *font.SFNT, i int, workers int, log Logger) StrikeResult {
	strike := &sfnt.CBLC.Strikes[i]
	result := StrikeResult{
		Index: i,
		PPEMX: strike.PPEMX,
		PPEMY: strike.PPEMY,
	}

	current := int(max(strike.PPEMX, strike.PPEMY))
	if current == 0 {
		result.Reason = "no strike size"
		log.Printf("bitmaps: strike %d: cannot determine size, skipped", i)
		return result
	} else if strike.Err != nil {
		result.Reason = strike.Err.Error()
		log.Printf("bitmaps: strike %d: %v, left unmodified", i, strike.Err)
		return result
	}

	result.Target = NearestSize(current)
	if result.Target == current {
		result.Compatible = true
		log.Printf("bitmaps: strike %d: size %d already compatible", i, current)
		return result
	}
	log.Printf("bitmaps: strike %d: resizing from %dx%d to %dx%d", i, strike.PPEMX, strike.PPEMY, result.Target, result.Target)

	ratio := float64(result.Target) / float64(current)
	if len(strike.IndexSubtables) == 0 {
		result.Empty = true
		log.Printf("bitmaps: strike %d: no index subtables", i)
	} else if len(sfnt.CBDT.Strikes) <= i {
		log.Printf("bitmaps: strike %d: no strike data", i)
	} else {
		result.Glyphs = resampleStrike(strike, &sfnt.CBDT.Strikes[i], result.Target, ratio, workers)
		for _, glyph := range result.Glyphs {
			result.Attempted++
			if glyph.Resampled {
				result.Resampled++
			} else {
				result.Skipped++
			}
		}
		log.Printf("bitmaps: strike %d: processed %d glyphs, resampled %d, skipped %d", i, result.Attempted, result.Resampled, result.Skipped)
	}

	if result.Resampled == 0 {
		result.MetadataOnly = true
		log.Printf("bitmaps: strike %d: could not resample glyphs, updating size metadata only", i)
	}
	strike.PPEMX = uint8(result.Target)
	strike.PPEMY = uint8(result.Target)
	scaleLineMetrics(strike.Hori, ratio)
	scaleLineMetrics(strike.Vert, ratio)
	result.Modified = true
	return result
}

type glyphJob struct {
	index   int
	glyphID uint16
	glyph   *font.BitmapGlyph
	shared  *font.BigGlyphMetrics
}

// resampleStrike resamples all glyphs of a strike in index subtable order. Results are returned in the same order.
func resampleStrike(strike *font.BitmapStrike, data *font.StrikeData, target int, ratio float64, workers int) []GlyphResult {
	jobs := []glyphJob{}
	results := []GlyphResult{}
	visited := map[uint16]bool{}
	for _, sub := range strike.IndexSubtables {
		for _, glyphID := range sub.GlyphIDs {
			if visited[glyphID] {
				continue
			}
			visited[glyphID] = true

			glyph, ok := data.Glyphs[glyphID]
			if !ok {
				results = append(results, GlyphResult{GlyphID: glyphID, Reason: "no bitmap data"})
				continue
			}
			jobs = append(jobs, glyphJob{len(results), glyphID, glyph, sub.BigMetrics})
			results = append(results, GlyphResult{GlyphID: glyphID})
		}
	}

	if len(jobs) < workers {
		workers = len(jobs)
	}
	var mu sync.Mutex
	var wg sync.WaitGroup
	queue := make(chan glyphJob)
	for k := 0; k < workers; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				result := resampleGlyph(job, target, ratio)
				mu.Lock()
				results[job.index] = result
				mu.Unlock()
			}
		}()
	}
	for _, job := range jobs {
		queue <- job
	}
	close(queue)
	wg.Wait()
	return results
}

// resampleGlyph replaces the glyph image by a target×target PNG and scales its metrics. The glyph is left unchanged on failure.
func resampleGlyph(job glyphJob, target int, ratio float64) GlyphResult {
	result := GlyphResult{GlyphID: job.glyphID}
	glyph := job.glyph
	switch glyph.Format {
	case 17, 18, 19:
	default:
		result.Reason = fmt.Sprintf("unsupported image format %d", glyph.Format)
		return result
	}

	payload := glyph.Image
	if payload == nil && glyph.Raw != nil {
		if i, _ := raster.Locate(glyph.Raw); i != -1 {
			payload = glyph.Raw[i:]
		}
	}
	if len(payload) < raster.MinSize {
		result.Reason = "image data too small"
		return result
	}

	b, err := raster.Resample(payload, target)
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	switch glyph.Format {
	case 17:
		small := font.SmallGlyphMetrics{}
		if glyph.Small != nil {
			small = *glyph.Small
		}
		small.Width = uint8(target)
		small.Height = uint8(target)
		small.BearingX = scaleInt8(small.BearingX, ratio)
		small.BearingY = scaleInt8(small.BearingY, ratio)
		small.Advance = scaleUint8(small.Advance, ratio)
		glyph.Small = &small
	case 18, 19:
		big := font.BigGlyphMetrics{}
		if glyph.Big != nil {
			big = *glyph.Big
		} else if job.shared != nil {
			big = *job.shared
		}
		big.Width = uint8(target)
		big.Height = uint8(target)
		big.HoriBearingX = scaleInt8(big.HoriBearingX, ratio)
		big.HoriBearingY = scaleInt8(big.HoriBearingY, ratio)
		big.HoriAdvance = scaleUint8(big.HoriAdvance, ratio)
		big.VertBearingX = scaleInt8(big.VertBearingX, ratio)
		big.VertBearingY = scaleInt8(big.VertBearingY, ratio)
		big.VertAdvance = scaleUint8(big.VertAdvance, ratio)
		glyph.Big = &big
		glyph.Format = 18
	}
	glyph.Image = b
	glyph.Raw = nil
	result.Resampled = true
	return result
}

func scaleLineMetrics(m *font.SbitLineMetrics, ratio float64) {
	if m == nil {
		return
	}
	m.Ascender = scaleInt8(m.Ascender, ratio)
	m.Descender = scaleInt8(m.Descender, ratio)
}

// scaleInt8 scales and truncates toward zero.
func scaleInt8(v int8, ratio float64) int8 {
	return int8(math.Max(math.MinInt8, math.Min(math.MaxInt8, math.Trunc(float64(v)*ratio))))
}

func scaleUint8(v uint8, ratio float64) uint8 {
	return uint8(math.Max(0, math.Min(math.MaxUint8, math.Trunc(float64(v)*ratio))))
}

func (opts *Options) workers() int {
	if opts.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return opts.Workers
}
