// Package pipeline turns a resource pack into block skins.
//
// This package implements the scan → resolve → composite pipeline shared by
// the CLI and the HTTP server, so both entry points produce the same skins,
// the same progress events, and the same skip decisions.
//
// # Modes
//
// A run uses one of two modes:
//
//  1. Definitions: used whenever the pack ships a blocks.json or a reference
//     table is supplied. Every full-cube block with six resolvable,
//     present, opaque faces becomes one skin.
//  2. Flat: used only when no block table exists at all. Every PNG under the
//     block texture directories becomes one skin with six identical faces.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Generate(ctx, arc, pipeline.Options{
//	    MergeMode: blocks.MergeBoth,
//	    Reference: ref,
//	    Progress:  pipeline.ProgressFunc(func(p float64, label string) { ... }),
//	})
//	for _, skin := range result.Skins {
//	    data, _ := skin.PNG()
//	}
//
// # Failure semantics
//
// Runs are all-or-nothing. A face image that fails to decode aborts the run
// and no skins are returned. Blocks that are excluded, unresolvable, missing
// a texture or semi-transparent are only skipped, and reported in
// [Result.Skipped].
package pipeline

import (
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cubeskin/pkg/atlas"
	"github.com/matzehuels/cubeskin/pkg/blocks"
	"github.com/matzehuels/cubeskin/pkg/errors"
)

// =============================================================================
// Progress Milestones
// =============================================================================

// Fixed progress percentages reported during a run.
const (
	ProgressReadArchive   = 5.0
	ProgressScanFolders   = 15.0
	ProgressDetectTable   = 25.0
	ProgressAnalyze       = 30.0
	ProgressBlocksStart   = 40.0
	ProgressBlocksEnd     = 85.0
	ProgressFlatStart     = 25.0
	ProgressFlatSpan      = 50.0
	ProgressUpdatePack    = 85.0
	ProgressFinalize      = 95.0
	ProgressDone          = 100.0
	progressBlocksBandLen = ProgressBlocksEnd - ProgressBlocksStart
)

// Run modes.
const (
	ModeDefinitions = "definitions"
	ModeFlat        = "flat"
)

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures a run.
type Options struct {
	// MergeMode chooses how the pack's blocks.json and Reference combine.
	// It is required only when both are present.
	MergeMode blocks.MergeMode

	// Reference is the optional reference table, loaded once by the caller.
	Reference *blocks.Table

	// Progress receives progress events. Defaults to a no-op sink.
	Progress ProgressSink

	// Refresh skips atlas cache reads; fresh results are still written.
	Refresh bool

	// Logger defaults to the runner's logger, or a discard logger.
	Logger *log.Logger

	validated bool
}

// ValidateMergeMode checks that mode is empty or one of the known modes.
func ValidateMergeMode(mode blocks.MergeMode) error {
	if mode == "" {
		return nil
	}
	_, err := blocks.ParseMergeMode(string(mode))
	return err
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := ValidateMergeMode(o.MergeMode); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	if o.Progress == nil {
		o.Progress = nopProgress{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Skin is one generated block skin.
type Skin struct {
	Identifier  string       // file name stem, [a-z0-9_]+, unique within a run
	DisplayName string       // human-readable name
	Source      string       // block key, or texture path in flat mode
	Image       *image.NRGBA // 128×128 atlas
	Faces       FaceTextures // texture paths used, indexed by atlas.Face
}

// FaceTextures records which archive entry each atlas face came from.
type FaceTextures [6]string

// PNG encodes the skin atlas.
func (s Skin) PNG() ([]byte, error) {
	return atlas.PNG(s.Image)
}

// SkipReason explains why a block did not become a skin.
type SkipReason string

// Skip reasons.
const (
	SkipExcluded            SkipReason = "excluded"
	SkipUnresolved          SkipReason = "unresolved_faces"
	SkipMissingTexture      SkipReason = "missing_texture"
	SkipPartialAlpha        SkipReason = "partial_alpha"
	SkipInvalidIdentifier   SkipReason = "invalid_identifier"
	SkipDuplicateIdentifier SkipReason = "duplicate_identifier"
)

// Code returns the error code matching the reason.
func (r SkipReason) Code() errors.Code {
	switch r {
	case SkipMissingTexture, SkipUnresolved:
		return errors.ErrCodeMissingAsset
	case SkipPartialAlpha, SkipExcluded:
		return errors.ErrCodeClassificationReject
	default:
		return errors.ErrCodeInvalidIdentifier
	}
}

// Skip records one skipped block.
type Skip struct {
	Key    string
	Reason SkipReason
	Detail string
}

// Result contains the outputs of a run.
type Result struct {
	// Mode is ModeDefinitions or ModeFlat.
	Mode string

	// Skins in table (or listing) order.
	Skins []Skin

	// Skipped lists every block that did not produce a skin.
	Skipped []Skip

	// HasResourceTable reports whether the pack shipped a usable blocks.json.
	HasResourceTable bool

	// Stats contains timing and count information.
	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	Entries   int           // table entries after merging (or flat textures)
	Qualified int           // blocks that passed the pre-scan
	Generated int           // skins produced
	CacheHits int           // atlases served from the cache
	Duration  time.Duration // wall time of the run
}

// SkippedBy counts skips per reason.
func (r *Result) SkippedBy() map[SkipReason]int {
	out := make(map[SkipReason]int)
	for _, s := range r.Skipped {
		out[s.Reason]++
	}
	return out
}
