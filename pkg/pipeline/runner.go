package pipeline

import (
	"context"
	"encoding/json"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cubeskin/pkg/archive"
	"github.com/matzehuels/cubeskin/pkg/atlas"
	"github.com/matzehuels/cubeskin/pkg/blocks"
	"github.com/matzehuels/cubeskin/pkg/cache"
	"github.com/matzehuels/cubeskin/pkg/errors"
	"github.com/matzehuels/cubeskin/pkg/observability"
)

// Runner executes skin generation runs with atlas caching.
// Both CLI and API use it so caching and progress behave identically.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// GenerateFile opens the pack at path (a .zip/.mcpack file or a directory)
// and runs Generate on it.
func (r *Runner) GenerateFile(ctx context.Context, path string, opts Options) (*Result, error) {
	arc, closeFn, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return r.Generate(ctx, arc, opts)
}

// Generate turns the pack in arc into skins.
//
// The context is only checked between blocks. A cancelled run returns
// ctx.Err() and no skins.
func (r *Runner) Generate(ctx context.Context, arc archive.Archive, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Pipeline()
	prog := &monotonic{sink: opts.Progress}

	prog.Progress(ProgressReadArchive, "Reading archive")
	prog.Progress(ProgressScanFolders, "Scanning folders")
	ix := archive.Scan(arc)
	if z, ok := arc.(interface{ Ignored() []string }); ok {
		for _, name := range z.Ignored() {
			opts.Logger.Warn("ignoring archive entry with unsafe path", "entry", name)
		}
	}
	opts.Logger.Debug("scanned archive", "entries", len(ix.Files), "root", ix.Root, "blocks_json", ix.BlocksPath)

	prog.Progress(ProgressDetectTable, "Detecting blocks.json")
	resource := archive.LoadResourceTable(arc, ix, opts.Logger)

	res := &Result{HasResourceTable: resource != nil}
	var err error
	if resource == nil && opts.Reference == nil {
		res.Mode = ModeFlat
		err = r.runFlat(ctx, arc, ix, opts, prog, res)
	} else {
		res.Mode = ModeDefinitions
		var table *blocks.Table
		table, err = blocks.Merge(resource, opts.Reference, opts.MergeMode)
		if err == nil {
			err = r.runDefinitions(ctx, arc, ix, table, opts, prog, res)
		}
	}

	res.Stats.Duration = time.Since(start)
	if err != nil {
		hooks.OnRunComplete(ctx, res.Mode, 0, res.Stats.Duration, err)
		return nil, err
	}

	prog.Progress(ProgressUpdatePack, "Updating skin pack files")
	prog.Progress(ProgressFinalize, "Finalizing export options")
	res.Stats.Generated = len(res.Skins)
	hooks.OnRunComplete(ctx, res.Mode, len(res.Skins), res.Stats.Duration, nil)
	opts.Logger.Info("generated skins",
		"mode", res.Mode,
		"skins", len(res.Skins),
		"skipped", len(res.Skipped),
		"cache_hits", res.Stats.CacheHits,
		"duration", res.Stats.Duration)
	prog.Progress(ProgressDone, "Done")
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Definitions Mode
// =============================================================================

// blockPlan is a block that passed the pre-scan.
type blockPlan struct {
	key   string
	faces FaceTextures
}

func (r *Runner) runDefinitions(ctx context.Context, arc archive.Archive, ix archive.Index,
	table *blocks.Table, opts Options, prog ProgressSink, res *Result) error {
	hooks := observability.Pipeline()
	prog.Progress(ProgressAnalyze, "Analyzing blocks.json entries")

	finder := newTextureFinder(ix)
	var plans []blockPlan
	for _, def := range table.Definitions() {
		if sub, excluded := blocks.Excluded(def); excluded {
			r.skip(ctx, opts, res, def.Key, SkipExcluded, "matches "+sub)
			continue
		}
		names, ok := blocks.Resolve(def)
		if !ok {
			r.skip(ctx, opts, res, def.Key, SkipUnresolved, "")
			continue
		}
		var plan blockPlan
		plan.key = def.Key
		missing := ""
		for _, f := range atlas.Faces {
			p := finder.find(names.Name(f))
			if p == "" {
				missing = names.Name(f)
				break
			}
			plan.faces[f] = p
		}
		if missing != "" {
			r.skip(ctx, opts, res, def.Key, SkipMissingTexture, missing)
			continue
		}
		plans = append(plans, plan)
	}

	total := len(plans)
	res.Stats.Entries = table.Len()
	res.Stats.Qualified = total
	prog.Progress(ProgressBlocksStart, foundLabel(total))
	hooks.OnRunStart(ctx, ModeDefinitions, total)

	used := make(map[string]bool, total)
	loopStart := time.Now()
	for i, plan := range plans {
		if err := ctx.Err(); err != nil {
			return err
		}

		skin, reason, detail, err := r.buildBlock(ctx, arc, plan, used, opts, res)
		if err != nil {
			return err
		}
		if reason != "" {
			r.skip(ctx, opts, res, plan.key, reason, detail)
		} else {
			used[skin.Identifier] = true
			res.Skins = append(res.Skins, skin)
		}

		completed := i + 1
		eta := ETA(time.Since(loopStart), completed, total)
		prog.Progress(blockPercent(completed, total), blockLabel(completed, total, eta, plan.key))
	}
	return nil
}

// buildBlock produces the skin for one planned block. A non-empty reason
// means the block was skipped; a non-nil error aborts the run.
func (r *Runner) buildBlock(ctx context.Context, arc archive.Archive, plan blockPlan,
	used map[string]bool, opts Options, res *Result) (Skin, SkipReason, string, error) {
	id, ok := Identifier(plan.key)
	if !ok {
		return Skin{}, SkipInvalidIdentifier, "", nil
	}
	if used[id] {
		return Skin{}, SkipDuplicateIdentifier, id, nil
	}

	start := time.Now()
	data := make(map[string][]byte, 6)
	chunks := make([][]byte, 0, 6)
	for _, f := range atlas.Faces {
		p := plan.faces[f]
		if _, ok := data[p]; !ok {
			b, err := arc.ReadFile(p)
			if err != nil {
				return Skin{}, "", "", errors.Wrap(errors.ErrCodeDecodeFailure, err, "read %s for %s", p, plan.key)
			}
			data[p] = b
		}
		chunks = append(chunks, data[p])
	}

	checkAlpha := !blocks.IsPlainGlass(plan.key)
	key := r.Keyer.AtlasKey(cache.HashAll(chunks...), cache.AtlasKeyOpts{CheckAlpha: checkAlpha})

	skin := Skin{
		Identifier:  id,
		DisplayName: DisplayName(id),
		Source:      plan.key,
		Faces:       plan.faces,
	}

	if !opts.Refresh {
		if entry, hit := r.loadAtlas(ctx, key); hit {
			res.Stats.CacheHits++
			if entry.Reject != "" {
				return Skin{}, SkipPartialAlpha, entry.Reject, nil
			}
			if img, err := atlas.DecodeAtlas(entry.PNG); err == nil {
				skin.Image = img
				observability.Pipeline().OnSkinGenerated(ctx, id, time.Since(start))
				return skin, "", "", nil
			}
		}
	}

	images := make(map[string]image.Image, len(data))
	for p, b := range data {
		img, err := atlas.Decode(b)
		if err != nil {
			return Skin{}, "", "", errors.Wrap(errors.ErrCodeDecodeFailure, err, "decode %s for %s", p, plan.key)
		}
		images[p] = img
	}

	var set atlas.FaceSet
	for _, f := range atlas.Faces {
		set.Set(f, images[plan.faces[f]])
	}

	if checkAlpha {
		for _, f := range atlas.Faces {
			if atlas.HasPartialAlpha(set.Get(f)) {
				r.storeAtlas(ctx, key, atlasEntry{Reject: plan.faces[f]})
				return Skin{}, SkipPartialAlpha, plan.faces[f], nil
			}
		}
	}

	img, err := atlas.Composite(set)
	if err != nil {
		return Skin{}, "", "", errors.Wrap(errors.ErrCodeInternal, err, "composite %s", plan.key)
	}
	skin.Image = img
	if png, err := atlas.PNG(img); err == nil {
		r.storeAtlas(ctx, key, atlasEntry{PNG: png})
	}
	observability.Pipeline().OnSkinGenerated(ctx, id, time.Since(start))
	return skin, "", "", nil
}

// =============================================================================
// Flat Mode
// =============================================================================

func (r *Runner) runFlat(ctx context.Context, arc archive.Archive, ix archive.Index,
	opts Options, prog ProgressSink, res *Result) error {
	hooks := observability.Pipeline()
	prog.Progress(ProgressFlatStart, "Detecting block textures")

	files := ix.FlatTextures()
	total := len(files)
	res.Stats.Entries = total
	res.Stats.Qualified = total
	hooks.OnRunStart(ctx, ModeFlat, total)

	used := make(map[string]bool, total)
	for i, p := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		index := i + 1
		prog.Progress(flatPercent(index, total), fmtGenerating(index, total))

		id := CleanIdentifier(archive.BaseName(p))
		if id == "" {
			r.skip(ctx, opts, res, p, SkipInvalidIdentifier, "")
			continue
		}
		if used[id] {
			r.skip(ctx, opts, res, p, SkipDuplicateIdentifier, id)
			continue
		}

		start := time.Now()
		b, err := arc.ReadFile(p)
		if err != nil {
			return errors.Wrap(errors.ErrCodeDecodeFailure, err, "read %s", p)
		}
		img, err := atlas.Decode(b)
		if err != nil {
			return errors.Wrap(errors.ErrCodeDecodeFailure, err, "decode %s", p)
		}
		out, err := atlas.CompositeUniform(img)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "composite %s", p)
		}

		used[id] = true
		res.Skins = append(res.Skins, Skin{
			Identifier:  id,
			DisplayName: DisplayName(id),
			Source:      p,
			Image:       out,
			Faces:       FaceTextures{p, p, p, p, p, p},
		})
		hooks.OnSkinGenerated(ctx, id, time.Since(start))
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func (r *Runner) skip(ctx context.Context, opts Options, res *Result, key string, reason SkipReason, detail string) {
	res.Skipped = append(res.Skipped, Skip{Key: key, Reason: reason, Detail: detail})
	opts.Logger.Debug("skipped block", "block", key, "reason", reason, "code", reason.Code(), "detail", detail)
	observability.Pipeline().OnBlockSkipped(ctx, key, string(reason))
}

// textureFinder maps texture names onto archive entries, memoizing lookups.
type textureFinder struct {
	ix    archive.Index
	files map[string]bool
	memo  map[string]string
}

func newTextureFinder(ix archive.Index) *textureFinder {
	files := make(map[string]bool, len(ix.Files))
	for _, f := range ix.Files {
		files[f] = true
	}
	return &textureFinder{ix: ix, files: files, memo: make(map[string]string)}
}

// find returns the first existing candidate path for name, or "".
func (t *textureFinder) find(name string) string {
	if name == "" {
		return ""
	}
	if p, ok := t.memo[name]; ok {
		return p
	}
	found := ""
	for _, p := range t.ix.TexturePaths(name) {
		if t.files[p] {
			found = p
			break
		}
	}
	t.memo[name] = found
	return found
}

// atlasEntry is the cached outcome of compositing one set of face images.
type atlasEntry struct {
	Reject string `json:"reject,omitempty"` // face that failed the alpha check
	PNG    []byte `json:"png,omitempty"`
}

func (r *Runner) loadAtlas(ctx context.Context, key string) (atlasEntry, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "atlas")
		return atlasEntry{}, false
	}
	var entry atlasEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		observability.Cache().OnCacheMiss(ctx, "atlas")
		return atlasEntry{}, false
	}
	observability.Cache().OnCacheHit(ctx, "atlas")
	return entry, true
}

func (r *Runner) storeAtlas(ctx context.Context, key string, entry atlasEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLAtlas); err != nil {
		r.Logger.Debug("atlas cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "atlas", len(data))
}
