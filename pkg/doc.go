// Package pkg provides the core libraries for cubeskin block skin generation.
//
// # Overview
//
// Cubeskin turns the block textures of a Bedrock resource pack into block
// skins: 128x128 atlases with the six faces of a cube laid out the way the
// game's humanoid skin geometry expects them. The pkg directory is organized
// into four main areas:
//
//  1. Imaging - [atlas] composites faces and classifies transparency
//  2. Definitions - [blocks] and [reference] parse, merge and resolve block tables
//  3. Orchestration - [archive] and [pipeline] turn a pack into skins
//  4. Delivery - [skinpack] and [server] package skins and serve them over HTTP
//
// # Architecture
//
// The typical data flow through cubeskin:
//
//	Resource pack (.zip, .mcpack or directory)
//	         ↓
//	    [archive] package (entries, root prefix, blocks.json)
//	         ↓
//	    [blocks] package (merge with reference, exclude, resolve faces)
//	         ↓
//	    [atlas] package (decode, classify, composite)
//	         ↓
//	    [skinpack] package (.mcpack / .zip) or PNG files
//
// # Quick Start
//
// Generate skins from a pack and write a skin pack:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/cubeskin/pkg/blocks"
//	    "github.com/matzehuels/cubeskin/pkg/pipeline"
//	    "github.com/matzehuels/cubeskin/pkg/reference"
//	    "github.com/matzehuels/cubeskin/pkg/skinpack"
//	)
//
//	// 1. Load the reference table
//	ref := reference.NewLoader(reference.SourceBuiltin, nil, nil).Load(ctx)
//
//	// 2. Run the pipeline
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.GenerateFile(ctx, "MyPack.mcpack", pipeline.Options{
//	    MergeMode: blocks.MergeBoth,
//	    Reference: ref,
//	})
//
//	// 3. Package the skins
//	pack, _ := skinpack.FromSkins("My Skins", "", res.Skins)
//	f, _ := os.Create(pack.FileName(skinpack.FormatMCPack))
//	defer f.Close()
//	pack.Write(f)
//
// # Main Packages
//
// ## Domain Logic
//
// [atlas] - Face layout, nearest-neighbour resampling to 16x16, the
// partial-alpha classifier and PNG encoding.
//
// [blocks] - Block definition tables: parsing with key order preserved,
// merge modes, the non-cube exclusion list and face resolution.
//
// [reference] - The reference table: built-in, from a file or fetched from a
// URL and cached in canonical form.
//
// [archive] - Zip and directory archives and the pack layout scanner.
//
// [pipeline] - The [pipeline.Runner] that turns a pack into skins, with
// progress reporting and atlas caching.
//
// [skinpack] - Skin pack packaging: manifest, skins.json and language files.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches plus key derivation.
//
// [httputil] - HTTP client with retry for remote reference tables.
//
// [config] - TOML configuration file.
//
// [server] - The HTTP API.
//
// [observability] - Hooks for runs, cache operations and HTTP calls.
//
// [errors] - Structured error codes.
//
// [buildinfo] - Version information set at build time.
//
// [atlas]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/atlas
// [blocks]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/blocks
// [reference]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/reference
// [archive]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/archive
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/pipeline#Runner
// [skinpack]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/skinpack
// [cache]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/cubeskin/pkg/buildinfo
package pkg
