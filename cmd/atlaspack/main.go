// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command atlaspack packs a directory of images into texture atlas pages.
//
// Usage:
//
//	atlaspack -in sprites/ -out build/ [-config atlas.yaml] [-allocator maxrects] [-padding 1] [-preview 256] [-v]
//
// It writes page-N.png for each page and atlas.json in the TexturePacker
// array format. Identical files share one region.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/crypto/blake2b"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/atlas"
	"github.com/gogpu/atlas/rectpack"
	"github.com/gogpu/atlas/surface"
)

var supportedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "atlaspack: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	in        string
	out       string
	config    string
	allocator string
	padding   int
	preview   int
	verbose   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("atlaspack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "", "input directory of images")
	fs.StringVar(&o.out, "out", ".", "output directory")
	fs.StringVar(&o.config, "config", "", "settings file (.yaml, .yml or .toml)")
	fs.StringVar(&o.allocator, "allocator", "", "maxrects, skyline, guillotine or shelf")
	fs.IntVar(&o.padding, "padding", -1, "pixels of padding around each image")
	fs.IntVar(&o.preview, "preview", 0, "also write page previews scaled to this size")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.in == "" {
		return o, fmt.Errorf("missing -in")
	}
	return o, nil
}

// buildSettings applies the settings file, then flags, over the defaults.
func buildSettings(o options) (atlas.Settings, error) {
	s := atlas.DefaultSettings()
	if o.config != "" {
		if err := loadConfig(o.config, &s); err != nil {
			return s, err
		}
	}
	if o.allocator != "" {
		kind, err := rectpack.ParseKind(o.allocator)
		if err != nil {
			return s, err
		}
		s.Allocator = kind
	}
	if o.padding >= 0 {
		s.Padding = o.padding
	}
	return s, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	atlas.SetLogger(logger)
	defer atlas.SetLogger(nil)

	settings, err := buildSettings(o)
	if err != nil {
		return err
	}

	sprites, err := loadSprites(context.Background(), o.in)
	if err != nil {
		return err
	}
	logger.Info("loaded images", "count", len(sprites), "dir", o.in)

	mem := surface.NewMemoryProvider()
	m, err := atlas.New(settings, atlas.WithSurfaceProvider(mem))
	if err != nil {
		return err
	}
	defer m.Close()

	names, failed := pack(m, sprites, logger)

	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return err
	}
	if err := writePages(m, mem, o.out, o.preview); err != nil {
		return err
	}

	mf := buildManifest(m, names)
	for _, tex := range mf.Textures {
		for _, name := range tex.frameNames() {
			f := tex.Frames[name]
			logger.Debug("frame", "image", tex.Image, "name", name,
				"x", f.Frame.X, "y", f.Frame.Y, "w", f.Frame.W, "h", f.Frame.H)
		}
	}
	if err := writeManifest(filepath.Join(o.out, "atlas.json"), mf); err != nil {
		return err
	}

	for _, info := range m.PageInfos() {
		fmt.Fprintf(stdout, "page %d: %dx%d, %d entries, %.1f%% full\n",
			info.Index, info.Size, info.Size, info.Entries, info.FillRatio*100)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be packed", failed, len(sprites))
	}
	return nil
}

// sprite is one decoded input file.
type sprite struct {
	name   string
	img    image.Image
	digest [blake2b.Size256]byte
}

// loadSprites decodes every supported image in dir, in file name order.
func loadSprites(ctx context.Context, dir string) ([]sprite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !supportedExt[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, e.Name())
	}

	sprites := make([]sprite, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return err
			}
			img, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("decode %s: %w", name, err)
			}
			sprites[i] = sprite{name: name, img: img, digest: blake2b.Sum256(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sprites, nil
}

// pack inserts sprites into m. Files with identical content are inserted
// once and all their names map to the same entry.
func pack(m *atlas.Manager, sprites []sprite, logger *slog.Logger) (map[atlas.ID][]string, int) {
	seen := make(map[[blake2b.Size256]byte]int)
	var items []atlas.BatchItem
	var owners [][]string
	for _, s := range sprites {
		if j, ok := seen[s.digest]; ok {
			owners[j] = append(owners[j], s.name)
			logger.Debug("duplicate image", "name", s.name, "of", owners[j][0])
			continue
		}
		seen[s.digest] = len(items)
		items = append(items, atlas.BatchItem{Image: s.img, Name: s.name})
		owners = append(owners, []string{s.name})
	}

	names := make(map[atlas.ID][]string, len(items))
	failed := 0
	for i, res := range m.InsertBatch(items) {
		if res.Err != nil {
			logger.Warn("image not packed", "name", items[i].Name, "err", res.Err)
			failed += len(owners[i])
			continue
		}
		names[res.Ref.ID()] = owners[i]
	}
	return names, failed
}

// writePages writes each page as page-N.png, plus a scaled copy when
// preview is positive.
func writePages(m *atlas.Manager, mem *surface.MemoryProvider, dir string, preview int) error {
	for i := 0; i < m.PageCount(); i++ {
		img := mem.Image(m.Surface(i))
		if img == nil {
			return fmt.Errorf("page %d has no surface", i)
		}
		if err := writePNG(filepath.Join(dir, pageFile(i)), img); err != nil {
			return err
		}
		if preview > 0 {
			name := fmt.Sprintf("page-%d.preview.png", i)
			if err := writePNG(filepath.Join(dir, name), surface.Thumbnail(img, preview)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
