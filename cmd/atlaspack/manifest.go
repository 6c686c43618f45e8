// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/gogpu/atlas"
)

// manifest is the TexturePacker array format: one texture per page.
type manifest struct {
	Textures []manifestTexture `json:"textures"`
	Meta     manifestMeta      `json:"meta"`
}

type manifestTexture struct {
	Image  string                   `json:"image"`
	Size   jsonSize                 `json:"size"`
	Frames map[string]manifestFrame `json:"frames"`
}

type manifestFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type manifestMeta struct {
	App       string `json:"app"`
	Allocator string `json:"allocator"`
	Padding   int    `json:"padding"`
	Pages     int    `json:"pages"`
}

func pageFile(index int) string {
	return fmt.Sprintf("page-%d.png", index)
}

// buildManifest lists every entry of m under each of its names.
// Entries without names are left out.
func buildManifest(m *atlas.Manager, names map[atlas.ID][]string) manifest {
	s := m.Settings()
	mf := manifest{
		Meta: manifestMeta{
			App:       "atlaspack",
			Allocator: s.Allocator.String(),
			Padding:   s.Padding,
			Pages:     m.PageCount(),
		},
	}

	for i := 0; i < m.PageCount(); i++ {
		size := m.PageSize(i)
		tex := manifestTexture{
			Image:  pageFile(i),
			Size:   jsonSize{W: size, H: size},
			Frames: make(map[string]manifestFrame),
		}
		for _, e := range m.Entries(i) {
			r := e.Rect
			for _, name := range names[e.ID] {
				tex.Frames[name] = manifestFrame{
					Frame:            jsonRect{X: r.X, Y: r.Y, W: r.Width, H: r.Height},
					SpriteSourceSize: jsonRect{W: r.Width, H: r.Height},
					SourceSize:       jsonSize{W: r.Width, H: r.Height},
				}
			}
		}
		mf.Textures = append(mf.Textures, tex)
	}
	return mf
}

// frameNames returns the frame names of a texture in order.
func (t manifestTexture) frameNames() []string {
	out := make([]string, 0, len(t.Frames))
	for name := range t.Frames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func writeManifest(path string, mf manifest) error {
	data, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
