// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"sync"
)

// A ResourceManager caches decoded page resources (fonts and their
// ToUnicode maps) across pages. A single manager is shared by all pages
// of an extraction run, so a font used on every page is parsed once.
//
// With caching disabled the manager parses every resource on demand and
// retains nothing, trading CPU for a flat memory profile on large
// documents.
type ResourceManager struct {
	caching bool

	mu    sync.RWMutex
	fonts map[fontKey]*Font
}

// A fontKey identifies a font resource. The resource name disambiguates
// font dictionaries written inline, which share the pointer of their
// containing object.
type fontKey struct {
	ptr  objptr
	name string
}

// NewResourceManager returns a ResourceManager.
// caching controls whether parsed resources are retained across pages.
func NewResourceManager(caching bool) *ResourceManager {
	return &ResourceManager{
		caching: caching,
		fonts:   make(map[fontKey]*Font),
	}
}

// Font returns the parsed font for the named font dictionary, consulting
// the cache when the dictionary belongs to an indirect object.
func (rm *ResourceManager) Font(name string, v Value) *Font {
	key := fontKey{v.ptr, name}
	if rm.caching && key.ptr.id != 0 {
		rm.mu.RLock()
		f, ok := rm.fonts[key]
		rm.mu.RUnlock()
		if ok {
			return f
		}
	}

	f := newFont(v)

	if rm.caching && key.ptr.id != 0 {
		rm.mu.Lock()
		rm.fonts[key] = f
		rm.mu.Unlock()
	}
	return f
}

// Caching reports whether the manager retains parsed resources.
func (rm *ResourceManager) Caching() bool {
	return rm.caching
}
