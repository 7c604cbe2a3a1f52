/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/nabbar/taps-core/ability"
	"github.com/nabbar/taps-core/internal/obslog"
	"github.com/nabbar/taps-core/tapserr"
)

// docValidate is the shared validator instance for descriptorDoc, built
// once rather than per-document per validator's own recommendation.
var docValidate = validator.New()

// descriptorDoc is the on-disk shape of one catalog document (§6.2):
// name/protocol/libpath are required, properties is a sequence of ability
// names drawn from the 16-name vocabulary; unrecognized names are ignored.
type descriptorDoc struct {
	Name       string   `yaml:"name" validate:"required"`
	Protocol   string   `yaml:"protocol" validate:"required"`
	LibPath    string   `yaml:"libpath" validate:"required"`
	Properties []string `yaml:"properties"`
}

// YAMLDirectory is a Provider reading descriptor files from a directory.
// Files are discovered by a ".yaml" suffix (§6.2), matching the four-byte
// suffix test the original catalog loader used. Each file may contain
// multiple YAML documents; a document missing name, protocol, or libpath
// is skipped rather than failing the whole Update.
type YAMLDirectory struct {
	Dir string
	Log obslog.FuncLog

	mu      sync.Mutex
	skipped error
}

// NewYAMLDirectory returns a Provider reading dir for *.yaml descriptor
// files.
func NewYAMLDirectory(dir string, log obslog.FuncLog) *YAMLDirectory {
	return &YAMLDirectory{Dir: dir, Log: log}
}

// Update implements Provider.
func (p *YAMLDirectory) Update(capacity int) ([]Descriptor, error) {
	logger := obslog.Resolve(p.Log)

	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, tapserr.New(tapserr.Unavailable, "catalog directory unavailable: "+p.Dir, err)
	}

	var (
		out     []Descriptor
		skipped *multierror.Error
	)

	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".yaml") {
			continue
		}
		if capacity > 0 && len(out) >= capacity {
			break
		}

		path := filepath.Join(p.Dir, ent.Name())
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			skipped = multierror.Append(skipped, tapserr.New(tapserr.Unavailable, path, rerr))
			continue
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		for {
			var doc descriptorDoc
			derr := dec.Decode(&doc)
			if derr != nil {
				break
			}

			d, ok := toDescriptor(doc)
			if !ok {
				skipped = multierror.Append(skipped, tapserr.New(
					tapserr.InvalidArgument, "malformed catalog descriptor in "+path))
				logger.Warn("skipping malformed catalog descriptor", obslog.Fields{"file": path})
				continue
			}

			out = append(out, d)
			if capacity > 0 && len(out) >= capacity {
				break
			}
		}
	}

	p.mu.Lock()
	if skipped != nil {
		p.skipped = skipped.ErrorOrNil()
	} else {
		p.skipped = nil
	}
	p.mu.Unlock()

	logger.Debug("catalog update", obslog.Fields{"dir": p.Dir, "count": len(out)})
	return out, nil
}

// LastSkipped returns the accumulated skip reasons from the most recent
// Update, or nil if every descriptor parsed cleanly. The original catalog
// loader discarded these silently; this provider keeps them for
// diagnostics.
func (p *YAMLDirectory) LastSkipped() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.skipped
}

func toDescriptor(doc descriptorDoc) (Descriptor, bool) {
	if err := docValidate.Struct(doc); err != nil {
		return Descriptor{}, false
	}

	var mask ability.Mask
	for _, name := range doc.Properties {
		if b, ok := ability.Lookup(name); ok {
			mask = mask.Set(b)
		}
	}

	return Descriptor{
		Name:       doc.Name,
		Protocol:   doc.Protocol,
		ModulePath: doc.LibPath,
		Supported:  mask,
	}, true
}
