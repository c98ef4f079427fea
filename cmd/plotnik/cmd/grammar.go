// Copyright 2026 The Plotnik Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// grammars is the compiled-in set of tree-sitter languages --grammar can
// link against. Unlike cue's load package, which resolves packages from an
// arbitrary module path, a tree-sitter Language is a cgo-bound static
// table; plotnik links against whichever of these the binary was built
// with, the same way every go-tree-sitter consumer in the example pack
// does (each language is its own subpackage exposing GetLanguage()).
var grammars = map[string]func() *sitter.Language{
	"go":         golang.GetLanguage,
	"javascript": javascript.GetLanguage,
	"python":     python.GetLanguage,
}

func grammarByName(name string) (*sitter.Language, bool) {
	f, ok := grammars[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

func grammarNames() []string {
	out := make([]string, 0, len(grammars))
	for name := range grammars {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
