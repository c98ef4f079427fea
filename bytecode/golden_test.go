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

package bytecode

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// TestGoldenEntrypointOrder walks every testdata/*.txtar fixture (each a
// "query.ptk" source plus a "want.entrypoints" file listing the names Emit
// must preserve in declaration order, spec.md §4.B step 5) and checks the
// emitted module's Entrypoints() view against it.
func TestGoldenEntrypointOrder(t *testing.T) {
	matches, err := filepath.Glob("testdata/*.txtar")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, path := range matches {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			arc, err := txtar.ParseFile(path)
			require.NoError(t, err)

			var query, want []byte
			for _, f := range arc.Files {
				switch f.Name {
				case "query.ptk":
					query = f.Data
				case "want.entrypoints":
					want = f.Data
				}
			}
			require.NotNil(t, query, "fixture missing query.ptk")
			require.NotNil(t, want, "fixture missing want.entrypoints")

			res := analyzeSrc(t, string(query))
			buf, err := Emit(res, nil)
			require.NoError(t, err)

			m, err := Open(buf)
			require.NoError(t, err)

			eps := m.Entrypoints()
			strs := m.Strings()
			var got []string
			for i := 0; i < eps.Len(); i++ {
				got = append(got, strs.Get(StringId(eps.Get(i).Name)))
			}

			wantNames := strings.Fields(string(want))
			require.Equal(t, wantNames, got)
		})
	}
}
