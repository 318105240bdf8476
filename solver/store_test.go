// Copyright 2010-2024 Google LLC
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

package solver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fluidicml/clproute/translator"
)

func TestTempStore(t *testing.T) {
	dir := t.TempDir()
	store := TempStore{Dir: dir}
	p := &translator.Program{Predicate: "machine", Text: "machine:-\nonce(labeling([ff],[])).\n"}

	first, err := store.Put(p)
	require.NoError(t, err)
	second, err := store.Put(p)
	require.NoError(t, err)
	require.NotEqual(t, first, second, "each Put gets its own file")
	require.Equal(t, dir, filepath.Dir(first))
	require.True(t, strings.HasPrefix(filepath.Base(first), "machine-"))
	require.Equal(t, ".pl", filepath.Ext(first))

	text, err := os.ReadFile(first)
	require.NoError(t, err)
	require.Equal(t, p.Text, string(text))

	require.NoError(t, store.Remove(first))
	require.NoError(t, store.Remove(first), "removing a missing file")
	_, err = os.Stat(first)
	require.True(t, os.IsNotExist(err))
}

func TestTempStore_MissingDir(t *testing.T) {
	store := TempStore{Dir: filepath.Join(t.TempDir(), "missing")}
	_, err := store.Put(&translator.Program{Predicate: "route"})
	require.Error(t, err)
}
