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
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fluidicml/clproute/translator"
)

// ProgramStore holds program text where the engine can consult it.
type ProgramStore interface {
	// Put stores the program and returns the path the engine loads.
	Put(p *translator.Program) (string, error)
	// Remove deletes a stored program.
	Remove(path string) error
}

// TempStore writes programs to uniquely named files in Dir, or in the
// system temporary directory when Dir is empty.
type TempStore struct {
	Dir string
}

// Put implements ProgramStore.
func (s TempStore) Put(p *translator.Program) (string, error) {
	f, err := os.CreateTemp(s.Dir, p.Predicate+"-*.pl")
	if err != nil {
		return "", fmt.Errorf("storing program %q: %w", p.Predicate, err)
	}
	if _, err := f.WriteString(p.Text); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("storing program %q: %w", p.Predicate, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("storing program %q: %w", p.Predicate, err)
	}
	return f.Name(), nil
}

// Remove implements ProgramStore. A missing file is not an error.
func (s TempStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
