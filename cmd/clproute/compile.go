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

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fluidicml/clproute/config"
	"github.com/fluidicml/clproute/script"
	"github.com/fluidicml/clproute/translator"
)

func newCompileCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compile SCRIPT",
		Short: "Print the clpfd program for a script",
		Long: `Replays the postfix ops of SCRIPT and prints the generated program.

  $ clproute compile route.yaml > route.pl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.load(cmd.Flags())
			if err != nil {
				return err
			}
			s, err := script.Load(args[0])
			if err != nil {
				return err
			}
			tr, err := translate(cmd, c, s)
			if err != nil {
				return err
			}
			return writeProgram(cmd.OutOrStdout(), tr)
		},
	}
}

// translate replays s on a Translator configured by c. The script name wins
// over the config unless --predicate was given.
func translate(cmd *cobra.Command, c *config.Config, s *script.Script) (*translator.Translator, error) {
	if cmd.Flags().Changed("predicate") {
		s.Name = c.Translator.Predicate
	}
	return s.Translator(c.TranslatorOptions()...)
}

// writeProgram prints the compiled program, or the error of its first
// malformed restriction.
func writeProgram(w io.Writer, tr *translator.Translator) error {
	p := tr.Compile()
	if err := p.Err(); err != nil {
		return fmt.Errorf("translating: %w", err)
	}
	_, err := io.WriteString(w, p.Text)
	return err
}
