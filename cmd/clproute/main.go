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

// The clproute command compiles postfix operation scripts into clpfd programs
// and solves them.
package main

import (
	goflag "flag"
	"os"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fluidicml/clproute/config"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	predicate  string
	executable string
}

// load returns the config file with command-line overrides applied.
func (f *rootFlags) load(flags *pflag.FlagSet) (*config.Config, error) {
	c, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if flags.Changed("predicate") {
		c.Translator.Predicate = f.predicate
	}
	if flags.Changed("executable") {
		c.Engine.Executable = f.executable
	}
	return c, c.Validate()
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "clproute",
		Short:         "Compile and solve clpfd routing programs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML config file.")
	pf.StringVar(&flags.predicate, "predicate", "", "Predicate name of the generated program; overrides the script and config.")
	pf.StringVar(&flags.executable, "executable", "", "Constraint engine binary; overrides the config.")
	pf.AddGoFlagSet(goflag.CommandLine)

	rootCmd.AddCommand(newCompileCmd(flags), newSolveCmd(flags))
	return rootCmd
}

func main() {
	rootCmd := newRootCmd()
	// glog reads its settings from the standard flag set.
	goflag.CommandLine.Parse(nil)
	defer log.Flush()

	if err := rootCmd.Execute(); err != nil {
		log.Errorf("clproute: %v", err)
		log.Flush()
		os.Exit(1)
	}
}
