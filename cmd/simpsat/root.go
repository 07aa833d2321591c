package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cespare/simpsat/dimacs"
	"github.com/cespare/simpsat/engine"
	"github.com/cespare/simpsat/engine/dpll"
	"github.com/cespare/simpsat/engine/gini"
	"github.com/cespare/simpsat/engine/gophersat"
	"github.com/cespare/simpsat/metrics"
)

const defaultEngine = "dpll"

type options struct {
	Engine      string `mapstructure:"engine"`
	Assume      string `mapstructure:"assume"`
	Verify      bool   `mapstructure:"verify"`
	MetricsAddr string `mapstructure:"metrics-addr"`
	Debug       bool   `mapstructure:"debug"`

	config string
}

func newRootCmd() *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:   "simpsat [input.cnf]",
		Short: "Solve a SAT problem incrementally under assumptions",
		Long: `simpsat reads a single problem specification in the DIMACS CNF format.
It writes the output in the conventional way: either the first line is UNSAT,
or else the first line is SAT and the second line gives the assignments in the
same format as an input clause. Variables whose value doesn't matter are left
out of the assignment.

If no input file is given, simpsat reads from standard input.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.config != "" {
				if err := o.applyConfig(o.config, cmd.Flags()); err != nil {
					return err
				}
			}

			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			if o.Debug {
				logger.SetLevel(logrus.DebugLevel)
			}
			logger.Debugf("log level %s", logger.Level)

			var r io.Reader = cmd.InOrStdin()
			if len(args) > 0 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return o.run(r, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVar(&o.Engine, "engine", defaultEngine, "solving engine: "+strings.Join(engineNames(), ", "))
	cmd.Flags().StringVar(&o.Assume, "assume", "", "comma separated DIMACS literals to assume for this solve")
	cmd.Flags().BoolVar(&o.Verify, "verify", false, "solve with every engine concurrently and check that they agree")
	cmd.Flags().StringVar(&o.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while solving")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "use debug log level")
	cmd.Flags().StringVar(&o.config, "config", "", "JSON file supplying defaults for the other flags")

	return cmd
}

// applyConfig decodes the JSON file at path into o. Flags set explicitly on
// the command line take precedence.
func (o *options) applyConfig(path string, flags *pflag.FlagSet) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.Wrapf(err, "parsing config %s", path)
	}
	for name := range raw {
		if flags.Lookup(name) == nil || name == "config" {
			return fmt.Errorf("config %s: unknown setting %q", path, name)
		}
		if flags.Changed(name) {
			delete(raw, name)
		}
	}
	if err := mapstructure.Decode(raw, o); err != nil {
		return errors.Wrapf(err, "decoding config %s", path)
	}
	return nil
}

func (o *options) run(r io.Reader, w io.Writer, logger *logrus.Logger) error {
	factories := engineFactories(logger)
	if _, ok := factories[o.Engine]; !ok {
		return fmt.Errorf("unknown engine %q (choose from %s)", o.Engine, strings.Join(engineNames(), ", "))
	}

	if o.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics.Register(reg)
		for name, f := range factories {
			factories[name] = metrics.Instrument(name, f)
		}
		go func() {
			handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
			if err := http.ListenAndServe(o.MetricsAddr, handler); err != nil {
				logger.WithError(err).Warn("metrics server stopped")
			}
		}()
		logger.Infof("serving metrics on %s", o.MetricsAddr)
	}

	cnf, err := dimacs.Parse(r)
	if err != nil {
		return errors.Wrap(err, "reading input file as DIMACS CNF")
	}
	assumptions, err := parseAssumptions(o.Assume, cnf.Vars)
	if err != nil {
		return err
	}

	var res result
	if o.Verify {
		results, err := verify(factories, cnf, assumptions, logger)
		if err != nil {
			return err
		}
		res, _ = lo.Find(results, func(r result) bool { return r.engine == o.Engine })
	} else {
		res = solve(o.Engine, factories[o.Engine], cnf, assumptions, logger)
	}
	logger.WithFields(logrus.Fields(res.stats)).Debugf("%s stats", res.engine)

	if !res.sat {
		fmt.Fprintln(w, "UNSAT")
		return nil
	}
	fmt.Fprintln(w, "SAT")
	fmt.Fprintln(w, strings.Join(lo.Map(res.model, func(n int, _ int) string {
		return strconv.Itoa(n)
	}), " "))
	return nil
}

func engineFactories(logger *logrus.Logger) map[string]engine.Factory {
	return map[string]engine.Factory{
		"dpll":      dpll.Factory(dpll.WithLogger(logrus.NewEntry(logger))),
		"gini":      gini.Factory,
		"gophersat": gophersat.Factory,
	}
}

func engineNames() []string {
	names := lo.Keys(engineFactories(logrus.StandardLogger()))
	sort.Strings(names)
	return names
}

// parseAssumptions parses a list of DIMACS literals separated by commas or
// spaces.
func parseAssumptions(s string, nvars int) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	assumptions := make([]int, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid assumption %q", field)
		}
		if n == 0 || n > nvars || n < -nvars {
			return nil, fmt.Errorf("assumption %d is not a literal of the problem's %d vars", n, nvars)
		}
		assumptions = append(assumptions, n)
	}
	return assumptions, nil
}
