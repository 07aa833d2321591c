package main

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cespare/simpsat"
	"github.com/cespare/simpsat/dimacs"
	"github.com/cespare/simpsat/engine"
)

type result struct {
	engine string
	sat    bool
	model  []int // DIMACS literals
	stats  map[string]interface{}
}

func solve(name string, f engine.Factory, cnf *dimacs.CNF, assumptions []int, logger logrus.FieldLogger) result {
	s := simpsat.New(
		simpsat.WithEngine(f),
		simpsat.WithLogger(logger.WithField("engine", name)),
	)
	defer s.Close()
	vars := dimacs.Load(s, cnf)
	m, ok := s.Solve(dimacs.Lits(vars, assumptions)...)
	res := result{engine: name, sat: ok}
	if ok {
		res.model = dimacs.Ints(vars, m.Lits())
	}
	res.stats = s.Stats()
	return res
}

// verify solves cnf with every engine in factories, each on its own Solver
// and goroutine. It fails if any model is wrong or the engines disagree.
func verify(factories map[string]engine.Factory, cnf *dimacs.CNF, assumptions []int, logger logrus.FieldLogger) ([]result, error) {
	names := lo.Keys(factories)
	sort.Strings(names)
	results := make([]result, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			res := solve(name, factories[name], cnf, assumptions, logger)
			results[i] = res
			if res.sat {
				return checkModel(cnf, assumptions, res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, res := range results[1:] {
		if res.sat != results[0].sat {
			return nil, fmt.Errorf("engines disagree: %s says %s, %s says %s",
				results[0].engine, satString(results[0].sat), res.engine, satString(res.sat))
		}
	}
	logger.Debugf("verified %s with %d engines", satString(results[0].sat), len(results))
	return results, nil
}

// checkModel checks that res.model satisfies every clause and assumption.
// Variables left out of the model may take either value, so a clause holding
// both n and -n is always satisfied.
func checkModel(cnf *dimacs.CNF, assumptions []int, res result) error {
	model := make(map[int]bool, len(res.model))
	for _, n := range res.model {
		if model[-n] {
			return fmt.Errorf("%s: model assigns both %d and %d", res.engine, n, -n)
		}
		model[n] = true
	}
	for _, n := range assumptions {
		if !model[n] {
			return fmt.Errorf("%s: model violates assumption %d", res.engine, n)
		}
	}
	for i, clause := range cnf.Clauses {
		satisfied := lo.SomeBy(clause, func(n int) bool {
			return model[n] || lo.Contains(clause, -n)
		})
		if !satisfied {
			return fmt.Errorf("%s: model violates clause %d %v", res.engine, i+1, clause)
		}
	}
	return nil
}

func satString(sat bool) string {
	if sat {
		return "SAT"
	}
	return "UNSAT"
}
