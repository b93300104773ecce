// Package pdo parses textual probabilistic-domain descriptions into planning
// problems. The accepted language is a PPDDL subset: one problem definition
// with an initial state, one or more goal conditions, an optional goal
// reward, and actions whose effects may be probabilistic, carry rewards via
// (increase (reward) x) / (decrease (reward) x), and use fractions such as
// 9/10 as probabilities.
//
// A malformed description is rejected here, before any search ever runs.
package pdo

import (
	"fmt"
	"strconv"
	"strings"

	"sparseplan/planning"
)

// Parse builds a validated planning problem from a domain description.
func Parse(input string) (*planning.Problem, error) {
	root, err := read(input)
	if err != nil {
		return nil, fmt.Errorf("pdo: %w", err)
	}
	return build(root)
}

func build(root sexpr) (*planning.Problem, error) {
	if !root.isList() || len(root.list) < 2 || root.list[0].atom != "define" {
		return nil, fmt.Errorf("pdo: line %d: expected (define (problem NAME) ...)", root.line)
	}
	header := root.list[1]
	if !header.isList() || len(header.list) != 2 || header.list[0].atom != "problem" {
		return nil, fmt.Errorf("pdo: line %d: expected (problem NAME)", header.line)
	}
	name := header.list[1].atom

	var init planning.State
	var goals []planning.Condition
	goalReward := 0.0
	var actions []*planning.Action

	for _, section := range root.list[2:] {
		if !section.isList() || len(section.list) == 0 {
			return nil, fmt.Errorf("pdo: line %d: expected a (:keyword ...) section", section.line)
		}
		switch keyword := section.list[0].atom; keyword {
		case ":init":
			if len(section.list) != 2 {
				return nil, fmt.Errorf("pdo: line %d: :init takes one expression", section.line)
			}
			init = planning.NewState(positiveAtoms(section.list[1])...)
		case ":goal":
			conditions, err := parseConditions(section.list[1:])
			if err != nil {
				return nil, err
			}
			goals = append(goals, conditions...)
		case ":goal-reward":
			if len(section.list) != 2 {
				return nil, fmt.Errorf("pdo: line %d: :goal-reward takes one number", section.line)
			}
			value, err := parseNumber(section.list[1])
			if err != nil {
				return nil, err
			}
			goalReward = value
		case ":action":
			action, err := parseAction(section)
			if err != nil {
				return nil, err
			}
			actions = append(actions, action)
		default:
			return nil, fmt.Errorf("pdo: line %d: unknown section %s", section.line, keyword)
		}
	}

	if init == nil {
		init = planning.NewState()
	}
	return planning.NewProblem(name, init, goals, goalReward, actions), nil
}

// positiveAtoms flattens an atom or an (and ...) conjunction into the atoms
// it asserts; negations are ignored (the closed world makes them implicit).
func positiveAtoms(expr sexpr) []planning.Atom {
	if !expr.isList() {
		return []planning.Atom{planning.Atom(expr.atom)}
	}
	var atoms []planning.Atom
	for _, sub := range expr.list {
		if sub.atom == "and" {
			continue
		}
		if !sub.isList() {
			atoms = append(atoms, planning.Atom(sub.atom))
		}
	}
	return atoms
}

// parseConditions turns each expression into condition pairs, expanding a
// top-level (or ...) into one condition per disjunct.
func parseConditions(exprs []sexpr) ([]planning.Condition, error) {
	var conditions []planning.Condition
	for _, expr := range exprs {
		disjuncts := []sexpr{expr}
		if expr.isList() && len(expr.list) > 0 && expr.list[0].atom == "or" {
			disjuncts = expr.list[1:]
		}
		for _, disjunct := range disjuncts {
			condition, err := parseCondition(disjunct)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, condition)
		}
	}
	return conditions, nil
}

// parseCondition reads one conjunct: a bare atom, (not a b ...), or an
// (and ...) mixing both.
func parseCondition(expr sexpr) (planning.Condition, error) {
	condition := planning.Condition{Neg: planning.NewState(), Pos: planning.NewState()}

	var visit func(expr sexpr) error
	visit = func(expr sexpr) error {
		if !expr.isList() {
			condition.Pos[planning.Atom(expr.atom)] = struct{}{}
			return nil
		}
		if len(expr.list) == 0 {
			return nil
		}
		switch expr.list[0].atom {
		case "and":
			for _, sub := range expr.list[1:] {
				if err := visit(sub); err != nil {
					return err
				}
			}
			return nil
		case "not":
			for _, sub := range expr.list[1:] {
				if sub.isList() {
					return fmt.Errorf("pdo: line %d: (not ...) takes atoms only", sub.line)
				}
				condition.Neg[planning.Atom(sub.atom)] = struct{}{}
			}
			return nil
		default:
			return fmt.Errorf("pdo: line %d: unexpected %s in condition", expr.line, expr.list[0].atom)
		}
	}

	if err := visit(expr); err != nil {
		return planning.Condition{}, err
	}
	return condition, nil
}

func parseAction(section sexpr) (*planning.Action, error) {
	if len(section.list) < 2 || section.list[1].isList() {
		return nil, fmt.Errorf("pdo: line %d: :action needs a name", section.line)
	}
	name := section.list[1].atom

	var preconditions []planning.Condition
	var effects []*planning.Effect

	args := section.list[2:]
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return nil, fmt.Errorf("pdo: line %d: %s misses its argument", args[i].line, args[i].atom)
		}
		switch keyword := args[i].atom; keyword {
		case ":precondition":
			conditions, err := parseConditions(args[i+1 : i+2])
			if err != nil {
				return nil, err
			}
			preconditions = conditions
		case ":effect":
			parsed, err := parseEffects(args[i+1])
			if err != nil {
				return nil, err
			}
			effects = parsed
		default:
			return nil, fmt.Errorf("pdo: line %d: unknown action keyword %s", args[i].line, keyword)
		}
	}

	action, err := planning.NewAction(name, preconditions, effects)
	if err != nil {
		return nil, fmt.Errorf("pdo: %w", err)
	}
	return action, nil
}

// parseEffects reads an effect expression. A (probabilistic p outcome ...)
// block lists weighted outcomes; any other expression is promoted to a
// single certain outcome.
func parseEffects(expr sexpr) ([]*planning.Effect, error) {
	if !expr.isList() || len(expr.list) == 0 || expr.list[0].atom != "probabilistic" {
		effect, err := parseOutcome(expr, 1)
		if err != nil {
			return nil, err
		}
		return []*planning.Effect{effect}, nil
	}

	pairs := expr.list[1:]
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("pdo: line %d: probabilistic needs probability/outcome pairs", expr.line)
	}
	var effects []*planning.Effect
	for i := 0; i < len(pairs); i += 2 {
		probability, err := parseNumber(pairs[i])
		if err != nil {
			return nil, err
		}
		effect, err := parseOutcome(pairs[i+1], probability)
		if err != nil {
			return nil, err
		}
		effects = append(effects, effect)
	}
	return effects, nil
}

// parseOutcome reads one outcome conjunction into its add and delete sets
// and any reward adjustment.
func parseOutcome(expr sexpr, probability float64) (*planning.Effect, error) {
	var add, del []planning.Atom
	reward := 0.0

	var visit func(expr sexpr) error
	visit = func(expr sexpr) error {
		if !expr.isList() {
			add = append(add, planning.Atom(expr.atom))
			return nil
		}
		if len(expr.list) == 0 {
			return nil
		}
		switch expr.list[0].atom {
		case "and":
			for _, sub := range expr.list[1:] {
				if err := visit(sub); err != nil {
					return err
				}
			}
			return nil
		case "not":
			for _, sub := range expr.list[1:] {
				if sub.isList() {
					return fmt.Errorf("pdo: line %d: (not ...) takes atoms only", sub.line)
				}
				del = append(del, planning.Atom(sub.atom))
			}
			return nil
		case "increase", "decrease":
			if len(expr.list) != 3 || expr.list[1].String() != "(reward)" {
				return fmt.Errorf("pdo: line %d: expected (%s (reward) NUMBER)", expr.line, expr.list[0].atom)
			}
			value, err := parseNumber(expr.list[2])
			if err != nil {
				return err
			}
			if expr.list[0].atom == "decrease" {
				value = -value
			}
			reward += value
			return nil
		default:
			return fmt.Errorf("pdo: line %d: unexpected %s in effect", expr.line, expr.list[0].atom)
		}
	}

	if err := visit(expr); err != nil {
		return nil, err
	}
	return planning.NewEffect(del, add, probability, reward), nil
}

// parseNumber reads a decimal or a/b fraction literal.
func parseNumber(expr sexpr) (float64, error) {
	if expr.isList() {
		return 0, fmt.Errorf("pdo: line %d: expected a number", expr.line)
	}
	if num, den, ok := strings.Cut(expr.atom, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, fmt.Errorf("pdo: line %d: malformed fraction %q", expr.line, expr.atom)
		}
		return n / d, nil
	}
	value, err := strconv.ParseFloat(expr.atom, 64)
	if err != nil {
		return 0, fmt.Errorf("pdo: line %d: malformed number %q", expr.line, expr.atom)
	}
	return value, nil
}
