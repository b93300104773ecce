package pdo

import (
	"fmt"
	"strings"
)

// sexpr is one node of the parenthesized domain description: either a bare
// token or a list of sub-expressions. The line number points back into the
// input for error reporting.
type sexpr struct {
	atom string
	list []sexpr
	line int
}

func (s sexpr) isList() bool {
	return s.atom == ""
}

func (s sexpr) String() string {
	if !s.isList() {
		return s.atom
	}
	parts := make([]string, len(s.list))
	for i, sub := range s.list {
		parts[i] = sub.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

type token struct {
	text string
	line int
}

// lex splits the input into parentheses and bare tokens. Semicolons start a
// comment running to the end of the line.
func lex(input string) []token {
	var tokens []token
	line := 1
	start := -1

	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, token{text: input[start:end], line: line})
			start = -1
		}
	}

	for i := 0; i < len(input); i++ {
		switch c := input[i]; c {
		case '(', ')':
			flush(i)
			tokens = append(tokens, token{text: string(c), line: line})
		case ' ', '\t', '\r':
			flush(i)
		case '\n':
			flush(i)
			line++
		case ';':
			flush(i)
			for i < len(input) && input[i] != '\n' {
				i++
			}
			line++
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(input))
	return tokens
}

// read parses the input into its single top-level expression.
func read(input string) (sexpr, error) {
	tokens := lex(input)
	if len(tokens) == 0 {
		return sexpr{}, fmt.Errorf("empty input")
	}

	expr, rest, err := readFrom(tokens)
	if err != nil {
		return sexpr{}, err
	}
	if len(rest) > 0 {
		return sexpr{}, fmt.Errorf("line %d: unexpected trailing input %q", rest[0].line, rest[0].text)
	}
	return expr, nil
}

func readFrom(tokens []token) (sexpr, []token, error) {
	head := tokens[0]
	switch head.text {
	case "(":
		expr := sexpr{line: head.line}
		rest := tokens[1:]
		for {
			if len(rest) == 0 {
				return sexpr{}, nil, fmt.Errorf("line %d: unclosed parenthesis", head.line)
			}
			if rest[0].text == ")" {
				return expr, rest[1:], nil
			}
			sub, remaining, err := readFrom(rest)
			if err != nil {
				return sexpr{}, nil, err
			}
			expr.list = append(expr.list, sub)
			rest = remaining
		}
	case ")":
		return sexpr{}, nil, fmt.Errorf("line %d: unexpected closing parenthesis", head.line)
	default:
		return sexpr{atom: head.text, line: head.line}, tokens[1:], nil
	}
}
