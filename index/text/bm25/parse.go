package bm25

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hupe1980/termq/index"
)

type node interface {
	// terms appends the positive words of the node, used for scoring.
	terms(dst []string) []string
}

type (
	wordNode   struct{ word string }
	prefixNode struct{ prefix string }
	phraseNode struct{ words []string }
	andNode    struct{ children []node }
	orNode     struct{ children []node }
	notNode    struct{ child node }
	// noneNode matches nothing; produced by words without indexable runes.
	noneNode struct{}
)

func (n wordNode) terms(dst []string) []string   { return append(dst, n.word) }
func (n prefixNode) terms(dst []string) []string { return dst }
func (n phraseNode) terms(dst []string) []string { return append(dst, n.words...) }
func (n notNode) terms(dst []string) []string    { return dst }
func (n noneNode) terms(dst []string) []string   { return dst }

func (n andNode) terms(dst []string) []string {
	for _, c := range n.children {
		dst = c.terms(dst)
	}
	return dst
}

func (n orNode) terms(dst []string) []string {
	for _, c := range n.children {
		dst = c.terms(dst)
	}
	return dst
}

type tokenKind uint8

const (
	tokWord tokenKind = iota
	tokPhrase
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
)

type token struct {
	kind tokenKind
	text string
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", index.ErrMalformedQuery, fmt.Sprintf(format, args...))
}

func lex(q string) ([]token, error) {
	var toks []token
	rs := []rune(q)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		case r == '"':
			end := i + 1
			for end < len(rs) && rs[end] != '"' {
				end++
			}
			if end == len(rs) {
				return nil, malformed("unterminated phrase at offset %d", i)
			}
			toks = append(toks, token{kind: tokPhrase, text: string(rs[i+1 : end])})
			i = end + 1
		default:
			end := i
			for end < len(rs) && !unicode.IsSpace(rs[end]) && rs[end] != '(' && rs[end] != ')' && rs[end] != '"' {
				end++
			}
			word := string(rs[i:end])
			switch strings.ToUpper(word) {
			case "AND":
				toks = append(toks, token{kind: tokAnd})
			case "OR":
				toks = append(toks, token{kind: tokOr})
			case "NOT":
				toks = append(toks, token{kind: tokNot})
			default:
				toks = append(toks, token{kind: tokWord, text: word})
			}
			i = end
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

// parse turns query text into a node tree.
func parse(q string) (node, error) {
	toks, err := lex(q)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, malformed("empty query")
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, malformed("unexpected token at position %d", p.pos)
	}
	return n, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) parseOr() (node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []node{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOr {
			break
		}
		p.pos++
		n, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	if len(children) == 1 {
		return first, nil
	}
	return orNode{children: children}, nil
}

func (p *parser) parseAnd() (node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []node{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind == tokOr || t.kind == tokRParen {
			break
		}
		if t.kind == tokAnd {
			p.pos++
		}
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	if len(children) == 1 {
		return first, nil
	}
	return andNode{children: children}, nil
}

func (p *parser) parseUnary() (node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, malformed("unexpected end of query")
	}
	if t.kind == tokNot {
		p.pos++
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{child: child}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t, _ := p.peek()
	switch t.kind {
	case tokLParen:
		p.pos++
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing, ok := p.peek(); !ok || closing.kind != tokRParen {
			return nil, malformed("missing closing parenthesis")
		}
		p.pos++
		return n, nil
	case tokPhrase:
		p.pos++
		words := Tokenize(t.text)
		switch len(words) {
		case 0:
			return noneNode{}, nil
		case 1:
			return wordNode{word: words[0]}, nil
		default:
			return phraseNode{words: words}, nil
		}
	case tokWord:
		p.pos++
		return wordToNode(t.text), nil
	default:
		return nil, malformed("unexpected operator at position %d", p.pos)
	}
}

func wordToNode(w string) node {
	if strings.HasSuffix(w, "*") {
		words := Tokenize(strings.TrimRight(w, "*"))
		if len(words) == 1 {
			return prefixNode{prefix: words[0]}
		}
	}
	words := Tokenize(w)
	switch len(words) {
	case 0:
		return noneNode{}
	case 1:
		return wordNode{word: words[0]}
	default:
		return phraseNode{words: words}
	}
}
