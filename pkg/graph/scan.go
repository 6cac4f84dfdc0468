package graph

import (
	"strconv"
	"strings"
)

// Request is one dependency call found in script source
type Request struct {
	Specifier string
	Dynamic   bool
	// start and end delimit the call expression in the source
	start, end int
}

// regexKeywords are the keywords after which a '/' starts a regular
// expression literal rather than a division
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "of": true, "new": true, "delete": true, "void": true,
	"throw": true, "instanceof": true, "yield": true, "await": true,
}

// scanner walks script source token by token. String, template and regular
// expression literals and comments are skipped, so only require() and
// import() calls in code are reported.
type scanner struct {
	src  string
	reqs []Request

	// prev is the last significant code byte, prevWord the identifier it
	// ended when it was one
	prev     byte
	prevWord string
}

// Scan finds the require("x") and import("x") calls with a single string
// literal argument in src, in source order. Member calls such as
// foo.require("x") are skipped.
func Scan(src string) []Request {
	s := &scanner{src: src}
	s.code(0, false)
	return s.reqs
}

// code scans from i. When nested is set it stops after the '}' closing a
// template substitution and returns the index past it.
func (s *scanner) code(i int, nested bool) int {
	depth := 0
	for i < len(s.src) {
		c := s.src[i]
		switch {
		case c == '/' && s.peek(i+1) == '/':
			i = s.lineComment(i)
			continue
		case c == '/' && s.peek(i+1) == '*':
			i = s.blockComment(i)
			continue
		case c == '"' || c == '\'':
			i = skipString(s.src, i)
			s.prev, s.prevWord = c, ""
			continue
		case c == '`':
			i = s.template(i)
			s.prev, s.prevWord = c, ""
			continue
		case c == '/' && s.regexAllowed():
			if end, ok := skipRegex(s.src, i); ok {
				i = end
				s.prev, s.prevWord = ')', ""
				continue
			}
		case isIdentStart(c):
			j := i + 1
			for j < len(s.src) && isIdentPart(s.src[j]) {
				j++
			}
			word := s.src[i:j]
			if (word == "require" || word == "import") && s.prev != '.' {
				if end, spec, ok := s.call(j); ok {
					s.reqs = append(s.reqs, Request{
						Specifier: spec,
						Dynamic:   word == "import",
						start:     i,
						end:       end,
					})
					s.prev, s.prevWord = ')', ""
					i = end
					continue
				}
			}
			s.prev, s.prevWord = 'a', word
			i = j
			continue
		case c == '{':
			depth++
		case c == '}':
			if nested && depth == 0 {
				return i + 1
			}
			depth--
		}
		if !isSpace(c) {
			s.prev, s.prevWord = c, ""
		}
		i++
	}
	return i
}

func (s *scanner) peek(i int) byte {
	if i < len(s.src) {
		return s.src[i]
	}
	return 0
}

func (s *scanner) regexAllowed() bool {
	if s.prevWord != "" {
		return regexKeywords[s.prevWord]
	}
	return s.prev == 0 || strings.IndexByte("(,=:[!&|?{};+-*%<>~^", s.prev) >= 0
}

func (s *scanner) lineComment(i int) int {
	if n := strings.IndexByte(s.src[i:], '\n'); n >= 0 {
		return i + n
	}
	return len(s.src)
}

func (s *scanner) blockComment(i int) int {
	if n := strings.Index(s.src[i+2:], "*/"); n >= 0 {
		return i + 2 + n + 2
	}
	return len(s.src)
}

// template skips a template literal starting at i, scanning the code of
// its ${} substitutions
func (s *scanner) template(i int) int {
	j := i + 1
	for j < len(s.src) {
		switch c := s.src[j]; {
		case c == '\\':
			j += 2
		case c == '`':
			return j + 1
		case c == '$' && s.peek(j+1) == '{':
			j = s.code(j+2, true)
		default:
			j++
		}
	}
	return len(s.src)
}

// call matches `(\s*"literal"\s*)` at i and returns the index past it
func (s *scanner) call(i int) (int, string, bool) {
	k := skipSpace(s.src, i)
	if s.peek(k) != '(' {
		return 0, "", false
	}
	k = skipSpace(s.src, k+1)
	q := s.peek(k)
	if q != '"' && q != '\'' {
		return 0, "", false
	}
	end := skipString(s.src, k)
	if end-k < 2 || s.src[end-1] != q {
		return 0, "", false
	}
	lit := s.src[k:end]
	k = skipSpace(s.src, end)
	if s.peek(k) != ')' {
		return 0, "", false
	}
	spec, ok := unquote(lit)
	if !ok {
		return 0, "", false
	}
	return k + 1, spec, true
}

// skipString returns the index past the string literal starting at i. An
// unterminated literal ends at the line break.
func skipString(src string, i int) int {
	q := src[i]
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
			continue
		case q:
			return j + 1
		case '\n':
			return j
		}
		j++
	}
	return len(src)
}

// skipRegex returns the index past the regular expression literal at i.
// Literals cannot span lines; a line break means i was a division.
func skipRegex(src string, i int) (int, bool) {
	inClass := false
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if inClass {
				continue
			}
			j++
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			return j, true
		case '\n':
			return 0, false
		}
	}
	return 0, false
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// Rewrite replaces every call found by Scan with the expression returned by
// replace. Calls for which replace returns "" are left untouched.
func Rewrite(src string, replace func(Request) string) string {
	reqs := Scan(src)
	if len(reqs) == 0 {
		return src
	}
	var b strings.Builder
	last := 0
	for _, r := range reqs {
		expr := replace(r)
		if expr == "" {
			continue
		}
		b.WriteString(src[last:r.start])
		b.WriteString(expr)
		last = r.end
	}
	b.WriteString(src[last:])
	return b.String()
}

func unquote(lit string) (string, bool) {
	if strings.HasPrefix(lit, "'") {
		body := lit[1 : len(lit)-1]
		body = strings.ReplaceAll(body, `\'`, `'`)
		body = strings.ReplaceAll(body, `"`, `\"`)
		lit = `"` + body + `"`
	}
	s, err := strconv.Unquote(lit)
	if err != nil {
		return "", false
	}
	return s, true
}
