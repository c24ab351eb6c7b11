package parsing

import (
	"bytes"
	"reflect"
	"regexp"

	"github.com/NickyBoy89/propmigrate/nodeutil"
	"github.com/NickyBoy89/propmigrate/tree"
	"golang.org/x/exp/slices"
)

// Groovy is read with the Java grammar, after rewriting the parts of its
// syntax that the grammar rejects:
//   - statements that end at a newline or a closing brace get a semicolon
//   - closures become lambdas, and a closure after a call's arguments is
//     moved inside of them, so `register("t", T) { T it -> ... }` is read as
//     `register("t", T, (T it) -> { ... })`
//   - a closure without parameters takes the implicit `it` parameter
//   - single-quoted strings are double-quoted
//   - `def` in front of a generic method's type parameters is dropped
//
// Every byte of the rewritten text remembers where it came from, so the spans
// of the tree that is parsed from it point into the original file

// groovySource is a Groovy file rewritten into Java syntax
type groovySource struct {
	text []byte
	// origin is the offset in the original file of each byte of text
	origin []int
	// synthetic marks the bytes of text that are not in the original file
	synthetic []bool
	size      int
}

// start maps an offset in the rewritten text to the original file, moving
// forward past anything that was added
func (g *groovySource) start(offset int) int {
	for i := offset; i < len(g.text); i++ {
		if !g.synthetic[i] {
			return g.origin[i]
		}
	}
	return g.size
}

// span maps a span of the rewritten text to the original file. The bytes of a
// closure's header are moved around, so the span covers everything that its
// bytes came from. A span that only covers added text has no place in the
// original, and becomes empty
func (g *groovySource) span(s tree.Span) tree.Span {
	if !s.Valid() {
		return s
	}
	start, end := g.size, 0
	for i := s.Start; i < s.End && i < len(g.text); i++ {
		if g.synthetic[i] {
			continue
		}
		start = min(start, g.origin[i])
		end = max(end, g.origin[i]+1)
	}
	if end <= start {
		return tree.Span{}
	}
	return tree.Span{Start: start, End: end}
}

var spanType = reflect.TypeOf(tree.Span{})

type visited struct {
	addr uintptr
	typ  reflect.Type
}

// remap moves every span in a unit from the rewritten text to the original
func (g *groovySource) remap(unit *tree.SourceUnit) {
	seen := make(map[visited]bool)
	var visit func(v reflect.Value)
	visit = func(v reflect.Value) {
		switch v.Kind() {
		case reflect.Pointer:
			if v.IsNil() || v.Elem().Type().PkgPath() != spanType.PkgPath() {
				return
			}
			key := visited{v.Pointer(), v.Type()}
			if seen[key] {
				return
			}
			seen[key] = true
			visit(v.Elem())
		case reflect.Interface:
			if !v.IsNil() {
				visit(v.Elem())
			}
		case reflect.Slice:
			switch v.Type().Elem().Kind() {
			case reflect.Pointer, reflect.Interface, reflect.Struct, reflect.Slice:
				for i := 0; i < v.Len(); i++ {
					visit(v.Index(i))
				}
			}
		case reflect.Struct:
			if v.Type() == spanType {
				if v.CanSet() {
					v.Set(reflect.ValueOf(g.span(v.Interface().(tree.Span))))
				}
				return
			}
			for i := 0; i < v.NumField(); i++ {
				if v.Type().Field(i).IsExported() {
					visit(v.Field(i))
				}
			}
		}
	}
	visit(reflect.ValueOf(unit))
}

// problem moves a syntax problem from the rewritten text to the original
func (g *groovySource) problem(p nodeutil.Problem, original []byte) nodeutil.Problem {
	if span := g.span(p.Span); !p.Missing && span.Valid() && span.End > span.Start {
		p.Span = span
		p.Text = string(original[span.Start:span.End])
	} else {
		at := g.start(p.Span.Start)
		p.Span = tree.Span{Start: at, End: at}
	}
	lineStart := bytes.LastIndexByte(original[:p.Span.Start], '\n') + 1
	p.Line = bytes.Count(original[:p.Span.Start], []byte{'\n'}) + 1
	p.Column = p.Span.Start - lineStart + 1
	return p
}

const (
	codeByte = iota
	commentByte
	stringByte
)

// classify marks every byte of a Groovy file as code, comment or string
func classify(src []byte) []uint8 {
	kinds := make([]uint8, len(src))
	mark := func(from, to int, kind uint8) int {
		to = min(to, len(src))
		for i := from; i < to; i++ {
			kinds[i] = kind
		}
		return to
	}

	for i := 0; i < len(src); {
		switch {
		case bytes.HasPrefix(src[i:], []byte("//")):
			end := bytes.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			i = mark(i, i+end, commentByte)
		case bytes.HasPrefix(src[i:], []byte("/*")):
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				i = mark(i, len(src), commentByte)
			} else {
				i = mark(i, i+2+end+2, commentByte)
			}
		case src[i] == '"' || src[i] == '\'':
			quote := src[i : i+1]
			if triple := bytes.Repeat(quote, 3); bytes.HasPrefix(src[i:], triple) {
				quote = triple
			}
			j := i + len(quote)
			for j < len(src) && !bytes.HasPrefix(src[j:], quote) {
				if src[j] == '\n' && len(quote) == 1 {
					break
				}
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(src) && src[j] == '\n' {
				// Unterminated
				i = mark(i, j, stringByte)
			} else {
				i = mark(i, j+len(quote), stringByte)
			}
		default:
			i++
		}
	}
	return kinds
}

type braceKind int

const (
	blockBrace braceKind = iota
	classBrace
	closureBrace
)

type openBrace struct {
	kind braceKind
	// call is set for a closure that was moved inside of a call's arguments,
	// which is closed along with the closure
	call bool
	// parens is how many parentheses were open outside of the brace
	parens int
}

// pendingClosure is a closure that follows a call's arguments, whose closing
// parenthesis was dropped
type pendingClosure struct {
	at        int
	arguments bool
}

type normalizer struct {
	src   []byte
	kinds []uint8
	out   *groovySource

	braces  []openBrace
	parens  []int
	pending *pendingClosure

	// lastCode is the index in the output of the last byte of code on the
	// current line, or -1 if there is none
	lastCode int
	// closed is set when the last code on the line closed a closure
	closed    bool
	lineStart int
}

func normalizeGroovy(src []byte) *groovySource {
	n := &normalizer{
		src:      src,
		kinds:    classify(src),
		out:      &groovySource{size: len(src)},
		lastCode: -1,
	}
	n.run()
	return n.out
}

func (n *normalizer) copy(i int) {
	n.out.text = append(n.out.text, n.src[i])
	n.out.origin = append(n.out.origin, i)
	n.out.synthetic = append(n.out.synthetic, false)
	if n.src[i] == '\n' {
		n.lineStart = i + 1
	}
}

// emit adds text that is not in the original file, as if it were at offset at
func (n *normalizer) emit(at int, text string) {
	for i := 0; i < len(text); i++ {
		n.out.text = append(n.out.text, text[i])
		n.out.origin = append(n.out.origin, at)
		n.out.synthetic = append(n.out.synthetic, true)
	}
}

func (n *normalizer) code() {
	n.lastCode = len(n.out.text) - 1
	n.closed = false
}

func (n *normalizer) run() {
	for i := 0; i < len(n.src); {
		switch n.kinds[i] {
		case stringByte:
			i = n.string(i)
			continue
		case commentByte:
			n.copy(i)
			i++
			continue
		}

		switch b := n.src[i]; {
		case b == '\n':
			n.endLine(i)
			n.copy(i)
			i++
		case b == '(' || b == '[':
			n.parens = append(n.parens, i)
			n.copy(i)
			n.code()
			i++
		case b == ')' || b == ']':
			open := -1
			if len(n.parens) > n.outerParens() {
				open = n.parens[len(n.parens)-1]
				n.parens = n.parens[:len(n.parens)-1]
			}
			if b == ')' && open >= 0 && n.closureFollows(open, i) {
				i++
				continue
			}
			n.copy(i)
			n.code()
			i++
		case b == '{':
			i = n.openBrace(i)
		case b == '}':
			n.closeBrace(i)
			i++
		case n.isWordAt(i, "def") && n.genericDef(i):
			i += len("def")
		default:
			n.copy(i)
			if !isBlank(b) {
				n.code()
			}
			i++
		}
	}
	n.endLine(len(n.src))
}

// string copies a string literal, and returns the offset after it
func (n *normalizer) string(i int) int {
	j := i
	for j < len(n.src) && n.kinds[j] == stringByte {
		j++
	}
	literal := n.src[i:j]
	single := len(literal) >= 2 && literal[0] == '\'' && literal[len(literal)-1] == '\'' &&
		!bytes.HasPrefix(literal, []byte("'''")) && !bytes.ContainsRune(literal, '"')
	for k := i; k < j; k++ {
		n.copy(k)
		if single && (k == i || k == j-1) {
			n.out.text[len(n.out.text)-1] = '"'
		}
	}
	n.code()
	return j
}

// outerParens is how many of the open parentheses belong outside of the
// innermost brace
func (n *normalizer) outerParens() int {
	if len(n.braces) == 0 {
		return 0
	}
	return n.braces[len(n.braces)-1].parens
}

// inClassBody reports whether the innermost brace is the body of a class
func (n *normalizer) inClassBody() bool {
	return len(n.braces) > 0 && n.braces[len(n.braces)-1].kind == classBrace
}

// headerKeywords are the statements whose parenthesized header is followed by
// a block
var headerKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true, "synchronized": true,
}

// blockKeywords are followed directly by a block
var blockKeywords = map[string]bool{
	"else": true, "try": true, "finally": true, "do": true, "static": true,
}

// closureFollows reports whether the call whose arguments close at i is
// followed by a closure on the same line. If it is, the closure is pending
// and the parenthesis is dropped, to be added back after the closure
func (n *normalizer) closureFollows(open, i int) bool {
	next := i + 1
	for next < len(n.src) && (n.src[next] == ' ' || n.src[next] == '\t') {
		next++
	}
	if next >= len(n.src) || n.src[next] != '{' || n.kinds[next] != codeByte || n.inClassBody() {
		return false
	}

	word, start := n.wordBefore(open)
	if word == "" || headerKeywords[word] {
		return false
	}
	start = n.qualifiedStart(start)
	if prev := n.prevCode(start); prev >= 0 && n.sameLine(prev, start) {
		before, _ := n.wordBefore(start)
		switch {
		case before == "new":
			// An anonymous class
			return false
		case before != "" && before != "return":
			// A method declared outside of a class, as in `void configure() {`
			return false
		case (n.src[prev] == '>' || n.src[prev] == ']') && !n.arrowAt(prev-1):
			// A method with a generic or array return type
			return false
		}
	}

	n.pending = &pendingClosure{
		at:        next,
		arguments: len(bytes.TrimSpace(n.src[open+1:i])) > 0,
	}
	return true
}

var closureParams = regexp.MustCompile(`^[\w\s,<>\[\]?.]*$`)

func (n *normalizer) openBrace(i int) int {
	brace := openBrace{kind: blockBrace, parens: len(n.parens)}
	prefix := ""
	if n.pending != nil && n.pending.at == i {
		brace.kind, brace.call = closureBrace, true
		if n.pending.arguments {
			prefix = ", "
		}
		n.pending = nil
	} else {
		brace.kind = n.braceKind(i)
		if brace.kind == closureBrace && !n.closureValue(i) {
			// A call without parentheses, as in `doLast { ... }`
			brace.call = true
			prefix = "("
		}
	}
	n.braces = append(n.braces, brace)

	if brace.kind != closureBrace {
		n.copy(i)
		n.code()
		return i + 1
	}

	// The parameters come before an arrow on the same line
	arrow := -1
	for k := i + 1; k < len(n.src) && n.src[k] != '\n' && n.kinds[k] == codeByte; k++ {
		if n.arrowAt(k) {
			arrow = k
			break
		}
	}
	if arrow >= 0 && closureParams.Match(n.src[i+1:arrow]) {
		n.emit(i, prefix+"(")
		for k := i + 1; k < arrow; k++ {
			n.copy(k)
		}
		n.emit(arrow, ") -> ")
		n.copy(i)
		n.code()
		return arrow + len("->")
	}
	n.emit(i, prefix+"(it) -> ")
	n.copy(i)
	n.code()
	return i + 1
}

func (n *normalizer) closeBrace(i int) {
	var brace openBrace
	if len(n.braces) > 0 {
		brace = n.braces[len(n.braces)-1]
		n.braces = n.braces[:len(n.braces)-1]
		if len(n.parens) > brace.parens {
			n.parens = n.parens[:brace.parens]
		}
	}
	// The last statement of a block can end at its closing brace
	if n.lastCode >= 0 && n.endsExpression(n.lastCode, n.closed) {
		n.terminate(n.lastCode)
	}
	n.copy(i)
	if brace.kind == closureBrace && brace.call {
		n.emit(i+1, ")")
	}
	n.code()
	n.closed = brace.kind == closureBrace
}

// braceKind decides what a brace that does not follow a call's arguments opens
func (n *normalizer) braceKind(i int) braceKind {
	prev := n.prevCode(i)
	if prev < 0 {
		return blockBrace
	}
	switch c := n.src[prev]; {
	case isWordByte(c):
		word, _ := n.wordBefore(prev + 1)
		switch {
		case n.declaresType(i):
			return classBrace
		case word == "return":
			return closureBrace
		case blockKeywords[word] || n.inClassBody():
			return blockBrace
		}
		return closureBrace
	case n.arrowAt(prev - 1):
		// The body of a lambda
		return blockBrace
	case c == '>':
		if n.declaresType(i) {
			return classBrace
		}
	case c == ')':
		if n.declaresType(i) || n.anonymousClass(prev) {
			return classBrace
		}
	case c == '=' || c == '(' || c == ',' || c == ':' || c == '?' || c == '[':
		return closureBrace
	}
	return blockBrace
}

// closureValue reports whether a closure at i is a value, rather than the
// last argument of a call written without parentheses
func (n *normalizer) closureValue(i int) bool {
	prev := n.prevCode(i)
	if prev < 0 || !isWordByte(n.src[prev]) {
		return true
	}
	word, _ := n.wordBefore(prev + 1)
	return word == "return"
}

// anonymousClass reports whether the parenthesis at close ends the arguments
// of `new T(...)`
func (n *normalizer) anonymousClass(close int) bool {
	depth := 0
	for k := close; k >= 0; k-- {
		if n.kinds[k] != codeByte {
			continue
		}
		switch n.src[k] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				_, start := n.wordBefore(n.skipTypeArguments(k))
				before, _ := n.wordBefore(n.qualifiedStart(start))
				return before == "new"
			}
		}
	}
	return false
}

// qualifiedStart moves back from the start of a name over any qualifiers, as
// in `a.b.Name`
func (n *normalizer) qualifiedStart(start int) int {
	for {
		prev := n.prevCode(start)
		if prev < 0 || n.src[prev] != '.' {
			return start
		}
		word, wordStart := n.wordBefore(prev)
		if word == "" {
			return start
		}
		start = wordStart
	}
}

// skipTypeArguments moves back over the type arguments before an offset, as
// in `new Foo<Bar>(`
func (n *normalizer) skipTypeArguments(at int) int {
	prev := n.prevCode(at)
	if prev < 0 || n.src[prev] != '>' {
		return at
	}
	depth := 0
	for k := prev; k >= 0; k-- {
		switch n.src[k] {
		case '>':
			depth++
		case '<':
			depth--
			if depth == 0 {
				return k
			}
		}
	}
	return at
}

var continuedHeader = regexp.MustCompile(`^\s*(extends|implements|\{)`)

// declaresType reports whether the brace at i opens the body of a class,
// interface, enum or trait. The header may continue over several lines when
// they start with `extends` or `implements`
func (n *normalizer) declaresType(i int) bool {
	start := bytes.LastIndexByte(n.src[:i], '\n') + 1
	for start > 0 && continuedHeader.Match(n.src[start:i]) {
		start = bytes.LastIndexByte(n.src[:start-1], '\n') + 1
	}
	for k := i - 1; k > start; k-- {
		if c := n.src[k-1]; n.kinds[k-1] == codeByte && (c == ';' || c == '{' || c == '}') {
			start = k
			break
		}
	}

	for k := start; k < i; k++ {
		if n.kinds[k] != codeByte || (k > start && (isWordByte(n.src[k-1]) || n.src[k-1] == '.')) {
			continue
		}
		for _, keyword := range []string{"class", "interface", "enum", "trait"} {
			if n.isWordAt(k, keyword) {
				return true
			}
		}
	}
	return false
}

// genericDef reports whether the `def` at i is followed by type parameters,
// which Java does not allow after a type
func (n *normalizer) genericDef(i int) bool {
	next := i + len("def")
	for next < len(n.src) && isBlank(n.src[next]) {
		next++
	}
	return next < len(n.src) && n.src[next] == '<'
}

var (
	annotationLine = regexp.MustCompile(`^(@[\w.]+(\(.*\))?\s*)+$`)
	headerLine     = regexp.MustCompile(`^(}\s*)?(else\s+)?(if|for|while|switch|catch|synchronized)\s*\(.*\)$|^(}\s*)?(else|try|finally|do)$`)
)

// endLine ends the statement on the line that ends at eol with a semicolon,
// unless it continues on the next line
func (n *normalizer) endLine(eol int) {
	last, closed := n.lastCode, n.closed
	n.lastCode, n.closed = -1, false
	if last < 0 || !n.endsExpression(last, closed) || len(n.parens) > n.outerParens() {
		return
	}

	var line []byte
	for k := n.lineStart; k < eol; k++ {
		if n.kinds[k] != commentByte {
			line = append(line, n.src[k])
		}
	}
	line = bytes.TrimSpace(line)
	if annotationLine.Match(line) || headerLine.Match(line) {
		return
	}

	// The statement continues when the next line starts with an operator
	if next := n.nextCode(eol); next >= 0 && bytes.IndexByte([]byte(".?:{,+-*/%=&|^<>"), n.src[next]) >= 0 {
		return
	}
	n.terminate(last)
}

// endsExpression reports whether the code at last can be the end of a
// statement
func (n *normalizer) endsExpression(last int, closed bool) bool {
	c := n.out.text[last]
	return isWordByte(c) || c == ')' || c == ']' || c == '"' || c == '\'' || closed ||
		(last > 0 && (c == '+' || c == '-') && n.out.text[last-1] == c)
}

// terminate adds a semicolon after the code at last
func (n *normalizer) terminate(last int) {
	at := last + 1
	n.out.text = slices.Insert(n.out.text, at, ';')
	n.out.origin = slices.Insert(n.out.origin, at, n.out.origin[last]+1)
	n.out.synthetic = slices.Insert(n.out.synthetic, at, true)
}

func (n *normalizer) arrowAt(i int) bool {
	return i >= 0 && i+1 < len(n.src) && n.src[i] == '-' && n.src[i+1] == '>' && n.kinds[i] == codeByte
}

func (n *normalizer) sameLine(from, to int) bool {
	return bytes.IndexByte(n.src[from:to], '\n') < 0
}

// prevCode returns the offset of the last byte of code before i, skipping
// whitespace, or -1
func (n *normalizer) prevCode(i int) int {
	for k := i - 1; k >= 0; k-- {
		if n.kinds[k] == codeByte && !isBlank(n.src[k]) {
			return k
		}
	}
	return -1
}

// nextCode returns the offset of the first byte of code at or after i,
// skipping whitespace, or -1
func (n *normalizer) nextCode(i int) int {
	for k := i; k < len(n.src); k++ {
		if n.kinds[k] == codeByte && !isBlank(n.src[k]) {
			return k
		}
	}
	return -1
}

// wordBefore returns the identifier or keyword that ends right before i,
// skipping whitespace, along with where it starts
func (n *normalizer) wordBefore(i int) (string, int) {
	end := n.prevCode(i) + 1
	start := end
	for start > 0 && n.kinds[start-1] == codeByte && isWordByte(n.src[start-1]) {
		start--
	}
	return string(n.src[start:end]), start
}

func (n *normalizer) isWordAt(i int, word string) bool {
	if !bytes.HasPrefix(n.src[i:], []byte(word)) || n.kinds[i] != codeByte {
		return false
	}
	if i > 0 && isWordByte(n.src[i-1]) {
		return false
	}
	end := i + len(word)
	return end >= len(n.src) || !isWordByte(n.src[end])
}

func isWordByte(b byte) bool {
	return b == '_' || b == '$' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
