// Package parser parses Cb source into an *ast.Program using a
// single-pass recursive-descent parser with precedence climbing for
// expressions. The evaluator (the core this repository implements)
// only depends on the ast package's node types; this package is one
// concrete producer of them.
package parser

import (
	"fmt"

	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/lexer"
)

// ParseError is a single syntax error with a source location.
type ParseError struct {
	Message string
	Pos     ast.Pos
}

func (e ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Pos, e.Message)
}

// Parser holds the token stream and parse state for one source file.
type Parser struct {
	fileName string
	source   string
	tokens   []lexer.Token
	pos      int
	errors   []ParseError
}

// New creates a Parser over source, tokenizing it immediately.
func New(fileName, source string) *Parser {
	lx := lexer.New(source)
	return &Parser{
		fileName: fileName,
		source:   source,
		tokens:   lx.Tokenize(),
	}
}

// Parse parses the whole source file into a Program. Parse errors are
// accumulated and returned rather than raised immediately, so callers
// can report every syntax problem in one pass.
func (p *Parser) Parse() (*ast.Program, []ParseError) {
	prog := &ast.Program{FileName: p.fileName, Source: p.source}
	for p.current().Kind != lexer.TokEOF {
		before := p.pos
		d := p.parseTopLevelDecl()
		if d != nil {
			prog.Decls = append(prog.Decls, d)
		}
		if p.pos == before {
			// Guard against an infinite loop on unrecoverable input.
			p.advance()
		}
	}
	return prog, p.errors
}

// ----------------------------------------------------------------------------
// Token helpers
// ----------------------------------------------------------------------------

func (p *Parser) current() lexer.Token { return p.peek(0) }

func (p *Parser) peek(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF}
	}
	return p.tokens[i]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.current().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind lexer.TokenKind) lexer.Token {
	tok := p.current()
	if tok.Kind != kind {
		p.errorf("expected %s, got %s", kind, tok.Kind)
		return tok
	}
	return p.advance()
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, ParseError{
		Message: fmt.Sprintf(format, args...),
		Pos:     ast.Pos(p.current().Start),
	})
}

func (p *Parser) pos32() ast.Pos { return ast.Pos(p.current().Start) }

// ----------------------------------------------------------------------------
// Type keyword classification
// ----------------------------------------------------------------------------

var typeKeywordNames = map[lexer.TokenKind]string{
	lexer.TokTiny: "tiny", lexer.TokShort: "short", lexer.TokInt: "int",
	lexer.TokLong: "long", lexer.TokBool: "bool", lexer.TokChar: "char",
	lexer.TokString: "string", lexer.TokFloat: "float", lexer.TokDouble: "double",
	lexer.TokQuad: "quad", lexer.TokVoid: "void",
}

func isTypeKeyword(k lexer.TokenKind) bool {
	_, ok := typeKeywordNames[k]
	return ok
}

// parseType parses a type reference: optional `unsigned`, a base type
// name (primitive keyword or identifier naming a struct/enum/typedef),
// zero or more `[size]` array dimensions, and an optional trailing `&`
// (reference) or `*` (pointer) marker.
func (p *Parser) parseType() ast.TypeRef {
	var t ast.TypeRef
	if p.match(lexer.TokUnsigned) {
		t.IsUnsigned = true
	}
	tok := p.current()
	if name, ok := typeKeywordNames[tok.Kind]; ok {
		t.Name = name
		p.advance()
	} else if tok.Kind == lexer.TokIdent {
		t.Name = tok.StringValue
		p.advance()
	} else {
		p.errorf("expected a type name, got %s", tok.Kind)
		p.advance()
	}

	for p.current().Kind == lexer.TokLBracket {
		p.advance()
		var dim ast.Expr
		if p.current().Kind != lexer.TokRBracket {
			dim = p.parseExpression()
		}
		p.expect(lexer.TokRBracket)
		t.ArrayDims = append(t.ArrayDims, dim)
	}

	if p.match(lexer.TokAmp) {
		t.IsReference = true
	} else if p.match(lexer.TokStar) {
		t.IsPointer = true
	}
	return t
}

// looksLikeDeclStart decides, with one bracket-aware lookahead, whether
// the statement starting at the current token is a declaration
// (`T name ...;`) rather than an expression statement. Cb has no
// separate typedef-tracking parse pass, so a bare identifier is taken
// to start a declaration exactly when it is followed — possibly after
// one or more bracketed array dimensions — by another identifier; a
// plain expression like `arr[i] = 1;` or `foo();` never matches that
// shape.
func (p *Parser) looksLikeDeclStart() bool {
	switch p.current().Kind {
	case lexer.TokConst, lexer.TokStatic, lexer.TokUnsigned:
		return true
	}
	if isTypeKeyword(p.current().Kind) {
		return true
	}
	if p.current().Kind != lexer.TokIdent {
		return false
	}
	i := 1
	for p.peek(i).Kind == lexer.TokLBracket {
		depth := 1
		i++
		for depth > 0 {
			switch p.peek(i).Kind {
			case lexer.TokLBracket:
				depth++
			case lexer.TokRBracket:
				depth--
			case lexer.TokEOF:
				return false
			}
			i++
		}
	}
	return p.peek(i).Kind == lexer.TokIdent
}

// ----------------------------------------------------------------------------
// Top-level declarations
// ----------------------------------------------------------------------------

func (p *Parser) parseTopLevelDecl() ast.Decl {
	switch p.current().Kind {
	case lexer.TokTypedef:
		return p.parseTypedefOrStructTypedef()
	case lexer.TokStruct:
		d := p.parseStructDecl()
		p.match(lexer.TokSemicolon)
		return d
	case lexer.TokUnion:
		d := p.parseUnionTypedefDecl()
		return d
	case lexer.TokEnum:
		d := p.parseEnumDecl()
		p.match(lexer.TokSemicolon)
		return d
	case lexer.TokInterface:
		d := p.parseInterfaceDecl()
		p.match(lexer.TokSemicolon)
		return d
	case lexer.TokImpl:
		return p.parseImplDecl()
	}

	if !p.looksLikeDeclStart() {
		p.errorf("expected a top-level declaration, got %s", p.current().Kind)
		p.advance()
		return nil
	}

	isConst := p.match(lexer.TokConst)
	isStatic := p.match(lexer.TokStatic)
	start := p.pos32()
	typ := p.parseType()
	name := p.expect(lexer.TokIdent).StringValue

	if p.current().Kind == lexer.TokLParen {
		return p.parseFuncDeclRest(start, typ, name)
	}
	if typ.IsArray() {
		return p.parseArrayDeclRest(start, typ, name, isConst, isStatic)
	}
	return p.parseVarOrMultiDeclRest(start, typ, name, isConst, isStatic)
}

func (p *Parser) parseTypedefOrStructTypedef() ast.Decl {
	start := p.pos32()
	p.expect(lexer.TokTypedef)
	if p.current().Kind == lexer.TokStruct {
		sd := p.parseStructDecl()
		alias := p.expect(lexer.TokIdent).StringValue
		p.match(lexer.TokSemicolon)
		return &ast.StructTypedefDecl{Position: ast.Position{Off: start}, Struct: sd, Alias: alias}
	}
	underlying := p.parseType()
	alias := p.expect(lexer.TokIdent).StringValue
	p.match(lexer.TokSemicolon)
	return &ast.TypedefDecl{Position: ast.Position{Off: start}, Alias: alias, Underlying: underlying}
}

func (p *Parser) parseStructDecl() *ast.StructDecl {
	start := p.pos32()
	p.expect(lexer.TokStruct)
	name := p.expect(lexer.TokIdent).StringValue
	p.expect(lexer.TokLBrace)

	sd := &ast.StructDecl{Position: ast.Position{Off: start}, Name: name}
	private := false
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		if p.current().Kind == lexer.TokPrivate && p.peek(1).Kind == lexer.TokColon {
			p.advance()
			p.advance()
			private = true
			continue
		}
		if p.current().Kind == lexer.TokPublic && p.peek(1).Kind == lexer.TokColon {
			p.advance()
			p.advance()
			private = false
			continue
		}
		mstart := p.pos32()
		isConst := p.match(lexer.TokConst)
		mtyp := p.parseType()
		mname := p.expect(lexer.TokIdent).StringValue
		p.expect(lexer.TokSemicolon)
		sd.Members = append(sd.Members, ast.StructMember{
			Position:  ast.Position{Off: mstart},
			Name:      mname,
			Type:      mtyp,
			IsConst:   isConst,
			IsPrivate: private,
		})
	}
	p.expect(lexer.TokRBrace)
	return sd
}

func (p *Parser) parseUnionTypedefDecl() ast.Decl {
	start := p.pos32()
	p.expect(lexer.TokUnion)
	alias := p.expect(lexer.TokIdent).StringValue
	p.expect(lexer.TokEq)
	ud := &ast.UnionTypedefDecl{Position: ast.Position{Off: start}, Alias: alias}
	ud.Members = append(ud.Members, p.parsePrimaryExpr())
	for p.match(lexer.TokPipe) {
		ud.Members = append(ud.Members, p.parsePrimaryExpr())
	}
	p.expect(lexer.TokSemicolon)
	return ud
}

func (p *Parser) parseEnumDecl() *ast.EnumDecl {
	start := p.pos32()
	p.expect(lexer.TokEnum)
	name := p.expect(lexer.TokIdent).StringValue
	p.expect(lexer.TokLBrace)
	ed := &ast.EnumDecl{Position: ast.Position{Off: start}, Name: name}
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		mname := p.expect(lexer.TokIdent).StringValue
		var val ast.Expr
		if p.match(lexer.TokEq) {
			val = p.parseExpression()
		}
		ed.Members = append(ed.Members, ast.EnumMember{Name: mname, Value: val})
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace)
	return ed
}

func (p *Parser) parseInterfaceDecl() *ast.InterfaceDecl {
	start := p.pos32()
	p.expect(lexer.TokInterface)
	name := p.expect(lexer.TokIdent).StringValue
	p.expect(lexer.TokLBrace)
	id := &ast.InterfaceDecl{Position: ast.Position{Off: start}, Name: name}
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		mstart := p.pos32()
		ret := p.parseType()
		mname := p.expect(lexer.TokIdent).StringValue
		params := p.parseParamList()
		p.expect(lexer.TokSemicolon)
		id.Methods = append(id.Methods, ast.InterfaceMethodSig{
			Position: ast.Position{Off: mstart}, Name: mname, ReturnType: ret, Params: params,
		})
	}
	p.expect(lexer.TokRBrace)
	return id
}

func (p *Parser) parseImplDecl() ast.Decl {
	start := p.pos32()
	p.expect(lexer.TokImpl)
	iface := p.expect(lexer.TokIdent).StringValue
	p.expect(lexer.TokFor)
	structName := p.expect(lexer.TokIdent).StringValue
	p.expect(lexer.TokLBrace)
	impl := &ast.ImplDecl{Position: ast.Position{Off: start}, InterfaceName: iface, StructName: structName}
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		mstart := p.pos32()
		ret := p.parseType()
		mname := p.expect(lexer.TokIdent).StringValue
		fn := p.parseFuncDeclRest(mstart, ret, mname).(*ast.FuncDecl)
		impl.Methods = append(impl.Methods, fn)
	}
	p.expect(lexer.TokRBrace)
	p.match(lexer.TokSemicolon)
	return impl
}

func (p *Parser) parseParamList() []ast.ParamDecl {
	p.expect(lexer.TokLParen)
	var params []ast.ParamDecl
	for p.current().Kind != lexer.TokRParen && p.current().Kind != lexer.TokEOF {
		pstart := p.pos32()
		typ := p.parseType()
		name := ""
		if p.current().Kind == lexer.TokIdent {
			name = p.advance().StringValue
		}
		params = append(params, ast.ParamDecl{
			Position: ast.Position{Off: pstart}, Name: name, Type: typ, IsUnsigned: typ.IsUnsigned,
		})
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRParen)
	return params
}

func (p *Parser) parseFuncDeclRest(start ast.Pos, ret ast.TypeRef, name string) ast.Decl {
	params := p.parseParamList()
	body := p.parseCompoundStmt()
	return &ast.FuncDecl{
		Position: ast.Position{Off: start}, Name: name, Params: params, ReturnType: ret, Body: body,
	}
}

func (p *Parser) parseArrayDeclRest(start ast.Pos, typ ast.TypeRef, name string, isConst, isStatic bool) ast.Decl {
	var lit *ast.ArrayLiteral
	if p.match(lexer.TokEq) {
		lit = p.parseArrayLiteral()
	}
	p.expect(lexer.TokSemicolon)
	return &ast.ArrayDecl{
		Position: ast.Position{Off: start}, Name: name, ElemType: typ, Literal: lit,
		IsConst: isConst, IsStatic: isStatic,
	}
}

func (p *Parser) parseVarOrMultiDeclRest(start ast.Pos, typ ast.TypeRef, name string, isConst, isStatic bool) ast.Decl {
	var init ast.Expr
	if p.match(lexer.TokEq) {
		init = p.parseExpression()
	}
	if p.current().Kind != lexer.TokComma {
		p.expect(lexer.TokSemicolon)
		return &ast.VarDecl{
			Position: ast.Position{Off: start}, Name: name, Type: typ, Init: init,
			IsConst: isConst, IsStatic: isStatic,
		}
	}

	md := &ast.MultipleVarDecl{Position: ast.Position{Off: start}, Type: typ}
	md.Names = append(md.Names, name)
	md.Inits = append(md.Inits, init)
	for p.match(lexer.TokComma) {
		n := p.expect(lexer.TokIdent).StringValue
		var in ast.Expr
		if p.match(lexer.TokEq) {
			in = p.parseExpression()
		}
		md.Names = append(md.Names, n)
		md.Inits = append(md.Inits, in)
	}
	// MultipleVarDecl has no const/static flag of its own; `const int a, b;`
	// is rare enough in practice that we don't carry it through here.
	p.expect(lexer.TokSemicolon)
	return md
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *Parser) parseCompoundStmt() *ast.CompoundStmt {
	start := p.pos32()
	p.expect(lexer.TokLBrace)
	cs := &ast.CompoundStmt{Position: ast.Position{Off: start}}
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		before := p.pos
		s := p.parseStatement()
		if s != nil {
			cs.Stmts = append(cs.Stmts, s)
		}
		if p.pos == before {
			p.advance()
		}
	}
	p.expect(lexer.TokRBrace)
	return cs
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.current().Kind {
	case lexer.TokLBrace:
		return p.parseCompoundStmt()
	case lexer.TokIf:
		return p.parseIfStmt()
	case lexer.TokWhile:
		return p.parseWhileStmt()
	case lexer.TokFor:
		return p.parseForStmt()
	case lexer.TokReturn:
		return p.parseReturnStmt()
	case lexer.TokBreak:
		return p.parseBreakStmt()
	case lexer.TokContinue:
		return p.parseContinueStmt()
	case lexer.TokAssert:
		return p.parseAssertStmt()
	case lexer.TokPrint, lexer.TokPrintln, lexer.TokPrintf, lexer.TokPrintlnf:
		return p.parsePrintStmt()
	}

	if p.looksLikeDeclStart() {
		d := p.parseLocalDecl()
		return &ast.DeclStmt{Position: ast.Position{Off: d.Position()}, D: d}
	}
	return p.parseExprOrAssignStmt()
}

func (p *Parser) parseLocalDecl() ast.Decl {
	isConst := p.match(lexer.TokConst)
	isStatic := p.match(lexer.TokStatic)
	start := p.pos32()
	typ := p.parseType()
	name := p.expect(lexer.TokIdent).StringValue
	if typ.IsArray() {
		return p.parseArrayDeclRest(start, typ, name, isConst, isStatic)
	}
	return p.parseVarOrMultiDeclRest(start, typ, name, isConst, isStatic)
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.pos32()
	p.expect(lexer.TokIf)
	p.expect(lexer.TokLParen)
	cond := p.parseExpression()
	p.expect(lexer.TokRParen)
	then := p.parseStatement()
	var els ast.Stmt
	if p.match(lexer.TokElse) {
		els = p.parseStatement()
	}
	return &ast.IfStmt{Position: ast.Position{Off: start}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.pos32()
	p.expect(lexer.TokWhile)
	p.expect(lexer.TokLParen)
	cond := p.parseExpression()
	p.expect(lexer.TokRParen)
	body := p.parseStatement()
	return &ast.WhileStmt{Position: ast.Position{Off: start}, Cond: cond, Body: body}
}

func (p *Parser) parseForStmt() ast.Stmt {
	start := p.pos32()
	p.expect(lexer.TokFor)
	p.expect(lexer.TokLParen)
	var init ast.Stmt
	if p.current().Kind != lexer.TokSemicolon {
		if p.looksLikeDeclStart() {
			d := p.parseLocalDeclNoSemi()
			init = &ast.DeclStmt{Position: ast.Position{Off: d.Position()}, D: d}
		} else {
			init = p.parseAssignStmtNoSemi()
		}
	}
	p.expect(lexer.TokSemicolon)
	var cond ast.Expr
	if p.current().Kind != lexer.TokSemicolon {
		cond = p.parseExpression()
	}
	p.expect(lexer.TokSemicolon)
	var update ast.Stmt
	if p.current().Kind != lexer.TokRParen {
		update = p.parseAssignOrExprStmtNoSemi()
	}
	p.expect(lexer.TokRParen)
	body := p.parseStatement()
	return &ast.ForStmt{Position: ast.Position{Off: start}, Init: init, Cond: cond, Update: update, Body: body}
}

// parseLocalDeclNoSemi parses `T name = expr` without a trailing `;`,
// used in a for-loop's init clause.
func (p *Parser) parseLocalDeclNoSemi() ast.Decl {
	isConst := p.match(lexer.TokConst)
	start := p.pos32()
	typ := p.parseType()
	name := p.expect(lexer.TokIdent).StringValue
	var init ast.Expr
	if p.match(lexer.TokEq) {
		init = p.parseExpression()
	}
	return &ast.VarDecl{Position: ast.Position{Off: start}, Name: name, Type: typ, Init: init, IsConst: isConst}
}

func (p *Parser) parseAssignStmtNoSemi() ast.Stmt {
	start := p.pos32()
	target := p.parseExpression()
	op, isAssign := p.matchAssignOp()
	if !isAssign {
		return &exprStmt{Position: ast.Position{Off: start}, Expr: target}
	}
	value := p.parseExpression()
	return &ast.AssignStmt{Position: ast.Position{Off: start}, Target: target, Op: op, Value: value}
}

func (p *Parser) parseAssignOrExprStmtNoSemi() ast.Stmt {
	return p.parseAssignStmtNoSemi()
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.pos32()
	p.expect(lexer.TokReturn)
	var val ast.Expr
	if p.current().Kind != lexer.TokSemicolon {
		val = p.parseExpression()
	}
	p.expect(lexer.TokSemicolon)
	return &ast.ReturnStmt{Position: ast.Position{Off: start}, Value: val}
}

func (p *Parser) parseBreakStmt() ast.Stmt {
	start := p.pos32()
	p.expect(lexer.TokBreak)
	var val ast.Expr
	if p.current().Kind != lexer.TokSemicolon {
		val = p.parseExpression()
	}
	p.expect(lexer.TokSemicolon)
	return &ast.BreakStmt{Position: ast.Position{Off: start}, Value: val}
}

func (p *Parser) parseContinueStmt() ast.Stmt {
	start := p.pos32()
	p.expect(lexer.TokContinue)
	var val ast.Expr
	if p.current().Kind != lexer.TokSemicolon {
		val = p.parseExpression()
	}
	p.expect(lexer.TokSemicolon)
	return &ast.ContinueStmt{Position: ast.Position{Off: start}, Value: val}
}

func (p *Parser) parseAssertStmt() ast.Stmt {
	start := p.pos32()
	p.expect(lexer.TokAssert)
	cond := p.parseExpression()
	p.expect(lexer.TokSemicolon)
	return &ast.AssertStmt{Position: ast.Position{Off: start}, Cond: cond}
}

func (p *Parser) parsePrintStmt() ast.Stmt {
	start := p.pos32()
	kind := map[lexer.TokenKind]ast.PrintKind{
		lexer.TokPrint: ast.PrintPrint, lexer.TokPrintln: ast.PrintPrintln,
		lexer.TokPrintf: ast.PrintPrintf, lexer.TokPrintlnf: ast.PrintPrintlnf,
	}[p.current().Kind]
	p.advance()
	p.expect(lexer.TokLParen)
	ps := &ast.PrintStmt{Position: ast.Position{Off: start}, Kind: kind}
	if p.current().Kind == lexer.TokRParen {
		if kind == ast.PrintPrintln {
			ps.Kind = ast.PrintPrintlnEmpty
		}
		p.advance()
		p.expect(lexer.TokSemicolon)
		return ps
	}
	if kind == ast.PrintPrintf || kind == ast.PrintPrintlnf {
		ps.Format = p.parseExpression()
		for p.match(lexer.TokComma) {
			ps.Args = append(ps.Args, p.parseExpression())
		}
	} else {
		ps.Args = append(ps.Args, p.parseExpression())
		for p.match(lexer.TokComma) {
			ps.Args = append(ps.Args, p.parseExpression())
		}
	}
	p.expect(lexer.TokRParen)
	p.expect(lexer.TokSemicolon)
	return ps
}

// exprStmt wraps a bare expression statement (e.g. a function call for
// its side effects, or a pre/post increment). It is intentionally
// unexported: the executor only ever needs to evaluate its Expr.
type exprStmt struct {
	ast.Position
	Expr ast.Expr
}

func (*exprStmt) isStmt() {}

// ExprStmt reports the expression of a bare expression statement, for
// packages outside parser (the executor) that need to recognize it.
func ExprStmt(s ast.Stmt) (ast.Expr, bool) {
	if e, ok := s.(*exprStmt); ok {
		return e.Expr, true
	}
	return nil, false
}

func (p *Parser) matchAssignOp() (ast.AssignOp, bool) {
	switch p.current().Kind {
	case lexer.TokEq:
		p.advance()
		return ast.AssignSet, true
	case lexer.TokPlusEq:
		p.advance()
		return ast.AssignAdd, true
	case lexer.TokMinusEq:
		p.advance()
		return ast.AssignSub, true
	case lexer.TokStarEq:
		p.advance()
		return ast.AssignMul, true
	case lexer.TokSlashEq:
		p.advance()
		return ast.AssignDiv, true
	case lexer.TokPercentEq:
		p.advance()
		return ast.AssignMod, true
	}
	return 0, false
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	s := p.parseAssignStmtNoSemi()
	p.expect(lexer.TokSemicolon)
	return s
}

// ----------------------------------------------------------------------------
// Expressions (precedence climbing)
// ----------------------------------------------------------------------------

func (p *Parser) parseExpression() ast.Expr { return p.parseTernary() }

func (p *Parser) parseTernary() ast.Expr {
	start := p.pos32()
	cond := p.parseLogicalOr()
	if p.match(lexer.TokQuestion) {
		then := p.parseExpression()
		p.expect(lexer.TokColon)
		els := p.parseTernary()
		return &ast.TernaryExpr{Position: ast.Position{Off: start}, Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) binaryLevel(next func() ast.Expr, ops map[lexer.TokenKind]ast.BinaryOp) ast.Expr {
	start := p.pos32()
	left := next()
	for {
		op, ok := ops[p.current().Kind]
		if !ok {
			return left
		}
		p.advance()
		right := next()
		left = &ast.BinaryExpr{Position: ast.Position{Off: start}, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseLogicalOr() ast.Expr {
	return p.binaryLevel(p.parseLogicalAnd, map[lexer.TokenKind]ast.BinaryOp{lexer.TokPipePipe: ast.OpOr})
}
func (p *Parser) parseLogicalAnd() ast.Expr {
	return p.binaryLevel(p.parseBitOr, map[lexer.TokenKind]ast.BinaryOp{lexer.TokAmpAmp: ast.OpAnd})
}
func (p *Parser) parseBitOr() ast.Expr {
	return p.binaryLevel(p.parseBitXor, map[lexer.TokenKind]ast.BinaryOp{lexer.TokPipe: ast.OpBitOr})
}
func (p *Parser) parseBitXor() ast.Expr {
	return p.binaryLevel(p.parseBitAnd, map[lexer.TokenKind]ast.BinaryOp{lexer.TokCaret: ast.OpBitXor})
}
func (p *Parser) parseBitAnd() ast.Expr {
	return p.binaryLevel(p.parseEquality, map[lexer.TokenKind]ast.BinaryOp{lexer.TokAmp: ast.OpBitAnd})
}
func (p *Parser) parseEquality() ast.Expr {
	return p.binaryLevel(p.parseRelational, map[lexer.TokenKind]ast.BinaryOp{
		lexer.TokEqEq: ast.OpEq, lexer.TokBangEq: ast.OpNe,
	})
}
func (p *Parser) parseRelational() ast.Expr {
	return p.binaryLevel(p.parseShift, map[lexer.TokenKind]ast.BinaryOp{
		lexer.TokLt: ast.OpLt, lexer.TokLtEq: ast.OpLe, lexer.TokGt: ast.OpGt, lexer.TokGtEq: ast.OpGe,
	})
}
func (p *Parser) parseShift() ast.Expr {
	return p.binaryLevel(p.parseAdditive, map[lexer.TokenKind]ast.BinaryOp{
		lexer.TokLtLt: ast.OpShl, lexer.TokGtGt: ast.OpShr,
	})
}
func (p *Parser) parseAdditive() ast.Expr {
	return p.binaryLevel(p.parseMultiplicative, map[lexer.TokenKind]ast.BinaryOp{
		lexer.TokPlus: ast.OpAdd, lexer.TokMinus: ast.OpSub,
	})
}
func (p *Parser) parseMultiplicative() ast.Expr {
	return p.binaryLevel(p.parseUnary, map[lexer.TokenKind]ast.BinaryOp{
		lexer.TokStar: ast.OpMul, lexer.TokSlash: ast.OpDiv, lexer.TokPercent: ast.OpMod,
	})
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.pos32()
	switch p.current().Kind {
	case lexer.TokMinus:
		p.advance()
		return &ast.UnaryExpr{Position: ast.Position{Off: start}, Op: ast.OpNeg, Operand: p.parseUnary()}
	case lexer.TokBang:
		p.advance()
		return &ast.UnaryExpr{Position: ast.Position{Off: start}, Op: ast.OpNot, Operand: p.parseUnary()}
	case lexer.TokTilde:
		p.advance()
		return &ast.UnaryExpr{Position: ast.Position{Off: start}, Op: ast.OpBitNot, Operand: p.parseUnary()}
	case lexer.TokPlusPlus:
		p.advance()
		return &ast.PreIncDecExpr{Position: ast.Position{Off: start}, Op: ast.IncOp, Target: p.parseUnary()}
	case lexer.TokMinusMinus:
		p.advance()
		return &ast.PreIncDecExpr{Position: ast.Position{Off: start}, Op: ast.DecOp, Target: p.parseUnary()}
	case lexer.TokLParen:
		if p.looksLikeCastStart() {
			p.advance()
			typ := p.parseType()
			p.expect(lexer.TokRParen)
			return &ast.CastExpr{Position: ast.Position{Off: start}, Type: typ, Operand: p.parseUnary()}
		}
	}
	return p.parsePostfix()
}

func (p *Parser) looksLikeCastStart() bool {
	// current token is '(' ; a cast is `(` <type-keyword> `)`.
	return isTypeKeyword(p.peek(1).Kind) || p.peek(1).Kind == lexer.TokUnsigned
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		start := p.pos32()
		switch p.current().Kind {
		case lexer.TokLBracket:
			p.advance()
			idx := p.parseExpression()
			p.expect(lexer.TokRBracket)
			expr = &ast.ArrayRefExpr{Position: ast.Position{Off: start}, Array: expr, Index: idx}
		case lexer.TokDot:
			p.advance()
			member := p.expect(lexer.TokIdent).StringValue
			if p.current().Kind == lexer.TokLParen {
				args := p.parseArgList()
				expr = &ast.CallExpr{
					Position: ast.Position{Off: start},
					Callee:   &ast.MemberAccessExpr{Position: ast.Position{Off: start}, Target: expr, Member: member},
					Args:     args,
				}
			} else {
				expr = &ast.MemberAccessExpr{Position: ast.Position{Off: start}, Target: expr, Member: member}
			}
		case lexer.TokArrow:
			p.advance()
			member := p.expect(lexer.TokIdent).StringValue
			expr = &ast.ArrowAccessExpr{Position: ast.Position{Off: start}, Target: expr, Member: member}
		case lexer.TokLParen:
			args := p.parseArgList()
			expr = &ast.CallExpr{Position: ast.Position{Off: start}, Callee: expr, Args: args}
		case lexer.TokPlusPlus:
			p.advance()
			expr = &ast.PostIncDecExpr{Position: ast.Position{Off: start}, Op: ast.IncOp, Target: expr}
		case lexer.TokMinusMinus:
			p.advance()
			expr = &ast.PostIncDecExpr{Position: ast.Position{Off: start}, Op: ast.DecOp, Target: expr}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgList() []ast.Expr {
	p.expect(lexer.TokLParen)
	var args []ast.Expr
	for p.current().Kind != lexer.TokRParen && p.current().Kind != lexer.TokEOF {
		args = append(args, p.parseExpression())
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRParen)
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.pos32()
	tok := p.current()
	switch tok.Kind {
	case lexer.TokIntLiteral:
		p.advance()
		return &ast.NumberLit{Position: ast.Position{Off: start}, IntValue: tok.IntValue, Suffix: tok.Suffix}
	case lexer.TokFloatLiteral:
		p.advance()
		return &ast.NumberLit{Position: ast.Position{Off: start}, IsFloat: true, FloatValue: tok.FloatValue, Suffix: tok.Suffix}
	case lexer.TokStringLiteral:
		p.advance()
		return &ast.StringLit{Position: ast.Position{Off: start}, Value: tok.StringValue}
	case lexer.TokTrue:
		p.advance()
		return &ast.NumberLit{Position: ast.Position{Off: start}, IntValue: 1, Suffix: "bool"}
	case lexer.TokFalse:
		p.advance()
		return &ast.NumberLit{Position: ast.Position{Off: start}, IntValue: 0, Suffix: "bool"}
	case lexer.TokSelf:
		p.advance()
		return &ast.Ident{Position: ast.Position{Off: start}, Name: "self"}
	case lexer.TokIdent:
		p.advance()
		if p.match(lexer.TokColonColon) {
			member := p.expect(lexer.TokIdent).StringValue
			return &ast.EnumRefExpr{Position: ast.Position{Off: start}, Enum: tok.StringValue, Member: member}
		}
		return &ast.Ident{Position: ast.Position{Off: start}, Name: tok.StringValue}
	case lexer.TokLParen:
		p.advance()
		e := p.parseExpression()
		p.expect(lexer.TokRParen)
		return e
	case lexer.TokLBrace:
		return p.parseStructLiteral()
	case lexer.TokLBracket:
		return p.parseArrayLiteral()
	}
	p.errorf("unexpected token %s in expression", tok.Kind)
	p.advance()
	return &ast.NumberLit{Position: ast.Position{Off: start}}
}

func (p *Parser) parseStructLiteral() ast.Expr {
	start := p.pos32()
	p.expect(lexer.TokLBrace)
	sl := &ast.StructLiteralExpr{Position: ast.Position{Off: start}}
	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		if p.current().Kind == lexer.TokIdent && p.peek(1).Kind == lexer.TokColon {
			name := p.advance().StringValue
			p.advance() // ':'
			val := p.parseExpression()
			sl.Fields = append(sl.Fields, ast.StructLiteralField{Name: name, Value: val})
		} else {
			val := p.parseExpression()
			sl.Fields = append(sl.Fields, ast.StructLiteralField{Value: val})
		}
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBrace)
	return sl
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLiteral {
	start := p.pos32()
	p.expect(lexer.TokLBracket)
	al := &ast.ArrayLiteral{Position: ast.Position{Off: start}}
	for p.current().Kind != lexer.TokRBracket && p.current().Kind != lexer.TokEOF {
		if p.current().Kind == lexer.TokLBracket {
			al.Elements = append(al.Elements, p.parseArrayLiteral())
		} else {
			al.Elements = append(al.Elements, p.parseExpression())
		}
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRBracket)
	return al
}

func (p *Parser) parsePrimaryExpr() ast.Expr { return p.parsePrimary() }
