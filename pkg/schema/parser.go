package schema

import (
	"fmt"
	"regexp"
	"strconv"
)

// Parser parses .wfs schema source into a *File.
type Parser struct {
	lexer    *Lexer
	current  Token
	previous Token
	errors   []ParseError
	comments []*Comment
}

// ParseError represents a parsing error.
type ParseError struct {
	Position Position
	Message  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

// NewParser creates a new parser for the given input.
func NewParser(filename, input string) *Parser {
	p := &Parser{
		lexer: NewLexer(filename, input),
	}
	p.advance() // Load first token
	return p
}

// ParseFile parses a named source string into a *File.
func ParseFile(filename, input string) (*File, []ParseError) {
	return NewParser(filename, input).Parse()
}

// Parse parses the entire schema file.
func (p *Parser) Parse() (*File, []ParseError) {
	file := &File{Position: p.current.Position}

	p.collectComments()

	if !p.consume(TokenProtocol, "expected 'protocol' declaration") {
		p.synchronize()
	} else {
		if !p.check(TokenIdent) {
			p.errors = append(p.errors, *p.error("expected protocol name"))
		} else {
			file.Protocol = p.current.Value
			p.advance()
		}
		p.consume(TokenSemicolon, "expected ';' after protocol name")
	}

	for p.check(TokenImport) {
		if imp, err := p.parseImport(); err != nil {
			p.errors = append(p.errors, *err)
			p.synchronize()
		} else {
			file.Imports = append(file.Imports, imp)
		}
	}

	for !p.check(TokenEOF) {
		p.collectComments()

		switch {
		case p.check(TokenOption):
			if opt, err := p.parseOption(); err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
			} else {
				file.Options = append(file.Options, opt)
			}
		case p.check(TokenStruct):
			if s, err := p.parseStruct(); err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
			} else {
				file.Structs = append(file.Structs, s)
			}
		case p.check(TokenEnum):
			if e, err := p.parseEnum(); err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
			} else {
				file.Enums = append(file.Enums, e)
			}
		case p.check(TokenVariant):
			if v, err := p.parseVariant(); err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
			} else {
				file.Variants = append(file.Variants, v)
			}
		case p.check(TokenHashvariant):
			if h, err := p.parseHashVariant(); err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
			} else {
				file.HashVariants = append(file.HashVariants, h)
			}
		case p.check(TokenConst):
			if c, err := p.parseConst(); err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
			} else {
				file.Constants = append(file.Constants, c)
			}
		case p.check(TokenConversion):
			if c, err := p.parseConversion(); err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
			} else {
				file.Conversions = append(file.Conversions, c)
			}
		case p.check(TokenFromPrior):
			if fp, err := p.parseFromPrior(); err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
			} else {
				file.FromPrior = fp
			}
		case p.check(TokenComment), p.check(TokenDocComment):
			p.advance()
		case p.check(TokenEOF):
		default:
			p.errors = append(p.errors, ParseError{
				Position: p.current.Position,
				Message:  fmt.Sprintf("unexpected token: %s", p.current.Type),
			})
			p.advance()
		}
	}

	file.Comments = p.comments
	return file, p.errors
}

// parseImport parses: 'import' string ('as' ident)? ';'
func (p *Parser) parseImport() (*Import, *ParseError) {
	start := p.current.Position
	p.advance() // 'import'

	if !p.check(TokenString) {
		return nil, p.error("expected import path string")
	}
	path := p.current.Value
	p.advance()

	alias := ""
	if p.check(TokenAs) {
		p.advance()
		if !p.check(TokenIdent) {
			return nil, p.error("expected alias name after 'as'")
		}
		alias = p.current.Value
		p.advance()
	}

	end := p.current.Position
	p.consume(TokenSemicolon, "expected ';' after import")
	return &Import{Position: start, EndPos: end, Path: path, Alias: alias}, nil
}

// parseOption parses: 'option' ident '=' value ';'
func (p *Parser) parseOption() (*Option, *ParseError) {
	start := p.current.Position
	p.advance() // 'option'

	if !p.check(TokenIdent) {
		return nil, p.error("expected option name")
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenEquals, "expected '=' in option") {
		return nil, p.error("expected '=' in option")
	}

	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	end := p.current.Position
	p.consume(TokenSemicolon, "expected ';' after option")
	return &Option{Position: start, EndPos: end, Name: name, Value: val}, nil
}

func (p *Parser) parseValue() (Value, *ParseError) {
	start := p.current.Position
	switch p.current.Type {
	case TokenString:
		v := p.current.Value
		p.advance()
		return &StringValue{Position: start, EndPos: p.current.Position, Value: v}, nil
	case TokenInt:
		n, convErr := strconv.ParseInt(p.current.Value, 10, 64)
		if convErr != nil {
			return nil, p.error("invalid integer literal %q", p.current.Value)
		}
		p.advance()
		return &IntValue{Position: start, EndPos: p.current.Position, Value: n}, nil
	case TokenTrue:
		p.advance()
		return &BoolValue{Position: start, EndPos: p.current.Position, Value: true}, nil
	case TokenFalse:
		p.advance()
		return &BoolValue{Position: start, EndPos: p.current.Position, Value: false}, nil
	default:
		return nil, p.error("expected a value, got %s", p.current.Type)
	}
}

// parseStruct parses: 'struct' ident '{' field* '}'
func (p *Parser) parseStruct() (*StructDecl, *ParseError) {
	start := p.current.Position
	comments := p.takeDocComments()
	p.advance() // 'struct'

	if !p.check(TokenIdent) {
		return nil, p.error("expected struct name")
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenLBrace, "expected '{' after struct name") {
		return nil, p.error("expected '{' after struct name")
	}

	var fields []*FieldDecl
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	end := p.current.Position
	p.consume(TokenRBrace, "expected '}' to close struct")
	return &StructDecl{Position: start, EndPos: end, Name: name, Fields: fields, Comments: comments}, nil
}

// parseField parses: ident ':' typeExpr ';'
func (p *Parser) parseField() (*FieldDecl, *ParseError) {
	start := p.current.Position
	comments := p.takeDocComments()

	if !p.check(TokenIdent) {
		return nil, p.error("expected field name")
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenColon, "expected ':' after field name") {
		return nil, p.error("expected ':' after field name")
	}

	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}

	end := p.current.Position
	p.consume(TokenSemicolon, "expected ';' after field")
	return &FieldDecl{Position: start, EndPos: end, Name: name, Type: typ, Comments: comments}, nil
}

var intTypeRE = regexp.MustCompile(`^[iu](8|16|32|64)(le|be)?$`)
var floatTypeRE = regexp.MustCompile(`^f(32|64)(le|be)?$`)

// parsePrimitive recognizes a bare identifier as a built-in int/float type
// name, e.g. "u8", "i32le", "f64be". Returns ok=false for anything else
// (including type-constructor names and root-type references).
func parsePrimitive(raw string, pos, end Position) (TypeExpr, bool) {
	if intTypeRE.MatchString(raw) {
		signed := raw[0] == 'i'
		width, endian := parseWidthEndian(raw[1:])
		return &IntTypeExpr{Position: pos, EndPos: end, Width: width, Signed: signed, Endianness: endian, Raw: raw}, true
	}
	if floatTypeRE.MatchString(raw) {
		width, endian := parseWidthEndian(raw[1:])
		return &FloatTypeExpr{Position: pos, EndPos: end, Width: width, Endianness: endian, Raw: raw}, true
	}
	return nil, false
}

// parseWidthEndian splits "32le" into (4, "le"), defaulting to "le" when no
// suffix is present.
func parseWidthEndian(rest string) (int, string) {
	endian := "le"
	digits := rest
	if len(rest) > 2 {
		suffix := rest[len(rest)-2:]
		if suffix == "le" || suffix == "be" {
			endian = suffix
			digits = rest[:len(rest)-2]
		}
	}
	bits, _ := strconv.Atoi(digits)
	return bits / 8, endian
}

// parseTypeExpr parses any field/conversion type expression.
func (p *Parser) parseTypeExpr() (TypeExpr, *ParseError) {
	start := p.current.Position

	if !p.check(TokenIdent) {
		return nil, p.error("expected a type, got %s", p.current.Type)
	}
	name := p.current.Value

	switch name {
	case "vector":
		return p.parseVectorType(start)
	case "list":
		return p.parseListType(start)
	case "seq":
		return p.parseUnboundSeqType(start)
	case "array":
		return p.parseArrayType(start)
	case "detached":
		return p.parseDetachedType(start)
	case "virtual":
		return p.parseVirtualType(start)
	}

	end := p.current.Position
	p.advance()
	if prim, ok := parsePrimitive(name, start, end); ok {
		return prim, nil
	}

	segments := []string{name}
	for p.check(TokenDot) {
		p.advance()
		if !p.check(TokenIdent) {
			return nil, p.error("expected identifier after '.'")
		}
		segments = append(segments, p.current.Value)
		end = p.current.Position
		p.advance()
	}
	return &RefTypeExpr{Position: start, EndPos: end, Segments: segments}, nil
}

func (p *Parser) parseRefType() (*RefTypeExpr, *ParseError) {
	start := p.current.Position
	if !p.check(TokenIdent) {
		return nil, p.error("expected a type name")
	}
	segments := []string{p.current.Value}
	end := p.current.Position
	p.advance()
	for p.check(TokenDot) {
		p.advance()
		if !p.check(TokenIdent) {
			return nil, p.error("expected identifier after '.'")
		}
		segments = append(segments, p.current.Value)
		end = p.current.Position
		p.advance()
	}
	return &RefTypeExpr{Position: start, EndPos: end, Segments: segments}, nil
}

func (p *Parser) parseVectorType(start Position) (TypeExpr, *ParseError) {
	p.advance() // 'vector'
	if !p.consume(TokenLAngle, "expected '<' after 'vector'") {
		return nil, p.error("expected '<' after 'vector'")
	}
	inner, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenComma, "expected ',' in vector<...>") {
		return nil, p.error("expected ',' in vector<...>")
	}
	if !p.consume(TokenLen, "expected 'len' in vector<...>") {
		return nil, p.error("expected 'len' in vector<...>")
	}
	if !p.consume(TokenColon, "expected ':' after 'len'") {
		return nil, p.error("expected ':' after 'len'")
	}
	if !p.check(TokenIdent) {
		return nil, p.error("expected sibling field name after 'len:'")
	}
	lenField := p.current.Value
	p.advance()
	end := p.current.Position
	if !p.consume(TokenRAngle, "expected '>' to close vector<...>") {
		return nil, p.error("expected '>' to close vector<...>")
	}
	return &VectorTypeExpr{Position: start, EndPos: end, Inner: inner, LenField: lenField}, nil
}

func (p *Parser) parseListType(start Position) (TypeExpr, *ParseError) {
	p.advance() // 'list'
	if !p.consume(TokenLAngle, "expected '<' after 'list'") {
		return nil, p.error("expected '<' after 'list'")
	}
	inner, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenComma, "expected ',' in list<...>") {
		return nil, p.error("expected ',' in list<...>")
	}
	if !p.consume(TokenLen, "expected 'len' in list<...>") {
		return nil, p.error("expected 'len' in list<...>")
	}
	if !p.consume(TokenColon, "expected ':' after 'len'") {
		return nil, p.error("expected ':' after 'len'")
	}

	decl := &ListTypeExpr{Position: start, Inner: inner}
	if p.check(TokenInt) {
		n, convErr := strconv.Atoi(p.current.Value)
		if convErr != nil {
			return nil, p.error("invalid list length %q", p.current.Value)
		}
		decl.LenFixed = n
		decl.HasFixed = true
		p.advance()
	} else if p.check(TokenIdent) {
		decl.LenField = p.current.Value
		p.advance()
	} else {
		return nil, p.error("expected a field name or integer length in list<...>")
	}

	decl.EndPos = p.current.Position
	if !p.consume(TokenRAngle, "expected '>' to close list<...>") {
		return nil, p.error("expected '>' to close list<...>")
	}
	return decl, nil
}

func (p *Parser) parseUnboundSeqType(start Position) (TypeExpr, *ParseError) {
	p.advance() // 'seq'
	if !p.consume(TokenLAngle, "expected '<' after 'seq'") {
		return nil, p.error("expected '<' after 'seq'")
	}
	inner, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenComma, "expected ',' in seq<...>") {
		return nil, p.error("expected ',' in seq<...>")
	}
	if !p.consume(TokenLen, "expected 'len' in seq<...>") {
		return nil, p.error("expected 'len' in seq<...>")
	}
	if !p.consume(TokenColon, "expected ':' after 'len'") {
		return nil, p.error("expected ':' after 'len'")
	}
	if !p.check(TokenIdent) {
		return nil, p.error("expected an int type naming the injected length field")
	}
	name := p.current.Value
	lenStart := p.current.Position
	p.advance()
	lenEnd := p.current.Position
	lenType, ok := parsePrimitive(name, lenStart, lenEnd)
	intType, isInt := lenType.(*IntTypeExpr)
	if !ok || !isInt {
		return nil, p.error("seq<...> length must name an integer type, got %q", name)
	}
	end := p.current.Position
	if !p.consume(TokenRAngle, "expected '>' to close seq<...>") {
		return nil, p.error("expected '>' to close seq<...>")
	}
	return &UnboundSeqTypeExpr{Position: start, EndPos: end, Inner: inner, LenType: intType}, nil
}

func (p *Parser) parseArrayType(start Position) (TypeExpr, *ParseError) {
	p.advance() // 'array'
	if !p.consume(TokenLAngle, "expected '<' after 'array'") {
		return nil, p.error("expected '<' after 'array'")
	}
	inner, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenComma, "expected ',' in array<...>") {
		return nil, p.error("expected ',' in array<...>")
	}
	if !p.check(TokenInt) {
		return nil, p.error("expected a fixed length in array<...>")
	}
	n, convErr := strconv.Atoi(p.current.Value)
	if convErr != nil {
		return nil, p.error("invalid array length %q", p.current.Value)
	}
	p.advance()
	end := p.current.Position
	if !p.consume(TokenRAngle, "expected '>' to close array<...>") {
		return nil, p.error("expected '>' to close array<...>")
	}
	return &ArrayTypeExpr{Position: start, EndPos: end, Inner: inner, Length: n}, nil
}

func (p *Parser) parseDetachedType(start Position) (TypeExpr, *ParseError) {
	p.advance() // 'detached'
	if !p.consume(TokenLAngle, "expected '<' after 'detached'") {
		return nil, p.error("expected '<' after 'detached'")
	}
	variant, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenComma, "expected ',' in detached<...>") {
		return nil, p.error("expected ',' in detached<...>")
	}
	if !p.consume(TokenTag, "expected 'tag' in detached<...>") {
		return nil, p.error("expected 'tag' in detached<...>")
	}
	if !p.consume(TokenColon, "expected ':' after 'tag'") {
		return nil, p.error("expected ':' after 'tag'")
	}
	if !p.check(TokenIdent) {
		return nil, p.error("expected sibling field name after 'tag:'")
	}
	tagField := p.current.Value
	p.advance()
	end := p.current.Position
	if !p.consume(TokenRAngle, "expected '>' to close detached<...>") {
		return nil, p.error("expected '>' to close detached<...>")
	}
	return &DetachedTypeExpr{Position: start, EndPos: end, Variant: variant, TagField: tagField}, nil
}

func (p *Parser) parseVirtualType(start Position) (TypeExpr, *ParseError) {
	p.advance() // 'virtual'
	if !p.consume(TokenLAngle, "expected '<' after 'virtual'") {
		return nil, p.error("expected '<' after 'virtual'")
	}
	inner, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	end := p.current.Position
	if !p.consume(TokenRAngle, "expected '>' to close virtual<...>") {
		return nil, p.error("expected '>' to close virtual<...>")
	}
	return &VirtualTypeExpr{Position: start, EndPos: end, Inner: inner}, nil
}

// parseEnum parses: 'enum' ident ':' intType '{' enumValue* '}'
func (p *Parser) parseEnum() (*EnumDecl, *ParseError) {
	start := p.current.Position
	comments := p.takeDocComments()
	p.advance() // 'enum'

	if !p.check(TokenIdent) {
		return nil, p.error("expected enum name")
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenColon, "expected ':' after enum name") {
		return nil, p.error("expected ':' after enum name")
	}
	underlying, err := p.parseIntTypeToken()
	if err != nil {
		return nil, err
	}

	if !p.consume(TokenLBrace, "expected '{' after enum underlying type") {
		return nil, p.error("expected '{' after enum underlying type")
	}

	var values []*EnumValueDecl
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		v, verr := p.parseEnumValue()
		if verr != nil {
			return nil, verr
		}
		values = append(values, v)
	}

	end := p.current.Position
	p.consume(TokenRBrace, "expected '}' to close enum")
	return &EnumDecl{Position: start, EndPos: end, Name: name, Underlying: underlying, Values: values, Comments: comments}, nil
}

func (p *Parser) parseEnumValue() (*EnumValueDecl, *ParseError) {
	start := p.current.Position
	comments := p.takeDocComments()

	if !p.check(TokenIdent) {
		return nil, p.error("expected enum value name")
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenEquals, "expected '=' after enum value name") {
		return nil, p.error("expected '=' after enum value name")
	}
	if !p.check(TokenInt) {
		return nil, p.error("expected integer enum value")
	}
	n, convErr := strconv.ParseInt(p.current.Value, 10, 64)
	if convErr != nil {
		return nil, p.error("invalid enum value %q", p.current.Value)
	}
	p.advance()

	end := p.current.Position
	p.consume(TokenSemicolon, "expected ';' after enum value")
	return &EnumValueDecl{Position: start, EndPos: end, Name: name, Value: n, Comments: comments}, nil
}

// parseVariant parses: 'variant' ident ':' intType '{' member* '}'
func (p *Parser) parseVariant() (*VariantDecl, *ParseError) {
	start := p.current.Position
	comments := p.takeDocComments()
	p.advance() // 'variant'

	if !p.check(TokenIdent) {
		return nil, p.error("expected variant name")
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenColon, "expected ':' after variant name") {
		return nil, p.error("expected ':' after variant name")
	}
	tagType, err := p.parseIntTypeToken()
	if err != nil {
		return nil, err
	}

	if !p.consume(TokenLBrace, "expected '{' after variant tag type") {
		return nil, p.error("expected '{' after variant tag type")
	}

	var members []*VariantMemberDecl
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		m, merr := p.parseVariantMember()
		if merr != nil {
			return nil, merr
		}
		members = append(members, m)
	}

	end := p.current.Position
	p.consume(TokenRBrace, "expected '}' to close variant")
	return &VariantDecl{Position: start, EndPos: end, Name: name, TagType: tagType, Members: members, Comments: comments}, nil
}

func (p *Parser) parseVariantMember() (*VariantMemberDecl, *ParseError) {
	start := p.current.Position
	comments := p.takeDocComments()

	if !p.check(TokenInt) {
		return nil, p.error("expected tag value")
	}
	tag, convErr := strconv.ParseInt(p.current.Value, 10, 64)
	if convErr != nil {
		return nil, p.error("invalid tag value %q", p.current.Value)
	}
	p.advance()

	if !p.consume(TokenArrow, "expected '->' after tag value") {
		return nil, p.error("expected '->' after tag value")
	}

	ref, err := p.parseRefType()
	if err != nil {
		return nil, err
	}

	end := p.current.Position
	p.consume(TokenSemicolon, "expected ';' after variant member")
	return &VariantMemberDecl{Position: start, EndPos: end, Tag: tag, Struct: ref, Comments: comments}, nil
}

// parseHashVariant parses:
//
//	'hashvariant' ident ':' intType '{' 'members' ':' refList ';' '}'
func (p *Parser) parseHashVariant() (*HashVariantDecl, *ParseError) {
	start := p.current.Position
	comments := p.takeDocComments()
	p.advance() // 'hashvariant'

	if !p.check(TokenIdent) {
		return nil, p.error("expected hashvariant name")
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenColon, "expected ':' after hashvariant name") {
		return nil, p.error("expected ':' after hashvariant name")
	}
	tagType, err := p.parseIntTypeToken()
	if err != nil {
		return nil, err
	}

	if !p.consume(TokenLBrace, "expected '{' after hashvariant tag type") {
		return nil, p.error("expected '{' after hashvariant tag type")
	}
	if !p.consume(TokenMembers, "expected 'members' in hashvariant body") {
		return nil, p.error("expected 'members' in hashvariant body")
	}
	if !p.consume(TokenColon, "expected ':' after 'members'") {
		return nil, p.error("expected ':' after 'members'")
	}

	var members []*RefTypeExpr
	for {
		ref, rerr := p.parseRefType()
		if rerr != nil {
			return nil, rerr
		}
		members = append(members, ref)
		if p.check(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	p.consume(TokenSemicolon, "expected ';' after members list")

	end := p.current.Position
	p.consume(TokenRBrace, "expected '}' to close hashvariant")
	return &HashVariantDecl{Position: start, EndPos: end, Name: name, TagType: tagType, Members: members, Comments: comments}, nil
}

// parseConst parses: 'const' ident ':' (intType|'string') '=' value ';'
func (p *Parser) parseConst() (*ConstDecl, *ParseError) {
	start := p.current.Position
	comments := p.takeDocComments()
	p.advance() // 'const'

	if !p.check(TokenIdent) {
		return nil, p.error("expected constant name")
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenColon, "expected ':' after constant name") {
		return nil, p.error("expected ':' after constant name")
	}

	decl := &ConstDecl{Position: start, Name: name, Comments: comments}
	if p.check(TokenIdent) && p.current.Value == "string" {
		p.advance()
		decl.IsString = true
	} else {
		t, err := p.parseIntTypeToken()
		if err != nil {
			return nil, err
		}
		decl.Type = t
	}

	if !p.consume(TokenEquals, "expected '=' in constant declaration") {
		return nil, p.error("expected '=' in constant declaration")
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	decl.Value = val

	decl.EndPos = p.current.Position
	p.consume(TokenSemicolon, "expected ';' after constant declaration")
	return decl, nil
}

// parseConversion parses:
//
//	'conversion' ref '->' ref '{' (fieldConv | enumMap | variantMap)* '}'
//	'conversion' ref '->' ref 'none' ';'
func (p *Parser) parseConversion() (*ConversionDecl, *ParseError) {
	start := p.current.Position
	comments := p.takeDocComments()
	p.advance() // 'conversion'

	src, err := p.parseRefType()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenArrow, "expected '->' in conversion declaration") {
		return nil, p.error("expected '->' in conversion declaration")
	}
	target, err := p.parseRefType()
	if err != nil {
		return nil, err
	}

	decl := &ConversionDecl{Position: start, Src: src, Target: target, Comments: comments}

	if p.check(TokenNone) {
		p.advance()
		decl.NoConversion = true
		decl.EndPos = p.current.Position
		p.consume(TokenSemicolon, "expected ';' after 'none'")
		return decl, nil
	}

	if !p.consume(TokenLBrace, "expected '{' or 'none' after conversion header") {
		return nil, p.error("expected '{' or 'none' after conversion header")
	}

	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		switch {
		case p.check(TokenField):
			fc, ferr := p.parseFieldConversion()
			if ferr != nil {
				return nil, ferr
			}
			decl.FieldConversions = append(decl.FieldConversions, fc)
		case p.check(TokenValue):
			em, eerr := p.parseEnumMapping()
			if eerr != nil {
				return nil, eerr
			}
			decl.EnumMapping = append(decl.EnumMapping, em)
		case p.check(TokenMember):
			vm, verr := p.parseVariantMapping()
			if verr != nil {
				return nil, verr
			}
			decl.VariantMapping = append(decl.VariantMapping, vm)
		default:
			return nil, p.error("expected 'field', 'value', or 'member' in conversion body, got %s", p.current.Type)
		}
	}

	decl.EndPos = p.current.Position
	p.consume(TokenRBrace, "expected '}' to close conversion")
	return decl, nil
}

// parseFieldConversion parses:
//
//	'field' ident '=' ident ';'                  // rename/passthrough
//	'field' ident '=' 'default' intLiteral ';'    // FieldIntDefault
//	'field' ident '=' 'default' ref ';'           // FieldEnumDefault
func (p *Parser) parseFieldConversion() (*FieldConversionDecl, *ParseError) {
	start := p.current.Position
	p.advance() // 'field'

	if !p.check(TokenIdent) {
		return nil, p.error("expected target field name")
	}
	target := p.current.Value
	p.advance()

	if !p.consume(TokenEquals, "expected '=' in field conversion") {
		return nil, p.error("expected '=' in field conversion")
	}

	fc := &FieldConversionDecl{Position: start, TargetName: target}

	if p.check(TokenDefault) {
		p.advance()
		fc.IsDefault = true
		if p.check(TokenInt) {
			v, verr := p.parseValue()
			if verr != nil {
				return nil, verr
			}
			fc.DefaultVal = v
		} else {
			ref, rerr := p.parseRefType()
			if rerr != nil {
				return nil, rerr
			}
			fc.EnumDefault = ref
		}
	} else {
		if !p.check(TokenIdent) {
			return nil, p.error("expected source field name")
		}
		fc.SrcField = p.current.Value
		p.advance()
	}

	fc.EndPos = p.current.Position
	p.consume(TokenSemicolon, "expected ';' after field conversion")
	return fc, nil
}

// parseEnumMapping parses: 'value' ident '->' (ident)? ';'
func (p *Parser) parseEnumMapping() (*EnumMappingDecl, *ParseError) {
	start := p.current.Position
	p.advance() // 'value'

	if !p.check(TokenIdent) {
		return nil, p.error("expected source enum value name")
	}
	src := p.current.Value
	p.advance()

	if !p.consume(TokenArrow, "expected '->' in enum value mapping") {
		return nil, p.error("expected '->' in enum value mapping")
	}

	em := &EnumMappingDecl{Position: start, Src: src}
	if p.check(TokenIdent) {
		em.Target = p.current.Value
		em.HasTarget = true
		p.advance()
	}

	em.EndPos = p.current.Position
	p.consume(TokenSemicolon, "expected ';' after enum value mapping")
	return em, nil
}

// parseVariantMapping parses: 'member' ref '->' (ref)? ';'
func (p *Parser) parseVariantMapping() (*VariantMappingDecl, *ParseError) {
	start := p.current.Position
	p.advance() // 'member'
	src, err := p.parseRefType()
	if err != nil {
		return nil, err
	}

	if !p.consume(TokenArrow, "expected '->' in variant member mapping") {
		return nil, p.error("expected '->' in variant member mapping")
	}

	vm := &VariantMappingDecl{Position: start, Src: src}
	if p.check(TokenIdent) {
		target, terr := p.parseRefType()
		if terr != nil {
			return nil, terr
		}
		vm.Target = target
		vm.HasTarget = true
	}

	vm.EndPos = p.current.Position
	p.consume(TokenSemicolon, "expected ';' after variant member mapping")
	return vm, nil
}

// parseFromPrior parses: 'from_prior' string ';'
func (p *Parser) parseFromPrior() (*FromPriorDecl, *ParseError) {
	start := p.current.Position
	p.advance() // 'from_prior'

	if !p.check(TokenString) {
		return nil, p.error("expected prior protocol name string")
	}
	prior := p.current.Value
	p.advance()

	end := p.current.Position
	p.consume(TokenSemicolon, "expected ';' after from_prior")
	return &FromPriorDecl{Position: start, EndPos: end, PriorProtocol: prior}, nil
}

// parseIntTypeToken parses a bare identifier that must name an int type,
// e.g. the underlying type of an enum/variant/hashvariant.
func (p *Parser) parseIntTypeToken() (*IntTypeExpr, *ParseError) {
	if !p.check(TokenIdent) {
		return nil, p.error("expected an integer type")
	}
	start := p.current.Position
	name := p.current.Value
	p.advance()
	end := p.current.Position
	t, ok := parsePrimitive(name, start, end)
	intType, isInt := t.(*IntTypeExpr)
	if !ok || !isInt {
		return nil, &ParseError{Position: start, Message: fmt.Sprintf("expected an integer type, got %q", name)}
	}
	return intType, nil
}

// Helper methods

func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.lexer.Next()
}

func (p *Parser) check(t TokenType) bool {
	return p.current.Type == t
}

func (p *Parser) consume(t TokenType, msg string) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	p.errors = append(p.errors, ParseError{Position: p.current.Position, Message: msg})
	return false
}

func (p *Parser) error(format string, args ...any) *ParseError {
	return &ParseError{Position: p.current.Position, Message: fmt.Sprintf(format, args...)}
}

// synchronize skips tokens until a likely declaration boundary, so one
// malformed declaration doesn't cascade into spurious follow-on errors.
func (p *Parser) synchronize() {
	for !p.check(TokenEOF) {
		if p.previous.Type == TokenSemicolon || p.previous.Type == TokenRBrace {
			return
		}
		switch p.current.Type {
		case TokenStruct, TokenEnum, TokenVariant, TokenHashvariant, TokenConst, TokenConversion, TokenOption, TokenImport:
			return
		}
		p.advance()
	}
}

// collectComments drains consecutive comment tokens into p.comments,
// without advancing past a non-comment token.
func (p *Parser) collectComments() {
	for p.check(TokenComment) || p.check(TokenDocComment) {
		p.comments = append(p.comments, &Comment{
			Position: p.current.Position,
			Text:     p.current.Value,
			IsDoc:    p.current.Type == TokenDocComment,
		})
		p.advance()
	}
}

// takeDocComments returns doc comments immediately preceding the current
// declaration and clears them from the pending collection.
func (p *Parser) takeDocComments() []*Comment {
	p.collectComments()
	if len(p.comments) == 0 {
		return nil
	}
	out := p.comments
	p.comments = nil
	return out
}
