package token

// Type identifies the category of a token.
type Type string

// Token carries the lexical item along with its source position.
// For Error tokens the Lexeme holds the error message, not source text.
type Token struct {
	Type   Type
	Lexeme string
	Offset int
	Line   int
}

const (
	Error Type = "ERROR"
	EOF   Type = "EOF"

	// single-character punctuation
	LParen    Type = "LEFT_PAREN"
	RParen    Type = "RIGHT_PAREN"
	LBrace    Type = "LEFT_BRACE"
	RBrace    Type = "RIGHT_BRACE"
	Comma     Type = "COMMA"
	Dot       Type = "DOT"
	Minus     Type = "MINUS"
	Plus      Type = "PLUS"
	Semicolon Type = "SEMICOLON"
	Slash     Type = "SLASH"
	Star      Type = "STAR"

	// one or two character operators
	Bang         Type = "BANG"          // !
	BangEqual    Type = "BANG_EQUAL"    // !=
	Equal        Type = "EQUAL"         // =
	EqualEqual   Type = "EQUAL_EQUAL"   // ==
	Greater      Type = "GREATER"       // >
	GreaterEqual Type = "GREATER_EQUAL" // >=
	Less         Type = "LESS"          // <
	LessEqual    Type = "LESS_EQUAL"    // <=

	// literals
	Ident  Type = "IDENTIFIER"
	String Type = "STRING"
	Number Type = "NUMBER"

	// keywords
	And    Type = "AND"
	Class  Type = "CLASS"
	Else   Type = "ELSE"
	False  Type = "FALSE"
	For    Type = "FOR"
	Fun    Type = "FUN"
	If     Type = "IF"
	Nil    Type = "NIL"
	Or     Type = "OR"
	Print  Type = "PRINT"
	Return Type = "RETURN"
	Super  Type = "SUPER"
	This   Type = "THIS"
	True   Type = "TRUE"
	Var    Type = "VAR"
	While  Type = "WHILE"
)

// LookupIdent returns the keyword token type or Ident.
// Dispatch is on the first character, then the second where several
// keywords share a prefix.
func LookupIdent(ident string) Type {
	if ident == "" {
		return Ident
	}
	switch ident[0] {
	case 'a':
		return checkKeyword(ident, 1, "nd", And)
	case 'c':
		return checkKeyword(ident, 1, "lass", Class)
	case 'e':
		return checkKeyword(ident, 1, "lse", Else)
	case 'f':
		if len(ident) > 1 {
			switch ident[1] {
			case 'a':
				return checkKeyword(ident, 2, "lse", False)
			case 'o':
				return checkKeyword(ident, 2, "r", For)
			case 'u':
				return checkKeyword(ident, 2, "n", Fun)
			}
		}
	case 'i':
		return checkKeyword(ident, 1, "f", If)
	case 'n':
		return checkKeyword(ident, 1, "il", Nil)
	case 'o':
		return checkKeyword(ident, 1, "r", Or)
	case 'p':
		return checkKeyword(ident, 1, "rint", Print)
	case 'r':
		return checkKeyword(ident, 1, "eturn", Return)
	case 's':
		return checkKeyword(ident, 1, "uper", Super)
	case 't':
		if len(ident) > 1 {
			switch ident[1] {
			case 'h':
				return checkKeyword(ident, 2, "is", This)
			case 'r':
				return checkKeyword(ident, 2, "ue", True)
			}
		}
	case 'v':
		return checkKeyword(ident, 1, "ar", Var)
	case 'w':
		return checkKeyword(ident, 1, "hile", While)
	}
	return Ident
}

func checkKeyword(ident string, start int, rest string, t Type) Type {
	if len(ident) == start+len(rest) && ident[start:] == rest {
		return t
	}
	return Ident
}

// IsKeyword reports whether t is one of the reserved words.
func IsKeyword(t Type) bool {
	switch t {
	case And, Class, Else, False, For, Fun, If, Nil, Or,
		Print, Return, Super, This, True, Var, While:
		return true
	default:
		return false
	}
}
