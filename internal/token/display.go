package token

var display = map[Type]string{
	Number:     "number",
	StrLit:     "string",
	Identifier: "identifier",

	And:    "'and'",
	Class:  "'class'",
	Else:   "'else'",
	False:  "'false'",
	For:    "'for'",
	Fun:    "'fun'",
	If:     "'if'",
	Nil:    "'nil'",
	Or:     "'or'",
	Print:  "'print'",
	Return: "'return'",
	Super:  "'super'",
	This:   "'this'",
	True:   "'true'",
	Var:    "'var'",
	While:  "'while'",

	Plus:  "'+'",
	Minus: "'-'",
	Star:  "'*'",
	Slash: "'/'",

	Greater:      "'>'",
	GreaterEqual: "'>='",
	Less:         "'<'",
	LessEqual:    "'<='",
	Equal:        "'='",
	EqualEqual:   "'=='",
	Bang:         "'!'",
	BangEqual:    "'!='",

	LeftParen:  "'('",
	RightParen: "')'",
	LeftBrace:  "'{'",
	RightBrace: "'}'",
	Semicolon:  "';'",
	Comma:      "','",
	Dot:        "'.'",

	Eof: "end of file",
}

// Display returns a human-readable name for the token type, used when
// composing "Expect ..." compile diagnostics.
func (t Type) Display() string {
	if s, ok := display[t]; ok {
		return s
	}
	return string(t)
}
