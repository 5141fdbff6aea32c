package exprs

// CallSite is one call expression found at a source location
type CallSite struct {
	Callee   string
	Args     []Expr
	Keywords []Keyword
	Line     int
	Col      int
}

// Payload returns the keyword argument named keyword, or the positional argument at position
func (c CallSite) Payload(keyword string, position int) (Expr, bool) {
	if keyword != "" {
		for _, kw := range c.Keywords {
			if kw.Name == keyword {
				return kw.Value, true
			}
		}
	}
	if position >= 0 && position < len(c.Args) {
		return c.Args[position], true
	}
	return nil, false
}
