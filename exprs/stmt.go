package exprs

type Stmt interface {
	stmt()
}

// Assign is a simple single-target assignment
type Assign struct {
	Name  string
	Value Expr
	Line  int
}

// Append adds items to a list variable in place
type Append struct {
	Name  string
	Items []Expr
	Line  int
}

// Unbind marks names assigned in a way that is not tracked
type Unbind struct {
	Names []string
	Line  int
}

// Declare introduces names without a value. Zero is the zero value when it is a known string or list, nil otherwise.
type Declare struct {
	Names []string
	Zero  Expr
	Line  int
}

// Branch is a body that may run conditionally or repeatedly
type Branch struct {
	Body []Stmt
}

func (Assign) stmt()  {}
func (Append) stmt()  {}
func (Unbind) stmt()  {}
func (Declare) stmt() {}
func (Branch) stmt()  {}
