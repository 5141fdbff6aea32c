package explains

// StackFrame is one frame of the host's call stack
type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}
