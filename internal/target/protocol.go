package target

import "encoding/json"

// Response is an adapter's reply to a request.
type Response struct {
	Seq        int             `json:"seq"`
	RequestSeq int             `json:"request_seq"`
	Success    bool            `json:"success"`
	Command    string          `json:"command"`
	Message    string          `json:"message,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// Event is an adapter event.
type Event struct {
	Seq   int             `json:"seq"`
	Event string          `json:"event"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// InitializeArguments is sent with the initialize request.
type InitializeArguments struct {
	ClientID        string `json:"clientID"`
	ClientName      string `json:"clientName"`
	AdapterID       string `json:"adapterID"`
	PathFormat      string `json:"pathFormat"`
	LinesStartAt1   bool   `json:"linesStartAt1"`
	ColumnsStartAt1 bool   `json:"columnsStartAt1"`
}

// LaunchArguments is sent with the launch request.
type LaunchArguments struct {
	Program     string   `json:"program"`
	Args        []string `json:"args,omitempty"`
	StopOnEntry bool     `json:"stopOnEntry,omitempty"`
}

// FunctionBreakpoint names a function to break in.
type FunctionBreakpoint struct {
	Name string `json:"name"`
}

// SourceBreakpoint is a line in a source file.
type SourceBreakpoint struct {
	Line int `json:"line"`
}

// Source identifies a source file.
type Source struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
}

// Breakpoint is a breakpoint as reported by the adapter.
type Breakpoint struct {
	ID       int     `json:"id"`
	Verified bool    `json:"verified"`
	Message  string  `json:"message,omitempty"`
	Source   *Source `json:"source,omitempty"`
	Line     int     `json:"line,omitempty"`
}

// StackFrame is one frame of a stack trace.
type StackFrame struct {
	ID                          int     `json:"id"`
	Name                        string  `json:"name"`
	Source                      *Source `json:"source,omitempty"`
	Line                        int     `json:"line"`
	InstructionPointerReference string  `json:"instructionPointerReference,omitempty"`
}

// Thread is a thread as listed by the adapter.
type Thread struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// StoppedBody is the body of the stopped event.
type StoppedBody struct {
	Reason            string `json:"reason"`
	Description       string `json:"description,omitempty"`
	ThreadID          int    `json:"threadId,omitempty"`
	Text              string `json:"text,omitempty"`
	AllThreadsStopped bool   `json:"allThreadsStopped,omitempty"`
	HitBreakpointIDs  []int  `json:"hitBreakpointIds,omitempty"`
}

// ExitedBody is the body of the exited event.
type ExitedBody struct {
	ExitCode int `json:"exitCode"`
}

// ThreadBody is the body of the thread event.
type ThreadBody struct {
	Reason   string `json:"reason"`
	ThreadID int    `json:"threadId"`
}

// ProcessBody is the body of the process event.
type ProcessBody struct {
	Name            string `json:"name"`
	SystemProcessID int    `json:"systemProcessId,omitempty"`
	StartMethod     string `json:"startMethod,omitempty"`
}

// OutputBody is the body of the output event.
type OutputBody struct {
	Category string `json:"category,omitempty"`
	Output   string `json:"output"`
}
