// Package diag streams loop diagnostics over websockets and accepts remote
// key presses.
package diag

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Event codes.
const (
	CodeFPS        = "FPS.SAMPLE"
	CodeParam      = "PARAM.SET"
	CodeAnim       = "ANIM.STATE"
	CodeQuit       = "LOOP.QUIT"
	CodeBadControl = "CONTROL.BAD"
)

type Diagnostic struct {
	Severity Severity       `json:"severity"`
	Code     string         `json:"code"`
	Summary  string         `json:"summary"`
	Detail   string         `json:"detail,omitempty"`
	Evidence map[string]any `json:"evidence,omitempty"`
	T        int64          `json:"t"`
}
