package safe

import (
	"log/slog"
	"runtime/debug"
	"strings"
)

// Run executes fn and recovers from any panic, logging it with a stack trace.
// Used to isolate best-effort side channels from the primary operation.
func Run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			stack := getStackTrace(3)
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", "safe.Run"),
				slog.String("stack", stack),
			)
		}
	}()

	fn()
}

// RunWithLog is a wrapper that executes fn and logs any panic with full stack trace
func RunWithLog(fn func(), component string) {
	defer func() {
		if r := recover(); r != nil {
			stack := getStackTrace(3)
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", component),
				slog.String("stack", stack),
			)
		}
	}()

	fn()
}

// getStackTrace returns a formatted stack trace, skipping the first
// skipFrames frames (defer, Run, and the immediate caller)
func getStackTrace(skipFrames int) string {
	stackStr := string(debug.Stack())
	lines := strings.Split(stackStr, "\n")

	var formatted []string
	formatted = append(formatted, "Stack trace:")

	startIdx := skipFrames
	if startIdx < len(lines) {
		if startIdx == 0 && len(lines) > 0 {
			formatted = append(formatted, "  "+lines[0])
			startIdx = 1
		}

		for i := startIdx; i < len(lines) && i < startIdx+20; i++ {
			line := strings.TrimSpace(lines[i])
			if line != "" {
				formatted = append(formatted, "  "+line)
			}
		}

		if len(lines) > startIdx+20 {
			formatted = append(formatted, "  ... (truncated)")
		}
	}

	return strings.Join(formatted, "\n")
}
