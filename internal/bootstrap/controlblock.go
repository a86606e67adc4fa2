package bootstrap

import "strings"

// ControlBlockMarker identifies the control block inside an issue body. The
// append step keys its idempotence check on this token.
const ControlBlockMarker = "ATLAS:REFINE"

// controlBlock is the machine-readable section appended to the starter
// issue. The payload is opaque to this tool; downstream automation parses
// the action lines. It must be appended verbatim, exactly once.
var controlBlock = strings.Join([]string{
	"<details>",
	"<summary>Workflow automation (" + ControlBlockMarker + ")</summary>",
	"",
	"```",
	"STATE: Backlog",
	"COMPLETE: move=Done add=done remove=in-progress,review",
	"INCOMPLETE: move=In Progress add=in-progress remove=done",
	"REVIEW: move=Review add=review remove=in-progress",
	"PASS: move=Done add=done remove=review",
	"FAIL: move=In Progress add=in-progress remove=review",
	"```",
	"",
	"</details>",
}, "\n")

// HasControlBlock reports whether a body already carries the control block.
func HasControlBlock(body string) bool {
	return strings.Contains(body, ControlBlockMarker)
}

// AppendControlBlock returns the body with the control block appended, or
// the body unchanged if the marker is already present.
func AppendControlBlock(body string) string {
	if HasControlBlock(body) {
		return body
	}
	if body == "" {
		return controlBlock
	}
	return strings.TrimRight(body, "\n") + "\n\n" + controlBlock
}
