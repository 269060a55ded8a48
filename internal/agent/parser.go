package agent

import "strings"

// DirectiveKind tags the result of parsing one model response.
type DirectiveKind int

const (
	// DirectiveNone means the response carried no Action line at all.
	// This is fatal for the run.
	DirectiveNone DirectiveKind = iota
	// DirectiveFinish terminates the loop with an optional payload.
	DirectiveFinish
	// DirectiveToolCall dispatches Input to the tool named Tool.
	DirectiveToolCall
	// DirectiveInvalid marks an Action line with malformed brackets. The loop
	// appends a corrective observation and retries.
	DirectiveInvalid
)

// Directive is the parsed structural value of one Action line.
type Directive struct {
	Kind    DirectiveKind
	Payload string // Finish payload
	Tool    string // tool name, brackets and whitespace excluded
	Input   string // raw tool input between the first [ and the last ]
}

// Response is the parsed form of one raw model response.
type Response struct {
	Thought   string // optional; "" when absent
	Action    string // raw text after the Action marker, "" when absent
	Directive Directive
}

const (
	thoughtMarker = "Thought:"
	actionMarker  = "Action:"
	finishPrefix  = "Finish"
)

// Parse extracts the Thought and Action lines from a raw model response and
// decomposes the action into a tagged directive. Only the first occurrence of
// each marker is significant; later duplicates are ignored.
func Parse(raw string) Response {
	var resp Response
	thoughtFound, actionFound := false, false

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if !thoughtFound && strings.HasPrefix(trimmed, thoughtMarker) {
			resp.Thought = strings.TrimSpace(strings.TrimPrefix(trimmed, thoughtMarker))
			thoughtFound = true
			continue
		}
		if !actionFound && strings.HasPrefix(trimmed, actionMarker) {
			resp.Action = strings.TrimSpace(strings.TrimPrefix(trimmed, actionMarker))
			actionFound = true
		}
	}

	if !actionFound {
		resp.Directive = Directive{Kind: DirectiveNone}
		return resp
	}
	resp.Directive = parseAction(resp.Action)
	return resp
}

// parseAction decomposes one action string.
//
// Finish payloads and tool inputs span from the first opening bracket to the
// LAST closing bracket, so payloads containing bracketed substrings (markdown
// links, references) survive intact.
func parseAction(action string) Directive {
	if strings.HasPrefix(action, finishPrefix) {
		return Directive{Kind: DirectiveFinish, Payload: bracketSlice(action)}
	}

	open := strings.Index(action, "[")
	if open < 0 {
		return Directive{Kind: DirectiveInvalid}
	}
	last := strings.LastIndex(action, "]")
	if last <= open {
		return Directive{Kind: DirectiveInvalid}
	}
	return Directive{
		Kind:  DirectiveToolCall,
		Tool:  strings.TrimSpace(action[:open]),
		Input: action[open+1 : last],
	}
}

// bracketSlice returns the content between the first [ and the last ], or ""
// when the brackets are missing or ill-ordered. A Finish with no payload is
// legal; the loop falls back to the Thought text.
func bracketSlice(s string) string {
	open := strings.Index(s, "[")
	if open < 0 {
		return ""
	}
	last := strings.LastIndex(s, "]")
	if last <= open {
		return ""
	}
	return s[open+1 : last]
}
