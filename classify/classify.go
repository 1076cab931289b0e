// Package classify implements Apiary's text classifiers: pure, total
// functions over captured pane text that never fail. All regexes are
// compiled once at package init, never inside a classifying function,
// correcting the dynamic-compilation issue of the system this was
// distilled from.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"apiary/pod"
)

// Built-in permission patterns (case-insensitive).
var permissionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)allow.*\(y/n\)`),
	regexp.MustCompile(`(?i)allow.*\by\b.*\bn\b`),
	regexp.MustCompile(`(?i)approve.*deny`),
	regexp.MustCompile(`(?i)do you want to`),
	regexp.MustCompile(`(?i)permission requested`),
	regexp.MustCompile(`(?i)allow\s+(once|always)`),
}

// Built-in error patterns.
var errorLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^\s*[Ee]rror:`),
	regexp.MustCompile(`(?i)\bfailed\b`),
	regexp.MustCompile(`(?i)\bpanic\b`),
	regexp.MustCompile(`(?i)thread '[^']*' panicked`),
}

// Built-in done patterns.
var donePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)session ended`),
	regexp.MustCompile(`(?i)process exited`),
	regexp.MustCompile(`(?i)connection closed`),
}

// Idle prompt character, matched against the last line only.
var idlePromptPattern = regexp.MustCompile(`^\s*[❯❱>$%]\s*$`)

var toolNamePattern = regexp.MustCompile(`(?i)\b(bash|write|read|edit|grep|glob|search|notebook)\b`)

var codeBlockPattern = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\n?(.*?)```")

var atNamePattern = regexp.MustCompile(`@([A-Za-z][A-Za-z0-9_-]*)`)

var leadPattern = regexp.MustCompile(`(?i)\b(team lead|leader|lead)\b`)

var introPattern = regexp.MustCompile(`(?i)\b(?:agent|teammate|worker)(?:\s+\w+)?\s*:\s*([A-Za-z][A-Za-z0-9_-]*)|\bI am\s+([A-Za-z][A-Za-z0-9_-]*)`)

var genericNameTokens = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true,
	"claude": true, "code": true,
}

var assistantWordPattern = regexp.MustCompile(`(?i)\bclaude\b`)
var assistantPromptPattern = regexp.MustCompile(`❯`)
var assistantToolUsePattern = regexp.MustCompile(`(?i)tool use`)
var assistantBashPattern = regexp.MustCompile(`\bBash\b`)
var assistantReadPattern = regexp.MustCompile(`\bRead\b`)
var assistantAnthropicPattern = regexp.MustCompile(`(?i)anthropic`)
var assistantIndentedToolPattern = regexp.MustCompile(`(?m)^  (Read|Write|Edit|Grep|Glob|Bash|Task)\b`)

var agentCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s+agents?\s+running in the background`),
	regexp.MustCompile(`(?i)(\d+)\s+local agents?`),
	regexp.MustCompile(`(?i)[Rr]unning\s+(\d+)\s+Task agents?`),
	regexp.MustCompile(`(?i)[Rr]unning\s+(\d+)\s+agents?`),
}

var subAgentDetailPattern = regexp.MustCompile(`(?m)^\s*[├└]─\s*(.+?)(?:\s*·\s*\d+\s+tool uses?)?(?:\s*·\s*\d+k?\s+tokens?)?\s*$`)

// DetectMemberStatus classifies captured pane text per spec §4.4's strict
// first-match-wins order.
func DetectMemberStatus(output string, extraPermission, extraError, extraIdle []*regexp.Regexp) pod.MemberStatus {
	if strings.TrimSpace(output) == "" {
		return pod.StatusDone
	}

	tail := lastNLines(output, 15)

	if matchesAny(tail, permissionPatterns) || matchesAny(tail, extraPermission) {
		return pod.StatusPermission
	}
	if matchesAny(tail, errorLinePatterns) || matchesAny(tail, extraError) {
		return pod.StatusError
	}
	if matchesAny(tail, donePatterns) {
		return pod.StatusDone
	}

	lastLine := lastLineOf(output)
	if idlePromptPattern.MatchString(lastLine) || matchesAny(lastLine, extraIdle) {
		return pod.StatusIdle
	}

	return pod.StatusWorking
}

// PermissionRequest is the structured result of ParsePermissionRequest.
type PermissionRequest struct {
	Tool    string
	Command string
	Detail  string
}

// ParsePermissionRequest extracts the tool/command/detail triple from a
// permission prompt, or returns (nil) if the tail doesn't look like one.
func ParsePermissionRequest(output string) *PermissionRequest {
	tail := lastNLines(output, 20)
	if !matchesAny(tail, permissionPatterns) {
		return nil
	}

	tool := "unknown"
	if m := toolNamePattern.FindStringSubmatch(tail); m != nil {
		tool = strings.ToLower(m[1])
	}

	command := extractCodeBlock(tail)

	return &PermissionRequest{
		Tool:    tool,
		Command: command,
		Detail:  tail,
	}
}

// extractCodeBlock returns the contents of the first triple-backtick code
// block in s, trimmed, or empty if none is present. Intentionally
// non-anchored and greedy-within-block: with multiple blocks, the first
// wins — preserved per spec §9's explicit guidance, not a bug to fix.
func extractCodeBlock(s string) string {
	m := codeBlockPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ParseSubAgentCount returns the maximum agent count across all matching
// headline patterns, or zero if none match.
func ParseSubAgentCount(output string) int {
	max := 0
	for _, re := range agentCountPatterns {
		for _, m := range re.FindAllStringSubmatch(output, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max
}

// ParseSubAgents parses the ordered sub-agent list from captured output.
func ParseSubAgents(output string) []pod.SubAgent {
	count := ParseSubAgentCount(output)
	if count == 0 {
		return nil
	}

	matches := subAgentDetailPattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		agents := make([]pod.SubAgent, count)
		for i := 0; i < count; i++ {
			agents[i] = pod.SubAgent{
				AgentType:   pod.AgentTask,
				Description: "agent " + strconv.Itoa(i+1),
			}
		}
		return agents
	}

	agents := make([]pod.SubAgent, 0, len(matches))
	for _, m := range matches {
		desc := strings.TrimSpace(m[1])
		agents = append(agents, pod.SubAgent{
			AgentType:   inferAgentType(desc),
			Description: desc,
		})
	}
	return agents
}

func inferAgentType(desc string) pod.SubAgentType {
	lower := strings.ToLower(desc)
	switch {
	case strings.Contains(lower, "explore"), strings.Contains(lower, "search"), strings.Contains(lower, "find"):
		return pod.AgentExplore
	case strings.Contains(lower, "plan"), strings.Contains(lower, "design"):
		return pod.AgentPlan
	case strings.Contains(lower, "test"), strings.Contains(lower, "build"):
		return pod.AgentBash
	default:
		return pod.AgentTask
	}
}

// IsAssistantPane reports whether captured output looks like it hosts a
// coding assistant.
func IsAssistantPane(output string) bool {
	if strings.TrimSpace(output) == "" {
		return false
	}
	if assistantWordPattern.MatchString(output) {
		return true
	}
	if assistantPromptPattern.MatchString(output) {
		return true
	}
	if assistantToolUsePattern.MatchString(output) {
		return true
	}
	if assistantBashPattern.MatchString(output) && assistantReadPattern.MatchString(output) {
		return true
	}
	if assistantAnthropicPattern.MatchString(output) {
		return true
	}
	if assistantIndentedToolPattern.MatchString(output) {
		return true
	}
	return false
}

// DetectRoleName infers a member's role name from its captured output,
// falling back to member-<fallbackIndex> when nothing else matches.
func DetectRoleName(output string, fallbackIndex int) string {
	if m := atNamePattern.FindStringSubmatch(output); m != nil {
		return m[1]
	}

	if leadPattern.MatchString(output) {
		return "lead"
	}

	if m := introPattern.FindStringSubmatch(output); m != nil {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if name != "" && !genericNameTokens[strings.ToLower(name)] {
			return name
		}
	}

	return "member-" + strconv.Itoa(fallbackIndex)
}

// RollupStatus is classify's view of pod.RollupStatus, kept so callers
// that only import classify still get the roll-up rule.
func RollupStatus(statuses []pod.MemberStatus) pod.MemberStatus {
	return pod.RollupStatus(statuses)
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func lastNLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

func lastLineOf(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return lines[len(lines)-1]
}
