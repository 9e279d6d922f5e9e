package agentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// fileExecutor runs the coding tools (Read/Write/Edit/Bash/Glob/Grep)
// against a working directory. Control Tool Surface calls are dispatched
// separately, by Invoker.dispatch, through toolsurface.Handler.
type fileExecutor struct {
	workDir string
}

func newFileExecutor(workDir string) *fileExecutor {
	return &fileExecutor{workDir: workDir}
}

// toolResult mirrors the shape toolsurface.Result uses, so both execution
// paths can be folded into the same anthropic.NewToolResultBlock call.
type toolResult struct {
	Content string
	IsError bool
}

func (e *fileExecutor) execute(ctx context.Context, name string, input json.RawMessage) toolResult {
	switch name {
	case "Read":
		return e.execRead(input)
	case "Write":
		return e.execWrite(input)
	case "Edit":
		return e.execEdit(input)
	case "Bash":
		return e.execBash(ctx, input)
	case "Glob":
		return e.execGlob(input)
	case "Grep":
		return e.execGrep(ctx, input)
	default:
		return toolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}
	}
}

func (e *fileExecutor) execRead(input json.RawMessage) toolResult {
	var params struct {
		FilePath string `json:"file_path"`
		Offset   int    `json:"offset"`
		Limit    int    `json:"limit"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return toolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}

	path := e.resolvePath(params.FilePath)
	content, err := os.ReadFile(path)
	if err != nil {
		return toolResult{Content: fmt.Sprintf("failed to read file: %v", err), IsError: true}
	}

	lines := strings.Split(string(content), "\n")

	start := 0
	if params.Offset > 0 {
		start = params.Offset - 1
		if start >= len(lines) {
			return toolResult{Content: "offset beyond end of file", IsError: true}
		}
	}

	end := len(lines)
	if params.Limit > 0 && start+params.Limit < end {
		end = start + params.Limit
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		fmt.Fprintf(&b, "%6d\t%s\n", i+1, lines[i])
	}
	return toolResult{Content: b.String()}
}

func (e *fileExecutor) execWrite(input json.RawMessage) toolResult {
	var params struct {
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return toolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}

	path := e.resolvePath(params.FilePath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return toolResult{Content: fmt.Sprintf("failed to create directory: %v", err), IsError: true}
	}
	if err := os.WriteFile(path, []byte(params.Content), 0644); err != nil {
		return toolResult{Content: fmt.Sprintf("failed to write file: %v", err), IsError: true}
	}
	return toolResult{Content: fmt.Sprintf("wrote %d bytes to %s", len(params.Content), params.FilePath)}
}

func (e *fileExecutor) execEdit(input json.RawMessage) toolResult {
	var params struct {
		FilePath   string `json:"file_path"`
		OldString  string `json:"old_string"`
		NewString  string `json:"new_string"`
		ReplaceAll bool   `json:"replace_all"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return toolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}

	path := e.resolvePath(params.FilePath)
	content, err := os.ReadFile(path)
	if err != nil {
		return toolResult{Content: fmt.Sprintf("failed to read file: %v", err), IsError: true}
	}

	contentStr := string(content)
	count := strings.Count(contentStr, params.OldString)
	if count == 0 {
		return toolResult{Content: "old_string not found in file", IsError: true}
	}
	if !params.ReplaceAll && count > 1 {
		return toolResult{
			Content: fmt.Sprintf("old_string found %d times; must be unique or use replace_all=true", count),
			IsError: true,
		}
	}

	var newContent string
	if params.ReplaceAll {
		newContent = strings.ReplaceAll(contentStr, params.OldString, params.NewString)
	} else {
		newContent = strings.Replace(contentStr, params.OldString, params.NewString, 1)
	}

	if err := os.WriteFile(path, []byte(newContent), 0644); err != nil {
		return toolResult{Content: fmt.Sprintf("failed to write file: %v", err), IsError: true}
	}
	if params.ReplaceAll {
		return toolResult{Content: fmt.Sprintf("replaced %d occurrences", count)}
	}
	return toolResult{Content: "edit successful"}
}

func (e *fileExecutor) execBash(ctx context.Context, input json.RawMessage) toolResult {
	var params struct {
		Command string `json:"command"`
		Timeout int    `json:"timeout"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return toolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}

	timeout := 120 * time.Second
	if params.Timeout > 0 {
		timeout = time.Duration(params.Timeout) * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", params.Command)
	cmd.Dir = e.workDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return toolResult{Content: fmt.Sprintf("command timed out after %v:\n%s", timeout, output), IsError: true}
		}
		return toolResult{Content: fmt.Sprintf("%s\nerror: %v", output, err), IsError: true}
	}

	result := string(output)
	if len(result) > 30000 {
		result = result[:30000] + "\n... (output truncated)"
	}
	return toolResult{Content: result}
}

func (e *fileExecutor) execGlob(input json.RawMessage) toolResult {
	var params struct {
		Pattern string `json:"pattern"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return toolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}

	searchPath := e.workDir
	if params.Path != "" {
		searchPath = e.resolvePath(params.Path)
	}

	var matches []string
	filepath.WalkDir(searchPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
				return filepath.SkipDir
			}
			return nil
		}
		if matched, _ := filepath.Match(filepath.Base(params.Pattern), d.Name()); matched {
			relPath, _ := filepath.Rel(searchPath, path)
			matches = append(matches, relPath)
		}
		return nil
	})

	if len(matches) == 0 {
		return toolResult{Content: "no files matched the pattern"}
	}
	return toolResult{Content: strings.Join(matches, "\n")}
}

func (e *fileExecutor) execGrep(ctx context.Context, input json.RawMessage) toolResult {
	var params struct {
		Pattern string `json:"pattern"`
		Path    string `json:"path"`
		Glob    string `json:"glob"`
		Context int    `json:"context"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return toolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}

	args := []string{"--color=never", "-n"}
	if params.Context > 0 {
		args = append(args, "-C", fmt.Sprintf("%d", params.Context))
	}
	if params.Glob != "" {
		args = append(args, "--glob", params.Glob)
	}
	args = append(args, params.Pattern)

	searchPath := e.workDir
	if params.Path != "" {
		searchPath = e.resolvePath(params.Path)
	}
	args = append(args, searchPath)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "rg", args...)
	output, _ := cmd.CombinedOutput()

	result := string(output)
	if result == "" {
		return toolResult{Content: "no matches found"}
	}
	if len(result) > 30000 {
		result = result[:30000] + "\n... (output truncated)"
	}
	return toolResult{Content: result}
}

func (e *fileExecutor) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.workDir, path)
}
