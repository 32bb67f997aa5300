// Package prerequisites checks for the external tools kenkictl drives
// during provisioning.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is an external binary kenkictl may need.
type Tool struct {
	// Name is the binary name looked up in PATH.
	Name string

	// Required indicates the tool is mandatory for provisioning.
	Required bool

	// Description explains what the tool is used for.
	Description string
}

// ProvisioningTools returns the tools a full provisioning run drives,
// in the order they are checked.
func ProvisioningTools() []Tool {
	return []Tool{
		{Name: "pacman", Required: true, Description: "Installs the package sets"},
		{Name: "systemctl", Required: true, Description: "Registers and starts the assistant services"},
		{Name: "zsh", Required: true, Description: "Target shell for the composed environment"},
		{Name: "mkarchiso", Required: true, Description: "Builds the final ISO image"},
	}
}

// AssistantTools returns tools the assistant integration benefits from
// but provisioning does not strictly need.
func AssistantTools() []Tool {
	return []Tool{
		{Name: "ollama", Required: false, Description: "Serves the local model endpoint"},
		{Name: "kenki-assist", Required: false, Description: "The assistant CLI itself"},
	}
}

// CheckResult is the outcome of probing one tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults aggregates probe outcomes.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors reports whether any required tool is missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error naming the missing required tools, or nil.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, tool.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check probes the given tools in order.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := exec.LookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = toolVersion(tool.Name)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckAll probes provisioning and assistant tools.
func CheckAll() *CheckResults {
	tools := ProvisioningTools()
	tools = append(tools, AssistantTools()...)
	return Check(tools)
}

// toolVersion asks the tool for its version, best effort.
func toolVersion(name string) string {
	for _, flag := range []string{"--version", "version", "-V"} {
		// #nosec G204 - name comes from fixed Tool definitions
		out, err := exec.Command(name, flag).Output()
		if err == nil {
			lines := strings.SplitN(string(out), "\n", 2)
			return strings.TrimSpace(lines[0])
		}
	}
	return ""
}
