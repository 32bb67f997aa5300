package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kenki-os/kenkictl/internal/artifact"
	"github.com/kenki-os/kenkictl/internal/config"
	"github.com/kenki-os/kenkictl/internal/provisioning"
	"github.com/kenki-os/kenkictl/internal/util/prerequisites"
)

// DoctorOptions are the flag values for the doctor command.
type DoctorOptions struct {
	PlanPath string
	JSON     bool
}

// DoctorStatus is the diagnostic snapshot doctor reports.
type DoctorStatus struct {
	Tools        []ToolStatus `json:"tools"`
	Disk         DiskStatus   `json:"disk"`
	Config       ConfigStatus `json:"config"`
	Assistant    bool         `json:"assistant"`
	CloudBackend bool         `json:"cloudBackend"`
	LocalBackend bool         `json:"localBackend"`
}

// ToolStatus is one external binary probe.
type ToolStatus struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Found    bool   `json:"found"`
	Version  string `json:"version,omitempty"`
}

// DiskStatus reports free space at the model directory.
type DiskStatus struct {
	Path      string `json:"path"`
	Available uint64 `json:"availableBytes"`
}

// ConfigStatus reports the assistant config document state.
type ConfigStatus struct {
	Path    string `json:"path"`
	Exists  bool   `json:"exists"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Seams for tests.
var (
	checkTools = prerequisites.CheckAll
	freeSpace  = artifact.FreeSpace

	// probeAssistant runs the assistant with a single flag and reports
	// only whether it exited zero; its output is not interpreted.
	probeAssistant = func(ctx context.Context) bool {
		// #nosec G204 - fixed binary and argument
		err := exec.CommandContext(ctx, provisioning.AssistantPath, "--help").Run()
		return err == nil
	}
)

// Doctor reports the provisioning environment and assistant health.
func Doctor(ctx context.Context, opts DoctorOptions) error {
	plan, err := loadPlan(opts.PlanPath)
	if err != nil {
		return err
	}

	status := collectStatus(ctx, plan)

	if opts.JSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printDoctor(status)
	return nil
}

func collectStatus(ctx context.Context, plan *config.Plan) *DoctorStatus {
	status := &DoctorStatus{}

	for _, res := range checkTools().Results {
		status.Tools = append(status.Tools, ToolStatus{
			Name:     res.Tool.Name,
			Required: res.Tool.Required,
			Found:    res.Found,
			Version:  res.Version,
		})
	}

	status.Disk.Path = plan.ModelDir
	if free, err := freeSpace(diskProbePath(plan.ModelDir)); err == nil {
		status.Disk.Available = free
	}

	status.Config.Path = plan.ConfigPath
	if _, err := os.Stat(plan.ConfigPath); err == nil {
		status.Config.Exists = true
	}
	doc, err := config.Load(plan.ConfigPath)
	if err != nil {
		status.Config.Message = err.Error()
	} else {
		status.Config.Valid = true
		status.CloudBackend = hasAPIKey(doc)
		status.LocalBackend = localModelReady(doc)
	}

	status.Assistant = probeAssistant(ctx)
	return status
}

// diskProbePath walks up from path to the nearest existing directory so
// statfs works before the model dir has been created.
func diskProbePath(path string) string {
	for path != "/" && path != "." {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		path = strings.TrimSuffix(path, "/")
		if idx := strings.LastIndex(path, "/"); idx > 0 {
			path = path[:idx]
		} else {
			return "/"
		}
	}
	return "/"
}

func hasAPIKey(doc config.Document) bool {
	key, _ := doc["anthropic_api_key"].(string)
	return key != "" && key != config.PlaceholderAPIKey
}

func localModelReady(doc config.Document) bool {
	llm, _ := doc["local_llm"].(map[string]any)
	if llm == nil {
		return false
	}
	enabled, _ := llm["enabled"].(bool)
	modelPath, _ := llm["model_path"].(string)
	if !enabled || modelPath == "" {
		return false
	}
	_, err := os.Stat(modelPath)
	return err == nil
}

func printDoctor(status *DoctorStatus) {
	fmt.Println()
	fmt.Println("  kenki provisioning environment")
	fmt.Println("  " + strings.Repeat("=", 30))
	fmt.Println()

	fmt.Println("  Tools")
	fmt.Println("  " + strings.Repeat("-", 30))
	for _, tool := range status.Tools {
		extra := tool.Version
		if !tool.Found && tool.Required {
			extra = "required"
		}
		printRow(tool.Name, tool.Found, extra)
	}
	fmt.Println()

	fmt.Println("  Assistant")
	fmt.Println("  " + strings.Repeat("-", 30))
	printRow("config "+status.Config.Path, status.Config.Valid, status.Config.Message)
	printRow("cloud backend", status.CloudBackend, apiKeyHint(status.CloudBackend))
	printRow("local backend", status.LocalBackend, "")
	printRow("assistant binary", status.Assistant, "")
	fmt.Println()

	fmt.Printf("  Disk: %s free at %s\n", humanize.Bytes(status.Disk.Available), status.Disk.Path)
	fmt.Println()
}

func apiKeyHint(ok bool) string {
	if ok {
		return ""
	}
	return "set anthropic_api_key in the config"
}

func printRow(name string, ok bool, extra string) {
	indicator := "✅"
	if !ok {
		indicator = "❌"
	}
	if extra != "" {
		fmt.Printf("  %s  %-24s %s\n", indicator, name, extra)
	} else {
		fmt.Printf("  %s  %s\n", indicator, name)
	}
}
