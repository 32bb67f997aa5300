package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/kenki-os/kenkictl/internal/artifact"
)

// SelectModel presents the catalog and returns the chosen index, or -1
// when the operator declines to download a model.
func SelectModel(catalog []artifact.ModelArtifact) (int, error) {
	options := make([]huh.Option[int], 0, len(catalog)+1)
	for i, art := range catalog {
		label := fmt.Sprintf("%s (%s)", art.Name, humanize.Bytes(art.Size))
		options = append(options, huh.NewOption(label, i))
	}
	options = append(options, huh.NewOption("Skip - use the cloud backend only", -1))

	choice := -1
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Local model").
				Description("Select a model for the offline assistant backend.").
				Options(options...).
				Value(&choice),
		),
	)

	if err := form.Run(); err != nil {
		return -1, fmt.Errorf("model selection canceled: %w", err)
	}
	return choice, nil
}
