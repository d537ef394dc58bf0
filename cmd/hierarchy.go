package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/statsight/sic-cli/internal/hierarchy"
)

// loadHierarchy materializes the structure/activity tables and the
// metadata file and builds the hierarchy.
func loadHierarchy(cmd *cobra.Command) (*hierarchy.Hierarchy, error) {
	if cfg.Data.StructureTable == "" {
		return nil, eris.New("data.structure_table is not configured")
	}

	resolver := tableResolver()
	ctx := cmd.Context()

	structurePath, err := resolver.Resolve(ctx, cfg.Data.StructureTable)
	if err != nil {
		return nil, err
	}

	activityPath := ""
	if cfg.Data.ActivityTable != "" {
		activityPath, err = resolver.Resolve(ctx, cfg.Data.ActivityTable)
		if err != nil {
			return nil, err
		}
	}

	return hierarchy.LoadFiles(structurePath, activityPath, cfg.Data.MetaFile)
}

// nodeView is the CLI rendering of one hierarchy node.
type nodeView struct {
	Code        string   `json:"code"`
	Alpha       string   `json:"alpha_code"`
	Level       string   `json:"level"`
	Section     string   `json:"section"`
	Description string   `json:"description"`
	Title       string   `json:"title,omitempty"`
	Detail      string   `json:"detail,omitempty"`
	Includes    []string `json:"includes,omitempty"`
	Excludes    []string `json:"excludes,omitempty"`
	Parent      string   `json:"parent,omitempty"`
	Children    []string `json:"children,omitempty"`
	Activities  []string `json:"activities,omitempty"`
}

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "Navigate the SIC hierarchy",
}

var hierarchyShowCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Show one hierarchy node with its relations and metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHierarchy(cmd)
		if err != nil {
			return err
		}

		node, ok := h.Get(args[0])
		if !ok {
			return eris.Errorf("code %q not found in hierarchy", args[0])
		}

		view := nodeView{
			Code:        node.Code.String(),
			Alpha:       node.Code.Alpha,
			Level:       node.Code.Level,
			Section:     node.Code.Section(),
			Description: node.Description,
			Title:       node.Meta.Title,
			Detail:      node.Meta.Detail,
			Includes:    node.Meta.Includes,
			Excludes:    node.Meta.Excludes,
			Activities:  node.Activities,
		}
		if node.Parent != nil {
			view.Parent = node.Parent.Code.String()
		}
		for _, child := range node.Children {
			view.Children = append(view.Children, child.Code.String())
		}

		return writeOutput(os.Stdout, outputFormat, view)
	},
}

var hierarchyLeavesCmd = &cobra.Command{
	Use:   "leaves",
	Short: "Dump the deduplicated leaf-level text corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHierarchy(cmd)
		if err != nil {
			return err
		}
		return writeOutput(os.Stdout, outputFormat, h.LeafText())
	},
}

func init() {
	hierarchyCmd.AddCommand(hierarchyShowCmd)
	hierarchyCmd.AddCommand(hierarchyLeavesCmd)
	rootCmd.AddCommand(hierarchyCmd)
}
