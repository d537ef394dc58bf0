package hierarchy

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/statsight/sic-cli/internal/meta"
	"github.com/statsight/sic-cli/internal/tables"
)

// StructureRow is one row of the published structure table.
type StructureRow struct {
	Description string
	Section     string
	Code        string
	Level       string
}

// ActivityRow is one row of the activity index: a 5-digit code and one
// activity known to belong to it.
type ActivityRow struct {
	Code     string
	Activity string
}

// Load builds the hierarchy from the structure rows, the activity index,
// and optional per-code metadata keyed by alpha code.
func Load(structure []StructureRow, activities []ActivityRow, metaByCode map[string]meta.Meta) (*Hierarchy, error) {
	if len(structure) == 0 {
		return nil, eris.New("hierarchy: no structure rows")
	}

	nodes := make([]*Node, 0, len(structure))
	byAlpha := make(map[string]*Node, len(structure))

	for _, row := range structure {
		code, err := FromSectionCodeLevel(row.Section, row.Code, row.Level)
		if err != nil {
			return nil, eris.Wrapf(err, "hierarchy: structure row %q", row.Code)
		}
		node := &Node{Code: code, Description: row.Description}
		nodes = append(nodes, node)
		byAlpha[code.Alpha] = node
	}

	if err := linkParents(nodes, byAlpha); err != nil {
		return nil, err
	}

	for _, node := range nodes {
		if m, ok := metaByCode[node.Code.Alpha]; ok {
			node.Meta = m.Clean()
		} else if len(metaByCode) > 0 {
			zap.L().Debug("hierarchy: no metadata for code", zap.String("code", node.Code.Alpha))
		}
	}

	if err := attachActivities(nodes, activities); err != nil {
		return nil, err
	}

	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Code.Less(nodes[j].Code) })

	return &Hierarchy{nodes: nodes, byKey: buildKeyLookup(nodes)}, nil
}

// LoadFiles reads the structure and activity tables (and the optional
// metadata file) and builds the hierarchy.
func LoadFiles(structurePath, activityPath, metaPath string) (*Hierarchy, error) {
	structure, err := ReadStructure(structurePath)
	if err != nil {
		return nil, err
	}

	var activities []ActivityRow
	if activityPath != "" {
		activities, err = ReadActivities(activityPath)
		if err != nil {
			return nil, err
		}
	}

	var metaByCode map[string]meta.Meta
	if metaPath != "" {
		metaByCode, err = meta.LoadFile(metaPath)
		if err != nil {
			return nil, err
		}
	}

	return Load(structure, activities, metaByCode)
}

// ReadStructure loads the structure table from a CSV or XLSX file with
// columns description, section, most_disaggregated_level, level_headings.
func ReadStructure(path string) ([]StructureRow, error) {
	tbl, err := tables.ReadTable(path, "description", "section", "most_disaggregated_level", "level_headings")
	if err != nil {
		return nil, eris.Wrap(err, "hierarchy: read structure")
	}

	rows := make([]StructureRow, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		rows = append(rows, StructureRow{
			Description: tbl.Col(row, "description"),
			Section:     tbl.Col(row, "section"),
			Code:        tbl.Col(row, "most_disaggregated_level"),
			Level:       tbl.Col(row, "level_headings"),
		})
	}
	return rows, nil
}

// ReadActivities loads the activity index from a CSV or XLSX file with
// columns uk_sic_2007, activity.
func ReadActivities(path string) ([]ActivityRow, error) {
	tbl, err := tables.ReadTable(path, "uk_sic_2007", "activity")
	if err != nil {
		return nil, eris.Wrap(err, "hierarchy: read activities")
	}

	rows := make([]ActivityRow, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		rows = append(rows, ActivityRow{
			Code:     tbl.Col(row, "uk_sic_2007"),
			Activity: tbl.Col(row, "activity"),
		})
	}
	return rows, nil
}

// linkParents wires parent/child pointers. Every non-section node's
// parent is the node whose alpha code is the obvious prefix.
func linkParents(nodes []*Node, byAlpha map[string]*Node) error {
	for _, node := range nodes {
		if node.Code.Digits <= 1 {
			continue
		}

		var prefix string
		switch node.Code.Digits {
		case 2:
			prefix = node.Code.Alpha[:1]
		case 3:
			prefix = node.Code.Alpha[:3]
		case 4:
			prefix = node.Code.Alpha[:4]
		case 5:
			prefix = node.Code.Alpha[:5]
		default:
			return eris.Errorf("hierarchy: no parent for %q", node.Code.Alpha)
		}

		parentAlpha := prefix
		for len(parentAlpha) < alphaCodeLength {
			parentAlpha += "x"
		}

		parent, ok := byAlpha[parentAlpha]
		if !ok {
			return eris.Errorf("hierarchy: missing parent %q for %q", parentAlpha, node.Code.Alpha)
		}
		parent.Children = append(parent.Children, node)
		node.Parent = parent
	}
	return nil
}

// attachActivities assigns activity-index entries to their leaf nodes by
// 5-digit numeric code.
func attachActivities(nodes []*Node, activities []ActivityRow) error {
	if len(activities) == 0 {
		return nil
	}

	byDigits := make(map[string]*Node, len(nodes))
	for _, node := range nodes {
		if node.Code.Digits == 4 || node.Code.Digits == 5 {
			byDigits[node.NumericPadded()] = node
		}
	}

	for _, row := range activities {
		node, ok := byDigits[row.Code]
		if !ok {
			return eris.Errorf("hierarchy: activity references unknown code %q", row.Code)
		}
		node.Activities = append(node.Activities, row.Activity)
	}
	return nil
}

// buildKeyLookup indexes each node under every key form Get supports.
func buildKeyLookup(nodes []*Node) map[string]*Node {
	byKey := make(map[string]*Node, len(nodes)*4)
	for _, node := range nodes {
		byKey[node.Code.String()] = node
		byKey[node.Code.Alpha] = node
		byKey[node.Code.Trimmed()] = node
		if node.Code.Digits > 1 {
			byKey[node.Code.Trimmed()[1:]] = node
		}
		if node.Code.Digits == 4 && node.IsLeaf() {
			byKey[node.NumericPadded()] = node
		}
	}
	return byKey
}
