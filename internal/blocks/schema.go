package blocks

// FieldSpec describes one editable field of a block type.
type FieldSpec struct {
	Name  string
	Label string
	// List fields are edited as comma separated text and stored as []string.
	List bool
}

var schemas = map[Type][]FieldSpec{
	TypeTextQuestion: {
		{Name: "question", Label: "Question"},
	},
	TypeOptionsQuestion: {
		{Name: "question", Label: "Question"},
		{Name: "optionType", Label: "Option Type"},
		{Name: "options", Label: "Options", List: true},
	},
	TypePlateSampler: {
		{Name: "plateCount", Label: "Plate Count"},
		{Name: "plateSize", Label: "Plate Size"},
	},
	TypePlateAddReagent: {
		{Name: "plateLabel", Label: "Plate"},
		{Name: "reagentLabel", Label: "Reagent"},
	},
	TypePlateSequencer: {
		{Name: "plateLabel", Label: "Plate"},
	},
}

// Schema lists the editable fields for a block type.
func Schema(t Type) []FieldSpec {
	return append([]FieldSpec{}, schemas[t]...)
}

func lookupField(t Type, name string) (FieldSpec, bool) {
	for _, spec := range schemas[t] {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}
