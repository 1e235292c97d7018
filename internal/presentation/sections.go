package presentation

import "github.com/yildizm/qupid/internal/qupid"

// Item maps a parameter key to its label
type Item struct {
	Key   string
	Label string
}

// SectionSpec is a titled group of parameters
type SectionSpec struct {
	Title string
	Items []Item
}

// Section is a SectionSpec filled with a result's values
type Section struct {
	Title string `json:"title" yaml:"title"`
	Rows  []Row  `json:"rows" yaml:"rows"`
}

var parameterSections = []SectionSpec{
	{
		Title: "mutual dynamic",
		Items: []Item{
			{qupid.ParamMutualEmpathy, "mutual empathy"},
			{qupid.ParamMutualCompatibility, "compatibility"},
			{qupid.ParamMutualFrequency, "frequency of interactions"},
			{qupid.ParamMutualStrength, "strength of interactions"},
			{qupid.ParamMutualSync, "how in sync you both are"},
			{qupid.ParamMutualCodependence, "how negatively codependent you are"},
		},
	},
	{
		Title: "person a",
		Items: []Item{
			{qupid.ParamPersonATemperament, "temperament"},
			{qupid.ParamPersonAHotCold, "how hot/cold they are"},
			{qupid.ParamPersonADistant, "how distant they are"},
			{qupid.ParamPersonABurnedOut, "how burned out they are"},
		},
	},
	{
		Title: "person b",
		Items: []Item{
			{qupid.ParamPersonBTemperament, "temperament"},
			{qupid.ParamPersonBHotCold, "how hot/cold they are"},
			{qupid.ParamPersonBDistant, "how distant they are"},
			{qupid.ParamPersonBBurnedOut, "how burned out they are"},
		},
	},
}

// ParameterSections returns the fixed section layout
func ParameterSections() []SectionSpec {
	out := make([]SectionSpec, len(parameterSections))
	for i, s := range parameterSections {
		out[i] = SectionSpec{Title: s.Title, Items: append([]Item(nil), s.Items...)}
	}
	return out
}

// Sections fills the layout from the result. Missing keys render as "-".
// It is nil when the result has no inferred parameters.
func Sections(result *qupid.ServerResult) []Section {
	if result == nil || result.InferredParams == nil {
		return nil
	}

	sections := make([]Section, 0, len(parameterSections))
	for _, spec := range parameterSections {
		rows := make([]Row, 0, len(spec.Items))
		for _, item := range spec.Items {
			v, _ := result.InferredParams.Get(item.Key)
			rows = append(rows, Row{Key: item.Key, Label: item.Label, Value: DisplayValue(v), Raw: v})
		}
		sections = append(sections, Section{Title: spec.Title, Rows: rows})
	}
	return sections
}
