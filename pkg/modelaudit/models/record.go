package models

// CellKind is the derived classification of one cell record.
type CellKind string

const (
	// CellLiteral marks a cell holding a direct value with no formula.
	CellLiteral CellKind = "literal"
	// CellFormula marks a cell computed by a formula.
	CellFormula CellKind = "formula"
	// CellError marks a cell whose evaluated value is a spreadsheet
	// error token, regardless of whether a formula produced it.
	CellError CellKind = "error"
)

// CellRecord couples one coordinate with its evaluated value and, when
// present, its raw formula text.
type CellRecord struct {
	// Ref is the cell coordinate.
	Ref CellRef `json:"ref"`
	// Value is the evaluated value snapshot.
	Value TypedValue `json:"value"`
	// Formula is the raw formula text including the leading "=".
	// Empty means the cell is a literal.
	Formula string `json:"formula,omitempty"`
	// ParseWarning records why the formula could not be tokenized.
	// Such a cell contributes no outgoing references but stays in the
	// graph as a node.
	ParseWarning string `json:"parse_warning,omitempty"`
}

// Kind derives the record classification. Error tokens win over the
// literal/formula split because downstream detectors treat them first.
func (c CellRecord) Kind() CellKind {
	if c.Value.Kind == ValueError {
		return CellError
	}
	if c.Formula != "" {
		return CellFormula
	}
	return CellLiteral
}
