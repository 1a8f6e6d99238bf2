package detect

import (
	"github.com/auditkit/modelaudit/pkg/modelaudit/models"
)

type explanation struct {
	why string
	fix string
}

// explanations carries the static why/fix text attached to each finding
// category for the rendered report.
var explanations = map[models.IssueKind]explanation{
	models.IssueHardCodedPlug: {
		why: "A plug is a hard-coded value inserted into a row of formulas to force a desired result. It breaks the logical flow: assumption changes no longer propagate, and the model can produce misleading outputs without warning.",
		fix: "Identify what the cell should calculate, write the correct formula, and trace upstream if the formula then produces unexpected results. Hard-coded values belong in projection periods only when they are genuine assumptions.",
	},
	models.IssueBalanceImbalance: {
		why: "Assets must equal Liabilities plus Equity in every period. An imbalance means a structural error: cash flows not routing correctly, or a balance sheet account missing its corresponding entry.",
		fix: "Add a balance-check row, find the first out-of-balance period, and trace every entry in that period. Check that each cash movement has a matching balance sheet entry.",
	},
	models.IssueBrokenReference: {
		why: "Spreadsheet errors propagate: any cell referencing an error cell also errors, silently breaking downstream outputs and key metrics.",
		fix: "Trace the error to its source and fix the root cause rather than wrapping it in IFERROR, which hides real problems.",
	},
	models.IssueExternalReference: {
		why: "External links depend on files that may not exist on other machines, causing #REF! errors when the model is shared, and drift silently when the source file changes.",
		fix: "Convert external links to static values for historical data. For live feeds, document the source on a dedicated data-inputs sheet.",
	},
	models.IssueCircularReference: {
		why: "Circular references make models fragile, slow, and prone to convergence failures, and they make auditing extremely difficult.",
		fix: "Break the circularity with beginning-of-period balances instead of averages, or document any intentional iteration clearly.",
	},
	models.IssueOrphanedRegion: {
		why: "A calculation disconnected from both inputs and outputs contributes nothing to the model and usually marks abandoned or broken logic.",
		fix: "Either wire the calculation into the model or remove it.",
	},
	models.IssueParseWarning: {
		why: "A formula that could not be tokenized contributes no dependencies to the graph, so findings touching it carry lower confidence.",
		fix: "Inspect the formula manually; array formulas and exotic functions are the usual cause.",
	},
}

// errorCauses refines the broken-reference explanation per error token.
var errorCauses = map[string]string{
	"#REF!":   "a formula references a cell that has been deleted, or a range that was invalidated",
	"#NAME?":  "an unrecognized function name or a named range that does not exist",
	"#VALUE!": "a formula received the wrong type of argument",
	"#DIV/0!": "a formula divides by zero or an empty cell",
}

func explain(issue *models.Issue) {
	ex, ok := explanations[issue.Kind]
	if !ok {
		return
	}
	issue.Why = ex.why
	issue.Fix = ex.fix
	if issue.Kind != models.IssueBrokenReference {
		return
	}
	for _, ev := range issue.Evidence {
		if cause, ok := errorCauses[ev.Value]; ok {
			issue.Why = issue.Why + " Here: " + cause + "."
			return
		}
	}
}
