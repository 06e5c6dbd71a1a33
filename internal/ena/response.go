package ena

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Outcome classifies a submission receipt. The numeric values are part
// of the process contract: the exit code on a failed run registration
// is the absolute value of the outcome code.
type Outcome int

const (
	// OutcomeOK means the receipt reported success.
	OutcomeOK Outcome = 0
	// OutcomeDuplicate means the object was already registered; the
	// existing accession is reusable and the outcome counts as success.
	OutcomeDuplicate Outcome = 1
	// OutcomeFatal is a terminal failure.
	OutcomeFatal Outcome = -1
	// OutcomeMissingUpload is a terminal failure meaning the data file
	// was never staged in the upload area.
	OutcomeMissingUpload Outcome = -3
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeDuplicate:
		return "DUPLICATE"
	case OutcomeFatal:
		return "FATAL"
	case OutcomeMissingUpload:
		return "MISSING_UPLOAD"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// IsFatal reports whether the outcome halts the pipeline.
func (o Outcome) IsFatal() bool {
	return o < 0
}

// Code returns the numeric outcome code.
func (o Outcome) Code() int {
	return int(o)
}

// The drop-box reports recoverable conditions as ERROR elements whose
// text matches a small closed vocabulary. Each known phrase maps to an
// outcome and, where applicable, a rule for extracting the existing
// accession from the error text.
type receiptErrorRule struct {
	phrase    string
	outcome   Outcome
	accession func(text string) string
}

var receiptErrorRules = []receiptErrorRule{
	{
		phrase:  "already exists in the submission account with accession:",
		outcome: OutcomeDuplicate,
		// The accession is the last whitespace-delimited token, quoted
		// and followed by a period.
		accession: func(text string) string {
			fields := strings.Fields(text)
			if len(fields) == 0 {
				return ""
			}
			last := fields[len(fields)-1]
			return strings.Trim(last, `".`)
		},
	},
	{
		phrase:  "has already been submitted and is waiting to be processed",
		outcome: OutcomeDuplicate,
		// "This object (<accession>) has already been submitted..."
		// puts the accession in the fifth token.
		accession: func(text string) string {
			fields := strings.Fields(text)
			if len(fields) < 5 {
				return ""
			}
			return fields[4]
		},
	},
	{
		phrase:  "does not exist in the upload area",
		outcome: OutcomeMissingUpload,
	},
}

// Classify interprets an HTTP response from the drop-box. It returns
// the outcome plus any accession extracted from the receipt. When
// expectTag is non-empty and the receipt reports success, the
// accession attribute of the first element with that name is
// extracted; extraction failure leaves the accession empty without
// demoting the outcome. Unclassifiable responses dump the full body to
// diag for human triage.
func Classify(status int, body string, expectTag string, diag io.Writer) (Outcome, string) {
	if diag == nil {
		diag = io.Discard
	}

	if status != 200 {
		dumpBody(diag, body,
			fmt.Sprintf("ENA responded with HTTP %d.", status),
			"I don't know how to handle this. For your information, the response is below:")
		return OutcomeFatal, ""
	}

	errorTexts := receiptErrors(body)
	if len(errorTexts) == 0 {
		accession := ""
		if expectTag != "" {
			accession = receiptAccession(body, expectTag)
		}
		return OutcomeOK, accession
	}

	for _, text := range errorTexts {
		for _, rule := range receiptErrorRules {
			if !strings.Contains(text, rule.phrase) {
				continue
			}
			accession := ""
			if rule.accession != nil {
				accession = rule.accession(text)
			}
			switch rule.outcome {
			case OutcomeDuplicate:
				fmt.Fprintf(diag, "[SKIP] Accession %s already exists. Moving on...\n", accession)
			}
			return rule.outcome, accession
		}
	}

	dumpBody(diag, body,
		"ENA responded with HTTP 200, but there were ERROR messages in the response.",
		"I don't know how to handle this. For your information, the response is below:")
	return OutcomeFatal, ""
}

// receiptErrors collects the text of every ERROR element in document
// order. Parsing is lenient: a malformed receipt yields whatever was
// readable before the error.
func receiptErrors(body string) []string {
	decoder := xml.NewDecoder(strings.NewReader(body))
	decoder.Strict = false

	var texts []string
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		start, ok := token.(xml.StartElement)
		if !ok || !strings.EqualFold(start.Name.Local, "ERROR") {
			continue
		}
		var text string
		if err := decoder.DecodeElement(&text, &start); err != nil {
			break
		}
		texts = append(texts, text)
	}
	return texts
}

// receiptAccession extracts the accession attribute of the first
// element named tag. Returns "" on any parse failure.
func receiptAccession(body, tag string) string {
	decoder := xml.NewDecoder(strings.NewReader(body))
	decoder.Strict = false

	for {
		token, err := decoder.Token()
		if err != nil {
			return ""
		}
		start, ok := token.(xml.StartElement)
		if !ok || !strings.EqualFold(start.Name.Local, tag) {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "accession" {
				return attr.Value
			}
		}
		return ""
	}
}

func dumpBody(diag io.Writer, body string, headline ...string) {
	banner := strings.Repeat("*", 80)
	lines := append([]string{banner}, headline...)
	lines = append(lines, banner, body, banner)
	fmt.Fprintln(diag, strings.Join(lines, "\n"))
}
