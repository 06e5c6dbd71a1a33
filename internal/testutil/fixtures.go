// Package testutil provides testing utilities for pyena packages:
// canned drop-box receipts and an in-process fake of the archive's
// submission and portal endpoints.
package testutil

import "fmt"

// ReceiptOK returns a successful receipt assigning the given accession
// to a document of the given type (SAMPLE, EXPERIMENT or RUN).
func ReceiptOK(docType, accession string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT receiptDate="2024-01-15T10:00:00.000Z" success="true">
  <%s accession=%q status="PRIVATE"/>
  <SUBMISSION accession="ERA0000001"/>
  <MESSAGES/>
  <ACTIONS>ADD</ACTIONS>
</RECEIPT>`, docType, accession)
}

// ReceiptReleaseOK returns a successful receipt for a RELEASE
// envelope; it carries no object accession.
func ReceiptReleaseOK() string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT receiptDate="2024-01-15T10:00:00.000Z" success="true">
  <SUBMISSION accession="ERA0000002"/>
  <MESSAGES/>
  <ACTIONS>RELEASE</ACTIONS>
</RECEIPT>`
}

// ReceiptDuplicate returns the receipt the drop-box produces when the
// object already exists under the submission account.
func ReceiptDuplicate(alias, accession string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT receiptDate="2024-01-15T10:00:00.000Z" success="false">
  <MESSAGES>
    <ERROR>In SAMPLE, alias:"%s". The object being added already exists in the submission account with accession: "%s".</ERROR>
  </MESSAGES>
</RECEIPT>`, alias, accession)
}

// ReceiptAlreadySubmitted returns the receipt produced when a release
// for the accession is already queued. The accession sits in the fifth
// whitespace-delimited token of the error text.
func ReceiptAlreadySubmitted(accession string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT receiptDate="2024-01-15T10:00:00.000Z" success="false">
  <MESSAGES>
    <ERROR>The release of object %s has already been submitted and is waiting to be processed.</ERROR>
  </MESSAGES>
</RECEIPT>`, accession)
}

// ReceiptMissingUpload returns the receipt produced when the run's
// data file was never staged in the upload area.
func ReceiptMissingUpload(filename string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT receiptDate="2024-01-15T10:00:00.000Z" success="false">
  <MESSAGES>
    <ERROR>File %s does not exist in the upload area</ERROR>
  </MESSAGES>
</RECEIPT>`, filename)
}

// ReceiptError returns a receipt with an arbitrary ERROR message.
func ReceiptError(text string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<RECEIPT receiptDate="2024-01-15T10:00:00.000Z" success="false">
  <MESSAGES>
    <ERROR>%s</ERROR>
  </MESSAGES>
</RECEIPT>`, text)
}
