// Package ena implements the client side of the ENA submission
// service: document construction for the sample/experiment/run subset
// of the SRA schema, the drop-box submission protocol, the portal
// search pre-check, and receipt classification.
package ena

import (
	"encoding/xml"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/CLIMB-COVID/pyena/internal/errors"
)

// DocumentType identifies the metadata object being submitted. It is
// also the multipart field name the drop-box expects.
type DocumentType string

const (
	DocumentSample     DocumentType = "SAMPLE"
	DocumentExperiment DocumentType = "EXPERIMENT"
	DocumentRun        DocumentType = "RUN"
)

// holdDateFormat is the HoldUntilDate form the drop-box accepts.
const holdDateFormat = "2006-01-02"

// =============== SCHEMA STRUCTURES ===============

// SampleSet wraps one or more samples for submission.
type SampleSet struct {
	XMLName xml.Name `xml:"SAMPLE_SET"`
	Samples []Sample `xml:"SAMPLE"`
}

// Sample is a sample record in the SRA schema.
type Sample struct {
	XMLName xml.Name `xml:"SAMPLE"`

	Alias      string `xml:"alias,attr,omitempty"`
	CenterName string `xml:"center_name,attr,omitempty"`
	Accession  string `xml:"accession,attr,omitempty"`

	Title            string            `xml:"TITLE"`
	SampleName       SampleName        `xml:"SAMPLE_NAME"`
	SampleAttributes *SampleAttributes `xml:"SAMPLE_ATTRIBUTES"`
}

// SampleName contains taxonomic information.
type SampleName struct {
	TaxonID string `xml:"TAXON_ID"`
}

// SampleAttributes contains custom attributes.
type SampleAttributes struct {
	Attributes []Attribute `xml:"SAMPLE_ATTRIBUTE"`
}

// ExperimentSet wraps one or more experiments for submission.
type ExperimentSet struct {
	XMLName     xml.Name     `xml:"EXPERIMENT_SET"`
	Experiments []Experiment `xml:"EXPERIMENT"`
}

// Experiment is an experiment record in the SRA schema.
type Experiment struct {
	XMLName xml.Name `xml:"EXPERIMENT"`

	Alias      string `xml:"alias,attr,omitempty"`
	CenterName string `xml:"center_name,attr,omitempty"`
	Accession  string `xml:"accession,attr,omitempty"`

	Title                string                `xml:"TITLE"`
	StudyRef             StudyRef              `xml:"STUDY_REF"`
	Design               Design                `xml:"DESIGN"`
	Platform             Platform              `xml:"PLATFORM"`
	ExperimentAttributes *ExperimentAttributes `xml:"EXPERIMENT_ATTRIBUTES"`
}

// StudyRef references the parent study.
type StudyRef struct {
	Accession string `xml:"accession,attr,omitempty"`
}

// Design contains experiment design information.
type Design struct {
	DesignDescription string            `xml:"DESIGN_DESCRIPTION"`
	SampleDescriptor  SampleDescriptor  `xml:"SAMPLE_DESCRIPTOR"`
	LibraryDescriptor LibraryDescriptor `xml:"LIBRARY_DESCRIPTOR"`
}

// SampleDescriptor references the sample the experiment was run on.
type SampleDescriptor struct {
	Accession string `xml:"accession,attr,omitempty"`
}

// LibraryDescriptor contains library preparation details.
type LibraryDescriptor struct {
	LibraryName                 string        `xml:"LIBRARY_NAME"`
	LibraryStrategy             string        `xml:"LIBRARY_STRATEGY"`
	LibrarySource               string        `xml:"LIBRARY_SOURCE"`
	LibrarySelection            string        `xml:"LIBRARY_SELECTION"`
	LibraryLayout               LibraryLayout `xml:"LIBRARY_LAYOUT"`
	LibraryConstructionProtocol string        `xml:"LIBRARY_CONSTRUCTION_PROTOCOL,omitempty"`
}

// LibraryLayout specifies single or paired reads.
type LibraryLayout struct {
	Single *struct{}   `xml:"SINGLE"`
	Paired *PairedInfo `xml:"PAIRED"`
}

// PairedInfo contains paired-end library information.
type PairedInfo struct {
	NominalLength int `xml:"NOMINAL_LENGTH,attr,omitempty"`
}

// Platform holds the sequencing platform stanza. Exactly one family
// pointer is set for a recognized instrument; all nil marshals as an
// empty PLATFORM element, which is what the drop-box receives when the
// instrument could not be normalized.
type Platform struct {
	Illumina       *PlatformDetails `xml:"ILLUMINA"`
	OxfordNanopore *PlatformDetails `xml:"OXFORD_NANOPORE"`
	IonTorrent     *PlatformDetails `xml:"ION_TORRENT"`
}

// PlatformDetails contains the instrument model for a platform family.
type PlatformDetails struct {
	InstrumentModel string `xml:"INSTRUMENT_MODEL"`
}

// ExperimentAttributes contains custom attributes.
type ExperimentAttributes struct {
	Attributes []Attribute `xml:"EXPERIMENT_ATTRIBUTE"`
}

// RunSet wraps one or more runs for submission.
type RunSet struct {
	XMLName xml.Name `xml:"RUN_SET"`
	Runs    []Run    `xml:"RUN"`
}

// Run is a run record in the SRA schema.
type Run struct {
	XMLName xml.Name `xml:"RUN"`

	Alias      string `xml:"alias,attr,omitempty"`
	CenterName string `xml:"center_name,attr,omitempty"`
	Accession  string `xml:"accession,attr,omitempty"`

	ExperimentRef ExperimentRef `xml:"EXPERIMENT_REF"`
	DataBlock     DataBlock     `xml:"DATA_BLOCK"`
}

// ExperimentRef references the parent experiment.
type ExperimentRef struct {
	Accession string `xml:"accession,attr,omitempty"`
}

// DataBlock contains the run's file information.
type DataBlock struct {
	Files []RunFile `xml:"FILES>FILE"`
}

// RunFile describes a staged data file.
type RunFile struct {
	Filename       string `xml:"filename,attr"`
	FileType       string `xml:"filetype,attr"`
	ChecksumMethod string `xml:"checksum_method,attr,omitempty"`
	Checksum       string `xml:"checksum,attr,omitempty"`
}

// Attribute is a tag-value pair.
type Attribute struct {
	Tag   string `xml:"TAG"`
	Value string `xml:"VALUE"`
}

// Submission is the action envelope that accompanies every document.
type Submission struct {
	XMLName xml.Name `xml:"SUBMISSION"`

	Alias      string `xml:"alias,attr,omitempty"`
	CenterName string `xml:"center_name,attr,omitempty"`

	Actions SubmissionActions `xml:"ACTIONS"`
}

// SubmissionActions contains the envelope's actions.
type SubmissionActions struct {
	Actions []Action `xml:"ACTION"`
}

// Action is a single submission action. Exactly one field is set.
type Action struct {
	Add     *struct{}      `xml:"ADD"`
	Modify  *struct{}      `xml:"MODIFY"`
	Hold    *HoldAction    `xml:"HOLD"`
	Release *ReleaseAction `xml:"RELEASE"`
}

// HoldAction defers public release until the given date.
type HoldAction struct {
	HoldUntilDate string `xml:"HoldUntilDate,attr,omitempty"`
}

// ReleaseAction makes a held accession public.
type ReleaseAction struct {
	Target string `xml:"target,attr,omitempty"`
}

// =============== RECORDS AND BUILDERS ===============

// SampleRecord carries the fields needed to build a SAMPLE document.
type SampleRecord struct {
	Alias      string
	CenterName string
	TaxonID    string
	Attributes map[string]string
}

// Document builds the SAMPLE_SET document for the record. The sample
// title mirrors the alias; attributes with empty values are dropped.
func (r SampleRecord) Document() ([]byte, error) {
	sample := Sample{
		Alias:      r.Alias,
		CenterName: r.CenterName,
		Title:      r.Alias,
		SampleName: SampleName{TaxonID: r.TaxonID},
	}
	if attrs := attributeList(r.Attributes); len(attrs) > 0 {
		sample.SampleAttributes = &SampleAttributes{Attributes: attrs}
	}
	return marshalDocument(SampleSet{Samples: []Sample{sample}})
}

// LibrarySpec describes how the sequencing library was prepared.
type LibrarySpec struct {
	Source    string
	Selection string
	Strategy  string
	Protocol  string
}

// ExperimentRecord carries the fields needed to build an EXPERIMENT
// document.
type ExperimentRecord struct {
	Alias           string
	CenterName      string
	StudyAccession  string
	SampleAccession string
	Instrument      string
	Library         LibrarySpec
	Attributes      map[string]string
}

// Document builds the EXPERIMENT_SET document for the record. The
// platform stanza is derived from the instrument free text; an
// unrecognized instrument yields an empty PLATFORM element. The
// library layout is single-ended.
func (r ExperimentRecord) Document() ([]byte, error) {
	exp := Experiment{
		Alias:      r.Alias,
		CenterName: r.CenterName,
		Title:      r.Alias,
		StudyRef:   StudyRef{Accession: r.StudyAccession},
		Design: Design{
			SampleDescriptor: SampleDescriptor{Accession: r.SampleAccession},
			LibraryDescriptor: LibraryDescriptor{
				LibraryStrategy:             NormalizeLibraryStrategy(r.Library.Strategy),
				LibrarySource:               r.Library.Source,
				LibrarySelection:            r.Library.Selection,
				LibraryLayout:               LibraryLayout{Single: &struct{}{}},
				LibraryConstructionProtocol: r.Library.Protocol,
			},
		},
		Platform: platformStanza(r.Instrument),
	}
	if attrs := attributeList(r.Attributes); len(attrs) > 0 {
		exp.ExperimentAttributes = &ExperimentAttributes{Attributes: attrs}
	}
	return marshalDocument(ExperimentSet{Experiments: []Experiment{exp}})
}

// RunRecord carries the fields needed to build a RUN document.
type RunRecord struct {
	Alias               string
	CenterName          string
	FilePath            string
	FileType            string
	ExperimentAccession string
	Checksum            string
}

// Document builds the RUN_SET document for the record. The file entry
// names only the base of the local path, matching what was staged in
// the upload area.
func (r RunRecord) Document() ([]byte, error) {
	run := Run{
		Alias:         r.Alias,
		CenterName:    r.CenterName,
		ExperimentRef: ExperimentRef{Accession: r.ExperimentAccession},
		DataBlock: DataBlock{
			Files: []RunFile{{
				Filename:       filepath.Base(r.FilePath),
				FileType:       r.FileType,
				ChecksumMethod: "MD5",
				Checksum:       r.Checksum,
			}},
		},
	}
	return marshalDocument(RunSet{Runs: []Run{run}})
}

// NewSubmission builds the action envelope for a document submission.
// In modify mode the envelope carries a single MODIFY action; otherwise
// an ADD plus a HOLD set to the current UTC date, deferring public
// release until explicitly released. The envelope's alias uniquely
// identifies this submission attempt.
func NewSubmission(centerName string, modify bool, now time.Time) ([]byte, error) {
	sub := Submission{
		Alias:      uuid.NewString(),
		CenterName: centerName,
	}
	if modify {
		sub.Actions.Actions = []Action{{Modify: &struct{}{}}}
	} else {
		sub.Actions.Actions = []Action{
			{Add: &struct{}{}},
			{Hold: &HoldAction{HoldUntilDate: now.UTC().Format(holdDateFormat)}},
		}
	}
	return marshalDocument(sub)
}

// NewRelease builds the envelope that releases a held accession.
func NewRelease(target, centerName string) ([]byte, error) {
	sub := Submission{
		Alias:      uuid.NewString(),
		CenterName: centerName,
		Actions: SubmissionActions{
			Actions: []Action{{Release: &ReleaseAction{Target: target}}},
		},
	}
	return marshalDocument(sub)
}

// attributeList converts an attribute map to a deterministic list,
// dropping entries with empty values.
func attributeList(attrs map[string]string) []Attribute {
	tags := make([]string, 0, len(attrs))
	for tag, value := range attrs {
		if value == "" {
			continue
		}
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	list := make([]Attribute, 0, len(tags))
	for _, tag := range tags {
		list = append(list, Attribute{Tag: tag, Value: attrs[tag]})
	}
	return list
}

// platformStanza maps instrument free text to a platform stanza.
func platformStanza(instrument string) Platform {
	family, model, ok := NormalizeInstrument(instrument)
	if !ok {
		return Platform{}
	}
	details := &PlatformDetails{InstrumentModel: model}
	switch family {
	case PlatformIllumina:
		return Platform{Illumina: details}
	case PlatformOxfordNanopore:
		return Platform{OxfordNanopore: details}
	case PlatformIonTorrent:
		return Platform{IonTorrent: details}
	}
	return Platform{}
}

func marshalDocument(v interface{}) ([]byte, error) {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.E(errors.Op("ena.marshalDocument"), errors.KindParse, err)
	}
	return data, nil
}
