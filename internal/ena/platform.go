package ena

import "strings"

// Platform family enumerations from the SRA common schema.
const (
	PlatformIllumina       = "ILLUMINA"
	PlatformOxfordNanopore = "OXFORD_NANOPORE"
	PlatformIonTorrent     = "ION_TORRENT"
)

type instrumentModel struct {
	match string // substring matched against the lowercased instrument name
	model string // INSTRUMENT_MODEL enumeration value
}

type platformFamily struct {
	name   string
	models []instrumentModel
}

// instrumentTable maps known instrument names to (platform, model)
// enumeration pairs, per the SRA common schema. Order matters: the
// generic catch-alls at the end of each family must only be tried
// after every specific model has failed to match.
var instrumentTable = []platformFamily{
	{
		name: PlatformIllumina,
		models: []instrumentModel{
			{"x five", "HiSeq X Five"},
			{"x ten", "HiSeq X Ten"},
			{"genome analyzer iix", "Illumina Genome Analyzer IIx"},
			{"genome analyzer ii", "Illumina Genome Analyzer II"},
			{"genome analyzer", "Illumina Genome Analyzer"},
			{"hiscansq", "Illumina HiScanSQ"},
			{"hiseq 1000", "Illumina HiSeq 1000"},
			{"hiseq 1500", "Illumina HiSeq 1500"},
			{"hiseq 2000", "Illumina HiSeq 2000"},
			{"hiseq 2500", "Illumina HiSeq 2500"},
			{"hiseq 3000", "Illumina HiSeq 3000"},
			{"hiseq 4000", "Illumina HiSeq 4000"},
			{"iseq 100", "Illumina iSeq 100"},
			{"miniseq", "Illumina MiniSeq"},
			{"miseq", "Illumina MiSeq"},
			{"novaseq 6000", "Illumina NovaSeq 6000"},
			{"nextseq 500", "NextSeq 500"},
			{"nextseq 550", "NextSeq 550"},
			// Catch-alls for instrument names that carry a family but
			// no recognizable model.
			{"hiseq", "unspecified"},
			{"iseq", "unspecified"},
			{"novaseq", "unspecified"},
			{"nextseq", "unspecified"},
		},
	},
	{
		name: PlatformOxfordNanopore,
		models: []instrumentModel{
			{"minion", "MinION"},
			{"gridion", "GridION"},
			{"promethion", "PromethION"},
		},
	},
	{
		name: PlatformIonTorrent,
		models: []instrumentModel{
			{"ion torrent pgm", "Ion Torrent PGM"},
			{"ion torrent proton", "Ion Torrent Proton"},
			{"ion torrent s5 xl", "Ion Torrent S5 XL"},
			{"ion torrent s5", "Ion Torrent S5"},
		},
	},
}

// NormalizeInstrument maps free-text instrument names to a (platform,
// model) enumeration pair. Matching is case-insensitive and treats
// underscores as spaces. Returns ok=false when no entry matches.
func NormalizeInstrument(name string) (platform, model string, ok bool) {
	name = strings.ToLower(strings.ReplaceAll(name, "_", " "))
	for _, family := range instrumentTable {
		for _, m := range family.models {
			if strings.Contains(name, m.match) {
				return family.name, m.model, true
			}
		}
	}
	return "", "", false
}

// libraryStrategyExceptions maps free-text strategy names whose
// schema enumeration spelling differs from common usage.
var libraryStrategyExceptions = map[string]string{
	"TARGETED_CAPTURE": "Targeted-Capture",
}

// NormalizeLibraryStrategy maps a library strategy through the
// exception table; unmapped strings pass through unchanged.
func NormalizeLibraryStrategy(s string) string {
	if mapped, ok := libraryStrategyExceptions[s]; ok {
		return mapped
	}
	return s
}
