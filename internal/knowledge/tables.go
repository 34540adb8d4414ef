package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DomainTag names the standard (or regulation family) a professional question is scoped to.
type DomainTag string

const (
	TagISO14064_1 DomainTag = "ISO14064-1"
	TagISO14064_2 DomainTag = "ISO14064-2"
	TagISO14064_3 DomainTag = "ISO14064-3"
	TagISO14067   DomainTag = "ISO14067"
	TagISO14068_1 DomainTag = "ISO14068-1"
	TagSBTi       DomainTag = "SBTi"
	TagWBCSD      DomainTag = "WBCSD"
	TagTaiwanReg  DomainTag = "TaiwanReg"
	TagGeneral    DomainTag = "General"
)

// DomainOrder is the rule evaluation order. Earlier tags win when keywords of several
// domains co-occur in one message.
var DomainOrder = []DomainTag{
	TagISO14064_1,
	TagISO14064_2,
	TagISO14064_3,
	TagISO14067,
	TagISO14068_1,
	TagSBTi,
	TagWBCSD,
	TagTaiwanReg,
}

var ErrInvalidTables = errors.New("invalid knowledge tables")

//go:embed tables.yaml
var defaultTablesYAML []byte

// DomainRule maps a keyword set to its tag and knowledge block.
type DomainRule struct {
	Tag      DomainTag
	Keywords []string
	Prompt   string
}

// Tables holds every keyword list and knowledge block used by the pipeline.
// A Tables value is read-only after Parse and safe for concurrent use.
type Tables struct {
	Preamble          string
	General           string
	Domains           []DomainRule
	CasualTerms       []string
	ProfessionalTerms []string
	VagueTerms        []string
	ContextTerms      []string
	PastTerms         []string

	prompts map[DomainTag]string
}

type tablesDocument struct {
	Preamble string `yaml:"preamble"`
	General  string `yaml:"general"`
	Domains  []struct {
		Tag      string   `yaml:"tag"`
		Keywords []string `yaml:"keywords"`
		Prompt   string   `yaml:"prompt"`
	} `yaml:"domains"`
	Intent struct {
		Casual       []string `yaml:"casual"`
		Professional []string `yaml:"professional"`
	} `yaml:"intent"`
	Followup struct {
		Vague   []string `yaml:"vague"`
		Context []string `yaml:"context"`
	} `yaml:"followup"`
	Memory struct {
		Triggers []string `yaml:"triggers"`
	} `yaml:"memory"`
}

var loadDefault = sync.OnceValues(func() (*Tables, error) {
	return Parse(defaultTablesYAML)
})

// Default returns the tables embedded in the binary. They are parsed once per process.
func Default() (*Tables, error) {
	return loadDefault()
}

// Parse decodes and validates a tables document.
func Parse(data []byte) (*Tables, error) {
	var doc tablesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidTables, err)
	}

	tables := &Tables{
		Preamble:          strings.TrimSpace(doc.Preamble),
		General:           strings.TrimSpace(doc.General),
		CasualTerms:       cleanTerms(doc.Intent.Casual),
		ProfessionalTerms: cleanTerms(doc.Intent.Professional),
		VagueTerms:        cleanTerms(doc.Followup.Vague),
		ContextTerms:      cleanTerms(doc.Followup.Context),
		PastTerms:         cleanTerms(doc.Memory.Triggers),
		prompts:           make(map[DomainTag]string, len(doc.Domains)+1),
	}
	if tables.Preamble == "" {
		return nil, fmt.Errorf("%w: preamble is required", ErrInvalidTables)
	}
	if tables.General == "" {
		return nil, fmt.Errorf("%w: general block is required", ErrInvalidTables)
	}

	known := map[DomainTag]bool{}
	for _, tag := range DomainOrder {
		known[tag] = true
	}
	for index, raw := range doc.Domains {
		tag := DomainTag(strings.TrimSpace(raw.Tag))
		if !known[tag] {
			return nil, fmt.Errorf("%w: unknown domain tag %q", ErrInvalidTables, raw.Tag)
		}
		if _, exists := tables.prompts[tag]; exists {
			return nil, fmt.Errorf("%w: duplicate domain tag %q", ErrInvalidTables, tag)
		}
		if index >= len(DomainOrder) || DomainOrder[index] != tag {
			return nil, fmt.Errorf("%w: domain %q is out of order", ErrInvalidTables, tag)
		}
		keywords := cleanTerms(raw.Keywords)
		prompt := strings.TrimSpace(raw.Prompt)
		if len(keywords) == 0 || prompt == "" {
			return nil, fmt.Errorf("%w: domain %q needs keywords and a prompt", ErrInvalidTables, tag)
		}
		tables.Domains = append(tables.Domains, DomainRule{Tag: tag, Keywords: keywords, Prompt: prompt})
		tables.prompts[tag] = prompt
	}
	if len(tables.Domains) != len(DomainOrder) {
		return nil, fmt.Errorf("%w: expected %d domains, got %d", ErrInvalidTables, len(DomainOrder), len(tables.Domains))
	}
	tables.prompts[TagGeneral] = tables.General
	tables.ProfessionalTerms = withDomainKeywords(tables.ProfessionalTerms, tables.Domains)

	if len(tables.CasualTerms) == 0 || len(tables.ProfessionalTerms) == 0 {
		return nil, fmt.Errorf("%w: intent term lists are required", ErrInvalidTables)
	}
	return tables, nil
}

// BuildKnowledgePrompt returns the persona preamble followed by the knowledge block for tag.
// Tags without a block fall back to the general block.
func (t *Tables) BuildKnowledgePrompt(tag DomainTag) string {
	block, ok := t.prompts[tag]
	if !ok {
		block = t.General
	}
	return t.Preamble + "\n\n" + block
}

// ContainsAny reports whether text contains at least one of terms as a substring.
func ContainsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// withDomainKeywords appends every domain keyword missing from terms, so any message that
// selects a knowledge domain is also recognized as professional.
func withDomainKeywords(terms []string, domains []DomainRule) []string {
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		seen[term] = true
	}
	for _, rule := range domains {
		for _, keyword := range rule.Keywords {
			if seen[keyword] {
				continue
			}
			seen[keyword] = true
			terms = append(terms, keyword)
		}
	}
	return terms
}

// ContainsAnyWord is ContainsAny, except that terms made only of ASCII letters and digits
// must stand as whole words, so "hi" matches "hi there" but not "this".
func ContainsAnyWord(text string, terms []string) bool {
	for _, term := range terms {
		if !isASCIIWord(term) {
			if strings.Contains(text, term) {
				return true
			}
			continue
		}
		for offset := 0; offset < len(text); {
			index := strings.Index(text[offset:], term)
			if index < 0 {
				break
			}
			start := offset + index
			end := start + len(term)
			if (start == 0 || !isASCIIWordByte(text[start-1])) && (end == len(text) || !isASCIIWordByte(text[end])) {
				return true
			}
			offset = start + 1
		}
	}
	return false
}

func isASCIIWord(term string) bool {
	if term == "" {
		return false
	}
	for i := 0; i < len(term); i++ {
		if !isASCIIWordByte(term[i]) {
			return false
		}
	}
	return true
}

func isASCIIWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func cleanTerms(input []string) []string {
	out := make([]string, 0, len(input))
	for _, term := range input {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		out = append(out, term)
	}
	return out
}
