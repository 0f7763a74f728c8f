package classifier

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// minScore is the weighted keyword score below which classification
// falls back to unknown.
const minScore = 3.0

// titleWindow is how many bytes of the document opening are scanned
// for title patterns.
const titleWindow = 500

type typeProfile struct {
	contractType domain.ContractType
	keywords     []string
	weight       float64
	titleRe      *regexp.Regexp
}

var typeProfiles = []typeProfile{
	{
		contractType: domain.ContractEmployment,
		keywords: []string{
			"employee", "employer", "employment", "salary", "wages",
			"working hours", "probation", "resignation", "notice period",
			"gratuity", "provident fund", "designation", "leave policy",
			"full-time", "part-time", "reporting manager",
		},
		weight:  1.0,
		titleRe: regexp.MustCompile(`(?i)(employment|job|appointment|offer)\s*(agreement|contract|letter)`),
	},
	{
		contractType: domain.ContractVendor,
		keywords: []string{
			"vendor", "supplier", "purchase order", "supply", "goods",
			"delivery", "shipment", "procurement", "inventory",
			"unit price", "bulk order", "invoice", "payment terms",
			"product specifications", "quality standards",
		},
		weight:  1.0,
		titleRe: regexp.MustCompile(`(?i)(vendor|supplier|supply|purchase)\s*(agreement|contract|order)`),
	},
	{
		contractType: domain.ContractLease,
		keywords: []string{
			"lease", "lessor", "lessee", "tenant", "landlord",
			"rent", "security deposit", "premises", "subletting",
			"eviction", "lock-in period", "maintenance", "utilities",
		},
		weight:  1.0,
		titleRe: regexp.MustCompile(`(?i)(lease|rental|tenancy)\s*(agreement|deed|contract)`),
	},
	{
		contractType: domain.ContractPartnership,
		keywords: []string{
			"partner", "partnership", "profit sharing", "loss sharing",
			"capital contribution", "partnership firm", "managing partner",
			"dissolution", "goodwill", "drawings",
		},
		weight:  1.0,
		titleRe: regexp.MustCompile(`(?i)partnership\s*(deed|agreement)`),
	},
	{
		contractType: domain.ContractService,
		keywords: []string{
			"service provider", "client", "services", "scope of work",
			"deliverables", "milestones", "service level", "sla",
			"consulting", "statement of work", "hourly rate", "retainer",
			"acceptance criteria",
		},
		weight:  1.0,
		titleRe: regexp.MustCompile(`(?i)(service|consulting|professional)\s*(agreement|contract)`),
	},
	{
		contractType: domain.ContractNDA,
		keywords: []string{
			"non-disclosure", "nda", "confidential information",
			"confidentiality agreement", "proprietary information",
			"trade secrets", "disclosing party", "receiving party",
		},
		// NDAs are short documents; keyword hits count for more
		weight:  1.2,
		titleRe: regexp.MustCompile(`(?i)(non-disclosure|nda|confidentiality)\s*(agreement|contract)?`),
	},
}

// Result carries the classification outcome.
type Result struct {
	Type       domain.ContractType
	Confidence float64
	Matched    []string
}

// Classify determines the contract type from weighted keyword counts,
// with a title-pattern bonus for the document opening. Scores below
// the minimum fall back to unknown.
func Classify(text string) Result {
	lower := strings.ToLower(text)

	title := lower
	if len(title) > titleWindow {
		title = title[:titleWindow]
	}

	scores := make(map[domain.ContractType]float64, len(typeProfiles))
	matched := make(map[domain.ContractType][]string, len(typeProfiles))
	total := 0.0

	for _, profile := range typeProfiles {
		score := 0.0
		for _, kw := range profile.keywords {
			count := countWord(lower, kw)
			if count > 0 {
				score += float64(count)
				matched[profile.contractType] = append(matched[profile.contractType], kw)
			}
		}
		score *= profile.weight
		if profile.titleRe.MatchString(title) {
			score *= 2
		}
		scores[profile.contractType] = score
		total += score
	}

	best := domain.ContractUnknown
	bestScore := 0.0
	for _, profile := range typeProfiles {
		if scores[profile.contractType] > bestScore {
			best = profile.contractType
			bestScore = scores[profile.contractType]
		}
	}

	if bestScore < minScore {
		return Result{Type: domain.ContractUnknown}
	}

	keywords := matched[best]
	sort.Strings(keywords)
	return Result{
		Type:       best,
		Confidence: bestScore / total,
		Matched:    keywords,
	}
}

// countWord counts whole-word occurrences of a lowercase keyword.
func countWord(text, keyword string) int {
	count := 0
	for idx := 0; ; {
		i := strings.Index(text[idx:], keyword)
		if i == -1 {
			return count
		}
		start := idx + i
		end := start + len(keyword)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
		}
		idx = end
	}
}

func boundaryBefore(text string, i int) bool {
	return i == 0 || !isWordByte(text[i-1])
}

func boundaryAfter(text string, i int) bool {
	return i >= len(text) || !isWordByte(text[i])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
