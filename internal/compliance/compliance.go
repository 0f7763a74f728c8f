// Package compliance checks contract text against Indian statutory
// requirements: the basic elements of the Contract Act 1872 plus
// contract-type specific obligations. All checks are presence checks
// over the raw text; absence of a requirement is reported, never
// scored as legal advice.
package compliance

import (
	"regexp"
	"strconv"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
)

// requirement is one presence check. A nil pattern list means the
// requirement cannot be verified mechanically and is always reported
// for manual review.
type requirement struct {
	id          string
	description string
	patterns    []*regexp.Regexp
}

func (r requirement) satisfied(text string) bool {
	for _, re := range r.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// basicRequirements are the Contract Act essentials. An unmet basic
// requirement is an issue, not a warning.
var basicRequirements = []requirement{
	{
		id:          "parties",
		description: "Contract must clearly identify all parties",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:between|party|parties)\b`),
			regexp.MustCompile(`(?i)(?:first\s+party|second\s+party)`),
			regexp.MustCompile(`(?i)\b(?:company|employer|employee|vendor|client|lessor|lessee)\b`),
		},
	},
	{
		id:          "consideration",
		description: "Contract must have lawful consideration",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:consideration|payment|compensation|fee|salary|price|rent)\b`),
			regexp.MustCompile(`(?:Rs\.?|INR|₹)\s*[\d,]+`),
		},
	},
	{
		id:          "lawful_object",
		description: "Contract object must be lawful",
	},
}

// consentRisk flags language suggesting consent may be vitiated.
// Unlike the presence checks above, a match here is the problem.
var consentRisk = regexp.MustCompile(`(?i)(?:coercion|undue\s+influence|fraud|misrepresentation)`)

// generalChecks apply to every contract type. Unmet ones surface as
// recommendations or informational status, never issues.
var generalChecks = []requirement{
	{
		id:          "stamp_paper",
		description: "Contract may require execution on stamp paper",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)stamp\s+paper`),
			regexp.MustCompile(`(?i)stamp\s+duty`),
			regexp.MustCompile(`(?i)e-?stamp`),
		},
	},
	{
		id:          "witness",
		description: "Witnesses may be required for validity",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)witness(?:es)?`),
			regexp.MustCompile(`(?i)attest(?:ed|ation)?`),
		},
	},
	{
		id:          "jurisdiction",
		description: "Exclusive jurisdiction clauses should be reasonable",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:exclusive\s+)?jurisdiction\s+(?:of\s+)?(?:courts?\s+(?:at|of|in))`),
		},
	},
	{
		id:          "arbitration",
		description: "Must comply with Arbitration & Conciliation Act",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)arbitration`),
		},
	},
}

// employmentChecks cover statutory employment terms. Unmet checks are
// warnings.
var employmentChecks = []requirement{
	{
		id:          "minimum_wage",
		description: "Must comply with Minimum Wages Act",
	},
	{
		id:          "working_hours",
		description: "Maximum 48 hours/week as per Factories Act",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\d+\s*hours?\s*(?:per\s+)?(?:week|day)`),
		},
	},
	{
		id:          "leave_policy",
		description: "Must provide statutory leave entitlements",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:annual|earned|casual|sick)\s+leave`),
			regexp.MustCompile(`(?i)\d+\s*days?\s*(?:of\s+)?leave`),
		},
	},
	{
		id:          "pf_esi",
		description: "EPF/ESI deductions may be applicable",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)provident\s+fund`),
			regexp.MustCompile(`\b(?:PF|EPF|ESI)\b`),
			regexp.MustCompile(`(?i)(?:employer|employee)\s+contribution`),
		},
	},
	{
		id:          "gratuity",
		description: "Gratuity applicable for 5+ years service",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)gratuity`),
		},
	},
	{
		id:          "notice_period",
		description: "Notice requirements for termination",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)notice\s+period\s+of\s+\d+\s*(?:days?|months?)`),
		},
	},
}

// leaseChecks cover lease registration and rent law. Unmet checks are
// warnings.
var leaseChecks = []requirement{
	{
		id:          "stamp_duty",
		description: "Lease agreements require stamp duty payment",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)stamp\s+duty`),
			regexp.MustCompile(`(?i)registration`),
		},
	},
	{
		id:          "registration",
		description: "Leases over 12 months must be registered",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)register(?:ed|ation)`),
			regexp.MustCompile(`(?i)sub-?registrar`),
		},
	},
	{
		id:          "rent_control",
		description: "May be subject to state Rent Control Act",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)rent\s+control\s+act`),
			regexp.MustCompile(`(?i)standard\s+rent`),
		},
	},
}

// leaseDuration captures the stated term for the 12-month
// registration threshold.
var leaseDuration = regexp.MustCompile(`(?i)(\d+)\s*(months?|years?)`)

// Check runs the statutory requirement checks for the given contract
// type. Basic and general checks always run; employment and lease
// contracts get their sector sets on top. Score counts basic and
// sector checks only, with manual-review items counted as passed,
// matching the requirement that mechanical checks never penalise what
// they cannot verify.
func Check(text string, contractType domain.ContractType) domain.ComplianceSummary {
	var summary domain.ComplianceSummary

	total, passed := 0, 0

	for _, req := range basicRequirements {
		check := evaluate(req, text)
		summary.Checks = append(summary.Checks, check)
		total++
		switch check.Status {
		case domain.ComplianceSatisfied, domain.ComplianceManualReview:
			passed++
		case domain.ComplianceMissing:
			summary.Issues = append(summary.Issues, req.description+" - not clearly specified")
		}
	}
	total++
	if consentRisk.MatchString(text) {
		summary.Checks = append(summary.Checks, domain.ComplianceCheck{
			ID:          "free_consent",
			Description: "Contract requires free consent of parties",
			Status:      domain.ComplianceManualReview,
		})
		summary.Warnings = append(summary.Warnings,
			"Contract mentions consent-vitiating conduct (coercion, fraud, undue influence) - review the context")
	} else {
		summary.Checks = append(summary.Checks, domain.ComplianceCheck{
			ID:          "free_consent",
			Description: "Contract requires free consent of parties",
			Status:      domain.ComplianceSatisfied,
		})
	}
	passed++

	var sector []requirement
	switch contractType {
	case domain.ContractEmployment:
		sector = employmentChecks
	case domain.ContractLease:
		sector = leaseChecks
	}
	for _, req := range sector {
		check := evaluate(req, text)
		summary.Checks = append(summary.Checks, check)
		total++
		switch check.Status {
		case domain.ComplianceSatisfied, domain.ComplianceManualReview:
			passed++
		case domain.ComplianceMissing:
			summary.Warnings = append(summary.Warnings, req.description+" - should be addressed")
		}
	}

	if contractType == domain.ContractLease && registrationRequired(text) {
		summary.Checks = append(summary.Checks, domain.ComplianceCheck{
			ID:          "registration_required",
			Description: "Lease exceeds 12 months - registration mandatory under the Registration Act",
			Status:      domain.ComplianceMissing,
		})
		summary.Issues = append(summary.Issues,
			"Register the lease with the Sub-Registrar office (term exceeds 12 months)")
	}

	for _, req := range generalChecks {
		check := evaluate(req, text)
		summary.Checks = append(summary.Checks, check)
		if check.Status != domain.ComplianceMissing {
			continue
		}
		switch req.id {
		case "stamp_paper":
			summary.Recommendations = append(summary.Recommendations,
				"Consider executing the contract on appropriate stamp paper as per applicable state laws")
		case "witness":
			summary.Recommendations = append(summary.Recommendations,
				"Consider having the contract attested by witnesses for stronger enforceability")
		}
	}

	summary.Score = score(passed, total)
	return summary
}

func evaluate(req requirement, text string) domain.ComplianceCheck {
	check := domain.ComplianceCheck{ID: req.id, Description: req.description}
	switch {
	case req.patterns == nil:
		check.Status = domain.ComplianceManualReview
	case req.satisfied(text):
		check.Status = domain.ComplianceSatisfied
	default:
		check.Status = domain.ComplianceMissing
	}
	return check
}

// registrationRequired reports whether the stated lease term crosses
// the 12-month registration threshold.
func registrationRequired(text string) bool {
	for _, m := range leaseDuration.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		unit := m[2]
		if unit[0] == 'y' || unit[0] == 'Y' {
			return true
		}
		if n > 12 {
			return true
		}
	}
	return false
}

func score(passed, total int) float64 {
	if total == 0 {
		return 100
	}
	// one decimal place
	return float64(int(float64(passed)/float64(total)*1000+0.5)) / 10
}
