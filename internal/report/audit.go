package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"appraiser_directory/internal/domain"
)

const DefaultAuditReport = "standardized-data-report.json"

const (
	IssueTemplatedPricing    = "templated_pricing"
	IssueTemplatedExperience = "templated_experience"
	IssueTemplatedNotes      = "templated_notes"
	IssueTemplatedAbout      = "templated_about"
	IssuePlaceholderAbout    = "placeholder_about"
	IssueDuplicateReviews    = "duplicate_reviews"
)

// Fixed strings the data generator emits when it had nothing specific.
var (
	TemplatePricing = []string{
		"Contact for pricing",
		"Contact for pricing information",
		"Pricing available upon request",
		"Varies by item",
	}
	TemplateExperience = []string{
		"Established business",
		"Over 20 years",
		"Years of experience",
	}
)

func notesTemplate(city string) string {
	return fmt.Sprintf("Serving the %s area with professional antique appraisal services.", city)
}

func aboutTemplate(name, city string) string {
	return fmt.Sprintf("%s is a professional antique appraisal service in %s.", name, city)
}

type DuplicateReview struct {
	Author  string `json:"author"`
	Content string `json:"content"`
	Count   int    `json:"count"`
}

type AuditRecord struct {
	City       string            `json:"city"`
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Issues     []string          `json:"issues"`
	Duplicates []DuplicateReview `json:"duplicateReviews,omitempty"`
}

type AuditReport struct {
	GeneratedAt          time.Time      `json:"generatedAt"`
	TotalAppraisers      int            `json:"totalAppraisers"`
	AppraisersWithIssues int            `json:"appraisersWithIssues"`
	IssueCounts          map[string]int `json:"issueCounts"`
	Records              []AuditRecord  `json:"records"`
}

// AuditContent flags appraisers whose text is unpersonalised generator
// output and reviews repeated within one appraiser.
func AuditContent(locs []domain.Location, now time.Time) AuditReport {
	rep := AuditReport{GeneratedAt: now.UTC(), IssueCounts: map[string]int{}, Records: []AuditRecord{}}
	for _, l := range locs {
		for _, a := range l.Appraisers {
			rep.TotalAppraisers++
			rec := auditAppraiser(l, a)
			if len(rec.Issues) == 0 {
				continue
			}
			rep.AppraisersWithIssues++
			for _, is := range rec.Issues {
				rep.IssueCounts[is]++
			}
			rep.Records = append(rep.Records, rec)
		}
	}
	log.Info().
		Int("appraisers", rep.TotalAppraisers).
		Int("with_issues", rep.AppraisersWithIssues).
		Msg("content audit computed")
	return rep
}

func auditAppraiser(l domain.Location, a domain.Appraiser) AuditRecord {
	rec := AuditRecord{City: l.Key, ID: a.ID, Name: a.Name}
	cities := cityNames(l, a)

	if oneOf(a.Business.Pricing, TemplatePricing) {
		rec.Issues = append(rec.Issues, IssueTemplatedPricing)
	}
	if oneOf(a.Business.YearsInBusiness, TemplateExperience) {
		rec.Issues = append(rec.Issues, IssueTemplatedExperience)
	}
	for _, c := range cities {
		if strings.TrimSpace(a.Content.Notes) == notesTemplate(c) {
			rec.Issues = append(rec.Issues, IssueTemplatedNotes)
			break
		}
	}
	for _, c := range cities {
		if strings.TrimSpace(a.Content.About) == aboutTemplate(a.Name, c) {
			rec.Issues = append(rec.Issues, IssueTemplatedAbout)
			break
		}
	}
	if hasBracketPair(a.Content.About) {
		rec.Issues = append(rec.Issues, IssuePlaceholderAbout)
	}
	if d := duplicateReviews(a.Reviews); len(d) > 0 {
		rec.Issues = append(rec.Issues, IssueDuplicateReviews)
		rec.Duplicates = d
	}
	return rec
}

// cityNames lists the distinct names the appraiser's city goes by.
func cityNames(l domain.Location, a domain.Appraiser) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range []string{a.Address.City, l.City, l.AreaServedName(), l.DisplayName} {
		if c = strings.TrimSpace(c); c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func oneOf(s string, set []string) bool {
	s = strings.TrimSpace(s)
	for _, t := range set {
		if s == t {
			return true
		}
	}
	return false
}

func hasBracketPair(s string) bool {
	i := strings.Index(s, "[")
	return i >= 0 && strings.Contains(s[i+1:], "]")
}

func duplicateReviews(rs []domain.Review) []DuplicateReview {
	type key struct{ author, content string }
	counts := map[key]int{}
	var order []key
	for _, r := range rs {
		k := key{r.Author, r.Content}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	var out []DuplicateReview
	for _, k := range order {
		if n := counts[k]; n > 1 {
			out = append(out, DuplicateReview{Author: k.author, Content: k.content, Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
