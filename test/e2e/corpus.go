// Package e2e drives the full intake flow over a generated corpus of
// workbooks: extraction, analysis and the staged pipeline against a
// mock LLM backend.
package e2e

import (
	"fmt"
	"strings"
)

// E2EWorkbook is one survey workbook in the corpus: a stem (output
// directory name), a document title and free-text responses, one per
// data row.
type E2EWorkbook struct {
	Stem      string
	Title     string
	Responses []string
}

// SignatureCase ties a phrase planted in exactly one workbook to that
// workbook's stem. After a full batch run the phrase must have reached
// the LLM inside a stage prompt.
type SignatureCase struct {
	Phrase       string
	ExpectedStem string
	Description  string
}

// Corpus holds the generated workbooks and their signature cases.
type Corpus struct {
	Workbooks      []E2EWorkbook
	TestCases      []SignatureCase
	TotalWorkbooks int
	TotalCases     int
}

// BuildCorpus returns a corpus of survey workbooks with varied content.
// Each workbook carries a unique signature phrase in one of its
// responses so the tests can assert the right data flowed through.
func BuildCorpus() *Corpus {
	workbooks := buildWorkbooks(24)
	cases := buildSignatureCases(workbooks)
	return &Corpus{
		Workbooks:      workbooks,
		TestCases:      cases,
		TotalWorkbooks: len(workbooks),
		TotalCases:     len(cases),
	}
}

func buildWorkbooks(n int) []E2EWorkbook {
	topics := []struct {
		title  string
		phrase string
		filler []string
	}{
		{"Checkout Experience", "checkout kept timing out", []string{"payment went through fine", "coupon codes were easy to apply"}},
		{"Onboarding Feedback", "setup wizard skipped a step", []string{"welcome email was clear", "needed the docs twice"}},
		{"Support Tickets", "waited three days for a reply", []string{"agent resolved it quickly once assigned", "chat widget was easy to find"}},
		{"Pricing Study", "annual plan felt overpriced", []string{"monthly option is fair", "discount for students would help"}},
		{"Mobile App Review", "app drains the battery overnight", []string{"sync works well on wifi", "dark mode is pleasant"}},
		{"Delivery Survey", "parcel arrived at the wrong door", []string{"tracking updates were accurate", "packaging was sturdy"}},
		{"Cafeteria Poll", "vegetarian options ran out early", []string{"coffee quality improved", "seating fills up by noon"}},
		{"Remote Work Study", "meetings bleed into the evening", []string{"home setup stipend helped", "async updates reduce interruptions"}},
		{"Website Usability", "search results felt irrelevant", []string{"navigation menu is compact", "checkout page loads fast"}},
		{"Training Feedback", "slides moved too fast to follow", []string{"exercises matched the material", "recordings are useful for review"}},
		{"Hardware Returns", "keyboard keys stick after a week", []string{"screen quality is excellent", "return label printed without issues"}},
		{"Subscription Churn", "forgot the trial was still running", []string{"cancellation flow was short", "renewal reminder came too late"}},
		{"Accessibility Audit", "contrast made labels hard to read", []string{"keyboard navigation works throughout", "captions were accurate"}},
		{"Hotel Reviews", "air conditioning rattled all night", []string{"front desk was welcoming", "breakfast selection was broad"}},
		{"Clinic Intake", "waiting room ran an hour behind", []string{"forms were available online", "staff explained the process"}},
		{"Banking App", "transfer confirmations arrive late", []string{"login with fingerprint is fast", "statements export cleanly"}},
		{"Grocery Pickup", "substitutions ignored my notes", []string{"pickup slot was on time", "produce quality was good"}},
		{"Fitness Program", "coach adjusted the plan weekly", []string{"progress charts are motivating", "gym hours fit my schedule"}},
		{"Library Services", "reservation queue moves quickly", []string{"study rooms are quiet", "catalog search finds editions"}},
		{"Transit Survey", "the express line skips my stop", []string{"monthly pass is good value", "platform displays are accurate"}},
		{"Warranty Claims", "replacement shipped within two days", []string{"claim form asked for too much", "status emails were clear"}},
		{"Event Feedback", "breakout rooms were overcrowded", []string{"keynote ran on schedule", "badge pickup was smooth"}},
		{"Beta Program", "crash reports vanish without follow up", []string{"new builds arrive weekly", "feedback forum is active"}},
		{"Billing Portal", "invoices download as blank pages", []string{"payment methods update instantly", "tax fields are prefilled"}},
	}

	out := make([]E2EWorkbook, 0, n)
	for i := 0; i < n; i++ {
		t := topics[i%len(topics)]
		title := t.title
		if i >= len(topics) {
			title = fmt.Sprintf("%s (%d)", t.title, i+1)
		}
		responses := append([]string{t.phrase}, t.filler...)
		out = append(out, E2EWorkbook{
			Stem:      fmt.Sprintf("e2e-wb-%02d", i+1),
			Title:     title,
			Responses: responses,
		})
	}
	return out
}

// buildSignatureCases pairs each planted phrase with the first workbook
// that carries it.
func buildSignatureCases(workbooks []E2EWorkbook) []SignatureCase {
	var cases []SignatureCase
	used := make(map[string]bool)
	for _, wb := range workbooks {
		if len(wb.Responses) == 0 {
			continue
		}
		phrase := wb.Responses[0]
		if used[phrase] {
			continue
		}
		used[phrase] = true
		cases = append(cases, SignatureCase{
			Phrase:       phrase,
			ExpectedStem: wb.Stem,
			Description:  fmt.Sprintf("phrase %q should flow through workbook %s", phrase, wb.Stem),
		})
	}
	return cases
}

func containsPhrase(wb E2EWorkbook, phrase string) bool {
	if strings.Contains(wb.Title, phrase) {
		return true
	}
	for _, r := range wb.Responses {
		if strings.Contains(r, phrase) {
			return true
		}
	}
	return false
}
