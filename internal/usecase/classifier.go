package usecase

import (
	"strings"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

var jobKeywords = []string{
	"application", "shortlisted", "interview", "resume", "recruiter", "hr", "position",
	"job", "opportunity", "candidate", "hiring", "selected", "rejected", "offer",
	"screening", "assessment", "placement", "career", "employment",
}

var trustedDomains = map[string]bool{
	"naukri.com":    true,
	"linkedin.com":  true,
	"indeed.com":    true,
	"monster.com":   true,
	"glassdoor.com": true,
	"shine.com":     true,
	"timesjobs.com": true,
	"foundit.in":    true,
	"instahyre.com": true,
}

var spamKeywords = []string{"lottery", "winner", "congratulations", "claim now", "urgent", "act now"}

// Classify assigns an inbox category and a confidence score to a message.
func Classify(subject, body, sender string) (entity.IncomingCategory, float64) {
	content := strings.ToLower(subject + " " + body)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(content, w) {
				return true
			}
		}
		return false
	}

	if trustedDomains[senderDomain(sender)] {
		switch {
		case has("shortlist", "interview", "selected"):
			return entity.IncomingShortlistInterview, 0.9
		case has("application") && has("update"):
			return entity.IncomingApplicationUpdate, 0.9
		case has("reject", "closed", "unsuccessful"):
			return entity.IncomingRejectionClosed, 0.9
		}
		return entity.IncomingRecruiterOutreach, 0.9
	}

	if has(jobKeywords...) {
		switch {
		case has("shortlist", "interview"):
			return entity.IncomingShortlistInterview, 0.7
		case has("reject", "regret"):
			return entity.IncomingRejectionClosed, 0.7
		case has("application", "opportunity"):
			return entity.IncomingApplicationUpdate, 0.7
		}
		return entity.IncomingRecruiterOutreach, 0.7
	}

	if has(spamKeywords...) {
		return entity.IncomingSpam, 0.6
	}
	return entity.IncomingUnknown, 0.3
}

func senderDomain(email string) string {
	email = strings.TrimSpace(email)
	if i := strings.LastIndex(email, "<"); i >= 0 {
		email = strings.TrimSuffix(email[i+1:], ">")
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
