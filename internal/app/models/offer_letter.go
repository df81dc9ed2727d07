package models

import (
	"time"
)

// OfferLetterStatus is the lifecycle state of an offer letter
type OfferLetterStatus string

const (
	StatusDraft     OfferLetterStatus = "draft"
	StatusGenerated OfferLetterStatus = "generated"
	StatusSent      OfferLetterStatus = "sent"
)

// PublicStatuses are the states visible through reference-code verification
var PublicStatuses = []OfferLetterStatus{StatusGenerated, StatusSent}

// rank orders statuses; transitions never decrease it.
func (s OfferLetterStatus) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusGenerated:
		return 1
	case StatusSent:
		return 2
	default:
		return -1
	}
}

// IsValid reports whether s is a known status
func (s OfferLetterStatus) IsValid() bool {
	return s.rank() >= 0
}

// IsPublic reports whether records in this state may be verified by anyone holding the reference code
func (s OfferLetterStatus) IsPublic() bool {
	return s == StatusGenerated || s == StatusSent
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic.
// Staying in the same state is allowed (re-sending keeps a letter "sent").
func (s OfferLetterStatus) CanTransitionTo(next OfferLetterStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if next == StatusSent && s == StatusDraft {
		return false
	}
	return next.rank() >= s.rank()
}

// PredecessorsOf lists the states a record may be in when moving to next.
func PredecessorsOf(next OfferLetterStatus) []OfferLetterStatus {
	var out []OfferLetterStatus
	for _, s := range []OfferLetterStatus{StatusDraft, StatusGenerated, StatusSent} {
		if s.CanTransitionTo(next) {
			out = append(out, s)
		}
	}
	return out
}

// OfferLetter defines the offer letter model based on the 'offer_letters' table
type OfferLetter struct {
	ID             int64             `json:"id" db:"id"`
	RefNo          string            `json:"refNo" db:"ref_no"`
	CandidateName  string            `json:"candidateName" db:"candidate_name"`
	CandidateEmail string            `json:"candidateEmail" db:"candidate_email"`
	Domain         string            `json:"domain" db:"domain"`
	JoiningDate    time.Time         `json:"joiningDate" db:"joining_date"`
	EndDate        time.Time         `json:"endDate" db:"end_date"`
	Status         OfferLetterStatus `json:"status" db:"status"`
	PdfURL         *string           `json:"pdfUrl,omitempty" db:"pdf_url"`
	SentAt         *time.Time        `json:"sentAt,omitempty" db:"sent_at"`
	CreatedBy      int64             `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time         `json:"updatedAt" db:"updated_at"`
}

// HasDocument reports whether a rendered document location is recorded
func (o *OfferLetter) HasDocument() bool {
	return o.PdfURL != nil && *o.PdfURL != ""
}

// DocumentKey is the storage key of the rendered PDF
func (o *OfferLetter) DocumentKey() string {
	return DocumentKeyFor(o.RefNo)
}

// DocumentKeyFor derives the storage key for a reference code
func DocumentKeyFor(refNo string) string {
	return refNo + ".pdf"
}

// SuggestedDomains are offered in the create form; any non-blank domain is accepted
var SuggestedDomains = []string{
	"Web Development",
	"Mobile Development",
	"Data Science",
	"DevOps",
	"UI/UX Design",
	"Product Management",
}
