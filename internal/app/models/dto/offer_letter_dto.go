package dto

import (
	"time"

	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/pkg/helpers"
)

// CreateOfferLetterRequest is the body of POST /offer-letters.
// Dates use YYYY-MM-DD.
type CreateOfferLetterRequest struct {
	CandidateName  string `json:"candidateName" binding:"required,notblank,max=100" example:"Asha Rao"`
	CandidateEmail string `json:"candidateEmail" binding:"required,email" example:"asha@x.com"`
	Domain         string `json:"domain" binding:"required,notblank,max=100" example:"Data Science"`
	JoiningDate    string `json:"joiningDate" binding:"required,isodate" example:"2024-01-10"`
	EndDate        string `json:"endDate" binding:"required,isodate" example:"2024-06-10"`
}

// ListOfferLettersQuery are the dashboard filters. limit is read leniently
// by helpers.ParseLimitParam.
type ListOfferLettersQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=draft generated sent"`
	Query  string `form:"q" binding:"max=100"`
}

// OfferLetterResponse is an offer letter as shown to its owner
type OfferLetterResponse struct {
	ID             int64      `json:"id" example:"12"`
	RefNo          string     `json:"refNo" example:"OL482913"`
	CandidateName  string     `json:"candidateName" example:"Asha Rao"`
	CandidateEmail string     `json:"candidateEmail" example:"asha@x.com"`
	Domain         string     `json:"domain" example:"Data Science"`
	JoiningDate    string     `json:"joiningDate" example:"2024-01-10"`
	EndDate        string     `json:"endDate" example:"2024-06-10"`
	Status         string     `json:"status" example:"generated" enums:"draft,generated,sent"`
	PdfURL         *string    `json:"pdfUrl,omitempty" example:"http://localhost:8080/documents/OL482913.pdf"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// OfferLetterListResponse is one page of the dashboard
type OfferLetterListResponse struct {
	Items []OfferLetterResponse `json:"items"`
	Count int                   `json:"count" example:"1"`
	Limit int                   `json:"limit" example:"10"`
}

// DocumentResponse is returned once a document is available
type DocumentResponse struct {
	ID     int64  `json:"id" example:"12"`
	RefNo  string `json:"refNo" example:"OL482913"`
	Status string `json:"status" example:"generated"`
	PdfURL string `json:"pdfUrl" example:"http://localhost:8080/documents/OL482913.pdf"`
}

// VerificationResponse carries only the public-safe fields of a letter
type VerificationResponse struct {
	RefNo          string  `json:"refNo" example:"OL482913"`
	CandidateName  string  `json:"candidateName" example:"Asha Rao"`
	CandidateEmail string  `json:"candidateEmail" example:"asha@x.com"`
	Domain         string  `json:"domain" example:"Data Science"`
	JoiningDate    string  `json:"joiningDate" example:"2024-01-10"`
	EndDate        string  `json:"endDate" example:"2024-06-10"`
	Status         string  `json:"status" example:"sent"`
	PdfURL         *string `json:"pdfUrl,omitempty"`
}

// DomainsResponse lists suggested internship domains
type DomainsResponse struct {
	Domains []string `json:"domains"`
}

// NewOfferLetterResponse maps the model for its owner
func NewOfferLetterResponse(o *models.OfferLetter) OfferLetterResponse {
	return OfferLetterResponse{
		ID:             o.ID,
		RefNo:          o.RefNo,
		CandidateName:  o.CandidateName,
		CandidateEmail: o.CandidateEmail,
		Domain:         o.Domain,
		JoiningDate:    helpers.FormatISODate(o.JoiningDate),
		EndDate:        helpers.FormatISODate(o.EndDate),
		Status:         string(o.Status),
		PdfURL:         o.PdfURL,
		SentAt:         o.SentAt,
		CreatedAt:      o.CreatedAt,
	}
}

// NewOfferLetterListResponse maps a page of letters
func NewOfferLetterListResponse(items []*models.OfferLetter, limit int) OfferLetterListResponse {
	out := OfferLetterListResponse{Items: make([]OfferLetterResponse, 0, len(items)), Limit: limit}
	for _, o := range items {
		out.Items = append(out.Items, NewOfferLetterResponse(o))
	}
	out.Count = len(out.Items)
	return out
}

// NewDocumentResponse maps a letter that has a document
func NewDocumentResponse(o *models.OfferLetter) DocumentResponse {
	resp := DocumentResponse{ID: o.ID, RefNo: o.RefNo, Status: string(o.Status)}
	if o.PdfURL != nil {
		resp.PdfURL = *o.PdfURL
	}
	return resp
}

// NewVerificationResponse maps the public-safe view
func NewVerificationResponse(o *models.OfferLetter) VerificationResponse {
	return VerificationResponse{
		RefNo:          o.RefNo,
		CandidateName:  o.CandidateName,
		CandidateEmail: o.CandidateEmail,
		Domain:         o.Domain,
		JoiningDate:    helpers.FormatISODate(o.JoiningDate),
		EndDate:        helpers.FormatISODate(o.EndDate),
		Status:         string(o.Status),
		PdfURL:         o.PdfURL,
	}
}
