package dto

// SendEmailRequest is the body accepted by the email relay
type SendEmailRequest struct {
	To            string `json:"to" example:"asha@x.com"`
	Subject       string `json:"subject" example:"Offer Letter - OL482913"`
	PdfURL        string `json:"pdfUrl" example:"http://localhost:8080/documents/OL482913.pdf"`
	RecipientName string `json:"recipientName" example:"Asha Rao"`
}

// SendEmailResponse is the relay's answer. Error and Details are set on failure.
type SendEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}
