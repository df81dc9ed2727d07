package email

import (
	"bytes"
	"html/template"
)

var offerLetterTemplate = template.Must(template.New("offer-letter").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Hello {{.RecipientName}},</h2>
  <p>Your Offer Letter is ready for download.</p>
  <p>You can access your Offer Letter by clicking the button below:</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.PdfURL}}"
       style="background-color: #7c3aed; color: white; padding: 12px 24px;
              text-decoration: none; border-radius: 4px; display: inline-block;">
      View Offer Letter
    </a>
  </div>
  <p style="color: #666; font-size: 14px;">
    If the button doesn't work, you can copy and paste this link into your browser:
    <br>
    {{.PdfURL}}
  </p>
  <hr style="border: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">
    This is an automated message, please do not reply to this email.
  </p>
</div>
`))

// OfferLetterHTML renders the notification body for a ready offer letter
func OfferLetterHTML(recipientName, pdfURL string) (string, error) {
	var buf bytes.Buffer
	err := offerLetterTemplate.Execute(&buf, struct {
		RecipientName string
		PdfURL        string
	}{recipientName, pdfURL})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// OfferLetterAttachmentName is the file name candidates receive
func OfferLetterAttachmentName(recipientName string) string {
	return recipientName + "_offer-letter.pdf"
}
