package document

// Letterhead and body text of the internship offer letter.
const (
	orgName = "Suvidha Mahila Mandal, Walni"

	title = "INTERNSHIP OFFER LETTER"

	mainParagraph = `With reference to your interview, we are pleased to inform you that you have been selected as "Volunteer Intern" in our NGO - Suvidha Mahila Mandal, with the following terms and conditions:`

	legalNotice = `All the source/codes/data developed by the interns or any employee for the Suvidha Mahila Mandal are intellectual property of the organization & are protected by Indian Copyright Act. All the data generated during the internship period, is the property right of organization and can be used for any purpose. In case of any piracy, strict legal action will be taken by the organization against erring persons. No information or source codes or course curriculum or business secrets or financial position or other details of organization shall be discussed among friends or relatives or our competitors. Such leakage of information is likely to cause financial loss to the organization. Hence, in such a case, the organization will terminate the employee immediately and if required, further legal action will be taken against you.`

	agreementHeading = "Employment /Agreement Internship"

	agreement = `This agreement is entered between Suvidha Mahila Mandal, Registered office H.no 1951,W.N.4,Khaperkheda, Saoner, Nagpur and hereafter -called Suvidha Foundation.`

	closingLine   = "We wish you a successful journey with the Suvidha Foundation."
	signatory     = "Mrs. ShobhMotghare"
	signatoryRole = "Secretary, Suvidha Mahila Mandal"
)

var registrationLines = []string{
	"Registration No. MH/568/1995",
	"F No.12669",
	"Registerd Under the Society Act of 1860",
}

var contactLines = []string{
	"H.No. 1951, W.N.4, Khaperkheda, Saoner,",
	"Contact: (+91)08010996763",
	"info@suvidhafoundationedutech.org",
	"www.suvidhafoundationedutech.org",
}

// terms returns the six enumerated conditions; the second embeds the period.
func terms(joining, end string) []string {
	return []string{
		"• Apart from your domain you will provide the volunteer and fundraising Service to SUVIDHA FOUNDATION",
		"• The internship period will be from " + joining + " to " + end + ".",
		"• Your Work Base station is Work From Home and six days a week. You have to work for 4 hours daily",
		"• During the internship period and thereafter, you will not give out to anyone in writing or by word of mouth or otherwise particulars or details of work process, technical know-how, research carried out, security arrangements and/or matters of confidential or secret nature which you may come across during your service in this organization.",
		"• In case of any misconduct which causes financial loss to the NGO or hurts its reputation and goodwill of the organization, the management has the right to terminate any intern. In case of termination, the management will not be issuing certificates to the intern.",
		"• It is necessary for an intern to return all the organization belongings (login credentials, media created, and system) at the time of leaving the organization. A clearance and experience certificate will be given after completing the formalities. If any employee leaves the job/internship without completing the formality, the organization will take necessary action.",
	}
}
