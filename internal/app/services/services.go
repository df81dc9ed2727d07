// Package services holds the business logic behind the HTTP controllers.
//
// Services defined in this package:
//   - AuthService: HR staff registration and login
//   - OfferLetterService: the offer letter lifecycle (create, document, send, delete)
//   - VerificationService: public lookups by reference number
//   - Reconciler: repairs drafts whose document was stored but never recorded
package services
