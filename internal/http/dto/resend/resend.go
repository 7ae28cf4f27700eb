// Package resend holds the wire types for the resend-verification endpoint.
package resend

// ResendRequest is the JSON body posted by the registration front end.
type ResendRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	RegistrationID    string `json:"registrationId"`
	VerificationToken string `json:"verificationToken"`
}

// ResendResponse is the success body.
type ResendResponse struct {
	Success bool `json:"success"`
}
