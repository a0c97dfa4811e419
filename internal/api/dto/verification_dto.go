package dto

// SubmitDocumentRequest payload for an identity-document upload reference.
type SubmitDocumentRequest struct {
	DocumentPath string `json:"document_path"`
}

// VerificationDecisionRequest payload for admin channel decisions.
type VerificationDecisionRequest struct {
	Reason string `json:"reason"`
}

// DeactivateRequest payload for account suspension.
type DeactivateRequest struct {
	AllowReactivationRequest bool `json:"allow_reactivation_request"`
}
