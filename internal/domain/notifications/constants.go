package notifications

const (
	TypeComplianceWarning = "compliance_warning"
	TypeComplianceExpired = "compliance_expired"
	TypeComplianceDigest  = "compliance_digest"
	TypeShiftAnchor       = "shift_anchor_changed"
)
