package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden           ErrCode = "FORBIDDEN"
	ErrSchoolScopeMismatch ErrCode = "SCHOOL_SCOPE_MISMATCH"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation        ErrCode = "VALIDATION_ERROR"
	ErrInvalidID         ErrCode = "INVALID_ID"
	ErrInvalidPayload    ErrCode = "INVALID_PAYLOAD"
	ErrMissingSchoolCode ErrCode = "MISSING_SCHOOL_CODE"
	ErrInvalidLimit      ErrCode = "INVALID_LIMIT"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Ledger ────────────────────────────────────────────────────────
	ErrAdjustmentNotPending     ErrCode = "ADJUSTMENT_NOT_PENDING"
	ErrDuplicateActiveStructure ErrCode = "DUPLICATE_ACTIVE_STRUCTURE"
	ErrStructureInactive        ErrCode = "STRUCTURE_INACTIVE"
	ErrOverpayment              ErrCode = "OVERPAYMENT"
	ErrInvalidAmount            ErrCode = "INVALID_AMOUNT"
	ErrFineNotApplicable        ErrCode = "FINE_NOT_APPLICABLE"
	ErrApproverRequired         ErrCode = "APPROVER_REQUIRED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrSchoolScopeMismatch:
		return "Your token is not scoped to this school."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrMissingSchoolCode:
		return "school_code is required."
	case ErrInvalidLimit:
		return "limit must be between 1 and 500."

	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	case ErrAdjustmentNotPending:
		return "Adjustment has already been approved or rejected."
	case ErrDuplicateActiveStructure:
		return "An active fee structure already bills this class, section, year and component."
	case ErrStructureInactive:
		return "Fee structure is inactive."
	case ErrOverpayment:
		return "Payment exceeds the balance due."
	case ErrInvalidAmount:
		return "Amount is not valid for this operation."
	case ErrFineNotApplicable:
		return "The fine does not apply to this fee yet."
	case ErrApproverRequired:
		return "Approver identity is required."

	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
