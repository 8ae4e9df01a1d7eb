package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionFeesRead allows viewing ledgers, catalogs and reports.
	PermissionFeesRead Permission = "fees:read"

	// PermissionFeesManage allows maintaining the catalogs, assigning
	// structures, recording payments and proposing adjustments.
	PermissionFeesManage Permission = "fees:manage"

	// PermissionFeesApprove allows approving and rejecting adjustments.
	PermissionFeesApprove Permission = "fees:approve"
)

// AllPermissions lists every permission code, used when issuing
// platform operator tokens.
var AllPermissions = []Permission{
	PermissionFeesRead,
	PermissionFeesManage,
	PermissionFeesApprove,
}
