// policy.go - Role-based access control table.
package server

// Operation names an authorization-gated action.
type Operation string

const (
	OpUpload      Operation = "upload"
	OpDelete      Operation = "delete"
	OpListOps     Operation = "list_ops"
	OpListClient  Operation = "list_client"
	OpIssueLink   Operation = "issue_link"
	OpResolveLink Operation = "resolve_link"
	OpSearch      Operation = "search"
)

// policy is the static (operation → allowed roles) table. Handlers
// consult it before performing any work; link issuance and link
// resolution both re-check so a token can never be replayed across
// roles.
var policy = map[Operation]map[Role]bool{
	OpUpload:      {RoleOps: true},
	OpDelete:      {RoleOps: true},
	OpListOps:     {RoleOps: true},
	OpListClient:  {RoleClient: true},
	OpIssueLink:   {RoleClient: true},
	OpResolveLink: {RoleClient: true},
	OpSearch:      {RoleOps: true, RoleClient: true},
}

// Authorized reports whether a role may perform an operation.
func Authorized(role Role, op Operation) bool {
	return policy[op][role]
}
