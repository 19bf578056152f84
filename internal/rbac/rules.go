package rbac

// Default policy for the operator surfaces. Conversions themselves are public.
var RolePermissions = map[string][]string{
	"auditor": {
		"history:view",
	},
	"admin": {
		"*", // everything
	},
}
