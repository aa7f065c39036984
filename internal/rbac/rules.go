package rbac

// Default policy. Students consume topics and own their progress; admins
// author topics.
var RolePermissions = map[string][]string{
	"student": {
		"topic:view",
		"exam:submit",
		"progress:view-own",
		"progress:write-own",
	},
	"admin": {
		"*", // everything
	},
}
