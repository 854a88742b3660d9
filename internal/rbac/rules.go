package rbac

const (
	RoleStudent  = "student"
	RoleEducator = "educator"
)

var studentPerms = []string{
	"course:view",
	"lesson:view",
	"quiz:view",
	"answer:submit",
	"progress:*",
	"user:self",
	"asset:view",
}

// DefaultPolicy is the policy used by Require. Educators can do everything a
// student can, plus authoring. Ownership of individual courses is checked
// by the learning service, not here.
var DefaultPolicy = Policy{
	RoleStudent: studentPerms,
	RoleEducator: append([]string{
		"course:write",
		"lesson:write",
		"quiz:write",
		"quiz:view-answers",
		"asset:upload",
		"users:list",
	}, studentPerms...),
}
