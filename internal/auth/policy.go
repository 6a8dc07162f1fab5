package auth

// Action names a request the API can serve.
type Action string

const (
	ActionListPosts  Action = "posts.list"
	ActionReadPost   Action = "posts.read"
	ActionCreatePost Action = "posts.create"
	ActionUpdatePost Action = "posts.update"
	ActionDeletePost Action = "posts.delete"

	ActionListUsers  Action = "users.list"
	ActionReadUser   Action = "users.read"
	ActionUpdateUser Action = "users.update"
	ActionDeleteUser Action = "users.delete"

	ActionLogin    Action = "auth.login"
	ActionRegister Action = "auth.register"
)

// Operation describes what an action demands from the caller.
type Operation struct {
	// Public actions skip token validation entirely.
	Public        bool
	RequiresAdmin bool
	// CheckOwner requires the caller to be the recorded owner of the target.
	CheckOwner bool
}

// Policies is the complete access table. Updating a post deliberately does
// not check ownership while deleting one does; keep both rows explicit.
var Policies = map[Action]Operation{
	ActionListPosts:  {Public: true},
	ActionReadPost:   {Public: true},
	ActionCreatePost: {RequiresAdmin: true},
	ActionUpdatePost: {RequiresAdmin: true},
	ActionDeletePost: {RequiresAdmin: true, CheckOwner: true},

	ActionListUsers:  {RequiresAdmin: true},
	ActionReadUser:   {RequiresAdmin: true},
	ActionUpdateUser: {RequiresAdmin: true},
	ActionDeleteUser: {RequiresAdmin: true},

	ActionLogin:    {Public: true},
	ActionRegister: {Public: true},
}
