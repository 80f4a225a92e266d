package handlers

// AuthContext carries authenticated socket identity information into handler
// functions. It intentionally excludes transport-specific types.
type AuthContext struct {
	userID   string
	name     string
	role     string
	socketID string
}

// NewAuthContext constructs an AuthContext for a single socket event. name and
// role come from the token claims and may be empty.
func NewAuthContext(userID, name, role, socketID string) AuthContext {
	return AuthContext{
		userID:   userID,
		name:     name,
		role:     role,
		socketID: socketID,
	}
}

// UserID returns the authenticated user id.
func (a AuthContext) UserID() string { return a.userID }

// Name returns the display name from the token, if any.
func (a AuthContext) Name() string { return a.name }

// Role returns the role from the token, if any.
func (a AuthContext) Role() string { return a.role }

// SocketID returns the caller socket id.
func (a AuthContext) SocketID() string { return a.socketID }
