package auth

import (
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role tags the authenticated identity carried through a request. The session
// stores one marker per role so an admin and an owner logged in from the same
// browser do not evict each other, matching the per-role session keys the
// routes are gated on.
type Role string

const (
	RoleNone     Role = ""
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
)

const identityContextKey = "identity"

// Identity is the request-scoped authenticated principal. Handlers receive it
// from the session gate middleware instead of reading ambient session state.
type Identity struct {
	Role     Role
	Username string
	ID       primitive.ObjectID
}

func usernameKey(role Role) string { return string(role) }
func idKey(role Role) string       { return string(role) + "_id" }

// SignIn stores the role marker, username and id in the session.
func SignIn(session sessions.Session, ident Identity) error {
	session.Set(usernameKey(ident.Role), ident.Username)
	session.Set(idKey(ident.Role), ident.ID.Hex())
	return session.Save()
}

// SignOut clears the marker for one role and leaves any other role intact.
func SignOut(session sessions.Session, role Role) error {
	session.Delete(usernameKey(role))
	session.Delete(idKey(role))
	return session.Save()
}

// FromSession resolves the identity for a role from the session. Returns nil
// when no marker for that role is present.
func FromSession(session sessions.Session, role Role) *Identity {
	username, ok := session.Get(usernameKey(role)).(string)
	if !ok || username == "" {
		return nil
	}

	ident := &Identity{Role: role, Username: username}
	if hex, ok := session.Get(idKey(role)).(string); ok {
		if id, err := primitive.ObjectIDFromHex(hex); err == nil {
			ident.ID = id
		}
	}
	return ident
}

// SetIdentity attaches the resolved identity to the request context.
func SetIdentity(c *gin.Context, ident *Identity) {
	c.Set(identityContextKey, ident)
}

// CurrentIdentity returns the identity attached by the session gate.
func CurrentIdentity(c *gin.Context) (*Identity, error) {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return nil, fmt.Errorf("no identity in request context")
	}
	ident, ok := value.(*Identity)
	if !ok || ident == nil {
		return nil, fmt.Errorf("invalid identity in request context")
	}
	return ident, nil
}
