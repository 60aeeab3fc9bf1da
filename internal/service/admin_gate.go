package service

import "github.com/iliyamo/arcade-reservation-board/internal/utils"

// adminSubject is the sub claim of admin session tokens.
const adminSubject = "admin"

// AdminGate guards every administrative action with one shared secret.
// Only a bcrypt hash of the secret is kept in memory.
type AdminGate struct {
	hash      utils.SecretHash
	jwtSecret string
	ttlMin    int
}

// NewAdminGate hashes password (trimmed) with cost.  Sessions issued by
// the gate are signed with jwtSecret and live ttlMin minutes.
func NewAdminGate(password string, cost int, jwtSecret string, ttlMin int) (*AdminGate, error) {
	hash, err := utils.HashSecret(password, cost)
	if err != nil {
		return nil, err
	}
	return &AdminGate{hash: hash, jwtSecret: jwtSecret, ttlMin: ttlMin}, nil
}

// Check compares the trimmed input with the secret.
func (g *AdminGate) Check(input string) error {
	if !g.hash.Matches(input) {
		return ErrAdminDenied
	}
	return nil
}

// OpenSession exchanges the secret for a signed admin token.
func (g *AdminGate) OpenSession(input string) (utils.AccessToken, error) {
	if err := g.Check(input); err != nil {
		return utils.AccessToken{}, err
	}
	return utils.NewAccessToken(g.jwtSecret, adminSubject, utils.RoleAdmin, g.ttlMin)
}

// VerifySession accepts a token issued by OpenSession.
func (g *AdminGate) VerifySession(raw string) error {
	claims, err := utils.ParseAccessToken(g.jwtSecret, raw)
	if err != nil || claims.Role != utils.RoleAdmin {
		return ErrAdminDenied
	}
	return nil
}
