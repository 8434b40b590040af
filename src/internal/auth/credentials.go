package auth

import "crypto/subtle"

// Credentials is the single admin identity supplied by the deployment.
type Credentials struct {
	Identifier string
	Secret     string
}

// Matches compares both values in constant time. Every field is always
// compared so a wrong email and a wrong password take the same path.
func (c Credentials) Matches(identifier, secret string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(c.Identifier), []byte(identifier))
	secretOK := subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret))
	return idOK&secretOK == 1
}
