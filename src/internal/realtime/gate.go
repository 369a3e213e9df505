package realtime

import (
	"whisp-chat-svc/src/internal/models"

	"github.com/sirupsen/logrus"
)

// Verifier turns a bearer credential into a user id.
type Verifier interface {
	Verify(token string) (string, error)
}

// Gate admits connections that carry a valid credential.
type Gate struct {
	verifier Verifier
}

func NewGate(verifier Verifier) *Gate {
	return &Gate{verifier: verifier}
}

// Admit returns the user id behind token. Every failure is reported as
// models.ErrAuthentication so callers cannot tell a missing token from a bad one.
func (g *Gate) Admit(token string) (string, error) {
	if token == "" {
		logrus.Debug("Connection rejected: missing token")
		return "", models.ErrAuthentication
	}

	userID, err := g.verifier.Verify(token)
	if err != nil {
		logrus.WithError(err).Debug("Connection rejected: token verification failed")
		return "", models.ErrAuthentication
	}

	if userID == "" {
		logrus.Debug("Connection rejected: token carries no user id")
		return "", models.ErrAuthentication
	}

	return userID, nil
}
