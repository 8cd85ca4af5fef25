package devgateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
)

func seededGateway(t *testing.T) *Gateway {
	t.Helper()

	learnerHash, err := HashPassword("learner-pw")
	require.NoError(t, err)
	instructorHash, err := HashPassword("instructor-pw")
	require.NoError(t, err)

	gw, err := New(Config{
		SigningKey: "test-signing-key",
		Accounts: []Account{
			{
				Profile:      domainauth.Profile{ID: "learner-1", Email: "learner@dev.local", FirstName: "Dev", LastName: "Learner"},
				PasswordHash: learnerHash,
				Role:         domainauth.RoleLearner,
			},
			{
				Profile:      domainauth.Profile{ID: "instructor-1", Email: "instructor@dev.local", FirstName: "Dev", LastName: "Instructor"},
				PasswordHash: instructorHash,
				Role:         domainauth.RoleInstructor,
			},
		},
	})
	require.NoError(t, err)
	return gw
}

func password(email, pw string) ports.Credentials {
	return ports.Credentials{Password: &ports.PasswordCredentials{Email: email, Password: pw}}
}

func TestGateway_PasswordSignIn(t *testing.T) {
	gw := seededGateway(t)

	token, err := gw.AuthenticateLearner(context.Background(), password("learner@dev.local", "learner-pw"))
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleLearner, token.Role)
	assert.NotEmpty(t, token.Value)
}

func TestGateway_WrongPasswordRejected(t *testing.T) {
	gw := seededGateway(t)

	_, err := gw.AuthenticateLearner(context.Background(), password("learner@dev.local", "nope"))
	require.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
	assert.Equal(t, "Incorrect email or password", domainauth.UserMessage(err))
}

func TestGateway_RoleTagsNeverCross(t *testing.T) {
	gw := seededGateway(t)

	// The learner account cannot sign in through the instructor path.
	_, err := gw.AuthenticateInstructor(context.Background(), password("learner@dev.local", "learner-pw"))
	require.ErrorIs(t, err, domainauth.ErrInvalidCredentials)

	token, err := gw.AuthenticateInstructor(context.Background(), password("instructor@dev.local", "instructor-pw"))
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleInstructor, token.Role)
}

func TestGateway_FederatedExchange_LearnerOnly(t *testing.T) {
	gw := seededGateway(t)
	creds := ports.Credentials{Federated: &ports.FederatedCredentials{ExternalIdentityToken: "some-id-token"}}

	token, err := gw.AuthenticateLearner(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleLearner, token.Role)

	_, err = gw.AuthenticateInstructor(context.Background(), creds)
	require.ErrorIs(t, err, domainauth.ErrRoleMismatch)
}

func TestGateway_FetchProfile_RoundTrip(t *testing.T) {
	gw := seededGateway(t)

	token, err := gw.AuthenticateInstructor(context.Background(), password("instructor@dev.local", "instructor-pw"))
	require.NoError(t, err)

	prof, err := gw.FetchProfile(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "instructor-1", prof.ID)
	assert.Equal(t, "Dev", prof.FirstName)
}

func TestGateway_FetchProfile_RejectsRetaggedToken(t *testing.T) {
	gw := seededGateway(t)

	token, err := gw.AuthenticateLearner(context.Background(), password("learner@dev.local", "learner-pw"))
	require.NoError(t, err)

	// A learner token relabelled as instructor must not resolve.
	token.Role = domainauth.RoleInstructor
	_, err = gw.FetchProfile(context.Background(), token)
	require.ErrorIs(t, err, domainauth.ErrRoleMismatch)
}

func TestNew_RequiresSigningKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
