package access

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func TestIssueAndParseToken(t *testing.T) {
	trialEnd := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	raw, err := IssueToken(testSecret, Claims{
		UserID:             "u-1",
		TenantID:           "t-1",
		Role:               RoleManager,
		SubscriptionStatus: "TRIAL",
		TrialEndsAt:        jwt.NewNumericDate(trialEnd),
	}, time.Now(), time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "t-1", claims.TenantID)
	assert.Equal(t, RoleManager, claims.Role)
	assert.Equal(t, "u-1", claims.Subject)
	require.NotNil(t, claims.TrialEndsAt)
	assert.True(t, trialEnd.Equal(claims.TrialEndsAt.Time))
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := IssueToken(testSecret, Claims{UserID: "u"}, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	valid, err := IssueToken(testSecret, Claims{UserID: "u"}, time.Now(), time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("another-secret", valid)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(testSecret, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
