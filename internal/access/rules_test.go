package access

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestGate_Decide(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := jwt.NewNumericDate(now.Add(-time.Hour))
	future := jwt.NewNumericDate(now.Add(24 * time.Hour))

	active := func(role string) *Claims {
		return &Claims{Role: role, SubscriptionStatus: "ACTIVE"}
	}

	cases := []struct {
		name   string
		path   string
		claims *Claims
		want   Decision
	}{
		{"public health", "/health", nil, Decision{Outcome: Allow}},
		{"public login api", "/api/auth/login", nil, Decision{Outcome: Allow}},
		{"no token", "/api/sales", nil, Decision{Outcome: NeedLogin, Redirect: LoginPath}},
		{"cashier sells", "/api/sales", active(RoleCashier), Decision{Outcome: Allow}},
		{"cashier inventory api", "/api/inventory/movements", active(RoleCashier), Decision{Outcome: Forbidden, Redirect: UnauthorizedPath}},
		{"manager inventory api", "/api/inventory/movements", active(RoleManager), Decision{Outcome: Allow}},
		{"cashier settings page", "/settings", active(RoleCashier), Decision{Outcome: Forbidden, Redirect: UnauthorizedPath}},
		{"admin settings page", "/settings/team", active(RoleAdmin), Decision{Outcome: Allow}},
		{"prefix is segment aware", "/inventoryx", active(RoleCashier), Decision{Outcome: Allow}},
		{"unknown role", "/api/sales", active("guest"), Decision{Outcome: Forbidden, Redirect: UnauthorizedPath}},
		{"inactive tenant", "/api/sales", &Claims{Role: RoleAdmin, SubscriptionStatus: "INACTIVE"}, Decision{Outcome: NeedBilling, Redirect: BillingPath}},
		{"expired trial", "/api/products", &Claims{Role: RoleCashier, SubscriptionStatus: "TRIAL", TrialEndsAt: past}, Decision{Outcome: NeedBilling, Redirect: BillingPath}},
		{"running trial", "/api/products", &Claims{Role: RoleCashier, SubscriptionStatus: "TRIAL", TrialEndsAt: future}, Decision{Outcome: Allow}},
		{"expired trial on billing api", "/api/billing/status", &Claims{Role: RoleCashier, SubscriptionStatus: "TRIAL", TrialEndsAt: past}, Decision{Outcome: Allow}},
		{"inactive on billing page", "/billing", &Claims{Role: RoleAdmin, SubscriptionStatus: "INACTIVE"}, Decision{Outcome: Allow}},
		{"role check precedes subscription", "/api/inventory", &Claims{Role: RoleCashier, SubscriptionStatus: "INACTIVE"}, Decision{Outcome: Forbidden, Redirect: UnauthorizedPath}},
	}

	g := NewGate(DefaultRules)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, g.Decide(tc.path, tc.claims, now))
		})
	}
}

func TestGate_FirstMatchWins(t *testing.T) {
	g := NewGate([]Rule{
		{Prefix: "/api/reports", Roles: []string{RoleAdmin}},
		{Prefix: "/api", Roles: []string{RoleAdmin, RoleCashier}},
	})
	c := &Claims{Role: RoleCashier, SubscriptionStatus: "ACTIVE"}

	assert.Equal(t, Forbidden, g.Decide("/api/reports/daily", c, time.Now()).Outcome)
	assert.Equal(t, Allow, g.Decide("/api/other", c, time.Now()).Outcome)
}

func TestSubscriptionExpired_TrialWithoutEnd(t *testing.T) {
	assert.False(t, SubscriptionExpired(&Claims{SubscriptionStatus: "TRIAL"}, time.Now()))
}
