package access

import (
	"strings"
	"time"
)

// Roles, mirrored from model so this package stays dependency free.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// Redirect targets.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	BillingPath      = "/billing"
)

// Outcome of a gate decision.
type Outcome int

const (
	Allow Outcome = iota
	NeedLogin
	Forbidden
	NeedBilling
)

// Rule grants the listed roles access to every path under Prefix.
type Rule struct {
	Prefix string
	Roles  []string
}

func (r Rule) allows(role string) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	allRoles        = []string{RoleAdmin, RoleManager, RoleCashier}
	backOffice      = []string{RoleAdmin, RoleManager}
	adminOnly       = []string{RoleAdmin}
	publicPrefixes  = []string{"/health", "/api/auth/login", LoginPath, "/swagger"}
	billingPrefixes = []string{"/api/billing", BillingPath, "/api/auth/logout"}
)

// DefaultRules is evaluated top to bottom; the first matching prefix wins,
// so specific prefixes must precede broader ones.
var DefaultRules = []Rule{
	{Prefix: "/api/inventory", Roles: backOffice},
	{Prefix: "/api/sales", Roles: allRoles},
	{Prefix: "/api/products", Roles: allRoles},
	{Prefix: "/api/carts", Roles: allRoles},
	{Prefix: "/api/billing", Roles: allRoles},
	{Prefix: "/api", Roles: allRoles},
	{Prefix: "/settings", Roles: adminOnly},
	{Prefix: "/inventory", Roles: backOffice},
	{Prefix: "/", Roles: allRoles},
}

// Decision is the gate's verdict for one request.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

// Gate evaluates requests against an ordered rule table.
type Gate struct {
	rules []Rule
}

func NewGate(rules []Rule) *Gate {
	return &Gate{rules: rules}
}

// IsPublic reports whether path needs no session at all.
func IsPublic(path string) bool {
	return matchAny(path, publicPrefixes)
}

// Decide applies, in order: public paths, session presence, role table, subscription.
// claims is nil when the request carried no valid token.
func (g *Gate) Decide(path string, claims *Claims, now time.Time) Decision {
	if IsPublic(path) {
		return Decision{Outcome: Allow}
	}
	if claims == nil {
		return Decision{Outcome: NeedLogin, Redirect: LoginPath}
	}
	if rule, ok := g.match(path); ok && !rule.allows(claims.Role) {
		return Decision{Outcome: Forbidden, Redirect: UnauthorizedPath}
	}
	if SubscriptionExpired(claims, now) && !matchAny(path, billingPrefixes) {
		return Decision{Outcome: NeedBilling, Redirect: BillingPath}
	}
	return Decision{Outcome: Allow}
}

func (g *Gate) match(path string) (Rule, bool) {
	for _, r := range g.rules {
		if hasPathPrefix(path, r.Prefix) {
			return r, true
		}
	}
	return Rule{}, false
}

// SubscriptionExpired is true for INACTIVE tenants and for TRIAL tenants whose trial ended.
// A TRIAL without an end date never expires.
func SubscriptionExpired(c *Claims, now time.Time) bool {
	switch c.SubscriptionStatus {
	case "INACTIVE":
		return true
	case "TRIAL":
		return c.TrialEndsAt != nil && c.TrialEndsAt.Time.Before(now)
	default:
		return false
	}
}

func matchAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPathPrefix(path, p) {
			return true
		}
	}
	return false
}

// hasPathPrefix matches whole segments: "/api/sales" covers "/api/sales/1" but not "/api/salesman".
func hasPathPrefix(path, prefix string) bool {
	if prefix == "/" {
		return strings.HasPrefix(path, "/")
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
