package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nimbus-hr/nimbus-hr/internal/idp"
	"github.com/nimbus-hr/nimbus-hr/internal/platform/httpx"
	"github.com/nimbus-hr/nimbus-hr/internal/shared"
)

// TokenVerifier verifies a bearer token with the identity provider.
// Implemented by *idp.Client.
type TokenVerifier interface {
	GetUser(ctx context.Context, token string) (*idp.Subject, error)
}

// DenialFunc is notified when the guard rejects a request. Used to feed the
// audit trail; must not block.
type DenialFunc func(ctx context.Context, subjectID, path, reason string)

// Guard is the per-request authorization gate. It runs before handler
// execution, resolves the caller's identity and enforces the route's static
// requirement.
type Guard struct {
	Verifier TokenVerifier
	Resolver Resolver
	Logger   *slog.Logger
	OnDeny   DenialFunc
}

// Require returns a middleware enforcing req for every request it wraps.
func (g Guard) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if req.Public {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				if req.OptionalAuth {
					next.ServeHTTP(w, r)
					return
				}
				g.deny(w, r, "", shared.AuthenticationError("No token provided"))
				return
			}

			identity, err := g.resolve(r.Context(), token)
			if err != nil {
				if req.OptionalAuth {
					// Optional-auth routes tolerate a bad token and
					// proceed unauthenticated.
					g.log().WarnContext(r.Context(), "optional auth resolution failed", slog.Any("error", err))
					next.ServeHTTP(w, r)
					return
				}
				subjectID := ""
				if identity != nil {
					subjectID = identity.ID
				}
				g.deny(w, r, subjectID, err)
				return
			}

			if !MatchRoles(req.Roles, identity.Roles) {
				g.log().WarnContext(r.Context(), "role requirement not met",
					slog.String("user_id", identity.ID),
					slog.Any("required", req.Roles))
				g.deny(w, r, identity.ID, shared.AuthorizationError("Insufficient role permissions"))
				return
			}
			if !MatchPermissions(req.Permissions, identity.Permissions) {
				g.log().WarnContext(r.Context(), "permission requirement not met",
					slog.String("user_id", identity.ID),
					slog.Any("required", req.Permissions))
				g.deny(w, r, identity.ID, shared.AuthorizationError("Insufficient permissions"))
				return
			}

			ctx, rc := shared.EnsureRequestContext(r.Context())
			rc.SetIdentity(identity)
			rc.SetTenantID(identity.TenantID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolve performs steps 3-5 of the gate: token verification, tenant
// binding, then concurrent role and permission resolution.
func (g Guard) resolve(ctx context.Context, token string) (*shared.Identity, error) {
	subject, err := g.Verifier.GetUser(ctx, token)
	if err != nil {
		g.log().ErrorContext(ctx, "token verification failed", slog.Any("error", err))
		return nil, shared.AuthenticationError("Invalid token")
	}

	tenantID, err := g.Resolver.TenantFor(ctx, subject.ID)
	if err != nil {
		if errors.Is(err, ErrNoTenant) {
			g.log().ErrorContext(ctx, "no organization for subject", slog.String("user_id", subject.ID))
			return nil, shared.TenancyError("User not associated with any organization")
		}
		g.log().ErrorContext(ctx, "tenant resolution failed", slog.Any("error", err))
		return nil, shared.AuthenticationError("Failed to authenticate user")
	}

	// Role and permission lookups have no ordering dependency; a failed
	// lookup degrades to an empty set rather than failing the request.
	var roles, permissions []string
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		r, err := g.Resolver.Roles(egCtx, subject.ID, tenantID)
		if err != nil {
			g.log().WarnContext(egCtx, "role resolution degraded to empty", slog.Any("error", err))
			return nil
		}
		roles = r
		return nil
	})
	eg.Go(func() error {
		p, err := g.Resolver.Permissions(egCtx, subject.ID)
		if err != nil {
			g.log().WarnContext(egCtx, "permission resolution degraded to empty", slog.Any("error", err))
			return nil
		}
		permissions = p
		return nil
	})
	_ = eg.Wait()

	return &shared.Identity{
		ID:          subject.ID,
		Email:       subject.Email,
		TenantID:    tenantID,
		Roles:       roles,
		Permissions: permissions,
		Metadata:    subject.Metadata,
		Token:       token,
	}, nil
}

func (g Guard) deny(w http.ResponseWriter, r *http.Request, subjectID string, err error) {
	if g.OnDeny != nil {
		g.OnDeny(r.Context(), subjectID, r.URL.Path, err.Error())
	}
	httpx.RespondError(w, r, err)
}

func (g Guard) log() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// bearerToken extracts the token from the Authorization header. The header
// must be exactly "Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
