package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/doodlesbykumbi/portcullis/pkg/audit"
	"github.com/doodlesbykumbi/portcullis/pkg/authenticator"
	"github.com/doodlesbykumbi/portcullis/pkg/authenticator/authn"
	"github.com/doodlesbykumbi/portcullis/pkg/identity"
	"github.com/doodlesbykumbi/portcullis/pkg/provision"
)

// Realm is advertised in WWW-Authenticate on every 401
const Realm = "portcullis"

// ProxyTrust decides whether a peer may set X-Forwarded-For
type ProxyTrust interface {
	IsTrustedProxy(ip string) bool
}

// Authenticator is middleware that resolves the caller's identity from the
// Authorization header
type Authenticator struct {
	authn   authenticator.Authenticator
	auditor *audit.Auditor
	proxies ProxyTrust
	logger  hclog.Logger
}

// NewAuthenticator creates the authentication middleware
func NewAuthenticator(authn authenticator.Authenticator, auditor *audit.Auditor, proxies ProxyTrust, logger hclog.Logger) *Authenticator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Authenticator{authn: authn, auditor: auditor, proxies: proxies, logger: logger}
}

// Credentials extracts the credential and password from the Authorization
// header. Basic carries username_or_token:password; Bearer carries a token.
func Credentials(r *http.Request) (credential, password string, ok bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "", false
	}
	if scheme, rest, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest), "", true
	}
	if user, pass, found := r.BasicAuth(); found {
		return user, pass, true
	}
	return "", "", true
}

// ClientIP returns the request's client address, honouring the first
// X-Forwarded-For entry only when the peer is a trusted proxy
func ClientIP(r *http.Request, proxies ProxyTrust) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if proxies != nil && proxies.IsTrustedProxy(host) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip
			}
		}
	}
	return net.ParseIP(host)
}

// Middleware returns an HTTP middleware that authenticates every request
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := ClientIP(r, a.proxies)

		credential, password, present := Credentials(r)
		if !present {
			Unauthorized(w)
			return
		}

		id, err := a.authn.Authenticate(r.Context(), authenticator.Input{
			Credential: credential,
			Password:   password,
			ClientIP:   clientIP,
		})
		if err != nil {
			var rejected *authenticator.RejectedError
			if !errors.As(err, &rejected) {
				a.logger.Error("authentication error", "error", err)
				InternalError(w)
				return
			}

			event := audit.AuthenticateEvent{
				ClientIP:          ipString(clientIP),
				AuthenticatorName: rejected.Step,
				Success:           false,
				ErrorMessage:      rejected.Reason.Error(),
			}
			event.User = rejectedUser(r, credential, rejected.Step)
			a.auditor.Log(r.Context(), event)

			Unauthorized(w)
			return
		}

		a.auditor.Log(r.Context(), audit.AuthenticateEvent{
			User:              id.Username,
			ClientIP:          ipString(clientIP),
			AuthenticatorName: string(id.Method),
			Success:           true,
		})

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// rejectedUser is the user a rejected request is audited under: a Basic
// username shaped like one and refused by the password step. Anything else
// may be token material and is left out.
func rejectedUser(r *http.Request, credential, step string) string {
	if step != authn.Name {
		return ""
	}
	if user, _, ok := r.BasicAuth(); !ok || user != credential {
		return ""
	}
	if !provision.ValidUsername(credential) {
		return ""
	}
	return credential
}

// Unauthorized writes the single response every authentication failure gets
func Unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

// InternalError writes the response for failures the caller cannot correct
func InternalError(w http.ResponseWriter) {
	writeJSONError(w, http.StatusInternalServerError, "internal error")
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
