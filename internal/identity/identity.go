package identity

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// DefaultPort is the standard FTP control port.
const DefaultPort = 21

// Errors
var (
	ErrMissingHost = errors.New("url has no host")
)

// Identity is the canonical form of a connection target.
type Identity struct {
	Scheme   string // "ftp" or "ftps"
	Host     string
	Port     int
	User     string // URL-unescaped, "" for anonymous
	Password string // URL-unescaped
	Path     string // residual path, always starts with "/"
}

// Parse converts a raw URL into an Identity without alias resolution.
func Parse(raw string) (Identity, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("parse url: %w", err)
	}
	return fromURL(u)
}

// Resolve converts a raw URL into an Identity, first resolving its base
// through the alias table (alias base URL -> target base URL). The typed
// path always wins over the target's path. One hop only; targets are
// stored pre-flattened by the bookmark store.
func Resolve(raw string, aliases map[string]string) (Identity, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("parse url: %w", err)
	}

	if target, ok := aliases[stripPath(u)]; ok {
		t, err := url.Parse(target)
		if err != nil {
			return Identity{}, fmt.Errorf("parse bookmark target %q: %w", target, err)
		}
		t.Path = u.Path
		u = t
	}

	return fromURL(u)
}

// BaseKey returns the alias-table key for a raw URL: the URL with its path
// removed, otherwise exactly as typed.
func BaseKey(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	return stripPath(u), nil
}

func stripPath(u *url.URL) string {
	base := *u
	base.Path = ""
	base.RawPath = ""
	return base.String()
}

func fromURL(u *url.URL) (Identity, error) {
	if u.Hostname() == "" {
		return Identity{}, ErrMissingHost
	}

	id := Identity{
		Scheme: u.Scheme,
		Host:   u.Hostname(),
		Port:   DefaultPort,
		Path:   "/",
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return Identity{}, fmt.Errorf("parse port %q: %w", p, err)
		}
		id.Port = port
	}

	if u.User != nil {
		id.User = u.User.Username()
		id.Password, _ = u.User.Password()
	}

	if u.Path != "" {
		id.Path = u.Path
	}

	return id, nil
}

// BaseURL is the human-meaningful server label: scheme, user, host and
// port, never path or password.
func (id Identity) BaseURL() string {
	if id.User != "" {
		return fmt.Sprintf("%s://%s@%s:%d", id.Scheme, id.User, id.Host, id.Port)
	}
	return fmt.Sprintf("%s://%s:%d", id.Scheme, id.Host, id.Port)
}

// Addr returns the host:port dial address.
func (id Identity) Addr() string {
	return net.JoinHostPort(id.Host, strconv.Itoa(id.Port))
}

// FTPS reports whether the identity requires explicit TLS.
func (id Identity) FTPS() bool {
	return id.Scheme == "ftps"
}

// URL reassembles the identity into a full URL, password included.
func (id Identity) URL() string {
	u := url.URL{
		Scheme: id.Scheme,
		Host:   id.Addr(),
		Path:   id.Path,
	}
	if id.User != "" {
		if id.Password != "" {
			u.User = url.UserPassword(id.User, id.Password)
		} else {
			u.User = url.User(id.User)
		}
	}
	return u.String()
}
