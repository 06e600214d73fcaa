package ldap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/mithridate/ldapadm/internal/logger"
)

// client implements the Client interface over a single connection.
type client struct {
	conn   *ldap.Conn
	config *Config
}

// Connect dials the configured directory endpoint and returns a session.
// The session is released with Close; it is not safe for concurrent use;
// open one session per concurrent caller.
func Connect(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.URL == "" {
		return nil, fmt.Errorf("directory URL is required")
	}

	start := time.Now()
	logger.Debug("connecting to directory",
		"url", config.URL,
		"auth_method", config.GetAuthMethod().String(),
	)

	conn, err := dial(config)
	if err != nil {
		logger.Error("directory connect failed",
			"url", config.URL,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, NewConnectionError("failed to connect to directory", true, err)
	}

	if config.Timeout > 0 {
		conn.SetTimeout(config.Timeout)
	}

	c := &client{conn: conn, config: config}

	if config.GetAuthMethod() != AuthMethodAnonymous {
		if err := c.BindWithConfig(ctx); err != nil {
			conn.Close()
			return nil, err
		}
	}

	logger.Debug("directory session established",
		"url", config.URL,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return c, nil
}

// dial establishes the underlying connection, handling the TLS variants.
func dial(config *Config) (*ldap.Conn, error) {
	u, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid directory URL %q: %w", config.URL, err)
	}

	tlsConfig := config.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	conn, err := ldap.DialURL(config.URL, ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, err
	}

	// Plain ldap:// connections are upgraded when StartTLS is enabled
	// and SkipTLS is not (local ldapi:// sockets never upgrade).
	if u.Scheme == "ldap" && config.StartTLS && !config.SkipTLS {
		if err := conn.StartTLS(tlsConfig); err != nil {
			conn.Close()
			return nil, fmt.Errorf("StartTLS failed: %w", err)
		}
	}

	return conn, nil
}

// Close releases the session's connection.
func (c *client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Bind authenticates the session as the given DN.
func (c *client) Bind(ctx context.Context, dn, password string) error {
	return c.withRetry(ctx, "bind", func() error {
		return c.conn.Bind(dn, password)
	})
}

// BindWithConfig authenticates using the session's configured credentials.
func (c *client) BindWithConfig(ctx context.Context) error {
	switch method := c.config.GetAuthMethod(); method {
	case AuthMethodSimpleBind:
		return c.Bind(ctx, c.config.BindDN, c.config.BindPassword)
	case AuthMethodKerberos:
		return c.withRetry(ctx, "gssapi_bind", func() error {
			return kerberosBind(c.conn, c.config)
		})
	case AuthMethodAnonymous:
		return c.withRetry(ctx, "anonymous_bind", func() error {
			return c.conn.UnauthenticatedBind("")
		})
	default:
		return fmt.Errorf("unsupported authentication method: %s", method)
	}
}

// Search performs a directory search.
func (c *client) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req == nil {
		return nil, fmt.Errorf("search request cannot be nil")
	}

	timeLimit := req.TimeLimit
	if timeLimit == 0 {
		timeLimit = c.config.Timeout
	}

	ldapReq := ldap.NewSearchRequest(
		req.BaseDN,
		int(req.Scope),
		ldap.NeverDerefAliases,
		req.SizeLimit,
		int(timeLimit.Seconds()),
		false,
		req.Filter,
		req.Attributes,
		nil,
	)

	start := time.Now()
	var result *ldap.SearchResult
	err := c.withRetry(ctx, "search", func() error {
		var searchErr error
		result, searchErr = c.conn.Search(ldapReq)
		return searchErr
	})

	if err != nil {
		logger.Debug("search failed",
			"base_dn", req.BaseDN,
			"filter", req.Filter,
			"scope", req.Scope.String(),
			"error", err,
		)
		return nil, err
	}

	logger.Debug("search completed",
		"base_dn", req.BaseDN,
		"filter", req.Filter,
		"entries", len(result.Entries),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &SearchResult{Entries: result.Entries}, nil
}

// Add creates a new directory entry.
func (c *client) Add(ctx context.Context, req *AddRequest) error {
	if req == nil {
		return fmt.Errorf("add request cannot be nil")
	}

	ldapReq := ldap.NewAddRequest(req.DN, nil)
	for attr, values := range req.Attributes {
		ldapReq.Attribute(attr, values)
	}

	return c.withRetry(ctx, "add", func() error {
		return c.conn.Add(ldapReq)
	})
}

// Modify applies all attribute changes of the request in one atomic
// directory operation.
func (c *client) Modify(ctx context.Context, req *ModifyRequest) error {
	if req == nil {
		return fmt.Errorf("modify request cannot be nil")
	}

	ldapReq := ldap.NewModifyRequest(req.DN, nil)
	for _, change := range req.Adds {
		ldapReq.Add(change.Name, change.Values)
	}
	for _, change := range req.Replaces {
		ldapReq.Replace(change.Name, change.Values)
	}
	for _, change := range req.Deletes {
		ldapReq.Delete(change.Name, change.Values)
	}

	return c.withRetry(ctx, "modify", func() error {
		return c.conn.Modify(ldapReq)
	})
}

// Delete removes a directory entry.
func (c *client) Delete(ctx context.Context, dn string) error {
	if dn == "" {
		return fmt.Errorf("DN cannot be empty")
	}

	return c.withRetry(ctx, "delete", func() error {
		return c.conn.Del(ldap.NewDelRequest(dn, nil))
	})
}

// PasswordModify performs the password modify extended operation
// (RFC 3062), the directory's native password-change path.
func (c *client) PasswordModify(ctx context.Context, dn, oldPassword, newPassword string) error {
	req := ldap.NewPasswordModifyRequest(dn, oldPassword, newPassword)
	return c.withRetry(ctx, "password_modify", func() error {
		_, err := c.conn.PasswordModify(req)
		return err
	})
}

// Ping tests connectivity by reading the root DSE.
func (c *client) Ping(ctx context.Context) error {
	searchReq := ldap.NewSearchRequest(
		"", // Root DSE
		ldap.ScopeBaseObject,
		ldap.NeverDerefAliases,
		1, 5, false,
		"(objectClass=*)",
		[]string{"supportedLDAPVersion"},
		nil,
	)

	return c.withRetry(ctx, "ping", func() error {
		_, err := c.conn.Search(searchReq)
		return err
	})
}

// withRetry executes an operation, retrying transient failures with
// exponential backoff. Result codes that represent a lost compare-and-swap
// or any other semantic failure are returned to the caller immediately.
func (c *client) withRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	backoff := c.config.InitialBackoff

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("retrying directory operation",
				"operation", operation,
				"attempt", attempt,
				"backoff_ms", backoff.Milliseconds(),
				"last_error", lastErr,
			)
		}

		err := fn()
		if err == nil {
			return nil
		}

		wrapped := NewError(operation, err)
		if !wrapped.IsRetryable() {
			return wrapped
		}
		lastErr = wrapped

		if attempt == c.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff = min(time.Duration(float64(backoff)*c.config.BackoffFactor), c.config.MaxBackoff)
		}
	}

	logger.Warn("directory operation failed after retries",
		"operation", operation,
		"attempts", c.config.MaxRetries+1,
		"error", lastErr,
	)

	return NewConnectionError("operation failed after retries", false, lastErr)
}
