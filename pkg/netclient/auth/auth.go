// Package auth implements the form-login application service: one POST
// to the auth endpoint that, on success, mints a session cookie for the
// file service to echo back.
package auth

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/client"
	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/settings"
	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/wire"
)

// Credentials is the login input.
type Credentials struct {
	ServerAddress string
	Username      string
	Password      string
}

// Session pairs the opaque session cookie with the server address it was
// minted against; it is usable only with that address.
type Session struct {
	Token  string
	Server wire.ServerAddress
}

// AuthResult is the login outcome.
type AuthResult struct {
	Success      bool
	Session      *Session
	ErrorMessage string
}

// EncodeForm encodes credentials as the login form body and returns it
// with its pre-encoding byte length.
//
// The body is exactly "httpd_username=<u>&httpd_password=<p>&login=Login"
// with the values concatenated raw: the server dialect this client
// targets was only ever observed accepting the unescaped form, so no
// percent-encoding is applied.
func EncodeForm(creds Credentials) ([]byte, int) {
	form := "httpd_username=" + creds.Username +
		"&httpd_password=" + creds.Password +
		"&login=Login"
	return []byte(form), len(form)
}

// parseServerAddress accepts either a bare host (default HTTP port) or
// an explicit "host:port" for non-standard deployments.
func parseServerAddress(addr string) wire.ServerAddress {
	if host, portStr, err := net.SplitHostPort(addr); err == nil {
		if port, err := strconv.Atoi(portStr); err == nil {
			return wire.ServerAddress{Host: host, Port: port}
		}
	}
	return wire.NewServerAddress(addr, wire.DefaultPort)
}

// Service performs authentication against the remote server.
type Service struct {
	client       *client.Client
	sessionToken string
}

// NewService creates an auth service over the given driver.
func NewService(c *client.Client) *Service {
	return &Service{client: c}
}

// IsAuthenticated reports whether a login on this service has minted a
// session.
func (s *Service) IsAuthenticated() bool {
	return s.sessionToken != ""
}

// Login posts the login form and interprets the outcome.
//
// Success requires a valid response carrying a non-empty Set-Cookie; the
// redirect chain is followed with session carry enabled so a cookie
// minted mid-chain still reaches us. A terminal Location of /login.html
// means the server bounced the credentials.
func (s *Service) Login(ctx context.Context, creds Credentials, setting *settings.Setting) AuthResult {
	if setting == nil {
		setting = settings.Default()
	}

	server := parseServerAddress(creds.ServerAddress)

	req := setting.CloneTemplate()
	req.URL = setting.AuthServiceURL
	req.Method = wire.MethodPOST
	req.Server = server
	req.PayloadType = wire.PayloadFormURLEncoded
	req.PayloadBytes, req.ContentLengthBeforeEncoding = EncodeForm(creds)
	req.AllowRedirects = true
	req.MaintainSession = true

	env := s.client.Do(ctx, &req)

	if !env.Valid {
		return AuthResult{
			Success:      false,
			ErrorMessage: "Invalid response from server: " + env.ErrorMessage,
		}
	}

	if env.Response.SetCookie != "" {
		logrus.Debugf("auth: session cookie received: %s", env.Response.SetCookie)
		s.sessionToken = env.Response.SetCookie
		return AuthResult{
			Success: true,
			Session: &Session{Token: s.sessionToken, Server: server},
		}
	}

	if env.Response.Location == "/login.html" {
		return AuthResult{
			Success:      false,
			ErrorMessage: "Authentication failed. Invalid username or password.",
		}
	}

	// No cookie and no login bounce: classify by status. The server
	// answers rejected credentials with a rendered login page, so any
	// payload still means a credential problem.
	message := client.StatusMessage(env.Response.StatusCode)
	switch {
	case env.Response.PayloadBytes != nil:
		message = "Invalid username or password."
	case message == "":
		message = fmt.Sprintf("Unknown error occurred, status code: %d", env.Response.StatusCode)
	}
	return AuthResult{
		Success:      false,
		ErrorMessage: "Authentication failed. " + message,
	}
}
