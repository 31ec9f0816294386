// Package rusk implements the gRPC clients for the node's state service and
// the proving service, and a development node that serves both.
package rusk

import (
    "context"
    "errors"
    "fmt"
    "net"
    "net/url"
    "runtime"
    "strings"

    "github.com/google/uuid"
    "google.golang.org/grpc"
    "google.golang.org/grpc/codes"
    "google.golang.org/grpc/connectivity"
    "google.golang.org/grpc/credentials"
    "google.golang.org/grpc/credentials/insecure"
    "google.golang.org/grpc/metadata"
    "google.golang.org/grpc/status"

    "github.com/grutesr1/DUSK-test/internal/errs"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "x-request-id"

// Role says which collaborator a connection talks to; it picks the
// connect-failure kind.
type Role uint8

const (
    RoleNode Role = iota + 1
    RoleProver
)

// goos is overridden in tests.
var goos = runtime.GOOS

// Conn is an established connection to the node or the prover.
type Conn struct {
    cc       *grpc.ClientConn
    endpoint string
    role     Role
}

// Close tears the connection down.
func (c *Conn) Close() error {
    if c == nil || c.cc == nil {
        return nil
    }
    return c.cc.Close()
}

// Dial parses addr, opens a connection and waits until it is ready or ctx is
// done. Accepted forms: host:port, http(s)://host[:port], unix:///path and
// passthrough:///name.
func Dial(ctx context.Context, addr string, role Role, opts ...grpc.DialOption) (*Conn, error) {
    target, secure, err := parseTarget(addr)
    if err != nil {
        return nil, err
    }
    creds := insecure.NewCredentials()
    if secure {
        creds = credentials.NewTLS(nil)
    }
    all := append([]grpc.DialOption{
        grpc.WithTransportCredentials(creds),
        grpc.WithDefaultCallOptions(grpc.ForceCodec(cborCodec{})),
    }, opts...)
    cc, err := grpc.NewClient(target, all...)
    if err != nil {
        return nil, errs.FromURI(addr, err)
    }
    c := &Conn{cc: cc, endpoint: addr, role: role}
    if err := c.waitReady(ctx); err != nil {
        _ = cc.Close()
        return nil, c.connFailure(err)
    }
    return c, nil
}

func (c *Conn) connFailure(err error) error {
    if c.role == RoleProver {
        return errs.ProverConnFailure(c.endpoint, err)
    }
    return errs.RuskConnFailure(c.endpoint, err)
}

func (c *Conn) waitReady(ctx context.Context) error {
    c.cc.Connect()
    for {
        s := c.cc.GetState()
        switch s {
        case connectivity.Ready:
            return nil
        case connectivity.Shutdown:
            return status.Error(codes.Unavailable, "connection shut down")
        }
        if !c.cc.WaitForStateChange(ctx, s) {
            if s == connectivity.TransientFailure {
                return status.Errorf(codes.Unavailable, "%s unreachable: %v", c.endpoint, ctx.Err())
            }
            return ctx.Err()
        }
    }
}

// Check verifies an established connection is still usable. A lost
// connection is reported as a Network error.
func (c *Conn) Check(ctx context.Context) error {
    if err := c.waitReady(ctx); err != nil {
        return errs.Network(c.endpoint, err)
    }
    return nil
}

func (c *Conn) invoke(ctx context.Context, method string, req, resp any) error {
    ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, uuid.NewString())
    var frame rawFrame
    if err := c.cc.Invoke(ctx, method, req, &frame); err != nil {
        return err
    }
    return decodeFrame(frame, resp)
}

func parseTarget(raw string) (target string, secure bool, err error) {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return "", false, errs.FromURI(raw, errors.New("empty address"))
    }
    if strings.HasPrefix(raw, "unix:") {
        if goos == "windows" {
            return "", false, errs.SocketsNotSupported("unix sockets are not available on " + goos)
        }
        return raw, false, nil
    }
    if !strings.Contains(raw, "://") {
        if _, _, err := net.SplitHostPort(raw); err != nil {
            return "", false, errs.FromURI(raw, err)
        }
        return raw, false, nil
    }
    u, err := url.Parse(raw)
    if err != nil {
        return "", false, errs.FromURI(raw, err)
    }
    switch u.Scheme {
    case "http", "https":
        if u.Hostname() == "" {
            return "", false, errs.FromURI(raw, errors.New("missing host"))
        }
        host := u.Host
        if u.Port() == "" {
            port := "80"
            if u.Scheme == "https" {
                port = "443"
            }
            host = net.JoinHostPort(u.Hostname(), port)
        }
        return host, u.Scheme == "https", nil
    case "passthrough", "dns":
        return raw, false, nil
    }
    return "", false, errs.FromURI(raw, fmt.Errorf("unsupported scheme %q", u.Scheme))
}

// IsLocal reports whether addr points at this machine.
func IsLocal(addr string) bool {
    addr = strings.TrimSpace(addr)
    if strings.HasPrefix(addr, "unix:") {
        return true
    }
    host := addr
    if strings.Contains(addr, "://") {
        u, err := url.Parse(addr)
        if err != nil {
            return false
        }
        host = u.Hostname()
    } else if h, _, err := net.SplitHostPort(addr); err == nil {
        host = h
    }
    if strings.EqualFold(host, "localhost") {
        return true
    }
    ip := net.ParseIP(host)
    return ip != nil && ip.IsLoopback()
}
