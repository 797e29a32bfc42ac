package v2

import (
	"context"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/arloliu/cassorm/adapter/cql"
)

var _ cql.Dialer = (*Dialer)(nil)

// Dialer opens gocql v2 sessions.
type Dialer struct {
	configure func(*gocql.ClusterConfig)
}

// NewDialer creates a v2 dialer.
//
// Parameters:
//   - configure: Optional hooks run on the cluster config after the ClusterSpec is
//     applied, for driver settings cassorm does not model (TLS, host policy)
//
// Returns:
//   - *Dialer: A dialer implementing cql.Dialer
func NewDialer(configure ...func(*gocql.ClusterConfig)) *Dialer {
	d := &Dialer{}
	if len(configure) > 0 {
		d.configure = func(c *gocql.ClusterConfig) {
			for _, fn := range configure {
				fn(c)
			}
		}
	}

	return d
}

// ClusterConfig builds a gocql cluster config from spec.
//
// Only non-zero spec fields override the driver defaults.
func ClusterConfig(spec cql.ClusterSpec) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(spec.Hosts...)
	if spec.Port > 0 {
		cluster.Port = spec.Port
	}
	cluster.Keyspace = spec.Keyspace
	if spec.Consistency != nil {
		cluster.Consistency = ToGocqlConsistency(*spec.Consistency)
	}
	if spec.PageSize > 0 {
		cluster.PageSize = spec.PageSize
	}
	if spec.ConnectTimeout > 0 {
		cluster.ConnectTimeout = spec.ConnectTimeout
	}
	if spec.RequestTimeout > 0 {
		cluster.Timeout = spec.RequestTimeout
	}
	if spec.Credentials {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: spec.Username,
			Password: spec.Password,
		}
	}

	return cluster
}

// Dial opens a gocql session bound to spec.Keyspace.
func (d *Dialer) Dial(_ context.Context, spec cql.ClusterSpec) (cql.Session, error) {
	cluster := ClusterConfig(spec)
	if d.configure != nil {
		d.configure(cluster)
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}

	return NewSession(session), nil
}
