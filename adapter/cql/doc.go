// Package cql provides adapter interfaces for CQL (Cassandra Query Language)
// database drivers.
//
// This package defines the narrow capability set the connection layer needs
// from a driver, allowing cassorm to work with different versions of gocql.
//
// # Interfaces
//
//   - Session: Wraps a database session for executing queries
//   - Query: Represents a CQL query with bind parameters, consistency and paging
//   - Iter: Iterates over one page of results
//   - Dialer: Opens a Session from a resolved ClusterSpec
//
// # Adapters
//
// Driver-specific adapters are provided in subpackages:
//
//   - [github.com/arloliu/cassorm/adapter/cql/v1]: Adapter for gocql v1.x
//   - [github.com/arloliu/cassorm/adapter/cql/v2]: Adapter for apache/cassandra-gocql-driver v2.x
//
// # Usage
//
// The connection layer dials through v1 by default. To use the Apache driver:
//
//	import (
//	    "github.com/arloliu/cassorm"
//	    v2 "github.com/arloliu/cassorm/adapter/cql/v2"
//	)
//
//	conn, err := cassorm.Connect(ctx, cfg, cassorm.WithDialer(v2.NewDialer()))
package cql
