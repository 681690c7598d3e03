// Package postgres implements the store interfaces on PostgreSQL.
package postgres
