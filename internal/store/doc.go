// Package store defines persistence interfaces and shared helpers.
package store
