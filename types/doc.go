// Package types defines the shared error taxonomy and domain payload types
// used across the OIC AgentOps agents. It is deliberately dependency-free so
// every other package can import it.
package types
