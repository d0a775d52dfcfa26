// Package agent exposes the workflow stages as a small fleet of HTTP
// agents. Each agent owns one stage and publishes a discovery card at
// /.well-known/agent.json; the coordinator chains the recovery stages
// into one pipeline.
package agent
