// Package stages implements the monitoring and recovery workflow stages:
// discover errored instances, resubmit them, check the recovery job, and
// watch the in-progress queue.
//
// Each stage is a pure orchestration step over the protocol client and the
// correlation store. Stages resolve missing arguments from the store, so
// an operator can run "discover" in one invocation and "resubmit" in the
// next without copying ids between them.
package stages
