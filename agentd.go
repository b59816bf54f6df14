// Package agentd runs agent actions as supervised child processes and
// reports their exit status and captured output.
package agentd

// Version is the agentd release version.
const Version = "0.3.0"
