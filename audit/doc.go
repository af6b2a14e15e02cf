// Package audit provides default persistence helpers for the go-rbac
// AuditSink. The Repository implements both the sink (writes) and the
// AuditRepository read-side contract so guarded commands can record
// authorization decisions and admin panels can later query them. Host
// applications can swap the repository if they prefer a different storage
// engine.
package audit
