// Package permission implements the module-scoped permission evaluator used
// across go-rbac. Permissions are module:action strings; predefined role
// tables and hierarchy levels are immutable package data loaded once for the
// process lifetime. Every function here is pure and side-effect free, so the
// evaluator can be called from concurrent request handlers without
// coordination.
package permission
