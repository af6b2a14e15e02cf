// Package command exposes go-command compatible command handlers implementing
// go-rbac business logic (custom role CRUD, membership assignment, etc.).
// Commands are wired by the service layer and can be invoked by any transport.
package command
