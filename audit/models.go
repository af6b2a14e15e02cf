package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entry models the persisted row in rbac_audit.
type Entry struct {
	bun.BaseModel `bun:"table:rbac_audit"`

	ID         uuid.UUID      `bun:",pk,type:uuid"`
	ActorID    uuid.UUID      `bun:"actor_id,type:uuid"`
	SubjectID  uuid.UUID      `bun:"subject_id,type:uuid"`
	TenantID   uuid.UUID      `bun:"tenant_id,type:uuid"`
	OrgID      uuid.UUID      `bun:"org_id,type:uuid"`
	Verb       string         `bun:"verb"`
	Decision   string         `bun:"decision"`
	Permission string         `bun:"permission"`
	Data       map[string]any `bun:"data,type:jsonb"`
	CreatedAt  time.Time      `bun:"created_at"`
}
