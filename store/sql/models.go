package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type parameterRecord struct {
	bun.BaseModel `bun:"table:brevo_connector_parameters,alias:bcp"`

	ID        string    `bun:"id,pk"`
	Connector string    `bun:"connector,notnull"`
	Name      string    `bun:"name,notnull"`
	Value     string    `bun:"value,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
