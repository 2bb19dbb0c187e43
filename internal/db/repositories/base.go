package repositories

import (
	"github.com/amadeus-robot/amadeus-mcp/internal/db"
)

type Repositories struct {
	FaucetClaims *FaucetClaimRepo

	db db.Database
}

func New(database db.Database) *Repositories {
	conn := database.Conn()

	return &Repositories{
		FaucetClaims: NewFaucetClaimRepo(conn),
		db:           database,
	}
}
