package handlers

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog"

	"proposalgen/services"
)

// Env holds the read-only dependencies shared by the proposal handlers.
type Env struct {
	Catalog *services.Catalog
	Options services.Options
	Lookup  *services.ClientLookup
	Logger  zerolog.Logger

	// Now is the clock used for offer numbers; nil means time.Now.
	Now func() time.Time
}

func (env *Env) now() time.Time {
	if env.Now != nil {
		return env.Now()
	}
	return time.Now()
}

func (env *Env) newAssembler() *services.Assembler {
	a := services.NewAssembler(env.Catalog, env.Logger, env.Options)
	if env.Now != nil {
		a.SetClock(env.Now)
		a.Reset()
	}
	return a
}

// loadProposal restores the stored proposal with the given record id.
func loadProposal(app *pocketbase.PocketBase, env *Env, id string) (*core.Record, *services.Assembler, error) {
	record, err := app.FindRecordById("proposals", id)
	if err != nil {
		return nil, nil, fmt.Errorf("proposal not found: %w", err)
	}
	a := env.newAssembler()
	if err := a.Restore([]byte(record.GetString("snapshot"))); err != nil {
		return record, nil, fmt.Errorf("restore proposal %s: %w", id, err)
	}
	return record, a, nil
}
