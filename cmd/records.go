package main

import (
	"context"
	"encoding/hex"

	"github.com/desertthunder/worldbuilder/internal/repositories"
	"github.com/desertthunder/worldbuilder/internal/shared"
	"github.com/urfave/cli/v3"
)

// RecordsCount prints the number of persisted chunk records.
func (r *Runner) RecordsCount(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenStore(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := repositories.NewChunkRecordRepository(db).Count(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"path": r.config.Database.Path, "records": count}, false)
	}
	return r.writePlain("%d\n", count)
}

// RecordsKeys prints every persisted chunk key in hex.
func (r *Runner) RecordsKeys(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.OpenStore(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	keys, err := repositories.NewChunkRecordRepository(db).Keys(ctx)
	if err != nil {
		return err
	}

	encoded := make([]string, len(keys))
	for i, k := range keys {
		encoded[i] = hex.EncodeToString(k)
	}

	if cmd.Bool("json") {
		return r.writeJSON(encoded, cmd.Bool("pretty"))
	}
	r.writePlainHeader("Chunk records")
	for _, k := range encoded {
		if err := r.writePlain("%s\n", k); err != nil {
			return err
		}
	}
	return nil
}
